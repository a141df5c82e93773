// Package prefs holds the onboarding preferences model and its local cached copy.
package prefs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Investor types accepted by the server. The empty value means "not selected yet".
const (
	InvestorLow    = "low"
	InvestorMedium = "medium"
	InvestorHigh   = "high"
)

var ErrInvalidInvestorType = errors.New("invalid investor type")

// Preferences are the onboarding selections.
type Preferences struct {
	CryptoAssets []string `json:"cryptoAssets"`
	InvestorType string   `json:"investorType"`
	ContentTypes []string `json:"contentTypes"`
}

// Normalize returns a copy with nil slices replaced by empty ones and the investor type trimmed.
func (p Preferences) Normalize() Preferences {
	out := Preferences{
		CryptoAssets: append([]string{}, p.CryptoAssets...),
		InvestorType: strings.ToLower(strings.TrimSpace(p.InvestorType)),
		ContentTypes: append([]string{}, p.ContentTypes...),
	}
	return out
}

func (p Preferences) Validate() error {
	switch p.InvestorType {
	case "", InvestorLow, InvestorMedium, InvestorHigh:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidInvestorType, p.InvestorType)
}

// Empty reports whether nothing was selected at all.
func (p Preferences) Empty() bool {
	return len(p.CryptoAssets) == 0 && p.InvestorType == "" && len(p.ContentTypes) == 0
}

// HasAsset is case-insensitive.
func (p Preferences) HasAsset(symbol string) bool {
	return slices.ContainsFunc(p.CryptoAssets, func(s string) bool { return strings.EqualFold(s, symbol) })
}

// InvestorLabel is the human label for an investor type.
func InvestorLabel(t string) string {
	switch t {
	case InvestorLow:
		return "Conservative (low risk)"
	case InvestorMedium:
		return "Balanced (medium risk)"
	case InvestorHigh:
		return "Aggressive (degen mode)"
	}
	return "Not selected yet"
}
