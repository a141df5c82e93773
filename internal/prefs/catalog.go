package prefs

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Asset is a coin offered during onboarding.
type Asset struct {
	Symbol  string
	PriceID string // key in the dashboard price map
}

// Assets in onboarding order.
var Assets = []Asset{
	{Symbol: "BTC", PriceID: "bitcoin"},
	{Symbol: "ETH", PriceID: "ethereum"},
	{Symbol: "SOL", PriceID: "solana"},
	{Symbol: "DOGE", PriceID: "dogecoin"},
}

// ContentType is a feed category offered during onboarding.
type ContentType struct {
	Key   string
	Label string
}

var ContentTypes = []ContentType{
	{Key: "news", Label: "Market news / live updates"},
	{Key: "education", Label: "Learning / smart explanations"},
	{Key: "signals", Label: "Technical analysis / signals"},
}

// InvestorTypes in onboarding order.
var InvestorTypes = []string{InvestorLow, InvestorMedium, InvestorHigh}

// PriceID maps a symbol to its price key, falling back to the lower-cased symbol.
func PriceID(symbol string) string {
	for _, a := range Assets {
		if strings.EqualFold(a.Symbol, symbol) {
			return a.PriceID
		}
	}
	return strings.ToLower(symbol)
}

// ResolveAsset maps free text such as "eth", "Ethereum" or "eht" to a catalog symbol.
// One edit of slack is allowed against symbols and names.
func ResolveAsset(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	best, bestDist := "", 2
	for _, a := range Assets {
		for _, cand := range []string{strings.ToLower(a.Symbol), a.PriceID} {
			if cand == in {
				return a.Symbol, true
			}
			if d := levenshtein.ComputeDistance(in, cand); d < bestDist {
				best, bestDist = a.Symbol, d
			}
		}
	}
	return best, best != ""
}

// ValidContentType reports whether key is in the catalog.
func ValidContentType(key string) bool {
	for _, c := range ContentTypes {
		if c.Key == key {
			return true
		}
	}
	return false
}
