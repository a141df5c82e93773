package api

import (
	"encoding/json"
	"strings"

	"github.com/jask/coinfeed/internal/prefs"
)

// User is the server user record. The id arrives as either "_id" or "id".
type User struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Preferences *prefs.Preferences `json:"preferences,omitempty"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID     string             `json:"_id"`
		ID          string             `json:"id"`
		Name        string             `json:"name"`
		Email       string             `json:"email"`
		Preferences *prefs.Preferences `json:"preferences"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.ID
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	u.Name = raw.Name
	u.Email = raw.Email
	u.Preferences = nil
	if raw.Preferences != nil {
		p := raw.Preferences.Normalize()
		u.Preferences = &p
	}
	return nil
}

// HasPreferences reports whether onboarding was completed server-side.
func (u *User) HasPreferences() bool {
	return u != nil && u.Preferences != nil
}

// AuthResult is the single shape returned by Login and Signup.
type AuthResult struct {
	Token string
	User  User
}

// Price is a USD quote.
type Price struct {
	USD float64 `json:"usd"`
}

type NewsItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type Insight struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

type Meme struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DashboardData is everything the dashboard renders. Prices are keyed by lower-case symbol.
type DashboardData struct {
	User    *User
	Prices  map[string]Price
	News    []NewsItem
	Insight *Insight
	Meme    *Meme
}

type dashboardWire struct {
	User   *User `json:"user"`
	Prices []struct {
		Symbol string  `json:"symbol"`
		USD    float64 `json:"usd"`
	} `json:"prices"`
	News []struct {
		Title       string `json:"title"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"news"`
	AIInsight *Insight `json:"aiInsight"`
	Meme      *Meme    `json:"meme"`
}

func (w dashboardWire) normalize() DashboardData {
	out := DashboardData{
		User:    w.User,
		Prices:  make(map[string]Price, len(w.Prices)),
		News:    make([]NewsItem, 0, len(w.News)),
		Insight: w.AIInsight,
		Meme:    w.Meme,
	}
	for _, p := range w.Prices {
		if p.Symbol == "" {
			continue
		}
		out.Prices[strings.ToLower(p.Symbol)] = Price{USD: p.USD}
	}
	for _, n := range w.News {
		summary := n.Summary
		if summary == "" {
			summary = n.Description
		}
		out.News = append(out.News, NewsItem{Title: n.Title, Summary: summary, URL: n.URL})
	}
	return out
}

// Vote values accepted by /feedback.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Feedback is a thumbs up/down on one dashboard item.
type Feedback struct {
	Section string `json:"section"`
	ItemID  string `json:"itemId"`
	Vote    int    `json:"vote"`
	UserID  string `json:"userId,omitempty"`
}
