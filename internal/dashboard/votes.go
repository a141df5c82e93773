package dashboard

import "github.com/jask/coinfeed/internal/api"

// Dashboard sections, each with a single votable card.
const (
	SectionPrices  = "prices"
	SectionInsight = "insight"
	SectionMeme    = "meme"
	SectionNews    = "news"
)

// Sections in display order.
var Sections = []string{SectionPrices, SectionInsight, SectionMeme, SectionNews}

// ItemID is the card id sent with feedback for section.
func ItemID(section string) string { return section + "-1" }

type Vote int

const (
	NoVote Vote = iota
	Up
	Down
)

// Votes tracks one optimistic vote per card. Not safe for concurrent use.
type Votes struct {
	m map[string]Vote
}

func NewVotes() *Votes { return &Votes{m: map[string]Vote{}} }

func key(section, itemID string) string { return section + ":" + itemID }

func (v *Votes) State(section, itemID string) Vote {
	return v.m[key(section, itemID)]
}

// Cast records the vote and returns the feedback to send, or ok=false when the
// card was already voted on.
func (v *Votes) Cast(section, itemID string, up bool, userID string) (api.Feedback, bool) {
	k := key(section, itemID)
	if v.m[k] != NoVote {
		return api.Feedback{}, false
	}
	fb := api.Feedback{Section: section, ItemID: itemID, Vote: api.VoteDown, UserID: userID}
	v.m[k] = Down
	if up {
		v.m[k] = Up
		fb.Vote = api.VoteUp
	}
	return fb, true
}

// Revert forgets a vote whose request failed.
func (v *Votes) Revert(section, itemID string) {
	delete(v.m, key(section, itemID))
}
