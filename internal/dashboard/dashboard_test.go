package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/storage"
)

type fakeClient struct {
	data    api.DashboardData
	err     error
	sent    []api.Feedback
	sendErr error
}

func (f *fakeClient) Dashboard(context.Context, string) (api.DashboardData, error) {
	return f.data, f.err
}

func (f *fakeClient) SendFeedback(_ context.Context, _ string, fb api.Feedback) error {
	f.sent = append(f.sent, fb)
	return f.sendErr
}

func TestLoadPrefersServerPreferences(t *testing.T) {
	ctx := context.Background()
	server := prefs.Preferences{CryptoAssets: []string{"SOL"}, ContentTypes: []string{}}
	client := &fakeClient{data: api.DashboardData{User: &api.User{ID: "u1", Name: "Ana", Preferences: &server}}}
	store := storage.NewMemory(nil)
	require.NoError(t, prefs.NewCache(store).Save(ctx, prefs.Preferences{CryptoAssets: []string{"BTC"}}))

	v, err := NewLoader(client, store, zap.NewNop()).Load(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, []string{"SOL"}, v.Prefs.CryptoAssets)
	require.Equal(t, "u1", v.UserID)
	require.Equal(t, "Welcome back, Ana.", v.Greeting())
	require.Equal(t, "Ana", store.Snapshot()[storage.KeyUserName])
}

func TestLoadFallsBackToCachedPreferences(t *testing.T) {
	ctx := context.Background()
	empty := prefs.Preferences{}
	client := &fakeClient{data: api.DashboardData{User: &api.User{ID: "u1", Preferences: &empty}}}
	store := storage.NewMemory(map[string]string{storage.KeyUserName: "Cached"})
	require.NoError(t, prefs.NewCache(store).Save(ctx, prefs.Preferences{CryptoAssets: []string{"BTC"}}))

	v, err := NewLoader(client, store, nil).Load(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, []string{"BTC"}, v.Prefs.CryptoAssets)
	require.Equal(t, "Welcome back, Cached.", v.Greeting())
}

func TestLoadWithNothingCached(t *testing.T) {
	store := storage.NewMemory(map[string]string{storage.KeyUserPreferences: "not-json"})
	v, err := NewLoader(&fakeClient{}, store, nil).Load(context.Background(), "tok")
	require.NoError(t, err)
	require.Nil(t, v.Prefs)
	require.Equal(t, "Welcome back, trader.", v.Greeting())
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(&fakeClient{err: errors.New("down")}, storage.NewMemory(nil), nil)

	_, err := l.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrNoToken)

	_, err = l.Load(context.Background(), "tok")
	require.Error(t, err)
}

func TestVotesOncePerCard(t *testing.T) {
	v := NewVotes()

	fb, ok := v.Cast(SectionNews, ItemID(SectionNews), true, "u1")
	require.True(t, ok)
	require.Equal(t, api.Feedback{Section: "news", ItemID: "news-1", Vote: api.VoteUp, UserID: "u1"}, fb)
	require.Equal(t, Up, v.State(SectionNews, "news-1"))

	_, ok = v.Cast(SectionNews, "news-1", false, "u1")
	require.False(t, ok)
	require.Equal(t, Up, v.State(SectionNews, "news-1"))

	fb, ok = v.Cast(SectionMeme, ItemID(SectionMeme), false, "")
	require.True(t, ok)
	require.Equal(t, api.VoteDown, fb.Vote)
	require.Equal(t, Down, v.State(SectionMeme, "meme-1"))
}

func TestVoteRevert(t *testing.T) {
	v := NewVotes()
	_, ok := v.Cast(SectionPrices, "prices-1", true, "")
	require.True(t, ok)

	v.Revert(SectionPrices, "prices-1")
	require.Equal(t, NoVote, v.State(SectionPrices, "prices-1"))
	_, ok = v.Cast(SectionPrices, "prices-1", false, "")
	require.True(t, ok)
}

func TestSendWrapsError(t *testing.T) {
	client := &fakeClient{sendErr: errors.New("offline")}
	l := NewLoader(client, storage.NewMemory(nil), nil)

	err := l.Send(context.Background(), "tok", api.Feedback{Section: "news"})
	require.Error(t, err)
	require.Len(t, client.sent, 1)
}

func TestPriceRows(t *testing.T) {
	prices := map[string]api.Price{"bitcoin": {USD: 65000}, "solana": {USD: 150.5}}

	rows := PriceRows([]string{"BTC", "DOGE", "SOL"}, prices)
	require.Len(t, rows, 3)
	require.Equal(t, "$65000.00", rows[0].Display())
	require.False(t, rows[1].Known)
	require.Equal(t, "—", rows[1].Display())
	require.Equal(t, 150.5, rows[2].USD)

	require.Empty(t, PriceRows(nil, prices))
}

func TestFormatClock(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 9, 5, 0, 0, time.UTC)
	require.Equal(t, "Sun, Oct 18 2026 • 09:05", FormatClock(ts))
}
