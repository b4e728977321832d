package main

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

func resetBrowseSessions() {
	browseMu.Lock()
	browseSessions = map[snowflake.ID]*BrowseSession{}
	browseOrder = nil
	guildImageRatings = map[string]string{}
	browseMu.Unlock()
}

func TestBrowseSessionAuthorization(t *testing.T) {
	s := &BrowseSession{OwnerID: "owner"}
	if !s.authorized("owner") {
		t.Fatal("owner refused on their own session")
	}
	if s.authorized("intruder") {
		t.Fatal("another user allowed to drive the session")
	}

	open := &BrowseSession{}
	if !open.authorized("anyone") {
		t.Fatal("empty owner should mean unrestricted")
	}
}

func TestBrowseSessionLookup(t *testing.T) {
	resetBrowseSessions()

	a := &BrowseSession{OwnerID: "a", GuildID: "g1", MessageID: snowflake.ID(100)}
	b := &BrowseSession{OwnerID: "b", GuildID: "g1", MessageID: snowflake.ID(200)}
	registerBrowseSession(a)
	registerBrowseSession(b)

	got, ok := browseSessionByMessage(snowflake.ID(100))
	if !ok || got.OwnerID != "a" {
		t.Fatalf("message 100 resolved to %+v", got)
	}
	got, ok = browseSessionByMessage(snowflake.ID(200))
	if !ok || got.OwnerID != "b" {
		t.Fatalf("message 200 resolved to %+v", got)
	}
	if _, ok := browseSessionByMessage(snowflake.ID(999)); ok {
		t.Fatal("unknown message should not resolve")
	}
}

func TestBrowseSessionEviction(t *testing.T) {
	resetBrowseSessions()

	for i := 1; i <= BrowseSessionLimit+5; i++ {
		registerBrowseSession(&BrowseSession{MessageID: snowflake.ID(i)})
	}

	browseMu.Lock()
	count := len(browseSessions)
	browseMu.Unlock()
	if count != BrowseSessionLimit {
		t.Fatalf("%d sessions retained, want %d", count, BrowseSessionLimit)
	}
	// The five oldest are gone, the newest survive.
	if _, ok := browseSessionByMessage(snowflake.ID(1)); ok {
		t.Fatal("oldest session should have been evicted")
	}
	if _, ok := browseSessionByMessage(snowflake.ID(BrowseSessionLimit + 5)); !ok {
		t.Fatal("newest session missing")
	}
}

func TestImageRatingPersistsPerGuild(t *testing.T) {
	resetBrowseSessions()

	if got := imageRatingFor("g1"); got != RatingSafe {
		t.Fatalf("fresh guild rating = %q, want %q", got, RatingSafe)
	}

	browseMu.Lock()
	guildImageRatings["g1"] = RatingExplicit
	browseMu.Unlock()

	if got := imageRatingFor("g1"); got != RatingExplicit {
		t.Fatalf("guild rating = %q, want %q", got, RatingExplicit)
	}
	if got := imageRatingFor("g2"); got != RatingSafe {
		t.Fatalf("other guild rating = %q, want %q", got, RatingSafe)
	}
}

func TestBrowseQueryIncludesRating(t *testing.T) {
	s := &BrowseSession{Rating: RatingQuestionable, Tags: "hatsune_miku"}
	if got := s.query(); got != "rating:questionable hatsune_miku" {
		t.Fatalf("query = %q", got)
	}
	bare := &BrowseSession{Rating: RatingSafe}
	if got := bare.query(); got != "rating:safe" {
		t.Fatalf("bare query = %q", got)
	}
}

func TestFavButtonReflectsState(t *testing.T) {
	btn := favButton("browse:fav", false)
	if btn.Label != MsgBrowseBtnFav || btn.Style != discord.ButtonStyleSecondary {
		t.Fatalf("unfavorited button = %q/%d", btn.Label, btn.Style)
	}
	btn = favButton("browse:fav", true)
	if btn.Label != MsgBrowseBtnUnfav || btn.Style != discord.ButtonStyleSuccess {
		t.Fatalf("favorited button = %q/%d", btn.Label, btn.Style)
	}
}

func TestIsFavoriteOf(t *testing.T) {
	accountsMu.Lock()
	accounts = map[string]*Account{
		"u1": {Favorites: []FavoriteEntry{{ID: 42}}},
	}
	accountsMu.Unlock()

	if !IsFavoriteOf("u1", 42) {
		t.Fatal("post 42 should be a favorite of u1")
	}
	if IsFavoriteOf("u1", 43) {
		t.Fatal("post 43 is not a favorite of u1")
	}
	// Never materializes an account for an unknown user.
	if IsFavoriteOf("ghost", 42) {
		t.Fatal("unknown user has no favorites")
	}
	if AccountExists("ghost") {
		t.Fatal("lookup must not create an account")
	}
}
