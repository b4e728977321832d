package main

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestVideoSessionAuthorization(t *testing.T) {
	s := &VideoSession{OwnerID: "owner"}
	if !s.authorized("owner") {
		t.Fatal("owner refused on their own session")
	}
	if s.authorized("intruder") {
		t.Fatal("another user allowed to drive the session")
	}
}

func TestVideoQueryUsesRating(t *testing.T) {
	s := &VideoSession{Rating: RatingQuestionable, Tags: "dancing"}
	if got := s.query(); got != "rating:questionable dancing" {
		t.Fatalf("query = %q", got)
	}
	bare := &VideoSession{Rating: RatingSafe}
	if got := bare.query(); got != "rating:safe" {
		t.Fatalf("bare query = %q", got)
	}
}

func TestVideoRatingPersistsPerGuild(t *testing.T) {
	videoMu.Lock()
	guildVideoRatings = map[string]string{}
	videoMu.Unlock()

	if got := videoRatingFor("g1"); got != RatingSafe {
		t.Fatalf("fresh guild rating = %q, want %q", got, RatingSafe)
	}

	videoMu.Lock()
	guildVideoRatings["g1"] = RatingExplicit
	videoMu.Unlock()

	if got := videoRatingFor("g1"); got != RatingExplicit {
		t.Fatalf("guild rating = %q, want %q", got, RatingExplicit)
	}
}

func TestVideoSessionLookup(t *testing.T) {
	videoMu.Lock()
	videoSessions = map[snowflake.ID]*VideoSession{}
	videoOrder = nil
	videoMu.Unlock()

	registerVideoSession(&VideoSession{OwnerID: "a", MessageID: snowflake.ID(10)})

	got, ok := videoSessionByMessage(snowflake.ID(10))
	if !ok || got.OwnerID != "a" {
		t.Fatalf("message 10 resolved to %+v", got)
	}
	if _, ok := videoSessionByMessage(snowflake.ID(11)); ok {
		t.Fatal("unknown message should not resolve")
	}
}
