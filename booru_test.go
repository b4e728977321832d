package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// withBooruServer points the client at a local test server for one test.
func withBooruServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := GlobalConfig
	GlobalConfig = &Config{BooruBaseURL: srv.URL, BooruUserAgent: "tsubaki-test"}
	t.Cleanup(func() { GlobalConfig = old })
	return srv
}

func TestFetchImagePostFiltersExtensions(t *testing.T) {
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != BooruPostsEndpoint {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		posts := []BooruPost{
			{ID: 1, FileURL: "https://cdn.test/a.swf", FileExt: "swf"},
			{ID: 2, FileURL: "https://cdn.test/b.zip", FileExt: "zip"},
			{ID: 3, FileURL: "https://cdn.test/c.png", FileExt: "png"},
		}
		_ = json.NewEncoder(w).Encode(posts)
	})

	post, err := FetchImagePost(context.Background(), "1girl")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if post.ID != 3 {
		t.Fatalf("picked post %d, want 3 (first embeddable)", post.ID)
	}
}

func TestFetchImagePostLargeFileFallback(t *testing.T) {
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		posts := []BooruPost{
			{ID: 7, FileURL: "", LargeFileURL: "https://cdn.test/big.jpg", FileExt: "jpg"},
		}
		_ = json.NewEncoder(w).Encode(posts)
	})

	post, err := FetchImagePost(context.Background(), "solo")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if post.FileURL != "https://cdn.test/big.jpg" {
		t.Fatalf("FileURL = %q, want the large file fallback", post.FileURL)
	}
}

func TestFetchImagePostNoMatch(t *testing.T) {
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]BooruPost{{ID: 1, FileURL: "https://cdn.test/a.swf"}})
	})

	if _, err := FetchImagePost(context.Background(), "tag"); err == nil {
		t.Fatal("expected an error when no post is embeddable")
	}
}

func TestFetchImagePostDefaultFilter(t *testing.T) {
	var gotTags string
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTags = r.URL.Query().Get("tags")
		_ = json.NewEncoder(w).Encode([]BooruPost{{ID: 1, FileURL: "https://cdn.test/a.jpg"}})
	})

	if _, err := FetchImagePost(context.Background(), ""); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotTags != DefaultTagFilter {
		t.Fatalf("tags param = %q, want %q", gotTags, DefaultTagFilter)
	}
}

func TestFetchVideoPostQueryAndExtension(t *testing.T) {
	var gotTags string
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTags = r.URL.Query().Get("tags")
		posts := []BooruPost{
			{ID: 1, FileURL: "https://cdn.test/a.gif", FileExt: "gif"},
			{ID: 2, FileURL: "https://cdn.test/b.mp4", FileExt: "mp4"},
		}
		_ = json.NewEncoder(w).Encode(posts)
	})

	post, err := FetchVideoPost(context.Background(), "dancing")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if post.ID != 2 {
		t.Fatalf("picked post %d, want 2 (mp4)", post.ID)
	}
	if gotTags != "dancing video" {
		t.Fatalf("tags param = %q, want %q", gotTags, "dancing video")
	}
}

func TestTagSuggestions(t *testing.T) {
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != BooruAutocompleteEndpoint {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search[query]"); got != "miku" {
			t.Fatalf("search[query] = %q, want miku", got)
		}
		items := []booruSuggestion{
			{Label: "Hatsune Miku", Value: "hatsune_miku"},
			{Label: "miku day", Value: ""},
		}
		_ = json.NewEncoder(w).Encode(items)
	})

	suggestions := TagSuggestions(context.Background(), "miku")
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	if suggestions[0] != "hatsune_miku" {
		t.Fatalf("first suggestion = %q, want value field", suggestions[0])
	}
	if suggestions[1] != "miku day" {
		t.Fatalf("second suggestion = %q, want label fallback", suggestions[1])
	}
}

func TestTagSuggestionsDegradesToEmpty(t *testing.T) {
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if got := TagSuggestions(context.Background(), "anything"); got != nil {
		t.Fatalf("got %v, want nil on server error", got)
	}
}

func TestArtistPostCountCached(t *testing.T) {
	requests := 0
	withBooruServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_ = json.NewEncoder(w).Encode([]booruTag{{Name: "some_artist", PostCount: 5200}})
	})

	artistFameMu.Lock()
	artistFameCache = map[string]int{}
	artistFameMu.Unlock()

	ctx := context.Background()
	if got := ArtistPostCount(ctx, "some_artist"); got != 5200 {
		t.Fatalf("first lookup = %d, want 5200", got)
	}
	if got := ArtistPostCount(ctx, "some_artist"); got != 5200 {
		t.Fatalf("cached lookup = %d, want 5200", got)
	}
	if requests != 1 {
		t.Fatalf("server saw %d requests, want 1", requests)
	}

	post := &BooruPost{ArtistTags: "some_artist other_artist"}
	// 5200 posts sits in the 5000 tier.
	withCount := ArtistFameBonusFor(ctx, post)
	if withCount != 7 {
		t.Fatalf("fame bonus = %d, want 7", withCount)
	}
	if requests != 1 {
		t.Fatal("fame bonus lookup should hit the cache")
	}
}

func TestArtistFameBonusNoArtist(t *testing.T) {
	if got := ArtistFameBonusFor(context.Background(), &BooruPost{}); got != 0 {
		t.Fatalf("bonus without artist = %d, want 0", got)
	}
}
