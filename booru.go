package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ============================================================================
// Booru API Constants
// ============================================================================

const (
	MsgBooruAPIUnreachable  = "Booru API unreachable: %v"
	MsgBooruAPIStatusError  = "booru API returned status %d"
	MsgBooruDecodeError     = "failed to decode booru response: %w"
	MsgBooruNoResult        = "no post matched the requested tags"
	MsgBooruArtistLookup    = "Artist lookup failed for %s: %v"
	MsgBooruRequestFail     = "booru request failed: %w"
	ErrBooruLimiterCanceled = "rate limiter wait canceled: %w"

	BooruPostsEndpoint        = "/posts.json"
	BooruAutocompleteEndpoint = "/autocomplete.json"
	BooruTagsEndpoint         = "/tags.json"

	DefaultTagFilter = "rating:safe"

	ImageFetchLimit = 10
	VideoFetchLimit = 20
	TagSuggestLimit = 10
)

// Client-side pacing across every booru endpoint.
var booruLimiter = rate.NewLimiter(rate.Limit(4), 10)

// BooruPost is one post record from the content API. Ephemeral: it lives only
// inside a single interaction or a navigation history.
type BooruPost struct {
	ID           int    `json:"id"`
	FileURL      string `json:"file_url"`
	LargeFileURL string `json:"large_file_url"`
	Rating       string `json:"rating"`
	TagString    string `json:"tag_string"`
	ArtistTags   string `json:"tag_string_artist"`
	CharacterTag string `json:"tag_string_character"`
	Score        int    `json:"score"`
	FavCount     int    `json:"fav_count"`
	FileExt      string `json:"file_ext"`
}

type booruTag struct {
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

type booruSuggestion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var videoExtensions = map[string]bool{
	"mp4":  true,
	"webm": true,
}

func booruBaseURL() string {
	if GlobalConfig != nil && GlobalConfig.BooruBaseURL != "" {
		return GlobalConfig.BooruBaseURL
	}
	return DefaultBooruBaseURL
}

func booruUserAgent() string {
	if GlobalConfig != nil && GlobalConfig.BooruUserAgent != "" {
		return GlobalConfig.BooruUserAgent
	}
	return "tsubaki/1.0"
}

// PostURL returns the public page for a post ID.
func PostURL(postID int) string {
	return fmt.Sprintf("%s/posts/%d", booruBaseURL(), postID)
}

func booruGet(ctx context.Context, endpoint string, params url.Values, dst any) error {
	if err := booruLimiter.Wait(ctx); err != nil {
		return fmt.Errorf(ErrBooruLimiterCanceled, err)
	}

	reqURL := booruBaseURL() + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", booruUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf(MsgBooruRequestFail, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(MsgBooruAPIStatusError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf(MsgBooruDecodeError, err)
	}
	return nil
}

// FetchImagePost fetches a random image post for the tag query, keeping only
// posts whose file URL ends in an embeddable image extension.
func FetchImagePost(ctx context.Context, tags string) (*BooruPost, error) {
	if tags == "" {
		tags = DefaultTagFilter
	}

	params := url.Values{}
	params.Set("tags", tags)
	params.Set("random", "true")
	params.Set("limit", fmt.Sprintf("%d", ImageFetchLimit))

	var posts []BooruPost
	if err := booruGet(ctx, BooruPostsEndpoint, params, &posts); err != nil {
		return nil, err
	}

	for i := range posts {
		post := &posts[i]
		fileURL := post.FileURL
		if fileURL == "" {
			fileURL = post.LargeFileURL
		}
		if fileURL == "" {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(fileURL[strings.LastIndex(fileURL, ".")+1:]), ".")
		if imageExtensions[ext] {
			post.FileURL = fileURL
			return post, nil
		}
	}
	return nil, fmt.Errorf(MsgBooruNoResult)
}

// FetchVideoPost fetches a random video post. A "video" tag term is appended
// server-side to the query and only mp4/webm files are accepted.
func FetchVideoPost(ctx context.Context, tags string) (*BooruPost, error) {
	if tags == "" {
		tags = DefaultTagFilter
	}

	params := url.Values{}
	params.Set("tags", tags+" video")
	params.Set("random", "true")
	params.Set("limit", fmt.Sprintf("%d", VideoFetchLimit))

	var posts []BooruPost
	if err := booruGet(ctx, BooruPostsEndpoint, params, &posts); err != nil {
		return nil, err
	}

	for i := range posts {
		post := &posts[i]
		fileURL := post.FileURL
		if fileURL == "" {
			fileURL = post.LargeFileURL
		}
		if fileURL != "" && videoExtensions[post.FileExt] {
			post.FileURL = fileURL
			return post, nil
		}
	}
	return nil, fmt.Errorf(MsgBooruNoResult)
}

// TagSuggestions queries the autocomplete API for up to 10 tag completions.
// Failures degrade to an empty list.
func TagSuggestions(ctx context.Context, query string) []string {
	params := url.Values{}
	params.Set("search[query]", query)
	params.Set("search[type]", "tag_query")
	params.Set("limit", fmt.Sprintf("%d", TagSuggestLimit))

	var items []booruSuggestion
	if err := booruGet(ctx, BooruAutocompleteEndpoint, params, &items); err != nil {
		LogBooru(MsgBooruAPIUnreachable, err)
		return nil
	}

	var suggestions []string
	for _, item := range items {
		value := item.Value
		if value == "" {
			value = item.Label
		}
		if value != "" {
			suggestions = append(suggestions, value)
		}
		if len(suggestions) >= TagSuggestLimit {
			break
		}
	}
	return suggestions
}

// ============================================================================
// Artist Fame Cache
// ============================================================================

// Memoized for the process lifetime: artist output changes slowly enough that
// neither TTL nor invalidation is worth the bookkeeping.
var (
	artistFameCache = map[string]int{}
	artistFameMu    sync.Mutex
)

// ArtistPostCount looks up the total post count for an artist tag, consulting
// the cache first. A failed lookup counts as zero and is cached as such.
func ArtistPostCount(ctx context.Context, artist string) int {
	artistFameMu.Lock()
	if count, ok := artistFameCache[artist]; ok {
		artistFameMu.Unlock()
		return count
	}
	artistFameMu.Unlock()

	params := url.Values{}
	params.Set("search[name]", artist)

	count := 0
	var tags []booruTag
	if err := booruGet(ctx, BooruTagsEndpoint, params, &tags); err != nil {
		LogBooru(MsgBooruArtistLookup, artist, err)
	} else if len(tags) > 0 {
		count = tags[0].PostCount
	}

	artistFameMu.Lock()
	artistFameCache[artist] = count
	artistFameMu.Unlock()
	return count
}

// ArtistFameBonusFor resolves the fame bonus for a post's primary artist.
func ArtistFameBonusFor(ctx context.Context, post *BooruPost) int {
	artists := strings.Fields(post.ArtistTags)
	if len(artists) == 0 {
		return 0
	}
	return FameBonus(ArtistPostCount(ctx, artists[0]))
}
