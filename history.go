package main

import "sync"

// ============================================================================
// Navigation History
// ============================================================================

// Per-guild browsing history. Image and video browsing keep independent
// stacks; entries are whole post snapshots so rewinding never re-fetches.

const HistoryMaxEntries = 50

type guildHistory struct {
	images []BooruPost
	videos []BooruPost
}

var (
	histories   = map[string]*guildHistory{}
	historiesMu sync.Mutex
)

func historyFor(guildID string) *guildHistory {
	h, ok := histories[guildID]
	if !ok {
		h = &guildHistory{}
		histories[guildID] = h
	}
	return h
}

func pushEntry(stack []BooruPost, post BooruPost) []BooruPost {
	stack = append(stack, post)
	if len(stack) > HistoryMaxEntries {
		stack = stack[len(stack)-HistoryMaxEntries:]
	}
	return stack
}

// Pops the current entry and returns the new tail. With fewer than two
// entries there is nothing to go back to, so the stack is left alone.
func rewindEntry(stack []BooruPost) ([]BooruPost, *BooruPost, bool) {
	if len(stack) < 2 {
		return stack, nil, false
	}
	stack = stack[:len(stack)-1]
	post := stack[len(stack)-1]
	return stack, &post, true
}

// HistoryPushImage records a newly shown image post for the guild.
func HistoryPushImage(guildID string, post BooruPost) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	h.images = pushEntry(h.images, post)
}

// HistoryRewindImage steps the guild's image history back one post. The
// second return is false when there is no earlier post.
func HistoryRewindImage(guildID string) (*BooruPost, bool) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	var post *BooruPost
	var ok bool
	h.images, post, ok = rewindEntry(h.images)
	return post, ok
}

// HistoryPushVideo records a newly shown video post for the guild.
func HistoryPushVideo(guildID string, post BooruPost) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	h.videos = pushEntry(h.videos, post)
}

// HistoryRewindVideo steps the guild's video history back one post.
func HistoryRewindVideo(guildID string) (*BooruPost, bool) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	var post *BooruPost
	var ok bool
	h.videos, post, ok = rewindEntry(h.videos)
	return post, ok
}

// HistoryCurrentImage returns the post currently at the top of the guild's
// image stack without modifying it.
func HistoryCurrentImage(guildID string) (*BooruPost, bool) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	if len(h.images) == 0 {
		return nil, false
	}
	post := h.images[len(h.images)-1]
	return &post, true
}

// HistoryCurrentVideo returns the post currently at the top of the guild's
// video stack without modifying it.
func HistoryCurrentVideo(guildID string) (*BooruPost, bool) {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	h := historyFor(guildID)
	if len(h.videos) == 0 {
		return nil, false
	}
	post := h.videos[len(h.videos)-1]
	return &post, true
}
