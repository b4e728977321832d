package main

import (
	"fmt"
	"testing"
)

func resetHistories() {
	historiesMu.Lock()
	histories = map[string]*guildHistory{}
	historiesMu.Unlock()
}

func TestHistoryRewindPopsCurrent(t *testing.T) {
	resetHistories()
	gid := "guild-1"

	HistoryPushImage(gid, BooruPost{ID: 1})
	HistoryPushImage(gid, BooruPost{ID: 2})
	HistoryPushImage(gid, BooruPost{ID: 3})

	post, ok := HistoryRewindImage(gid)
	if !ok || post.ID != 2 {
		t.Fatalf("first rewind got %v ok=%t, want post 2", post, ok)
	}
	post, ok = HistoryRewindImage(gid)
	if !ok || post.ID != 1 {
		t.Fatalf("second rewind got %v ok=%t, want post 1", post, ok)
	}
	// Single remaining entry: nothing earlier to return to.
	if _, ok = HistoryRewindImage(gid); ok {
		t.Fatal("rewind past the first entry should report false")
	}
	// And the surviving entry is still current.
	current, ok := HistoryCurrentImage(gid)
	if !ok || current.ID != 1 {
		t.Fatalf("current after failed rewind = %v ok=%t, want post 1", current, ok)
	}
}

func TestHistoryRewindEmpty(t *testing.T) {
	resetHistories()
	if _, ok := HistoryRewindImage("nobody"); ok {
		t.Fatal("rewind on empty history should report false")
	}
	if _, ok := HistoryCurrentImage("nobody"); ok {
		t.Fatal("current on empty history should report false")
	}
}

func TestHistoryImageVideoIndependent(t *testing.T) {
	resetHistories()
	gid := "guild-2"

	HistoryPushImage(gid, BooruPost{ID: 10})
	HistoryPushImage(gid, BooruPost{ID: 11})
	HistoryPushVideo(gid, BooruPost{ID: 20})
	HistoryPushVideo(gid, BooruPost{ID: 21})

	post, ok := HistoryRewindImage(gid)
	if !ok || post.ID != 10 {
		t.Fatalf("image rewind got %v, want post 10", post)
	}
	post, ok = HistoryRewindVideo(gid)
	if !ok || post.ID != 20 {
		t.Fatalf("video rewind got %v, want post 20", post)
	}
}

func TestHistoryGuildsIsolated(t *testing.T) {
	resetHistories()

	HistoryPushImage("a", BooruPost{ID: 1})
	HistoryPushImage("a", BooruPost{ID: 2})
	HistoryPushImage("b", BooruPost{ID: 3})

	if _, ok := HistoryRewindImage("b"); ok {
		t.Fatal("guild b has one entry, rewind should fail")
	}
	post, ok := HistoryRewindImage("a")
	if !ok || post.ID != 1 {
		t.Fatalf("guild a rewind got %v, want post 1", post)
	}
}

func TestHistoryCapped(t *testing.T) {
	resetHistories()
	gid := "guild-3"

	for i := 0; i < HistoryMaxEntries+25; i++ {
		HistoryPushImage(gid, BooruPost{ID: i})
	}

	historiesMu.Lock()
	size := len(histories[gid].images)
	historiesMu.Unlock()
	if size != HistoryMaxEntries {
		t.Fatalf("history grew to %d entries, cap is %d", size, HistoryMaxEntries)
	}

	// The newest entries survive the trim.
	current, ok := HistoryCurrentImage(gid)
	if !ok || current.ID != HistoryMaxEntries+24 {
		t.Fatalf("current = %v, want post %d", current, HistoryMaxEntries+24)
	}
}

func TestHistoryManyGuilds(t *testing.T) {
	resetHistories()
	for g := 0; g < 10; g++ {
		gid := fmt.Sprintf("guild-%d", g)
		HistoryPushImage(gid, BooruPost{ID: g * 100})
		HistoryPushImage(gid, BooruPost{ID: g*100 + 1})
	}
	for g := 0; g < 10; g++ {
		gid := fmt.Sprintf("guild-%d", g)
		post, ok := HistoryRewindImage(gid)
		if !ok || post.ID != g*100 {
			t.Fatalf("guild %s rewind got %v, want post %d", gid, post, g*100)
		}
	}
}
