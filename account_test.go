package main

import (
	"encoding/json"
	"testing"
)

func TestDailyFavoriteCap(t *testing.T) {
	a := &Account{}
	today := "2026-08-29"

	for i := 0; i < DailyFavoriteLimit; i++ {
		if !a.CanAddFavorite(today) {
			t.Fatalf("favorite %d rejected before the cap", i+1)
		}
		remaining := a.UseDailyFavorite(today)
		if remaining != DailyFavoriteLimit-i-1 {
			t.Fatalf("after favorite %d remaining = %d, want %d", i+1, remaining, DailyFavoriteLimit-i-1)
		}
	}
	if a.CanAddFavorite(today) {
		t.Fatal("sixth favorite allowed on the same day")
	}

	// A new day resets the quota.
	tomorrow := "2026-08-30"
	if !a.CanAddFavorite(tomorrow) {
		t.Fatal("quota did not reset on the next day")
	}
	if got := a.DailyFavsRemaining(tomorrow); got != DailyFavoriteLimit-0 {
		t.Fatalf("remaining after reset = %d, want %d", got, DailyFavoriteLimit)
	}
}

func TestRemovalNeverCharged(t *testing.T) {
	a := &Account{}
	today := "2026-08-29"

	for i := 0; i < DailyFavoriteLimit; i++ {
		a.AddFavorite(FavoriteEntry{ID: i})
		a.UseDailyFavorite(today)
	}
	// Removing and re-checking: quota stays consumed, removal still works.
	for i := 0; i < DailyFavoriteLimit; i++ {
		if !a.RemoveFavorite(i) {
			t.Fatalf("could not remove favorite %d", i)
		}
	}
	if a.CanAddFavorite(today) {
		t.Fatal("removals should not refund daily slots")
	}
}

func TestFavoriteRoundTrip(t *testing.T) {
	a := &Account{}
	a.AddFavorite(FavoriteEntry{ID: 1, Rating: "s"})
	a.AddFavorite(FavoriteEntry{ID: 2, Rating: "q"})
	a.AddFavorite(FavoriteEntry{ID: 3, Rating: "s"})

	if !a.IsFavorite(2) {
		t.Fatal("post 2 should be a favorite")
	}
	if !a.RemoveFavorite(2) {
		t.Fatal("removal of post 2 failed")
	}
	if a.IsFavorite(2) {
		t.Fatal("post 2 still favorited after removal")
	}
	if a.RemoveFavorite(2) {
		t.Fatal("second removal of post 2 should report false")
	}

	// Order of the survivors is preserved.
	if len(a.Favorites) != 2 || a.Favorites[0].ID != 1 || a.Favorites[1].ID != 3 {
		t.Fatalf("favorites after removal = %v, want [1 3]", a.Favorites)
	}
}

func TestAccountBackfillDefaults(t *testing.T) {
	// A record written before the economy fields existed must load with
	// zero values, not fail.
	raw := `{"view_count": 7, "waifame": 42, "favorites": [{"id": 5, "file_url": "u", "rating": "s"}]}`

	var a Account
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal old record: %v", err)
	}
	if a.ViewCount != 7 || a.Waifame != 42 {
		t.Fatalf("known fields lost: views=%d waifame=%d", a.ViewCount, a.Waifame)
	}
	if a.DailyStreak != 0 || a.LastDaily != "" || a.LastFish != 0 || a.LastSteal != 0 || a.FishCaught != 0 {
		t.Fatal("missing fields should default to zero values")
	}
	if len(a.Favorites) != 1 || a.Favorites[0].ID != 5 {
		t.Fatalf("favorites = %v, want single entry with ID 5", a.Favorites)
	}
}

func TestFavoriteEntryJSONFields(t *testing.T) {
	entry := FavoriteEntry{ID: 9, FileURL: "https://example.test/f.png", Rating: "s", TagString: "1girl", Character: "hatsune_miku"}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "file_url", "rating", "tag_string", "tag_string_character"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("snapshot missing %q field", key)
		}
	}
}

func TestResetAccountReplacesRecord(t *testing.T) {
	accountsMu.Lock()
	accounts = map[string]*Account{}
	a := getAccountLocked("u1")
	a.Waifame = 500
	a.AddFavorite(FavoriteEntry{ID: 7})
	accountsMu.Unlock()

	if !ResetAccount("u1") {
		t.Fatal("reset of existing account should report true")
	}
	// Reset replaces the record with defaults rather than deleting it.
	if !AccountExists("u1") {
		t.Fatal("account should still exist after reset")
	}
	accountsMu.Lock()
	fresh := accounts["u1"]
	accountsMu.Unlock()
	if fresh.Waifame != 0 || len(fresh.Favorites) != 0 {
		t.Fatalf("reset left data behind: waifame=%d favorites=%d", fresh.Waifame, len(fresh.Favorites))
	}

	if ResetAccount("u2") {
		t.Fatal("reset of a never-seen account should report false")
	}
}

func TestSaveAccountsWithoutBackend(t *testing.T) {
	// Before OpenAccountStore runs there is nowhere to flush to; a save must
	// be a no-op instead of dereferencing a nil database handle.
	accountsMu.Lock()
	accounts = map[string]*Account{"u1": {Waifame: 10}}
	accountsMu.Unlock()

	SaveAccounts()
}

func TestAllBalancesPositiveOnly(t *testing.T) {
	accountsMu.Lock()
	accounts = map[string]*Account{
		"rich":  {Waifame: 300},
		"broke": {Waifame: 0},
		"mid":   {Waifame: 50},
	}
	accountsMu.Unlock()

	entries := AllBalances()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Waifame <= 0 {
			t.Fatalf("entry %s has non-positive balance %d", e.UserID, e.Waifame)
		}
	}
}
