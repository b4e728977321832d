package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
)

// ============================================================================
// Account Store Constants
// ============================================================================

const (
	MsgStoreSQLiteFallback = "Database unavailable (%v), falling back to %s"
	MsgStoreLoaded         = "Loaded %d accounts (%s backend)"
	MsgStoreSaveFail       = "Failed to persist accounts: %v"
	MsgStoreRowLoadFail    = "Skipping corrupt account row %s: %v"

	AccountsBackendSQLite = "sqlite"
	AccountsBackendJSON   = "json"
	AccountsFallbackFile  = "accounts.json"

	DailyFavoriteLimit = 5
)

// FavoriteEntry is a snapshot of a post at the moment it was favorited.
// It is never refreshed against the live record.
type FavoriteEntry struct {
	ID        int    `json:"id"`
	FileURL   string `json:"file_url"`
	Rating    string `json:"rating"`
	TagString string `json:"tag_string"`
	Character string `json:"tag_string_character"`
}

type Account struct {
	ViewCount   int             `json:"view_count"`
	Waifame     int             `json:"waifame"`
	DailyFavs   int             `json:"daily_favs"`
	LastFavDate string          `json:"last_fav_date"`
	LastDaily   string          `json:"last_daily"`
	DailyStreak int             `json:"daily_streak"`
	LastFish    int64           `json:"last_fish"`
	LastSteal   int64           `json:"last_steal"`
	FishCaught  int             `json:"fish_caught"`
	Favorites   []FavoriteEntry `json:"favorites"`
}

var (
	accounts        = map[string]*Account{}
	accountsMu      sync.Mutex
	accountsBackend string
)

// OpenAccountStore selects the persistence backend exactly once: sqlite when
// the database opens, otherwise a single JSON snapshot file. The decision is
// never revisited mid-session.
func OpenAccountStore(ctx context.Context, dbPath string) error {
	if err := InitDatabase(ctx, dbPath); err != nil {
		LogStore(MsgStoreSQLiteFallback, err, AccountsFallbackFile)
		CloseDatabase()
		DB = nil
		accountsBackend = AccountsBackendJSON
	} else {
		accountsBackend = AccountsBackendSQLite
	}

	return LoadAccounts(ctx)
}

func CloseAccountStore() {
	SaveAccounts()
	CloseDatabase()
}

func LoadAccounts(ctx context.Context) error {
	accountsMu.Lock()
	defer accountsMu.Unlock()

	accounts = map[string]*Account{}

	if accountsBackend == AccountsBackendJSON {
		data, err := os.ReadFile(AccountsFallbackFile)
		if err != nil {
			if os.IsNotExist(err) {
				LogStore(MsgStoreLoaded, 0, accountsBackend)
				return nil
			}
			return err
		}
		if err := json.Unmarshal(data, &accounts); err != nil {
			return err
		}
		for _, a := range accounts {
			if a.Favorites == nil {
				a.Favorites = []FavoriteEntry{}
			}
		}
		LogStore(MsgStoreLoaded, len(accounts), accountsBackend)
		return nil
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT user_id, view_count, waifame, daily_favs, last_fav_date, favorites,
		       last_daily, daily_streak, last_fish, last_steal, fish_caught
		FROM accounts
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var uid, favsJSON string
		a := &Account{}
		if err := rows.Scan(&uid, &a.ViewCount, &a.Waifame, &a.DailyFavs, &a.LastFavDate, &favsJSON,
			&a.LastDaily, &a.DailyStreak, &a.LastFish, &a.LastSteal, &a.FishCaught); err != nil {
			LogStore(MsgStoreRowLoadFail, uid, err)
			continue
		}
		a.Favorites = []FavoriteEntry{}
		if favsJSON != "" {
			if err := json.Unmarshal([]byte(favsJSON), &a.Favorites); err != nil {
				LogStore(MsgStoreRowLoadFail, uid, err)
				a.Favorites = []FavoriteEntry{}
			}
		}
		accounts[uid] = a
	}

	LogStore(MsgStoreLoaded, len(accounts), accountsBackend)
	return rows.Err()
}

// getAccountLocked returns the account for uid, creating it with all-zero
// defaults on first access. Caller must hold accountsMu.
func getAccountLocked(uid string) *Account {
	a, ok := accounts[uid]
	if !ok {
		a = &Account{Favorites: []FavoriteEntry{}}
		accounts[uid] = a
	}
	return a
}

// ResetAccount replaces the whole record with defaults. Admin only.
func ResetAccount(uid string) bool {
	accountsMu.Lock()
	_, existed := accounts[uid]
	accounts[uid] = &Account{Favorites: []FavoriteEntry{}}
	accountsMu.Unlock()
	SaveAccounts()
	return existed
}

// AccountExists reports whether a record was ever persisted for uid.
func AccountExists(uid string) bool {
	accountsMu.Lock()
	defer accountsMu.Unlock()
	_, ok := accounts[uid]
	return ok
}

// IsFavoriteOf reports whether uid currently has postID among their
// favorites, without creating an account for uid.
func IsFavoriteOf(uid string, postID int) bool {
	accountsMu.Lock()
	defer accountsMu.Unlock()
	a, ok := accounts[uid]
	return ok && a.IsFavorite(postID)
}

// LeaderboardEntry pairs a user ID with their currency balance.
type LeaderboardEntry struct {
	UserID  string
	Waifame int
}

// AllBalances returns a snapshot of every account with a positive balance.
func AllBalances() []LeaderboardEntry {
	accountsMu.Lock()
	defer accountsMu.Unlock()

	var entries []LeaderboardEntry
	for uid, a := range accounts {
		if a.Waifame > 0 {
			entries = append(entries, LeaderboardEntry{UserID: uid, Waifame: a.Waifame})
		}
	}
	return entries
}

// SaveAccounts flushes every in-memory account to the active backend, fully
// replacing each row. Failures are logged and swallowed: the mutation is lost
// only for this flush.
func SaveAccounts() {
	accountsMu.Lock()
	defer accountsMu.Unlock()
	saveAccountsLocked()
}

func saveAccountsLocked() {
	// Backend not selected yet: nothing to flush to.
	if accountsBackend == "" {
		return
	}

	if accountsBackend == AccountsBackendJSON {
		data, err := json.MarshalIndent(accounts, "", "  ")
		if err != nil {
			LogStore(MsgStoreSaveFail, err)
			return
		}
		if err := os.WriteFile(AccountsFallbackFile, data, 0644); err != nil {
			LogStore(MsgStoreSaveFail, err)
		}
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		LogStore(MsgStoreSaveFail, err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO accounts (user_id, view_count, waifame, daily_favs, last_fav_date, favorites,
		                      last_daily, daily_streak, last_fish, last_steal, fish_caught)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			view_count = excluded.view_count,
			waifame = excluded.waifame,
			daily_favs = excluded.daily_favs,
			last_fav_date = excluded.last_fav_date,
			favorites = excluded.favorites,
			last_daily = excluded.last_daily,
			daily_streak = excluded.daily_streak,
			last_fish = excluded.last_fish,
			last_steal = excluded.last_steal,
			fish_caught = excluded.fish_caught
	`)
	if err != nil {
		LogStore(MsgStoreSaveFail, err)
		return
	}
	defer stmt.Close()

	for uid, a := range accounts {
		favsJSON, err := json.Marshal(a.Favorites)
		if err != nil {
			LogStore(MsgStoreSaveFail, err)
			continue
		}
		if _, err := stmt.Exec(uid, a.ViewCount, a.Waifame, a.DailyFavs, a.LastFavDate, string(favsJSON),
			a.LastDaily, a.DailyStreak, a.LastFish, a.LastSteal, a.FishCaught); err != nil {
			LogStore(MsgStoreSaveFail, err)
		}
	}

	if err := tx.Commit(); err != nil {
		LogStore(MsgStoreSaveFail, err)
	}
}

// ============================================================================
// Account Methods
// ============================================================================
// Callers must hold accountsMu while invoking any of these.

// resetDailyFavs clears the daily counter when the stored date is not today.
// Evaluated lazily on access, never by a timer.
func (a *Account) resetDailyFavs(today string) {
	if a.LastFavDate != today {
		a.DailyFavs = 0
		a.LastFavDate = today
	}
}

func (a *Account) CanAddFavorite(today string) bool {
	a.resetDailyFavs(today)
	return a.DailyFavs < DailyFavoriteLimit
}

// UseDailyFavorite consumes one daily favorite slot and returns how many
// remain for the day.
func (a *Account) UseDailyFavorite(today string) int {
	a.resetDailyFavs(today)
	a.DailyFavs++
	return DailyFavoriteLimit - a.DailyFavs
}

func (a *Account) DailyFavsRemaining(today string) int {
	if a.LastFavDate != today {
		return DailyFavoriteLimit
	}
	return DailyFavoriteLimit - a.DailyFavs
}

func (a *Account) IsFavorite(postID int) bool {
	for _, f := range a.Favorites {
		if f.ID == postID {
			return true
		}
	}
	return false
}

func (a *Account) AddFavorite(entry FavoriteEntry) {
	a.Favorites = append(a.Favorites, entry)
}

// RemoveFavorite removes the entry with the given post ID, preserving the
// order of the remaining entries. Removal is always allowed, unlimited.
func (a *Account) RemoveFavorite(postID int) bool {
	for i, f := range a.Favorites {
		if f.ID == postID {
			a.Favorites = append(a.Favorites[:i], a.Favorites[i+1:]...)
			return true
		}
	}
	return false
}

// ============================================================================
// Persistence Daemon
// ============================================================================

// Handlers already flush after every mutation; the daemon is a safety net
// that catches anything lost to a swallowed save error.
const accountFlushInterval = 5 * time.Minute

func init() {
	OnClientReady(func(ctx context.Context, client bot.Client) {
		RegisterDaemon(LogStore, func(ctx context.Context) (bool, func(), func()) {
			return StartAccountFlusher(ctx)
		})
	})
}

func StartAccountFlusher(ctx context.Context) (bool, func(), func()) {
	run := func() {
		ticker := time.NewTicker(accountFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SaveAccounts()
			}
		}
	}
	shutdown := func() {
		SaveAccounts()
	}
	return true, run, shutdown
}
