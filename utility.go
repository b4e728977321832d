package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Generic Helpers
// ============================================================================

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Atoi converts a string to int, returning 0 on failure.
func Atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// RandomIntRange returns a random int in [min, max] inclusive.
func RandomIntRange(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// Truncate shortens a string to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// TitleCase converts an underscore tag ("hatsune_miku") into a display name
// ("Hatsune Miku").
func TitleCase(tag string) string {
	words := strings.Fields(strings.ReplaceAll(tag, "_", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// FormatDuration renders a duration as a compact human string ("1h 5m 3s").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ============================================================================
// Date Helpers
// ============================================================================

const DateLayout = "2006-01-02"

func TodayDate() string {
	return time.Now().Format(DateLayout)
}

func YesterdayDate() string {
	return time.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// ============================================================================
// Pointer Helpers
// ============================================================================

func strPtr(s string) *string { return &s }
