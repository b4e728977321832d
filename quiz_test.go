package main

import (
	"math/rand"
	"strings"
	"testing"
)

func TestPickQuizAnswers(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	answers := PickQuizAnswers("Sakura Kinomoto", rng.Shuffle)

	if len(answers) != QuizDecoyCount+1 {
		t.Fatalf("got %d answers, want %d", len(answers), QuizDecoyCount+1)
	}

	found := 0
	seen := map[string]bool{}
	for _, a := range answers {
		if seen[a] {
			t.Fatalf("duplicate answer %q", a)
		}
		seen[a] = true
		if a == "Sakura Kinomoto" {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("correct answer appears %d times, want exactly once", found)
	}
}

func TestPickQuizAnswersFiltersCorrect(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	// The answer is in the decoy pool; it must not appear twice.
	for i := 0; i < 50; i++ {
		answers := PickQuizAnswers("Hatsune Miku", rng.Shuffle)
		count := 0
		for _, a := range answers {
			if strings.EqualFold(a, "Hatsune Miku") {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("iteration %d: correct answer appears %d times", i, count)
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hatsune_miku", "Hatsune Miku"},
		{"rem", "Rem"},
		{"zero_two_(darling)", "Zero Two (darling)"},
		{"", ""},
	}
	for _, c := range cases {
		if got := TitleCase(c.in); got != c.want {
			t.Fatalf("TitleCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
