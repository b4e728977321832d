package main

import (
	"math/rand"
	"testing"
)

func TestNewDeckComplete(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(3)))
	if len(deck) != 52 {
		t.Fatalf("deck has %d cards, want 52", len(deck))
	}
	seen := map[Card]bool{}
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		name string
		hand []Card
		want int
	}{
		{"ace and king", []Card{{"A", "♠"}, {"K", "♥"}}, 21},
		{"king queen five busts", []Card{{"K", "♠"}, {"Q", "♥"}, {"5", "♦"}}, 25},
		{"soft ace drops to one", []Card{{"A", "♠"}, {"9", "♥"}, {"5", "♦"}}, 15},
		{"two aces soften one", []Card{{"A", "♠"}, {"A", "♥"}, {"9", "♦"}}, 21},
		{"all face cards", []Card{{"J", "♠"}, {"Q", "♥"}, {"K", "♦"}}, 30},
		{"number cards", []Card{{"2", "♠"}, {"7", "♥"}, {"9", "♦"}}, 18},
	}
	for _, c := range cases {
		if got := HandValue(c.hand); got != c.want {
			t.Fatalf("%s: HandValue = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestIsNatural(t *testing.T) {
	if !IsNatural([]Card{{"A", "♠"}, {"K", "♥"}}) {
		t.Fatal("ace + king should be a natural")
	}
	if IsNatural([]Card{{"7", "♠"}, {"7", "♥"}, {"7", "♦"}}) {
		t.Fatal("three-card 21 is not a natural")
	}
	if IsNatural([]Card{{"K", "♠"}, {"5", "♥"}}) {
		t.Fatal("15 is not a natural")
	}
}

func TestNaturalPayout(t *testing.T) {
	if got := NaturalPayout(10); got != 25 {
		t.Fatalf("NaturalPayout(10) = %d, want 25", got)
	}
	if got := NaturalPayout(100); got != 250 {
		t.Fatalf("NaturalPayout(100) = %d, want 250", got)
	}
}

func TestDealerPlayDrawsToSeventeen(t *testing.T) {
	deck := []Card{{"2", "♠"}, {"3", "♥"}, {"K", "♦"}, {"9", "♣"}}
	dealer := []Card{{"5", "♠"}, {"6", "♥"}}

	remaining, final := DealerPlay(deck, dealer)

	if got := HandValue(final); got < BlackjackDealerStand {
		t.Fatalf("dealer stopped at %d, below %d", got, BlackjackDealerStand)
	}
	// 11 -> 13 -> 16 -> 26: three draws used.
	if len(final) != 5 {
		t.Fatalf("dealer hand has %d cards, want 5", len(final))
	}
	if len(remaining) != 1 {
		t.Fatalf("deck has %d cards left, want 1", len(remaining))
	}
}

func TestDealerPlayStandsPat(t *testing.T) {
	deck := []Card{{"2", "♠"}}
	dealer := []Card{{"K", "♠"}, {"9", "♥"}}

	remaining, final := DealerPlay(deck, dealer)
	if len(final) != 2 {
		t.Fatalf("dealer drew on 19: hand %v", final)
	}
	if len(remaining) != 1 {
		t.Fatal("deck should be untouched")
	}
}

func TestSecondRoundRefusedWhileOpen(t *testing.T) {
	blackjackMu.Lock()
	blackjackRounds = map[string]*BlackjackRound{}
	blackjackMu.Unlock()
	accountsMu.Lock()
	accounts = map[string]*Account{"u1": {Waifame: 10000}}
	accountsMu.Unlock()

	// Naturals resolve instantly and leave the slot free, so deal until an
	// ordinary round sticks.
	var open *BlackjackRound
	for i := 0; i < 100; i++ {
		round, _, status := startBlackjackRound("u1", 10)
		if status != blackjackStarted {
			t.Fatalf("start %d refused with status %d", i, status)
		}
		if !IsNatural(round.Player) {
			open = round
			break
		}
	}
	if open == nil {
		t.Fatal("dealt 100 naturals in a row")
	}

	if _, _, status := startBlackjackRound("u1", 10); status != blackjackBusy {
		t.Fatalf("second start while a round is open: status %d, want busy", status)
	}

	blackjackMu.Lock()
	delete(blackjackRounds, "u1")
	blackjackMu.Unlock()
	if _, _, status := startBlackjackRound("u1", 10); status != blackjackStarted {
		t.Fatalf("start after resolution refused: status %d", status)
	}
}

func TestConcurrentStartsEscrowOnce(t *testing.T) {
	blackjackMu.Lock()
	blackjackRounds = map[string]*BlackjackRound{}
	blackjackMu.Unlock()
	accountsMu.Lock()
	accounts = map[string]*Account{"u1": {Waifame: 1000}}
	accountsMu.Unlock()

	const wager = 10
	const attempts = 16

	results := make(chan blackjackStart, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, _, status := startBlackjackRound("u1", wager)
			results <- status
		}()
	}
	started := 0
	for i := 0; i < attempts; i++ {
		if <-results == blackjackStarted {
			started++
		}
	}

	// Every started round escrowed exactly one wager; busy rounds none.
	accountsMu.Lock()
	balance := accounts["u1"].Waifame
	accountsMu.Unlock()
	if want := 1000 - wager*started; balance != want {
		t.Fatalf("balance %d after %d starts, want %d", balance, started, want)
	}

	blackjackMu.Lock()
	openRounds := len(blackjackRounds)
	blackjackMu.Unlock()
	if openRounds > 1 {
		t.Fatalf("%d rounds open for one user, want at most 1", openRounds)
	}
}
