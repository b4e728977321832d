package main

import (
	"math/rand"
	"testing"
)

func TestFameBonusThresholds(t *testing.T) {
	cases := []struct {
		posts int
		want  int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{499, 1},
		{500, 2},
		{1000, 3},
		{2000, 5},
		{5000, 7},
		{9999, 7},
		{10000, 10},
		{50000, 10},
	}
	for _, c := range cases {
		if got := FameBonus(c.posts); got != c.want {
			t.Fatalf("FameBonus(%d) = %d, want %d", c.posts, got, c.want)
		}
	}
}

func TestCalculateWaifame(t *testing.T) {
	if got := CalculateWaifame(0, 0, 0); got != 1 {
		t.Fatalf("base reward = %d, want 1", got)
	}
	if got := CalculateWaifame(100, 250, 3); got != 1+2+2+3 {
		t.Fatalf("reward = %d, want 8", got)
	}
	// Negative scores never subtract from the base point.
	if got := CalculateWaifame(-500, 0, 0); got != 1 {
		t.Fatalf("negative score reward = %d, want 1", got)
	}
}

func TestSlotsMultiplier(t *testing.T) {
	cases := []struct {
		symbols [3]string
		want    int
	}{
		{[3]string{"7️⃣", "7️⃣", "7️⃣"}, 20},
		{[3]string{"💎", "💎", "💎"}, 15},
		{[3]string{"🍒", "🍒", "🍒"}, 10},
		{[3]string{"🍋", "🍋", "🍋"}, 10},
		{[3]string{"🍒", "🍒", "🍋"}, 2},
		{[3]string{"🍒", "🍋", "🍒"}, 2},
		{[3]string{"🍋", "🍒", "🍒"}, 2},
		{[3]string{"🍒", "🍋", "🍊"}, 0},
	}
	for _, c := range cases {
		if got := SlotsMultiplier(c.symbols); got != c.want {
			t.Fatalf("SlotsMultiplier(%v) = %d, want %d", c.symbols, got, c.want)
		}
	}
}

func TestSpinSlotsDrawsFromReel(t *testing.T) {
	valid := map[string]bool{}
	for _, s := range slotReel {
		valid[s.Emoji] = true
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		symbols := SpinSlots(rng)
		for _, sym := range symbols {
			if !valid[sym] {
				t.Fatalf("spin produced unknown symbol %q", sym)
			}
		}
	}
}

func TestNextStreak(t *testing.T) {
	yesterday := "2026-08-28"

	if got := NextStreak(yesterday, yesterday, 4); got != 5 {
		t.Fatalf("consecutive claim streak = %d, want 5", got)
	}
	if got := NextStreak("2026-08-20", yesterday, 9); got != 1 {
		t.Fatalf("gap claim streak = %d, want 1", got)
	}
	if got := NextStreak("", yesterday, 0); got != 1 {
		t.Fatalf("first claim streak = %d, want 1", got)
	}
}

func TestDailyRewardBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		reward := DailyReward(rng, 3)
		min := DailyRewardMin + 3*DailyStreakStep
		max := DailyRewardMax + 3*DailyStreakStep
		if reward < min || reward > max {
			t.Fatalf("reward %d outside [%d, %d] for streak 3", reward, min, max)
		}
	}
	// The streak bonus caps out.
	for i := 0; i < 500; i++ {
		reward := DailyReward(rng, 50)
		min := DailyRewardMin + DailyStreakCapped
		max := DailyRewardMax + DailyStreakCapped
		if reward < min || reward > max {
			t.Fatalf("capped reward %d outside [%d, %d]", reward, min, max)
		}
	}
}

func TestCatchFishValuesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 300; i++ {
		species, value := CatchFish(rng)
		if value < species.Min || value > species.Max {
			t.Fatalf("%s value %d outside [%d, %d]", species.Name, value, species.Min, species.Max)
		}
	}
}

func TestStealAmount(t *testing.T) {
	if got := StealAmount(100, 0.20); got != 20 {
		t.Fatalf("StealAmount(100, 0.20) = %d, want 20", got)
	}
	// Small balances still lose the minimum take.
	if got := StealAmount(60, 0.10); got != StealMinAmount {
		t.Fatalf("StealAmount(60, 0.10) = %d, want %d", got, StealMinAmount)
	}
	// But never more than the victim holds.
	if got := StealAmount(5, 0.10); got != 5 {
		t.Fatalf("StealAmount(5, 0.10) = %d, want 5", got)
	}
}

func TestStealTransferConserves(t *testing.T) {
	thief, victim := 0, 100
	amount := StealAmount(victim, 0.20)
	victim -= amount
	thief += amount
	if thief != 20 || victim != 80 {
		t.Fatalf("after transfer thief=%d victim=%d, want 20/80", thief, victim)
	}
}

func TestStealFineFloor(t *testing.T) {
	if got := StealFine(200); got != 40 {
		t.Fatalf("StealFine(200) = %d, want 40", got)
	}
	if got := StealFine(20); got != StealMinAmount {
		t.Fatalf("StealFine(20) = %d, want %d", got, StealMinAmount)
	}
	// A broke thief cannot go negative.
	if got := StealFine(4); got != 4 {
		t.Fatalf("StealFine(4) = %d, want 4", got)
	}
	if got := StealFine(0); got != 0 {
		t.Fatalf("StealFine(0) = %d, want 0", got)
	}
}

func TestRollStealFractionRange(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		_, fraction := RollSteal(rng)
		if fraction < StealFractionMin || fraction > StealFractionMax {
			t.Fatalf("fraction %f outside [%f, %f]", fraction, StealFractionMin, StealFractionMax)
		}
	}
}
