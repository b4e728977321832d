package main

import (
	"math/rand"
	"sync"
	"time"
)

// Process-wide RNG for live games. math/rand.Rand is not safe for concurrent
// use, so callers hold gameRngMu across every draw of one game action.
var (
	gameRng   = rand.New(rand.NewSource(time.Now().UnixNano()))
	gameRngMu sync.Mutex
)

// ============================================================================
// Waifame Rewards
// ============================================================================

// FameBonus maps an artist's total post count to a flat waifame bonus.
func FameBonus(postCount int) int {
	switch {
	case postCount >= 10000:
		return 10
	case postCount >= 5000:
		return 7
	case postCount >= 2000:
		return 5
	case postCount >= 1000:
		return 3
	case postCount >= 500:
		return 2
	case postCount >= 100:
		return 1
	default:
		return 0
	}
}

// CalculateWaifame computes the reward earned from a post: a base point plus
// scaled popularity bonuses and the artist fame bonus.
func CalculateWaifame(score, favCount, artistBonus int) int {
	return 1 + Max(0, score)/50 + favCount/100 + artistBonus
}

// ============================================================================
// Slots
// ============================================================================

const MinSlotsWager = 10

type slotSymbol struct {
	Emoji  string
	Weight int
}

var slotReel = []slotSymbol{
	{"🍒", 30},
	{"🍋", 25},
	{"🍊", 20},
	{"💎", 15},
	{"7️⃣", 10},
}

func spinSymbol(rng *rand.Rand) string {
	total := 0
	for _, s := range slotReel {
		total += s.Weight
	}
	roll := rng.Intn(total)
	for _, s := range slotReel {
		roll -= s.Weight
		if roll < 0 {
			return s.Emoji
		}
	}
	return slotReel[0].Emoji
}

// SpinSlots draws three independent symbols from the weighted reel.
func SpinSlots(rng *rand.Rand) [3]string {
	return [3]string{spinSymbol(rng), spinSymbol(rng), spinSymbol(rng)}
}

// SlotsMultiplier returns the payout multiplier for a draw. Three sevens pay
// 20x, three diamonds 15x, any other triple 10x, any pair 2x, nothing 0.
func SlotsMultiplier(symbols [3]string) int {
	if symbols[0] == symbols[1] && symbols[1] == symbols[2] {
		switch symbols[0] {
		case "7️⃣":
			return 20
		case "💎":
			return 15
		default:
			return 10
		}
	}
	if symbols[0] == symbols[1] || symbols[1] == symbols[2] || symbols[0] == symbols[2] {
		return 2
	}
	return 0
}

// ============================================================================
// Daily Claim
// ============================================================================

const (
	DailyRewardMin    = 50
	DailyRewardMax    = 150
	DailyStreakStep   = 10
	DailyStreakCapped = 100
)

// NextStreak computes the streak after a claim: a claim the day after the
// previous one extends the streak, anything else resets it to 1.
func NextStreak(lastDaily, yesterday string, currentStreak int) int {
	if lastDaily == yesterday {
		return currentStreak + 1
	}
	return 1
}

// DailyReward rolls the base reward and adds the capped streak bonus.
func DailyReward(rng *rand.Rand, streak int) int {
	base := RandomIntRange(rng, DailyRewardMin, DailyRewardMax)
	return base + Min(streak*DailyStreakStep, DailyStreakCapped)
}

// ============================================================================
// Fishing
// ============================================================================

const FishCooldown = 30 * time.Minute

type FishSpecies struct {
	Emoji  string
	Name   string
	Rarity string
	Min    int
	Max    int
	Weight int
}

var fishTable = []FishSpecies{
	{"🐟", "Poisson", "Commun", 5, 15, 40},
	{"🐠", "Poisson Tropical", "Commun", 8, 18, 35},
	{"🐡", "Fugu", "Rare", 20, 40, 15},
	{"🦐", "Crevette Royale", "Rare", 25, 45, 12},
	{"🦑", "Calamar Géant", "Épique", 50, 80, 5},
	{"🐙", "Poulpe", "Épique", 55, 85, 4},
	{"🦈", "Requin", "Légendaire", 100, 150, 2},
	{"🐋", "Baleine", "Légendaire", 150, 250, 1},
	{"👟", "Vieille Chaussure", "Déchet", 1, 3, 10},
}

// CatchFish draws a weighted species and rolls its value.
func CatchFish(rng *rand.Rand) (FishSpecies, int) {
	total := 0
	for _, f := range fishTable {
		total += f.Weight
	}
	roll := rng.Intn(total)
	for _, f := range fishTable {
		roll -= f.Weight
		if roll < 0 {
			return f, RandomIntRange(rng, f.Min, f.Max)
		}
	}
	last := fishTable[len(fishTable)-1]
	return last, RandomIntRange(rng, last.Min, last.Max)
}

// ============================================================================
// Theft
// ============================================================================

const (
	StealCooldown      = time.Hour
	StealMinVictim     = 50
	StealSuccessChance = 0.40
	StealFractionMin   = 0.10
	StealFractionMax   = 0.30
	StealFineFraction  = 0.20
	StealMinAmount     = 10
)

// StealAmount computes the loot for a successful theft at a given fraction of
// the victim's balance, never below the minimum take nor above the balance.
func StealAmount(victimBalance int, fraction float64) int {
	amount := Max(StealMinAmount, int(float64(victimBalance)*fraction))
	return Min(amount, victimBalance)
}

// StealFine computes the penalty for a failed theft, floored so the thief's
// balance never goes negative.
func StealFine(thiefBalance int) int {
	fine := Max(StealMinAmount, int(float64(thiefBalance)*StealFineFraction))
	return Min(fine, thiefBalance)
}

// RollSteal decides the attempt outcome and loot fraction.
func RollSteal(rng *rand.Rand) (success bool, fraction float64) {
	success = rng.Float64() < StealSuccessChance
	fraction = StealFractionMin + rng.Float64()*(StealFractionMax-StealFractionMin)
	return success, fraction
}
