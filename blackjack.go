package main

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

// ============================================================================
// Blackjack Constants
// ============================================================================

const (
	MsgBlackjackDesc          = "Jouer au blackjack contre le croupier"
	MsgBlackjackWagerDesc     = "Mise en waifame"
	MsgBlackjackMinWager      = "⚠️ La mise minimale est de %d waifame."
	MsgBlackjackBroke         = "⚠️ Tu n'as que %d waifame, impossible de miser %d."
	MsgBlackjackAlready       = "⚠️ Tu as déjà une partie en cours. Termine-la d'abord !"
	MsgBlackjackNotYours      = "⚠️ Ce n'est pas ta partie."
	MsgBlackjackExpired       = "⚠️ Cette partie n'existe plus."
	MsgBlackjackTitle         = "🃏 **Blackjack** — mise: %d"
	MsgBlackjackYourHand      = "**Ta main** (%d): %s"
	MsgBlackjackDealerShown   = "**Croupier** (?): %s 🂠"
	MsgBlackjackDealerHand    = "**Croupier** (%d): %s"
	MsgBlackjackNatural       = "✨ **Blackjack naturel !** Tu gagnes %d waifame."
	MsgBlackjackBust          = "💥 **Dépassé !** Tu perds ta mise de %d."
	MsgBlackjackWin           = "🎉 **Gagné !** Tu remportes %d waifame."
	MsgBlackjackPush          = "🤝 **Égalité.** Ta mise de %d t'est rendue."
	MsgBlackjackLose          = "😢 **Perdu.** Le croupier garde ta mise de %d."
	MsgBlackjackBtnHit        = "Tirer"
	MsgBlackjackBtnStand      = "Rester"
	MsgBlackjackRoundStarted  = "Blackjack round started by %s (wager %d)"
	MsgBlackjackRoundResolved = "Blackjack round for %s resolved: %s (net %+d)"
)

const (
	MinBlackjackWager    = 10
	BlackjackDealerStand = 17
	BlackjackNaturalRate = 2.5
)

// ============================================================================
// Deck Engine
// ============================================================================

type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

var (
	cardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	cardSuits = []string{"♠", "♥", "♦", "♣"}
)

// NewDeck returns a freshly shuffled 52-card deck.
func NewDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// HandValue totals a hand with aces at 11, softened to 1 one at a time while
// the hand busts.
func HandValue(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		switch c.Rank {
		case "A":
			total += 11
			aces++
		case "J", "Q", "K", "10":
			total += 10
		default:
			total += Atoi(c.Rank)
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

// NaturalPayout is the total returned on a natural: 2.5x the wager.
func NaturalPayout(wager int) int {
	return int(float64(wager) * BlackjackNaturalRate)
}

// DealerPlay draws for the dealer until the hand reaches 17 or more, and
// returns the completed hand with the remaining deck.
func DealerPlay(deck []Card, dealer []Card) ([]Card, []Card) {
	for HandValue(dealer) < BlackjackDealerStand && len(deck) > 0 {
		dealer = append(dealer, deck[0])
		deck = deck[1:]
	}
	return deck, dealer
}

// ============================================================================
// Live Rounds
// ============================================================================

type BlackjackRound struct {
	UserID string
	Wager  int
	Deck   []Card
	Player []Card
	Dealer []Card
}

func (r *BlackjackRound) draw() Card {
	card := r.Deck[0]
	r.Deck = r.Deck[1:]
	return card
}

var (
	blackjackRounds = map[string]*BlackjackRound{}
	blackjackMu     sync.Mutex
)

func formatHand(hand []Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = "`" + c.String() + "`"
	}
	return strings.Join(parts, " ")
}

func blackjackTable(round *BlackjackRound, resultLine string, revealDealer bool) discord.ContainerComponent {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(MsgBlackjackTitle, round.Wager))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf(MsgBlackjackYourHand, HandValue(round.Player), formatHand(round.Player)))
	sb.WriteString("\n")
	if revealDealer {
		sb.WriteString(fmt.Sprintf(MsgBlackjackDealerHand, HandValue(round.Dealer), formatHand(round.Dealer)))
	} else {
		sb.WriteString(fmt.Sprintf(MsgBlackjackDealerShown, formatHand(round.Dealer[:1])))
	}

	done := resultLine != ""
	if done {
		sb.WriteString("\n\n")
		sb.WriteString(resultLine)
	}

	hit := discord.NewButton(discord.ButtonStyleSuccess, MsgBlackjackBtnHit, "bj:"+round.UserID+":hit", "", 0).WithDisabled(done)
	stand := discord.NewButton(discord.ButtonStyleDanger, MsgBlackjackBtnStand, "bj:"+round.UserID+":stand", "", 0).WithDisabled(done)

	return discord.NewContainer(
		discord.NewTextDisplay(sb.String()),
		discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true),
		discord.NewActionRow(hit, stand),
	)
}

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "blackjack",
		Description: MsgBlackjackDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionInt{
				Name:        "wager",
				Description: MsgBlackjackWagerDesc,
				Required:    true,
			},
		},
	}, handleBlackjack)

	RegisterComponentHandler("bj:", handleBlackjackComponent)
}

type blackjackStart int

const (
	blackjackStarted blackjackStart = iota
	blackjackBusy
	blackjackBroke
)

// startBlackjackRound claims the per-user round slot, escrows the wager and
// deals the opening hands, all under blackjackMu so two commands can never
// both pass the busy check. A natural never enters the map: the caller pays
// it out immediately and the slot stays free.
func startBlackjackRound(uid string, wager int) (*BlackjackRound, int, blackjackStart) {
	blackjackMu.Lock()
	defer blackjackMu.Unlock()

	if _, active := blackjackRounds[uid]; active {
		return nil, 0, blackjackBusy
	}

	accountsMu.Lock()
	account := getAccountLocked(uid)
	if account.Waifame < wager {
		balance := account.Waifame
		accountsMu.Unlock()
		return nil, balance, blackjackBroke
	}
	account.Waifame -= wager
	accountsMu.Unlock()

	gameRngMu.Lock()
	deck := NewDeck(gameRng)
	gameRngMu.Unlock()

	round := &BlackjackRound{UserID: uid, Wager: wager, Deck: deck}
	round.Player = append(round.Player, round.draw(), round.draw())
	round.Dealer = append(round.Dealer, round.draw(), round.draw())

	if !IsNatural(round.Player) {
		blackjackRounds[uid] = round
	}
	return round, 0, blackjackStarted
}

func handleBlackjack(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	wager := data.Int("wager")
	uid := event.User().ID.String()

	if wager < MinBlackjackWager {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgBlackjackMinWager, MinBlackjackWager)).
			WithEphemeral(true))
		return
	}

	round, balance, status := startBlackjackRound(uid, wager)
	switch status {
	case blackjackBusy:
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBlackjackAlready).
			WithEphemeral(true))
		return
	case blackjackBroke:
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgBlackjackBroke, balance, wager)).
			WithEphemeral(true))
		return
	}

	LogEconomy(MsgBlackjackRoundStarted, event.User().Username, wager)

	if IsNatural(round.Player) {
		payout := NaturalPayout(wager)
		creditWaifame(uid, payout)
		LogEconomy(MsgBlackjackRoundResolved, uid, "natural", payout-wager)
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithIsComponentsV2(true).
			WithComponents(blackjackTable(round, fmt.Sprintf(MsgBlackjackNatural, payout), true)))
		return
	}

	SaveAccounts()
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithIsComponentsV2(true).
		WithComponents(blackjackTable(round, "", false)))
}

func handleBlackjackComponent(event *events.ComponentInteractionCreate) {
	parts := strings.Split(event.Data.CustomID(), ":")
	if len(parts) != 3 {
		return
	}
	uid, action := parts[1], parts[2]

	if event.User().ID.String() != uid {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBlackjackNotYours).
			WithEphemeral(true))
		return
	}

	blackjackMu.Lock()
	round, ok := blackjackRounds[uid]
	if !ok {
		blackjackMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBlackjackExpired).
			WithEphemeral(true))
		return
	}

	switch action {
	case "hit":
		round.Player = append(round.Player, round.draw())
		if HandValue(round.Player) > 21 {
			delete(blackjackRounds, uid)
			blackjackMu.Unlock()
			LogEconomy(MsgBlackjackRoundResolved, uid, "bust", -round.Wager)
			SaveAccounts()
			_ = event.UpdateMessage(discord.NewMessageUpdate().
				WithIsComponentsV2(true).
				WithComponents(blackjackTable(round, fmt.Sprintf(MsgBlackjackBust, round.Wager), true)))
			return
		}
		blackjackMu.Unlock()
		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(blackjackTable(round, "", false)))

	case "stand":
		round.Deck, round.Dealer = DealerPlay(round.Deck, round.Dealer)
		delete(blackjackRounds, uid)
		blackjackMu.Unlock()

		playerValue := HandValue(round.Player)
		dealerValue := HandValue(round.Dealer)

		var resultLine string
		switch {
		case dealerValue > 21 || playerValue > dealerValue:
			payout := round.Wager * 2
			creditWaifame(uid, payout)
			resultLine = fmt.Sprintf(MsgBlackjackWin, payout)
			LogEconomy(MsgBlackjackRoundResolved, uid, "win", round.Wager)
		case playerValue == dealerValue:
			creditWaifame(uid, round.Wager)
			resultLine = fmt.Sprintf(MsgBlackjackPush, round.Wager)
			LogEconomy(MsgBlackjackRoundResolved, uid, "push", 0)
		default:
			resultLine = fmt.Sprintf(MsgBlackjackLose, round.Wager)
			LogEconomy(MsgBlackjackRoundResolved, uid, "lose", -round.Wager)
			SaveAccounts()
		}

		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(blackjackTable(round, resultLine, true)))

	default:
		blackjackMu.Unlock()
	}
}

// creditWaifame adds to a user's balance and persists.
func creditWaifame(uid string, amount int) {
	accountsMu.Lock()
	getAccountLocked(uid).Waifame += amount
	accountsMu.Unlock()
	SaveAccounts()
}
