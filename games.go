package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

// ============================================================================
// Economy Games
// ============================================================================

const (
	MsgSlotsDesc       = "Tenter sa chance à la machine à sous"
	MsgSlotsWagerDesc  = "Mise en waifame"
	MsgSlotsMinWager   = "⚠️ La mise minimale est de %d waifame."
	MsgSlotsBroke      = "⚠️ Tu n'as que %d waifame, impossible de miser %d."
	MsgSlotsResultWin  = "🎰 %s\n\n🎉 **x%d !** Tu remportes **%d** waifame.\n💰 Solde: %d"
	MsgSlotsResultLose = "🎰 %s\n\n😢 Rien cette fois. Tu perds **%d** waifame.\n💰 Solde: %d"
	MsgDailyDesc       = "Récupérer sa récompense quotidienne"
	MsgDailyAlready    = "⏳ Tu as déjà réclamé ta récompense aujourd'hui. Reviens demain !"
	MsgDailyClaimed    = "🎁 **+%d waifame !**\n🔥 Série: **%d** jour(s)\n💰 Solde: %d"
	MsgFishDesc        = "Partir à la pêche"
	MsgFishCooldown    = "⏳ Les poissons se méfient encore. Réessaie dans **%s**."
	MsgFishCaught      = "🎣 Tu as pêché %s **%s** (%s) !\n💰 +%d waifame — Solde: %d"
	MsgStealDesc       = "Tenter de voler le waifame d'un autre membre"
	MsgStealTargetDesc = "La victime"
	MsgStealSelf       = "⚠️ Tu ne peux pas te voler toi-même."
	MsgStealCooldown   = "⏳ Les gardes te surveillent. Réessaie dans **%s**."
	MsgStealTooPoor    = "⚠️ <@%s> a moins de %d waifame, ça ne vaut pas le risque."
	MsgStealSuccess    = "🦹 **Réussi !** Tu as volé **%d** waifame à <@%s>.\n💰 Solde: %d"
	MsgStealCaught     = "🚔 **Attrapé !** Tu paies une amende de **%d** waifame.\n💰 Solde: %d"
	MsgGamesDesc       = "Voir la liste des mini-jeux"
	MsgGamesReady      = "prêt"
	MsgEconomySlotsLog = "Slots: %s wagered %d, multiplier x%d"
	MsgEconomyDailyLog = "Daily claimed by %s: +%d (streak %d)"
	MsgEconomyFishLog  = "Fish: %s caught %s worth %d"
	MsgEconomyStealLog = "Steal: %s -> %s success=%t amount=%d"
)

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "slots",
		Description: MsgSlotsDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionInt{
				Name:        "wager",
				Description: MsgSlotsWagerDesc,
				Required:    true,
			},
		},
	}, handleSlots)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "daily",
		Description: MsgDailyDesc,
	}, handleDaily)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "fish",
		Description: MsgFishDesc,
	}, handleFish)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "steal",
		Description: MsgStealDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "target",
				Description: MsgStealTargetDesc,
				Required:    true,
			},
		},
	}, handleSteal)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "games",
		Description: MsgGamesDesc,
	}, handleGames)
}

func handleSlots(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	wager := data.Int("wager")
	uid := event.User().ID.String()

	if wager < MinSlotsWager {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgSlotsMinWager, MinSlotsWager)).
			WithEphemeral(true))
		return
	}

	accountsMu.Lock()
	account := getAccountLocked(uid)
	if account.Waifame < wager {
		balance := account.Waifame
		accountsMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgSlotsBroke, balance, wager)).
			WithEphemeral(true))
		return
	}

	gameRngMu.Lock()
	symbols := SpinSlots(gameRng)
	gameRngMu.Unlock()

	multiplier := SlotsMultiplier(symbols)
	account.Waifame -= wager
	payout := wager * multiplier
	account.Waifame += payout
	balance := account.Waifame
	accountsMu.Unlock()
	SaveAccounts()

	LogEconomy(MsgEconomySlotsLog, event.User().Username, wager, multiplier)

	reels := strings.Join(symbols[:], " | ")
	var content string
	if multiplier > 0 {
		content = fmt.Sprintf(MsgSlotsResultWin, reels, multiplier, payout, balance)
	} else {
		content = fmt.Sprintf(MsgSlotsResultLose, reels, wager, balance)
	}
	_ = event.CreateMessage(discord.NewMessageCreate().WithContent(content))
}

func handleDaily(event *events.ApplicationCommandInteractionCreate) {
	uid := event.User().ID.String()
	today := TodayDate()

	accountsMu.Lock()
	account := getAccountLocked(uid)
	if account.LastDaily == today {
		accountsMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgDailyAlready).
			WithEphemeral(true))
		return
	}

	streak := NextStreak(account.LastDaily, YesterdayDate(), account.DailyStreak)

	gameRngMu.Lock()
	reward := DailyReward(gameRng, streak)
	gameRngMu.Unlock()

	account.LastDaily = today
	account.DailyStreak = streak
	account.Waifame += reward
	balance := account.Waifame
	accountsMu.Unlock()
	SaveAccounts()

	LogEconomy(MsgEconomyDailyLog, event.User().Username, reward, streak)
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(fmt.Sprintf(MsgDailyClaimed, reward, streak, balance)))
}

func handleFish(event *events.ApplicationCommandInteractionCreate) {
	uid := event.User().ID.String()
	now := time.Now()

	accountsMu.Lock()
	account := getAccountLocked(uid)
	elapsed := now.Sub(time.Unix(account.LastFish, 0))
	if account.LastFish > 0 && elapsed < FishCooldown {
		accountsMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgFishCooldown, FormatDuration(FishCooldown-elapsed))).
			WithEphemeral(true))
		return
	}

	gameRngMu.Lock()
	species, value := CatchFish(gameRng)
	gameRngMu.Unlock()

	account.LastFish = now.Unix()
	account.FishCaught++
	account.Waifame += value
	balance := account.Waifame
	accountsMu.Unlock()
	SaveAccounts()

	LogEconomy(MsgEconomyFishLog, event.User().Username, species.Name, value)
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(fmt.Sprintf(MsgFishCaught, species.Emoji, species.Name, species.Rarity, value, balance)))
}

func handleSteal(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	targetID := data.Snowflake("target").String()
	uid := event.User().ID.String()
	now := time.Now()

	if targetID == uid {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgStealSelf).
			WithEphemeral(true))
		return
	}

	accountsMu.Lock()
	thief := getAccountLocked(uid)
	elapsed := now.Sub(time.Unix(thief.LastSteal, 0))
	if thief.LastSteal > 0 && elapsed < StealCooldown {
		accountsMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgStealCooldown, FormatDuration(StealCooldown-elapsed))).
			WithEphemeral(true))
		return
	}

	victim := getAccountLocked(targetID)
	if victim.Waifame < StealMinVictim {
		accountsMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgStealTooPoor, targetID, StealMinVictim)).
			WithEphemeral(true))
		return
	}

	gameRngMu.Lock()
	success, fraction := RollSteal(gameRng)
	gameRngMu.Unlock()

	thief.LastSteal = now.Unix()

	var content string
	var amount int
	if success {
		amount = StealAmount(victim.Waifame, fraction)
		victim.Waifame -= amount
		thief.Waifame += amount
		content = fmt.Sprintf(MsgStealSuccess, amount, targetID, thief.Waifame)
	} else {
		amount = StealFine(thief.Waifame)
		thief.Waifame -= amount
		content = fmt.Sprintf(MsgStealCaught, amount, thief.Waifame)
	}
	accountsMu.Unlock()
	SaveAccounts()

	LogEconomy(MsgEconomyStealLog, uid, targetID, success, amount)
	_ = event.CreateMessage(discord.NewMessageCreate().WithContent(content))
}

func handleGames(event *events.ApplicationCommandInteractionCreate) {
	uid := event.User().ID.String()
	now := time.Now()

	accountsMu.Lock()
	account := getAccountLocked(uid)
	fishElapsed := now.Sub(time.Unix(account.LastFish, 0))
	stealElapsed := now.Sub(time.Unix(account.LastSteal, 0))
	lastDaily := account.LastDaily
	lastFish := account.LastFish
	lastSteal := account.LastSteal
	accountsMu.Unlock()

	dailyStatus := MsgGamesReady
	if lastDaily == TodayDate() {
		dailyStatus = "demain"
	}
	fishStatus := MsgGamesReady
	if lastFish > 0 && fishElapsed < FishCooldown {
		fishStatus = FormatDuration(FishCooldown - fishElapsed)
	}
	stealStatus := MsgGamesReady
	if lastSteal > 0 && stealElapsed < StealCooldown {
		stealStatus = FormatDuration(StealCooldown - stealElapsed)
	}

	var sb strings.Builder
	sb.WriteString("🎮 **Mini-jeux**\n\n")
	sb.WriteString(fmt.Sprintf("🎰 `/slots <mise>` — machine à sous (mise min. %d)\n", MinSlotsWager))
	sb.WriteString(fmt.Sprintf("🃏 `/blackjack <mise>` — blackjack contre le croupier (mise min. %d)\n", MinBlackjackWager))
	sb.WriteString(fmt.Sprintf("🎁 `/daily` — récompense quotidienne (%s)\n", dailyStatus))
	sb.WriteString(fmt.Sprintf("🎣 `/fish` — pêche (%s)\n", fishStatus))
	sb.WriteString(fmt.Sprintf("🦹 `/steal <cible>` — vol (%s)\n", stealStatus))
	sb.WriteString("❓ `/quiz` — devine le personnage")

	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(sb.String()).
		WithEphemeral(true))
}
