package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

// ============================================================================
// Stats & Leaderboard
// ============================================================================

const (
	MsgStatsDesc       = "Voir ton profil"
	MsgLeaderboardDesc = "Voir le classement waifame"
	MsgLeaderboardNone = "📊 Personne n'a encore de waifame. Lance `/next` !"
	MsgLeaderboardFoot = "\n_%d participant(s)_"

	LeaderboardSize = 10
)

var leaderboardMedals = []string{"🥇", "🥈", "🥉"}

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "stats",
		Description: MsgStatsDesc,
	}, handleStats)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "leaderboard",
		Description: MsgLeaderboardDesc,
	}, handleLeaderboard)
}

func handleStats(event *events.ApplicationCommandInteractionCreate) {
	uid := event.User().ID.String()
	today := TodayDate()

	accountsMu.Lock()
	account := getAccountLocked(uid)
	waifame := account.Waifame
	views := account.ViewCount
	favCount := len(account.Favorites)
	favsLeft := account.DailyFavsRemaining(today)
	streak := account.DailyStreak
	fishCaught := account.FishCaught
	accountsMu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **Profil de %s**\n\n", event.User().Username))
	sb.WriteString(fmt.Sprintf("💰 Waifame: **%d**\n", waifame))
	sb.WriteString(fmt.Sprintf("👁️ Images vues: **%d**\n", views))
	sb.WriteString(fmt.Sprintf("❤️ Favoris: **%d** (%d restant(s) aujourd'hui)\n", favCount, favsLeft))
	sb.WriteString(fmt.Sprintf("🔥 Série quotidienne: **%d** jour(s)\n", streak))
	sb.WriteString(fmt.Sprintf("🎣 Poissons pêchés: **%d**", fishCaught))

	_ = event.CreateMessage(discord.NewMessageCreate().WithContent(sb.String()))
}

func handleLeaderboard(event *events.ApplicationCommandInteractionCreate) {
	entries := AllBalances()
	if len(entries) == 0 {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgLeaderboardNone).
			WithEphemeral(true))
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Waifame != entries[j].Waifame {
			return entries[i].Waifame > entries[j].Waifame
		}
		return entries[i].UserID < entries[j].UserID
	})

	var sb strings.Builder
	sb.WriteString("🏆 **Classement Waifame**\n\n")
	for i, entry := range entries {
		if i >= LeaderboardSize {
			break
		}
		rank := fmt.Sprintf("**%d.**", i+1)
		if i < len(leaderboardMedals) {
			rank = leaderboardMedals[i]
		}
		sb.WriteString(fmt.Sprintf("%s <@%s> — **%d** waifame\n", rank, entry.UserID, entry.Waifame))
	}
	sb.WriteString(fmt.Sprintf(MsgLeaderboardFoot, len(entries)))

	_ = event.CreateMessage(discord.NewMessageCreate().WithContent(sb.String()))
}
