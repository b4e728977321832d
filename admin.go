package main

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
)

// ============================================================================
// Admin Commands
// ============================================================================

const (
	MsgAdminDesc         = "Outils d'administration du bot (Admin Only)"
	MsgAdminGiveDesc     = "Créditer ou débiter du waifame"
	MsgAdminResetDesc    = "Réinitialiser le compte d'un membre"
	MsgAdminLogsDesc     = "Inspecter le compte d'un membre"
	MsgAdminUserDesc     = "Le membre visé"
	MsgAdminAmountDesc   = "Montant (négatif pour retirer)"
	MsgAdminDenied       = "⛔ Réservé aux administrateurs."
	MsgAdminGiveDone     = "💸 <@%s>: **%+d** waifame (nouveau solde: %d)"
	MsgAdminResetDone    = "🧹 Compte de <@%s> réinitialisé."
	MsgAdminResetNothing = "⚠️ <@%s> n'a pas de compte."
	MsgAdminGiveLog      = "Admin %s gave %+d waifame to %s"
	MsgAdminResetLog     = "Admin %s reset account %s"
)

func init() {
	adminPerm := discord.PermissionAdministrator

	RegisterCommand(discord.SlashCommandCreate{
		Name:                     "admin",
		Description:              MsgAdminDesc,
		DefaultMemberPermissions: omit.New(&adminPerm),
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "give",
				Description: MsgAdminGiveDesc,
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: MsgAdminUserDesc,
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "amount",
						Description: MsgAdminAmountDesc,
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "reset",
				Description: MsgAdminResetDesc,
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: MsgAdminUserDesc,
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "logs",
				Description: MsgAdminLogsDesc,
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: MsgAdminUserDesc,
						Required:    true,
					},
				},
			},
		},
	}, handleAdmin)
}

func handleAdmin(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	// Guild permission gating already applies; owners listed in the config
	// pass everywhere, including DMs.
	uid := event.User().ID.String()
	if GlobalConfig != nil && len(GlobalConfig.OwnerIDs) > 0 && !GlobalConfig.IsOwner(uid) && event.GuildID() == nil {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgAdminDenied).
			WithEphemeral(true))
		return
	}

	switch *data.SubCommandName {
	case "give":
		handleAdminGive(event, data)
	case "reset":
		handleAdminReset(event, data)
	case "logs":
		handleAdminLogs(event, data)
	}
}

func handleAdminGive(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	targetID := data.Snowflake("user").String()
	amount := data.Int("amount")

	accountsMu.Lock()
	account := getAccountLocked(targetID)
	account.Waifame += amount
	if account.Waifame < 0 {
		account.Waifame = 0
	}
	balance := account.Waifame
	accountsMu.Unlock()
	SaveAccounts()

	LogBot(MsgAdminGiveLog, event.User().Username, amount, targetID)
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(fmt.Sprintf(MsgAdminGiveDone, targetID, amount, balance)).
		WithEphemeral(true))
}

func handleAdminReset(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	targetID := data.Snowflake("user").String()

	if !ResetAccount(targetID) {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgAdminResetNothing, targetID)).
			WithEphemeral(true))
		return
	}
	SaveAccounts()

	LogBot(MsgAdminResetLog, event.User().Username, targetID)
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(fmt.Sprintf(MsgAdminResetDone, targetID)).
		WithEphemeral(true))
}

func handleAdminLogs(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	targetID := data.Snowflake("user").String()
	today := TodayDate()

	accountsMu.Lock()
	account := getAccountLocked(targetID)
	waifame := account.Waifame
	views := account.ViewCount
	favsLeft := account.DailyFavsRemaining(today)
	lastFav := account.LastFavDate
	lastDaily := account.LastDaily
	streak := account.DailyStreak
	fishCaught := account.FishCaught
	favorites := make([]FavoriteEntry, len(account.Favorites))
	copy(favorites, account.Favorites)
	accountsMu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 **Logs — <@%s>** (`%s`)\n\n", targetID, targetID))
	sb.WriteString(fmt.Sprintf("💰 Waifame: **%d**\n", waifame))
	sb.WriteString(fmt.Sprintf("👁️ Images vues: **%d**\n", views))
	sb.WriteString(fmt.Sprintf("❤️ Favoris: **%d** (%d/%d aujourd'hui)\n", len(favorites), DailyFavoriteLimit-favsLeft, DailyFavoriteLimit))
	if lastFav != "" {
		sb.WriteString(fmt.Sprintf("📅 Dernier favori: %s\n", lastFav))
	}
	if lastDaily != "" {
		sb.WriteString(fmt.Sprintf("🎁 Dernier daily: %s (série %d)\n", lastDaily, streak))
	}
	sb.WriteString(fmt.Sprintf("🎣 Poissons pêchés: **%d**\n", fishCaught))

	if len(favorites) > 0 {
		ids := make([]string, 0, 10)
		for i, fav := range favorites {
			if i >= 10 {
				break
			}
			ids = append(ids, fmt.Sprintf("%d", fav.ID))
		}
		line := strings.Join(ids, ", ")
		if len(favorites) > 10 {
			line += fmt.Sprintf(" ... (+%d autres)", len(favorites)-10)
		}
		sb.WriteString(fmt.Sprintf("📋 IDs des favoris: %s", line))
	}

	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(sb.String()).
		WithEphemeral(true))
}
