package main

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

// ============================================================================
// Favorites Browser
// ============================================================================

const (
	MsgFavListDesc     = "Parcourir tes favoris"
	MsgFavListEmpty    = "💔 Tu n'as aucun favori pour l'instant. Utilise ❤️ sur une image !"
	MsgFavListNotYours = "⚠️ Ce n'est pas ta liste."
	MsgFavListPage     = "❤️ **Favori %d/%d** — Post #%d"
	MsgFavListDeleted  = "🗑️ Favori supprimé."
	MsgFavListBtnPrev  = "⬅️"
	MsgFavListBtnNext  = "➡️"
	MsgFavListBtnDel   = "🗑️"
)

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "favorites",
		Description: MsgFavListDesc,
	}, handleFavorites)

	RegisterComponentHandler("favlist:", handleFavoritesComponent)
}

// renderFavoritesPage builds the pager panel for one favorite. The page index
// travels in the custom IDs so the pager itself stays stateless.
func renderFavoritesPage(uid string, favorites []FavoriteEntry, page int) discord.ContainerComponent {
	entry := favorites[page]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(MsgFavListPage, page+1, len(favorites), entry.ID))
	if entry.Character != "" {
		sb.WriteString(fmt.Sprintf("\n👤 %s", Truncate(TitleCase(entry.Character), 120)))
	}
	if entry.Rating != "" {
		sb.WriteString(fmt.Sprintf("\n🏷️ rating:%s", entry.Rating))
	}

	prev := discord.NewButton(discord.ButtonStyleSecondary, MsgFavListBtnPrev,
		fmt.Sprintf("favlist:%s:%d:prev", uid, page), "", 0).WithDisabled(page == 0)
	next := discord.NewButton(discord.ButtonStyleSecondary, MsgFavListBtnNext,
		fmt.Sprintf("favlist:%s:%d:next", uid, page), "", 0).WithDisabled(page >= len(favorites)-1)
	del := discord.NewButton(discord.ButtonStyleDanger, MsgFavListBtnDel,
		fmt.Sprintf("favlist:%s:%d:del", uid, page), "", 0)

	return discord.NewContainer(
		discord.NewTextDisplay(sb.String()),
		discord.NewMediaGallery(discord.MediaGalleryItem{
			Media: discord.UnfurledMediaItem{URL: entry.FileURL},
		}),
		discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true),
		discord.NewActionRow(prev, next, del),
	)
}

func favoritesSnapshot(uid string) []FavoriteEntry {
	accountsMu.Lock()
	defer accountsMu.Unlock()
	account := getAccountLocked(uid)
	out := make([]FavoriteEntry, len(account.Favorites))
	copy(out, account.Favorites)
	return out
}

func handleFavorites(event *events.ApplicationCommandInteractionCreate) {
	uid := event.User().ID.String()

	favorites := favoritesSnapshot(uid)
	if len(favorites) == 0 {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgFavListEmpty).
			WithEphemeral(true))
		return
	}

	_ = event.CreateMessage(discord.NewMessageCreate().
		WithIsComponentsV2(true).
		WithEphemeral(true).
		WithComponents(renderFavoritesPage(uid, favorites, 0)))
}

func handleFavoritesComponent(event *events.ComponentInteractionCreate) {
	parts := strings.Split(event.Data.CustomID(), ":")
	if len(parts) != 4 {
		return
	}
	uid, page, action := parts[1], Atoi(parts[2]), parts[3]

	if event.User().ID.String() != uid {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgFavListNotYours).
			WithEphemeral(true))
		return
	}

	switch action {
	case "prev":
		page--
	case "next":
		page++
	case "del":
		favorites := favoritesSnapshot(uid)
		if page >= 0 && page < len(favorites) {
			accountsMu.Lock()
			getAccountLocked(uid).RemoveFavorite(favorites[page].ID)
			accountsMu.Unlock()
			SaveAccounts()
		}
	}

	favorites := favoritesSnapshot(uid)
	if len(favorites) == 0 {
		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(discord.NewContainer(discord.NewTextDisplay(MsgFavListEmpty))))
		return
	}

	if page >= len(favorites) {
		page = len(favorites) - 1
	}
	if page < 0 {
		page = 0
	}

	_ = event.UpdateMessage(discord.NewMessageUpdate().
		WithIsComponentsV2(true).
		WithComponents(renderFavoritesPage(uid, favorites, page)))
}
