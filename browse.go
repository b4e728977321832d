package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// ============================================================================
// Image Browsing
// ============================================================================

const (
	MsgBrowseNextDesc       = "Afficher une image aléatoire"
	MsgBrowseTagsDesc       = "Tags de recherche (autocomplétés)"
	MsgBrowseSearchDesc     = "Rechercher des images par tags"
	MsgBrowseQueryDesc      = "Requête de tags"
	MsgBrowseGuildOnly      = "⚠️ Cette commande ne fonctionne que sur un serveur."
	MsgBrowseFetchFail      = "😢 Impossible de récupérer une image: %v"
	MsgBrowseNoEarlier      = "⚠️ Pas d'image précédente dans l'historique."
	MsgBrowseSessionGone    = "⚠️ Cette session de navigation n'est plus active. Relance `/next` !"
	MsgBrowseNotYours       = "⚠️ Cette session appartient à quelqu'un d'autre. Lance ta propre recherche !"
	MsgBrowseFavLimit       = "⚠️ Limite quotidienne atteinte (%d favoris par jour). Reviens demain !"
	MsgBrowseFavAdded       = "❤️ Ajouté aux favoris ! (%d restant(s) aujourd'hui)"
	MsgBrowseFavAddedReward = "❤️ Ajouté aux favoris ! **+%d waifame** (%d restant(s) aujourd'hui)"
	MsgBrowseFavRemoved     = "💔 Retiré des favoris."
	MsgBrowseTagPickerTitle = "Choisis un tag pour relancer la recherche"
	MsgBrowseNoTags         = "⚠️ Aucun tag exploitable sur cette image."
	MsgBrowseTagsUpdated    = "🔍 Recherche mise à jour: `%s`"
	MsgBrowseHelp           = "**Navigation**\n🟢 Boutons de filtre: Safe / Douteux / Explicite\n⬅️ Image précédente — ➡️ image suivante\n❤️ Ajouter/retirer des favoris (%d par jour)\n🔍 Relancer la recherche depuis un tag de l'image\n📥 Lien vers le fichier d'origine"
	MsgBrowseShown          = "Displayed post %d in guild %s (tags=%q rating=%s)"
	MsgBrowseViewReward     = "View reward: +%d waifame to %s"
	MsgBrowseFilterSafe     = "Safe"
	MsgBrowseFilterDubious  = "Douteux"
	MsgBrowseFilterExplicit = "Explicite"
	MsgBrowseBtnBack        = "⬅️ Précédent"
	MsgBrowseBtnNext        = "➡️ Suivant"
	MsgBrowseBtnFav         = "❤️"
	MsgBrowseBtnUnfav       = "💔"
	MsgBrowseBtnSearch      = "🔍"
	MsgBrowseBtnHelp        = "❓"
	MsgBrowseBtnDownload    = "📥 Fichier"
)

const (
	RatingSafe         = "safe"
	RatingQuestionable = "questionable"
	RatingExplicit     = "explicit"
)

// BrowseSession is one live image browser message. It is bound to the user
// who opened it; component presses from anyone else are refused without
// touching any state.
type BrowseSession struct {
	OwnerID   string
	GuildID   string
	Tags      string
	Rating    string
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// Oldest sessions are dropped past this; their buttons then answer with
// MsgBrowseSessionGone.
const BrowseSessionLimit = 100

var (
	browseSessions    = map[snowflake.ID]*BrowseSession{}
	browseOrder       []snowflake.ID
	guildImageRatings = map[string]string{}
	browseMu          sync.Mutex
)

// authorized reports whether uid may drive this session. An empty owner
// means unrestricted.
func (s *BrowseSession) authorized(uid string) bool {
	return s.OwnerID == "" || s.OwnerID == uid
}

func (s *BrowseSession) query() string {
	q := "rating:" + s.Rating
	if s.Tags != "" {
		q += " " + s.Tags
	}
	return q
}

// registerBrowseSession indexes a session under its message, evicting the
// oldest entry once the table is full.
func registerBrowseSession(s *BrowseSession) {
	browseMu.Lock()
	defer browseMu.Unlock()
	if _, ok := browseSessions[s.MessageID]; !ok {
		browseOrder = append(browseOrder, s.MessageID)
		if len(browseOrder) > BrowseSessionLimit {
			delete(browseSessions, browseOrder[0])
			browseOrder = browseOrder[1:]
		}
	}
	browseSessions[s.MessageID] = s
}

func browseSessionByMessage(messageID snowflake.ID) (*BrowseSession, bool) {
	browseMu.Lock()
	defer browseMu.Unlock()
	s, ok := browseSessions[messageID]
	return s, ok
}

// imageRatingFor returns the rating filter the guild last browsed with, so a
// fresh session picks up where the previous one left off.
func imageRatingFor(gid string) string {
	browseMu.Lock()
	defer browseMu.Unlock()
	if r, ok := guildImageRatings[gid]; ok {
		return r
	}
	return RatingSafe
}

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "next",
		Description: MsgBrowseNextDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:         "tags",
				Description:  MsgBrowseTagsDesc,
				Required:     false,
				Autocomplete: true,
			},
		},
	}, handleNext)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "search",
		Description: MsgBrowseSearchDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:         "query",
				Description:  MsgBrowseQueryDesc,
				Required:     true,
				Autocomplete: true,
			},
		},
	}, handleSearch)

	RegisterAutocompleteHandler("next", handleTagAutocomplete)
	RegisterAutocompleteHandler("search", handleTagAutocomplete)
	RegisterComponentHandler("browse:", handleBrowseComponent)
	RegisterComponentHandler("tagpick:", handleTagPick)
}

// favButton renders the heart for the owner's current relationship to the
// shown post: gray ❤️ to add, green 💔 to remove.
func favButton(customID string, isFav bool) discord.ButtonComponent {
	if isFav {
		return discord.NewButton(discord.ButtonStyleSuccess, MsgBrowseBtnUnfav, customID, "", 0)
	}
	return discord.NewButton(discord.ButtonStyleSecondary, MsgBrowseBtnFav, customID, "", 0)
}

// renderBrowse builds the full image browser panel for a post.
func renderBrowse(post *BooruPost, session *BrowseSession) discord.ContainerComponent {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🖼️ **Post #%d** — ⭐ %d | ❤️ %d\n", post.ID, post.Score, post.FavCount))
	if post.CharacterTag != "" {
		sb.WriteString(fmt.Sprintf("👤 %s\n", Truncate(TitleCase(post.CharacterTag), 120)))
	}
	if post.ArtistTags != "" {
		sb.WriteString(fmt.Sprintf("🎨 %s\n", Truncate(post.ArtistTags, 120)))
	}
	if session.Tags != "" {
		sb.WriteString(fmt.Sprintf("🏷️ `%s`", Truncate(session.Tags, 150)))
	}

	filterStyle := func(rating string) discord.ButtonStyle {
		if session.Rating == rating {
			return discord.ButtonStyleSuccess
		}
		return discord.ButtonStyleSecondary
	}

	return discord.NewContainer(
		discord.NewTextDisplay(sb.String()),
		discord.NewMediaGallery(discord.MediaGalleryItem{
			Media: discord.UnfurledMediaItem{URL: post.FileURL},
		}),
		discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true),
		discord.NewActionRow(
			discord.NewButton(filterStyle(RatingSafe), MsgBrowseFilterSafe, "browse:safe", "", 0),
			discord.NewButton(filterStyle(RatingQuestionable), MsgBrowseFilterDubious, "browse:questionable", "", 0),
			discord.NewButton(filterStyle(RatingExplicit), MsgBrowseFilterExplicit, "browse:explicit", "", 0),
		),
		discord.NewActionRow(
			discord.NewButton(discord.ButtonStyleSecondary, MsgBrowseBtnBack, "browse:back", "", 0),
			discord.NewButton(discord.ButtonStylePrimary, MsgBrowseBtnNext, "browse:next", "", 0),
			favButton("browse:fav", IsFavoriteOf(session.OwnerID, post.ID)),
			discord.NewButton(discord.ButtonStyleSecondary, MsgBrowseBtnSearch, "browse:search", "", 0),
			discord.NewButton(discord.ButtonStyleSecondary, MsgBrowseBtnHelp, "browse:help", "", 0),
		),
		discord.NewActionRow(
			discord.NewButton(discord.ButtonStyleLink, MsgBrowseBtnDownload, "", post.FileURL, 0),
		),
	)
}

// recordView bumps the viewer's count and pays the view reward when that
// policy is active.
func recordView(ctx context.Context, uid string, post *BooruPost) {
	rewardOnView := GlobalConfig != nil && GlobalConfig.ViewReward == RewardOnView
	var reward int
	if rewardOnView {
		reward = CalculateWaifame(post.Score, post.FavCount, ArtistFameBonusFor(ctx, post))
	}

	accountsMu.Lock()
	account := getAccountLocked(uid)
	account.ViewCount++
	if rewardOnView {
		account.Waifame += reward
	}
	accountsMu.Unlock()
	SaveAccounts()

	if rewardOnView {
		LogBrowse(MsgBrowseViewReward, reward, uid)
	}
}

func handleNext(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	tags, _ := data.OptString("tags")
	startBrowse(event, tags)
}

func handleSearch(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	startBrowse(event, data.String("query"))
}

func startBrowse(event *events.ApplicationCommandInteractionCreate, tags string) {
	guildID := event.GuildID()
	if guildID == nil {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseGuildOnly).
			WithEphemeral(true))
		return
	}
	gid := guildID.String()
	uid := event.User().ID.String()

	session := &BrowseSession{
		OwnerID: uid,
		GuildID: gid,
		Tags:    tags,
		Rating:  imageRatingFor(gid),
	}

	if err := event.DeferCreateMessage(false); err != nil {
		return
	}
	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchImagePost(ctx, session.query())
	if err != nil {
		_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.MessageUpdate{
			Content: strPtr(fmt.Sprintf(MsgBrowseFetchFail, err)),
		})
		return
	}

	HistoryPushImage(gid, *post)
	recordView(ctx, uid, post)
	LogBrowse(MsgBrowseShown, post.ID, gid, tags, session.Rating)

	msg, err := client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(renderBrowse(post, session)))
	if err == nil && msg != nil {
		session.ChannelID = msg.ChannelID
		session.MessageID = msg.ID
		registerBrowseSession(session)
	}
}

func handleTagAutocomplete(event *events.AutocompleteInteractionCreate) {
	focused := event.Data.Focused()
	input := focused.String()
	if input == "" {
		_ = event.AutocompleteResult(nil)
		return
	}

	// Complete only the term being typed; earlier terms are kept as prefix.
	prefix := ""
	term := input
	if idx := strings.LastIndex(input, " "); idx >= 0 {
		prefix = input[:idx+1]
		term = input[idx+1:]
	}

	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	var choices []discord.AutocompleteChoice
	for _, suggestion := range TagSuggestions(ctx, term) {
		value := Truncate(prefix+suggestion, 100)
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  Truncate(prefix+suggestion, 100),
			Value: value,
		})
		if len(choices) >= 25 {
			break
		}
	}
	_ = event.AutocompleteResult(choices)
}

func handleBrowseComponent(event *events.ComponentInteractionCreate) {
	if event.GuildID() == nil {
		return
	}
	uid := event.User().ID.String()
	action := strings.TrimPrefix(event.Data.CustomID(), "browse:")

	session, ok := browseSessionByMessage(event.Message.ID)
	if !ok {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseSessionGone).
			WithEphemeral(true))
		return
	}
	if !session.authorized(uid) {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseNotYours).
			WithEphemeral(true))
		return
	}

	switch action {
	case "safe", "questionable", "explicit":
		browseMu.Lock()
		session.Rating = action
		guildImageRatings[session.GuildID] = action
		query := session.query()
		browseMu.Unlock()
		advanceBrowse(event, session, uid, query)

	case "next":
		browseMu.Lock()
		query := session.query()
		browseMu.Unlock()
		advanceBrowse(event, session, uid, query)

	case "back":
		post, ok := HistoryRewindImage(session.GuildID)
		if !ok {
			_ = event.CreateMessage(discord.NewMessageCreate().
				WithContent(MsgBrowseNoEarlier).
				WithEphemeral(true))
			return
		}
		browseMu.Lock()
		container := renderBrowse(post, session)
		browseMu.Unlock()
		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(container))

	case "fav":
		handleBrowseFavorite(event, session, uid)

	case "search":
		showTagPicker(event, session)

	case "help":
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(fmt.Sprintf(MsgBrowseHelp, DailyFavoriteLimit)).
			WithEphemeral(true))
	}
}

// advanceBrowse fetches a fresh post for the query and repaints the browser.
func advanceBrowse(event *events.ComponentInteractionCreate, session *BrowseSession, uid, query string) {
	if err := event.DeferUpdateMessage(); err != nil {
		return
	}
	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchImagePost(ctx, query)
	if err != nil {
		LogBrowse(MsgBrowseFetchFail, err)
		return
	}

	HistoryPushImage(session.GuildID, *post)
	recordView(ctx, uid, post)

	browseMu.Lock()
	container := renderBrowse(post, session)
	browseMu.Unlock()

	_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(container))
}

// handleBrowseFavorite toggles the current post in the owner's favorites and
// repaints the browser so the heart reflects the new state.
func handleBrowseFavorite(event *events.ComponentInteractionCreate, session *BrowseSession, uid string) {
	post, ok := HistoryCurrentImage(session.GuildID)
	if !ok {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseNoEarlier).
			WithEphemeral(true))
		return
	}

	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}
	outcome, note := toggleFavorite(ctx, uid, post)

	_ = event.CreateMessage(discord.NewMessageCreate().
		WithContent(note).
		WithEphemeral(true))
	if outcome == favLimited {
		return
	}

	client := *event.Client()
	browseMu.Lock()
	container := renderBrowse(post, session)
	channelID, messageID := session.ChannelID, session.MessageID
	browseMu.Unlock()
	_, _ = client.Rest.UpdateMessage(channelID, messageID,
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(container))
}

type favOutcome int

const (
	favAdded favOutcome = iota
	favRemoved
	favLimited
)

// toggleFavorite flips the post in uid's favorites, charging the daily quota
// and paying the favorite reward only on additions. Returns the outcome with
// the user-facing confirmation line.
func toggleFavorite(ctx context.Context, uid string, post *BooruPost) (favOutcome, string) {
	today := TodayDate()

	accountsMu.Lock()
	account := getAccountLocked(uid)
	if account.IsFavorite(post.ID) {
		account.RemoveFavorite(post.ID)
		accountsMu.Unlock()
		SaveAccounts()
		return favRemoved, MsgBrowseFavRemoved
	}
	if !account.CanAddFavorite(today) {
		accountsMu.Unlock()
		return favLimited, fmt.Sprintf(MsgBrowseFavLimit, DailyFavoriteLimit)
	}
	account.AddFavorite(FavoriteEntry{
		ID:        post.ID,
		FileURL:   post.FileURL,
		Rating:    post.Rating,
		TagString: post.TagString,
		Character: post.CharacterTag,
	})
	remaining := account.UseDailyFavorite(today)
	accountsMu.Unlock()

	rewardOnFav := GlobalConfig == nil || GlobalConfig.ViewReward == RewardOnFavorite
	content := fmt.Sprintf(MsgBrowseFavAdded, remaining)
	if rewardOnFav {
		reward := CalculateWaifame(post.Score, post.FavCount, ArtistFameBonusFor(ctx, post))
		accountsMu.Lock()
		getAccountLocked(uid).Waifame += reward
		accountsMu.Unlock()
		content = fmt.Sprintf(MsgBrowseFavAddedReward, reward, remaining)
	}
	SaveAccounts()
	return favAdded, content
}

// showTagPicker offers the current post's tags as a select menu. The menu ID
// carries the originating browser message so the pick can repaint it.
func showTagPicker(event *events.ComponentInteractionCreate, session *BrowseSession) {
	post, ok := HistoryCurrentImage(session.GuildID)
	if !ok {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseNoTags).
			WithEphemeral(true))
		return
	}

	tags := strings.Fields(post.TagString)
	if len(tags) == 0 {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseNoTags).
			WithEphemeral(true))
		return
	}

	var opts []discord.StringSelectMenuOption
	seen := map[string]bool{}
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		opts = append(opts, discord.NewStringSelectMenuOption(Truncate(tag, 100), Truncate(tag, 100)))
		if len(opts) >= 25 {
			break
		}
	}

	menu := discord.NewStringSelectMenu("tagpick:"+session.MessageID.String(), MsgBrowseTagPickerTitle, opts...)
	_ = event.CreateMessage(discord.NewMessageCreate().
		WithIsComponentsV2(true).
		WithEphemeral(true).
		WithComponents(discord.NewContainer(
			discord.NewTextDisplay(MsgBrowseTagPickerTitle),
			discord.NewActionRow(menu),
		)))
}

// handleTagPick rewires the originating browser to the chosen tag and
// repaints it with a fresh fetch.
func handleTagPick(event *events.ComponentInteractionCreate) {
	uid := event.User().ID.String()

	messageID, err := snowflake.Parse(strings.TrimPrefix(event.Data.CustomID(), "tagpick:"))
	if err != nil {
		return
	}
	session, ok := browseSessionByMessage(messageID)
	if !ok {
		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(discord.NewContainer(
				discord.NewTextDisplay(MsgBrowseSessionGone),
			)))
		return
	}
	if !session.authorized(uid) {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseNotYours).
			WithEphemeral(true))
		return
	}

	menu, ok := event.Data.(discord.StringSelectMenuInteractionData)
	if !ok || len(menu.Values) == 0 {
		return
	}
	tag := menu.Values[0]

	browseMu.Lock()
	session.Tags = tag
	query := session.query()
	channelID := session.ChannelID
	browseMu.Unlock()

	// Acknowledge on the ephemeral picker itself.
	_ = event.UpdateMessage(discord.NewMessageUpdate().
		WithIsComponentsV2(true).
		WithComponents(discord.NewContainer(
			discord.NewTextDisplay(fmt.Sprintf(MsgBrowseTagsUpdated, tag)),
		)))

	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchImagePost(ctx, query)
	if err != nil {
		LogBrowse(MsgBrowseFetchFail, err)
		return
	}

	HistoryPushImage(session.GuildID, *post)
	recordView(ctx, uid, post)

	browseMu.Lock()
	container := renderBrowse(post, session)
	browseMu.Unlock()

	_, _ = client.Rest.UpdateMessage(channelID, messageID,
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(container))
}
