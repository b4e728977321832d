package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// ============================================================================
// Video Browsing
// ============================================================================

const (
	MsgVideoNextDesc     = "Afficher une vidéo aléatoire"
	MsgVideoTagsDesc     = "Tags de recherche (autocomplétés)"
	MsgVideoFetchFail    = "😢 Impossible de récupérer une vidéo: %v"
	MsgVideoNoEarlier    = "⚠️ Pas de vidéo précédente dans l'historique."
	MsgVideoSessionGone  = "⚠️ Cette session vidéo n'est plus active. Relance `/vnext` !"
	MsgVideoNotYours     = "⚠️ Cette session appartient à quelqu'un d'autre. Lance ta propre recherche !"
	MsgVideoTooLarge     = "📺 Vidéo trop lourde pour l'upload, lien direct:\n%s"
	MsgVideoShown        = "Displayed video %d in guild %s (tags=%q rating=%s)"
	MsgVideoCompanionErr = "Companion message failed: %v"
	MsgVideoBtnBack      = "⬅️ Précédent"
	MsgVideoBtnNext      = "➡️ Suivant"
	MsgVideoBtnLink      = "📥 Fichier"
)

// Discord rejects bot uploads above 8 MiB on non-boosted guilds.
const VideoAttachmentLimit = 8 << 20

// VideoSession is one live video browser message plus the companion message
// that carries the actual file. Bound to the user who opened it.
type VideoSession struct {
	OwnerID            string
	GuildID            string
	Tags               string
	Rating             string
	ChannelID          snowflake.ID
	MessageID          snowflake.ID
	CompanionChannelID snowflake.ID
	CompanionMessageID snowflake.ID
	HasCompanion       bool
}

const VideoSessionLimit = 100

var (
	videoSessions     = map[snowflake.ID]*VideoSession{}
	videoOrder        []snowflake.ID
	guildVideoRatings = map[string]string{}
	videoMu           sync.Mutex
)

func (s *VideoSession) authorized(uid string) bool {
	return s.OwnerID == "" || s.OwnerID == uid
}

func (s *VideoSession) query() string {
	q := "rating:" + s.Rating
	if s.Tags != "" {
		q += " " + s.Tags
	}
	return q
}

func registerVideoSession(s *VideoSession) {
	videoMu.Lock()
	defer videoMu.Unlock()
	if _, ok := videoSessions[s.MessageID]; !ok {
		videoOrder = append(videoOrder, s.MessageID)
		if len(videoOrder) > VideoSessionLimit {
			delete(videoSessions, videoOrder[0])
			videoOrder = videoOrder[1:]
		}
	}
	videoSessions[s.MessageID] = s
}

func videoSessionByMessage(messageID snowflake.ID) (*VideoSession, bool) {
	videoMu.Lock()
	defer videoMu.Unlock()
	s, ok := videoSessions[messageID]
	return s, ok
}

// videoRatingFor returns the rating filter the guild last watched with.
func videoRatingFor(gid string) string {
	videoMu.Lock()
	defer videoMu.Unlock()
	if r, ok := guildVideoRatings[gid]; ok {
		return r
	}
	return RatingSafe
}

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "vnext",
		Description: MsgVideoNextDesc,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:         "tags",
				Description:  MsgVideoTagsDesc,
				Required:     false,
				Autocomplete: true,
			},
		},
	}, handleVNext)

	RegisterAutocompleteHandler("vnext", handleTagAutocomplete)
	RegisterComponentHandler("video:", handleVideoComponent)
}

func renderVideoPanel(post *BooruPost, session *VideoSession) discord.ContainerComponent {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📺 **Post #%d** (%s) — ⭐ %d | ❤️ %d\n", post.ID, post.FileExt, post.Score, post.FavCount))
	if post.CharacterTag != "" {
		sb.WriteString(fmt.Sprintf("👤 %s\n", Truncate(TitleCase(post.CharacterTag), 120)))
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
		discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true),
		discord.NewActionRow(
			discord.NewButton(filterStyle(RatingSafe), MsgBrowseFilterSafe, "video:safe", "", 0),
			discord.NewButton(filterStyle(RatingQuestionable), MsgBrowseFilterDubious, "video:questionable", "", 0),
			discord.NewButton(filterStyle(RatingExplicit), MsgBrowseFilterExplicit, "video:explicit", "", 0),
		),
		discord.NewActionRow(
			discord.NewButton(discord.ButtonStyleSecondary, MsgVideoBtnBack, "video:back", "", 0),
			discord.NewButton(discord.ButtonStylePrimary, MsgVideoBtnNext, "video:next", "", 0),
			favButton("video:fav", IsFavoriteOf(session.OwnerID, post.ID)),
			discord.NewButton(discord.ButtonStyleLink, MsgVideoBtnLink, "", post.FileURL, 0),
		),
	)
}

// downloadVideo pulls the file into memory up to the attachment limit.
// Returns nil when the file is too large or the download fails.
func downloadVideo(ctx context.Context, fileURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", booruUserAgent())

	resp, err := HttpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength > VideoAttachmentLimit {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, VideoAttachmentLimit+1))
	if err != nil || len(data) > VideoAttachmentLimit {
		return nil
	}
	return data
}

func videoFileName(post *BooruPost) string {
	return fmt.Sprintf("post_%d.%s", post.ID, post.FileExt)
}

// sendCompanion posts the video carrier message for a session, replacing the
// previous one. Files within the upload limit ride as attachments, anything
// bigger falls back to a direct link that Discord can still embed.
func sendCompanion(ctx context.Context, client bot.Client, session *VideoSession, channelID snowflake.ID, post *BooruPost) {
	videoMu.Lock()
	hadCompanion := session.HasCompanion
	oldChannelID := session.CompanionChannelID
	oldMessageID := session.CompanionMessageID
	videoMu.Unlock()

	if hadCompanion {
		_ = client.Rest.DeleteMessage(oldChannelID, oldMessageID)
	}

	var create discord.MessageCreate
	if data := downloadVideo(ctx, post.FileURL); data != nil {
		create = discord.MessageCreate{
			Files: []*discord.File{
				discord.NewFile(videoFileName(post), "", bytes.NewReader(data)),
			},
		}
	} else {
		create = discord.MessageCreate{
			Content: fmt.Sprintf(MsgVideoTooLarge, post.FileURL),
		}
	}

	msg, err := client.Rest.CreateMessage(channelID, create)
	if err != nil {
		LogVideo(MsgVideoCompanionErr, err)
		return
	}

	videoMu.Lock()
	session.CompanionChannelID = msg.ChannelID
	session.CompanionMessageID = msg.ID
	session.HasCompanion = true
	videoMu.Unlock()
}

func handleVNext(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	tags, _ := data.OptString("tags")

	guildID := event.GuildID()
	if guildID == nil {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgBrowseGuildOnly).
			WithEphemeral(true))
		return
	}
	gid := guildID.String()
	uid := event.User().ID.String()
	channelID := event.Channel().ID()

	session := &VideoSession{
		OwnerID: uid,
		GuildID: gid,
		Tags:    tags,
		Rating:  videoRatingFor(gid),
	}

	if err := event.DeferCreateMessage(false); err != nil {
		return
	}
	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchVideoPost(ctx, session.query())
	if err != nil {
		_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.MessageUpdate{
			Content: strPtr(fmt.Sprintf(MsgVideoFetchFail, err)),
		})
		return
	}

	HistoryPushVideo(gid, *post)
	recordView(ctx, uid, post)
	LogVideo(MsgVideoShown, post.ID, gid, tags, session.Rating)

	msg, err := client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(renderVideoPanel(post, session)))
	if err == nil && msg != nil {
		session.ChannelID = msg.ChannelID
		session.MessageID = msg.ID
		registerVideoSession(session)
	}

	sendCompanion(ctx, client, session, channelID, post)
}

func handleVideoComponent(event *events.ComponentInteractionCreate) {
	if event.GuildID() == nil {
		return
	}
	uid := event.User().ID.String()
	action := strings.TrimPrefix(event.Data.CustomID(), "video:")

	session, ok := videoSessionByMessage(event.Message.ID)
	if !ok {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgVideoSessionGone).
			WithEphemeral(true))
		return
	}
	if !session.authorized(uid) {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgVideoNotYours).
			WithEphemeral(true))
		return
	}

	switch action {
	case "safe", "questionable", "explicit":
		videoMu.Lock()
		session.Rating = action
		guildVideoRatings[session.GuildID] = action
		query := session.query()
		videoMu.Unlock()
		advanceVideo(event, session, uid, query)

	case "next":
		videoMu.Lock()
		query := session.query()
		videoMu.Unlock()
		advanceVideo(event, session, uid, query)

	case "back":
		post, ok := HistoryRewindVideo(session.GuildID)
		if !ok {
			_ = event.CreateMessage(discord.NewMessageCreate().
				WithContent(MsgVideoNoEarlier).
				WithEphemeral(true))
			return
		}

		videoMu.Lock()
		container := renderVideoPanel(post, session)
		videoMu.Unlock()

		_ = event.UpdateMessage(discord.NewMessageUpdate().
			WithIsComponentsV2(true).
			WithComponents(container))

		client := *event.Client()
		ctx := AppContext
		if ctx == nil {
			ctx = context.Background()
		}
		sendCompanion(ctx, client, session, event.Channel().ID(), post)

	case "fav":
		handleVideoFavorite(event, session, uid)
	}
}

// advanceVideo fetches a fresh video for the query, repaints the panel and
// swaps the companion message.
func advanceVideo(event *events.ComponentInteractionCreate, session *VideoSession, uid, query string) {
	if err := event.DeferUpdateMessage(); err != nil {
		return
	}
	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchVideoPost(ctx, query)
	if err != nil {
		LogVideo(MsgVideoFetchFail, err)
		return
	}

	HistoryPushVideo(session.GuildID, *post)
	recordView(ctx, uid, post)

	videoMu.Lock()
	container := renderVideoPanel(post, session)
	videoMu.Unlock()

	_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(container))

	sendCompanion(ctx, client, session, event.Channel().ID(), post)
}

// handleVideoFavorite toggles the current video in the owner's favorites and
// repaints the panel so the heart reflects the new state.
func handleVideoFavorite(event *events.ComponentInteractionCreate, session *VideoSession, uid string) {
	post, ok := HistoryCurrentVideo(session.GuildID)
	if !ok {
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgVideoNoEarlier).
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
	videoMu.Lock()
	container := renderVideoPanel(post, session)
	channelID, messageID := session.ChannelID, session.MessageID
	videoMu.Unlock()
	_, _ = client.Rest.UpdateMessage(channelID, messageID,
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(container))
}
