package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// ============================================================================
// Character Quiz
// ============================================================================

const (
	MsgQuizDesc        = "Devine le personnage sur l'image"
	MsgQuizNoImage     = "😢 Impossible de trouver une image pour le quiz. Réessaie !"
	MsgQuizNoCharacter = "😢 Impossible de trouver une image avec un personnage identifiable. Réessaie !"
	MsgQuizQuestion    = "🎮 **Quiz Personnage !**\nQui est ce personnage ?"
	MsgQuizCorrect     = "✅ **Correct !** Bien joué <@%s> !"
	MsgQuizWrong       = "❌ **Faux !** La réponse était: **%s**"
	MsgQuizTimeout     = "⏰ **Temps écoulé !** La réponse était: **%s**"
	MsgQuizAnswered    = "⚠️ Quelqu'un a déjà répondu à ce quiz !"
	MsgQuizExpired     = "⚠️ Ce quiz n'existe plus."
	MsgQuizStarted     = "Quiz started by %s: answer=%q post=%d"
	MsgQuizResolved    = "Quiz %s resolved: correct=%t"

	QuizTimeout    = 30 * time.Second
	QuizDecoyCount = 3
	QuizPrimaryTag = "rating:safe 1girl"
	QuizFallback   = "rating:safe solo"
)

// Decoy pool for wrong answers.
var quizDecoys = []string{
	"Hatsune Miku", "Sakura Haruno", "Rem", "Emilia", "Zero Two", "Asuna Yuuki",
	"Mikasa Ackerman", "Hinata Hyuga", "Naruto Uzumaki", "Sasuke Uchiha",
	"Goku", "Vegeta", "Luffy", "Zoro", "Nami", "Robin", "Erza Scarlet",
	"Lucy Heartfilia", "Natsu Dragneel", "Megumin", "Aqua", "Darkness",
	"Tohru", "Kanna Kamui", "Saber", "Rin Tohsaka", "Shinobu Oshino",
	"Taiga Aisaka", "Misaka Mikoto", "Kurisu Makise", "Mai Sakurajima",
	"Nezuko Kamado", "Tanjiro Kamado", "Zenitsu Agatsuma", "Inosuke Hashibira",
	"Yor Forger", "Anya Forger", "Power", "Makima", "Denji", "Aki Hayakawa",
	"Marin Kitagawa", "Chika Fujiwara", "Kaguya Shinomiya", "Ai Hoshino",
	"Frieren", "Fern", "Bocchi", "Ryo Yamada", "Kobayashi", "Elma",
	"Yuki Nagato", "Haruhi Suzumiya", "C.C.", "Lelouch", "Levi Ackerman",
	"Eren Yeager", "Historia Reiss", "Annie Leonhart", "Violet Evergarden",
	"Raphtalia", "Naofumi", "Aqua Hoshino", "Ruby Hoshino", "Kana Arima",
}

type QuizRound struct {
	ID        string
	Correct   string
	Answers   []string
	ImageURL  string
	Answered  bool
	ChannelID snowflake.ID
	MessageID snowflake.ID
	HasRef    bool
	timer     *time.Timer
}

var (
	quizRounds = map[string]*QuizRound{}
	quizMu     sync.Mutex
	quizSeq    int
)

func init() {
	RegisterCommand(discord.SlashCommandCreate{
		Name:        "quiz",
		Description: MsgQuizDesc,
	}, handleQuiz)

	RegisterComponentHandler("quiz:", handleQuizComponent)
}

// PickQuizAnswers builds the shuffled answer list: the correct name plus
// three decoys, with any decoy matching the answer filtered out.
func PickQuizAnswers(correct string, shuffle func(n int, swap func(i, j int))) []string {
	var pool []string
	for _, decoy := range quizDecoys {
		if !strings.EqualFold(decoy, correct) {
			pool = append(pool, decoy)
		}
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	count := Min(QuizDecoyCount, len(pool))
	answers := append([]string{correct}, pool[:count]...)
	shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	return answers
}

// quizPanel renders the quiz message. pickedIdx is the wrong answer to paint
// red once the round is resolved; -1 when unanswered or answered correctly.
func quizPanel(round *QuizRound, resultLine string, pickedIdx int) discord.ContainerComponent {
	done := resultLine != ""

	var buttons []discord.InteractiveComponent
	for i, answer := range round.Answers {
		style := discord.ButtonStylePrimary
		if done {
			switch {
			case strings.EqualFold(answer, round.Correct):
				style = discord.ButtonStyleSuccess
			case i == pickedIdx:
				style = discord.ButtonStyleDanger
			default:
				style = discord.ButtonStyleSecondary
			}
		}
		buttons = append(buttons, discord.NewButton(style, Truncate(answer, 80),
			fmt.Sprintf("quiz:%s:%d", round.ID, i), "", 0).WithDisabled(done))
	}

	text := MsgQuizQuestion
	if done {
		text += "\n\n" + resultLine
	}

	return discord.NewContainer(
		discord.NewTextDisplay(text),
		discord.NewMediaGallery(discord.MediaGalleryItem{
			Media: discord.UnfurledMediaItem{URL: round.ImageURL},
		}),
		discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true),
		discord.NewActionRow(buttons...),
	)
}

func handleQuiz(event *events.ApplicationCommandInteractionCreate) {
	if err := event.DeferCreateMessage(false); err != nil {
		return
	}
	client := *event.Client()
	ctx := AppContext
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := FetchImagePost(ctx, QuizPrimaryTag)
	if err != nil {
		_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.MessageUpdate{
			Content: strPtr(MsgQuizNoImage),
		})
		return
	}

	if post.CharacterTag == "" {
		if fallback, err := FetchImagePost(ctx, QuizFallback); err == nil {
			post = fallback
		}
	}

	characters := strings.Fields(post.CharacterTag)
	if len(characters) == 0 {
		_, _ = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.MessageUpdate{
			Content: strPtr(MsgQuizNoCharacter),
		})
		return
	}

	correct := TitleCase(characters[0])

	gameRngMu.Lock()
	answers := PickQuizAnswers(correct, gameRng.Shuffle)
	gameRngMu.Unlock()

	quizMu.Lock()
	quizSeq++
	round := &QuizRound{
		ID:       fmt.Sprintf("%d", quizSeq),
		Correct:  correct,
		Answers:  answers,
		ImageURL: post.FileURL,
	}
	quizRounds[round.ID] = round
	quizMu.Unlock()

	LogQuiz(MsgQuizStarted, event.User().Username, correct, post.ID)

	msg, err := client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdate().WithIsComponentsV2(true).WithComponents(quizPanel(round, "", -1)))

	quizMu.Lock()
	if err == nil && msg != nil {
		round.ChannelID = msg.ChannelID
		round.MessageID = msg.ID
		round.HasRef = true
	}
	round.timer = time.AfterFunc(QuizTimeout, func() { expireQuiz(client, round.ID) })
	quizMu.Unlock()
}

// expireQuiz resolves an unanswered round after the timeout.
func expireQuiz(client bot.Client, roundID string) {
	quizMu.Lock()
	round, ok := quizRounds[roundID]
	if !ok || round.Answered {
		quizMu.Unlock()
		return
	}
	round.Answered = true
	delete(quizRounds, roundID)
	hasRef := round.HasRef
	quizMu.Unlock()

	if !hasRef {
		return
	}

	_, _ = client.Rest.UpdateMessage(round.ChannelID, round.MessageID,
		discord.NewMessageUpdate().WithIsComponentsV2(true).
			WithComponents(quizPanel(round, fmt.Sprintf(MsgQuizTimeout, round.Correct), -1)))
}

func handleQuizComponent(event *events.ComponentInteractionCreate) {
	parts := strings.Split(event.Data.CustomID(), ":")
	if len(parts) != 3 {
		return
	}
	roundID, idx := parts[1], Atoi(parts[2])

	quizMu.Lock()
	round, ok := quizRounds[roundID]
	if !ok {
		quizMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgQuizExpired).
			WithEphemeral(true))
		return
	}
	if round.Answered {
		quizMu.Unlock()
		_ = event.CreateMessage(discord.NewMessageCreate().
			WithContent(MsgQuizAnswered).
			WithEphemeral(true))
		return
	}
	round.Answered = true
	if round.timer != nil {
		round.timer.Stop()
	}
	delete(quizRounds, roundID)
	quizMu.Unlock()

	if idx < 0 || idx >= len(round.Answers) {
		return
	}

	correct := strings.EqualFold(round.Answers[idx], round.Correct)
	LogQuiz(MsgQuizResolved, roundID, correct)

	var resultLine string
	pickedIdx := -1
	if correct {
		resultLine = fmt.Sprintf(MsgQuizCorrect, event.User().ID)
	} else {
		resultLine = fmt.Sprintf(MsgQuizWrong, round.Correct)
		pickedIdx = idx
	}

	_ = event.UpdateMessage(discord.NewMessageUpdate().
		WithIsComponentsV2(true).
		WithComponents(quizPanel(round, resultLine, pickedIdx)))
}
