package notifier

import (
	"context"
	"html"
	"net/http"
	"strings"

	tele "gopkg.in/telebot.v4"

	"practicebot/internal/format"
)

type telegramSink struct {
	bot  *tele.Bot
	chat *tele.Chat
	opt  *tele.SendOptions
}

func newTelegram(cfg TelegramConfig, client *http.Client) (*telegramSink, error) {
	// Offline: no getMe round trip at construction; the first Send validates the token.
	b, err := tele.NewBot(tele.Settings{
		URL:     strings.TrimRight(cfg.APIURL, "/"),
		Token:   cfg.Token,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &telegramSink{
		bot:  b,
		chat: &tele.Chat{ID: cfg.ChatID},
		opt: &tele.SendOptions{
			ParseMode:             tele.ModeHTML,
			DisableWebPagePreview: true,
			ThreadID:              cfg.ThreadID,
		},
	}, nil
}

func (t *telegramSink) Name() string { return "telegram" }

func (t *telegramSink) Send(ctx context.Context, m format.Message) error {
	// telebot has no per-call context; honor cancellation before sending.
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, telegramHTML(m), t.opt)
	return err
}

func telegramHTML(m format.Message) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(m.Title))
	b.WriteString("</b>")
	for _, l := range m.Lines {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(l))
	}
	return b.String()
}
