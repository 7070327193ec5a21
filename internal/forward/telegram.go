package forward

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramForwarder sends one Markdown message per disclosure to a configured
// chat.
type TelegramForwarder struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramForwarder(token string, chatID int64) (*TelegramForwarder, error) {
	if token == "" {
		return nil, errors.InvalidInput("telegram bot token cannot be empty")
	}
	if chatID == 0 {
		return nil, errors.InvalidInput("telegram chat ID cannot be empty")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	slog.Info("Telegram forwarder connected", "user", bot.Self.UserName)
	return &TelegramForwarder{bot: bot, chatID: chatID}, nil
}

func (t *TelegramForwarder) Name() string {
	return "telegram"
}

func (t *TelegramForwarder) Forward(ctx context.Context, ev *hacktivity.Event) error {
	msg := tgbotapi.NewMessage(t.chatID, buildTelegramText(ev))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %v: %w", err, errors.ErrDelivery)
	}

	slog.Debug("Telegram message sent", "chat_id", t.chatID, "report_id", ev.ID())
	return nil
}

func (t *TelegramForwarder) Health(ctx context.Context) error {
	if t.bot == nil {
		return errors.Transient("telegram bot not initialized")
	}
	return nil
}

func buildTelegramText(ev *hacktivity.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s disclosed*\n", ev.Team.Name)
	fmt.Fprintf(&b, "[Report %s: %s](%s)\n", ev.Report.ID, ev.Report.Title, ev.Report.URL)

	var details []string
	if ev.SeverityRating != "" {
		details = append(details, "Severity: "+titleCase(strings.ReplaceAll(ev.SeverityRating, "_", " ")))
	}
	if ev.TotalAwardedAmount != "" {
		details = append(details, fmt.Sprintf("Bounty: %s %s", ev.TotalAwardedAmount, ev.Currency))
	}
	if len(details) > 0 {
		b.WriteString(strings.Join(details, " | "))
	}

	return strings.TrimRight(b.String(), "\n")
}
