package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"

	"github.com/slack-go/slack"
)

// logoURL is the HackerOne logo used as the attachment footer icon.
const logoURL = "https://profile-photos.hackerone-user-content.com/variants/000/000/013/fa942b9b1cbf4faf37482bf68458e1195aab9c02_original.png/0621f211aae8984f02f017decf83d0064fe91a6a16b11f840ecf5b53ddb7b872"

// substateColors mirror the report state colors in the HackerOne UI.
var substateColors = map[string]string{
	"new":            "#8e44ad",
	"triaged":        "#e67e22",
	"resolved":       "#609828",
	"not-applicable": "#ce3f4b",
	"informative":    "#ccc",
	"duplicate":      "#a78260",
	"spam":           "#555",
}

// SlackForwarder posts one formatted attachment per disclosure to an incoming
// webhook.
type SlackForwarder struct {
	webhookURL string
}

func NewSlackForwarder(webhookURL string) (*SlackForwarder, error) {
	if webhookURL == "" {
		return nil, errors.InvalidInput("slack webhook URL cannot be empty")
	}
	return &SlackForwarder{webhookURL: webhookURL}, nil
}

func (s *SlackForwarder) Name() string {
	return "slack"
}

func (s *SlackForwarder) Forward(ctx context.Context, ev *hacktivity.Event) error {
	msg := buildWebhookMessage(ev)
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("post slack webhook: %v: %w", err, errors.ErrDelivery)
	}
	slog.Debug("Slack webhook posted", "report_id", ev.ID())
	return nil
}

func (s *SlackForwarder) Health(ctx context.Context) error {
	if s.webhookURL == "" {
		return errors.Transient("slack webhook URL not configured")
	}
	return nil
}

func buildWebhookMessage(ev *hacktivity.Event) *slack.WebhookMessage {
	// All reporters have a username, some have an actual name as well.
	reporterName := ev.Reporter.Username
	if ev.Reporter.Name != "" {
		reporterName = fmt.Sprintf("%s (%s)", ev.Reporter.Name, ev.Reporter.Username)
	}

	attachment := slack.Attachment{
		AuthorName: reporterName,
		AuthorLink: ev.Reporter.URL,
		AuthorIcon: qualifyPictureURL(ev.Reporter.ProfilePicture),
		Title:      fmt.Sprintf("Report %s: %s", ev.Report.ID, ev.Report.Title),
		TitleLink:  ev.Report.URL,
		Footer:     "HackerOne Disclosure Bot",
		FooterIcon: logoURL,
		MarkdownIn: []string{"text", "pretext"},
		Fallback:   fmt.Sprintf("%q - %s", ev.Report.Title, ev.Report.URL),
		Color:      substateColors[ev.Report.Substate],
	}

	if ev.SeverityRating != "" {
		severity := titleCase(strings.ReplaceAll(ev.SeverityRating, "_", " "))
		attachment.Fallback += " - " + severity
		attachment.Fields = append(attachment.Fields, slack.AttachmentField{
			Title: "Severity",
			Value: severity,
			Short: true,
		})
	}

	if ev.TotalAwardedAmount != "" {
		amount := fmt.Sprintf("%s %s", ev.TotalAwardedAmount, ev.Currency)
		attachment.Fallback += " - " + amount
		attachment.Fields = append(attachment.Fields, slack.AttachmentField{
			Title: "Bounty",
			Value: amount,
			Short: true,
		})
	}

	// Match the timestamp in Slack to the actual disclosure date.
	if disclosedAt, ok := ev.DisclosedTime(); ok {
		attachment.Ts = json.Number(strconv.FormatInt(disclosedAt.Unix(), 10))
	}

	return &slack.WebhookMessage{
		Username:    fmt.Sprintf("%s disclosed", ev.Team.Name),
		IconURL:     qualifyPictureURL(ev.Team.ProfilePicture),
		Attachments: []slack.Attachment{attachment},
	}
}

// qualifyPictureURL prefixes relative profile picture paths, which HackerOne
// sometimes returns instead of a fully qualified URL.
func qualifyPictureURL(url string) string {
	if url == "" || strings.HasPrefix(url, "http") {
		return url
	}
	return "https://hackerone.com" + url
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
