package hacktivity

import (
	"encoding/json"
	"time"
)

// TypeDisclosed is the only hacktivity item variant the bot forwards. Every
// other discriminator is dropped before the events reach the poll loop.
const TypeDisclosed = "Disclosed"

// Event is one hacktivity node. The typed fields cover what the forwarders
// render; Raw carries the full node untouched for queue consumers.
type Event struct {
	Typename           string      `json:"__typename"`
	SeverityRating     string      `json:"severity_rating"`
	Currency           string      `json:"currency"`
	TotalAwardedAmount json.Number `json:"total_awarded_amount"`
	Report             Report      `json:"report"`
	Team               Team        `json:"team"`
	Reporter           Reporter    `json:"reporter"`

	Raw json.RawMessage `json:"-"`
}

type Report struct {
	ID          string `json:"_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Substate    string `json:"substate"`
	DisclosedAt string `json:"disclosed_at"`
}

type Team struct {
	URL            string `json:"url"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type Reporter struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	URL            string `json:"url"`
	ProfilePicture string `json:"profile_picture"`
}

// ID returns the stable report identifier the ledger and the queue
// de-duplication key are built on.
func (e *Event) ID() string {
	return e.Report.ID
}

// DisclosedTime parses the report disclosure timestamp. ok is false when the
// upstream omitted it or it does not parse.
func (e *Event) DisclosedTime() (time.Time, bool) {
	if e.Report.DisclosedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.Report.DisclosedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
