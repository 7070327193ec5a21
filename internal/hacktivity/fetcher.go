package hacktivity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/session"

	"github.com/goccy/go-json"
)

// maxResponseBytes caps how much of a response body is read. Hacktivity
// windows are small; anything larger than this is not a response we want.
const maxResponseBytes = 8 << 20

// Fetcher issues the windowed hacktivity query through the authenticated
// session and narrows the result to Disclosed events. Retry policy lives in
// the poller, not here.
type Fetcher struct {
	graphqlURL string
	session    *session.Session
}

func NewFetcher(cfg config.HacktivityConfig, sess *session.Session) *Fetcher {
	graphqlURL := cfg.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = config.DefaultHacktivityGraphQLURL
	}
	return &Fetcher{
		graphqlURL: graphqlURL,
		session:    sess,
	}
}

type queryRequest struct {
	Query     string         `json:"query"`
	Variables queryVariables `json:"variables"`
}

type queryVariables struct {
	Since string `json:"since"`
}

type queryResponse struct {
	Data struct {
		HacktivityItems struct {
			Nodes []json.RawMessage `json:"nodes"`
		} `json:"hacktivity_items"`
	} `json:"data"`
}

// FetchSince runs one query for everything disclosed after since. Events come
// back in upstream order; non-Disclosed nodes are silently dropped.
func (f *Fetcher) FetchSince(ctx context.Context, since time.Time) ([]Event, error) {
	payload, err := json.Marshal(queryRequest{
		Query: Query,
		Variables: queryVariables{
			Since: since.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal hacktivity query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build hacktivity request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", f.graphqlURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read hacktivity response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode hacktivity response: %v: %w", err, errors.ErrFetchDecode)
	}
	if decoded.Data.HacktivityItems.Nodes == nil {
		return nil, errors.FetchDecode("response missing data.hacktivity_items.nodes")
	}

	events := make([]Event, 0, len(decoded.Data.HacktivityItems.Nodes))
	for _, raw := range decoded.Data.HacktivityItems.Nodes {
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("decode hacktivity node: %v: %w", err, errors.ErrFetchDecode)
		}
		if ev.Typename != TypeDisclosed {
			continue
		}
		ev.Raw = raw
		events = append(events, ev)
	}

	slog.Debug("Hacktivity fetched", "since", since, "nodes", len(decoded.Data.HacktivityItems.Nodes), "disclosed", len(events))
	return events, nil
}
