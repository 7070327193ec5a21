package hacktivity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// standardErrorMarker is the GraphQL error code HackerOne returns when the
// CSRF token attached to a query has expired.
const standardErrorMarker = "STANDARD_ERROR"

// HTTPError is a non-2xx GraphQL response. The body is retained so the poll
// loop can classify the failure (expired token vs. anything else).
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("hacktivity query failed: status %d", e.StatusCode)
}

type graphqlErrorBody struct {
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

// TokenExpired reports whether err is the expired-CSRF-token failure mode:
// a 500 whose body carries the STANDARD_ERROR marker. Only this combination
// triggers the invalidate-refresh-refetch path; every other status/body ends
// the cycle.
func TokenExpired(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		return false
	}

	var body graphqlErrorBody
	if jsonErr := json.Unmarshal([]byte(httpErr.Body), &body); jsonErr == nil {
		for _, gqlErr := range body.Errors {
			if gqlErr.Extensions.Code == standardErrorMarker || gqlErr.Message == standardErrorMarker {
				return true
			}
		}
	}

	// Body was not the usual GraphQL error document; fall back to the quoted
	// marker match the original bot used.
	return strings.Contains(httpErr.Body, `"`+standardErrorMarker+`"`)
}
