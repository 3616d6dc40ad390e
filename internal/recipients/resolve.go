package recipients

import (
	"fmt"
	"strings"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

var (
	ErrEmptyQuery  = fmt.Errorf("recipient name must not be empty")
	ErrNoRecipient = fmt.Errorf("no recipient found matching name")
)

// AmbiguousError is returned when a name query matches more than one
// recipient. Matches holds every candidate in address book order.
type AmbiguousError struct {
	Query   string
	Matches []data.Recipient
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		names[i] = m.String()
	}
	return fmt.Sprintf("multiple recipients match %q: %s", e.Query, strings.Join(names, "; "))
}

// Match returns every recipient whose name contains query, ignoring case.
func Match(list []data.Recipient, query string) []data.Recipient {
	q := strings.ToLower(query)
	var out []data.Recipient
	for _, r := range list {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// Resolve picks exactly one recipient by case-insensitive name substring.
// It never guesses: zero matches yield ErrNoRecipient and several yield an
// *AmbiguousError.
func Resolve(list []data.Recipient, query string) (data.Recipient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return data.Recipient{}, ErrEmptyQuery
	}

	matches := Match(list, query)
	switch len(matches) {
	case 0:
		return data.Recipient{}, fmt.Errorf("%w: %q", ErrNoRecipient, query)
	case 1:
		return matches[0], nil
	default:
		return data.Recipient{}, &AmbiguousError{Query: query, Matches: matches}
	}
}
