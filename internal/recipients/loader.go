// Package recipients loads the address book and resolves recipients by name.
package recipients

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

var (
	ErrReadRecipients  = fmt.Errorf("failed to read recipients file")
	ErrParseRecipients = fmt.Errorf("failed to parse recipients file")
)

// row mirrors the address book columns. Other columns are ignored.
type row struct {
	Address string `csv:"Address"`
	Name    string `csv:"Name"`
}

// Load reads the CSV address book at path.
func Load(path string) ([]data.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRecipients, err)
	}
	defer f.Close() // nolint

	return Parse(f)
}

// Parse reads a header-driven CSV address book. Rows without an address are
// dropped; a missing name becomes data.UnknownName. Addresses are not
// validated here.
func Parse(r io.Reader) ([]data.Recipient, error) {
	var rows []*row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []data.Recipient{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrParseRecipients, err)
	}

	list := make([]data.Recipient, 0, len(rows))
	for _, rec := range rows {
		addr := strings.TrimSpace(rec.Address)
		if addr == "" {
			continue
		}
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			name = data.UnknownName
		}
		list = append(list, data.Recipient{Address: addr, Name: name})
	}
	return list, nil
}
