package recipients

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

const directory = `Name,Team,Address
Alice Smith,core,0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0
Bob,ops,
,ops,0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b
Carol, research ,not-an-address
`

func TestParseKeepsRowsWithAddress(t *testing.T) {
	list, err := Parse(strings.NewReader(directory))
	require.NoError(t, err)

	require.Equal(t, []data.Recipient{
		{Name: "Alice Smith", Address: "0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0"},
		{Name: data.UnknownName, Address: "0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b"},
		{Name: "Carol", Address: "not-an-address"},
	}, list)
}

func TestParseWithoutNameColumn(t *testing.T) {
	list, err := Parse(strings.NewReader("Address\n0x1\n\n0x2\n"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, data.UnknownName, list[0].Name)
	require.Equal(t, "0x2", list[1].Address)
}

func TestParseEmpty(t *testing.T) {
	list, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = Parse(strings.NewReader("Name,Address\n"))
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("Name,Address\nAlice,0x1,extra\n"))
	require.ErrorIs(t, err, ErrParseRecipients)

	var perr *csv.ParseError
	require.True(t, errors.As(err, &perr))

	_, err = Parse(strings.NewReader("Name,Address\n\"Alice,0x1\n"))
	require.ErrorIs(t, err, ErrParseRecipients)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.csv")
	require.NoError(t, os.WriteFile(path, []byte(directory), 0o600))

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, ErrReadRecipients)
	require.ErrorIs(t, err, os.ErrNotExist)
}
