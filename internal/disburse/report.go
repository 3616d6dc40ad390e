package disburse

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

// TableData lays out recipients as rows of name, address, native balance and
// token balance under a header row.
func TableData(list []data.Recipient, nativeSymbol, tokenSymbol string) pterm.TableData {
	rows := pterm.TableData{{"Name", "Address", nativeSymbol, tokenSymbol}}
	for _, r := range list {
		rows = append(rows, []string{r.Name, r.Address, r.NativeBalance, r.TokenBalance})
	}
	return rows
}

func RenderTable(w io.Writer, list []data.Recipient, nativeSymbol, tokenSymbol string) error {
	s, err := pterm.DefaultTable.
		WithHasHeader().
		WithHeaderRowSeparator("-").
		WithData(TableData(list, nativeSymbol, tokenSymbol)).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
