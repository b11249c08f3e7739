package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/olekukonko/tablewriter"

	"jobextract/internal/domain"
)

// Console prints each batch as an aligned table. Cell text is never
// truncated or wrapped.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	batch int
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Write(_ context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "Batch: %d\n", c.batch); err != nil {
		return fmt.Errorf("console sink: %w", err)
	}
	c.batch++

	table := tablewriter.NewWriter(c.out)
	table.SetHeader(domain.ColumnNames())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetReflowDuringAutoWrap(false)
	for i := range records {
		table.Append(records[i].Strings())
	}
	table.Render()
	return nil
}

func (c *Console) Close() error { return nil }
