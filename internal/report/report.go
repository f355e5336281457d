// Package report runs the fixed reporting queries and prints their results.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cleared-dev/bankcap/internal/store"
)

// Querier runs a read query.
type Querier interface {
	Query(ctx context.Context, query string) (*store.Result, error)
}

// DefaultQueries returns the three reports run after every load: the whole
// table, the average GBP market cap, and the names of the top five banks.
func DefaultQueries(table string) []string {
	return []string{
		fmt.Sprintf("SELECT * FROM %s", table),
		fmt.Sprintf("SELECT AVG(MC_GBP_Billion) FROM %s", table),
		fmt.Sprintf("SELECT Name FROM %s LIMIT 5", table),
	}
}

// RunQuery executes query and prints the statement followed by the full result.
func RunQuery(ctx context.Context, w io.Writer, q Querier, query string) error {
	res, err := q.Query(ctx, query)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, query); err != nil {
		return fmt.Errorf("printing query: %w", err)
	}
	if err := Print(w, res); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("printing result: %w", err)
	}
	return nil
}

// Print writes res as a right-aligned table with a leading row index.
func Print(w io.Writer, res *store.Result) error {
	if len(res.Rows) == 0 {
		_, err := fmt.Fprintf(w, "Empty result\nColumns: [%s]\nIndex: []\n", strings.Join(res.Columns, ", "))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "\t")
	for _, c := range res.Columns {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)

	for i, row := range res.Rows {
		fmt.Fprintf(tw, "%d\t", i)
		for _, v := range row {
			fmt.Fprintf(tw, "%s\t", FormatValue(v))
		}
		fmt.Fprintln(tw)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("printing result: %w", err)
	}
	return nil
}

// FormatValue renders one result cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
