package suite

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteResultsTable writes a table with one row per leaf test that ran, giving its outcome and
// how long it took. Parent scopes are left out, since their duration includes their subtests.
func WriteResultsTable(out io.Writer, results Results) {
	rows := leafResults(results.Tests)
	if len(rows) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Test", "Result", "Duration"})
	var total time.Duration
	for _, r := range rows {
		total += r.Duration
		tw.AppendRow(table.Row{r.TestID.String(), outcome(r), r.Duration.Round(time.Millisecond)})
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d tests", len(rows)), "", total.Round(time.Millisecond)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	tw.Render()
}

func outcome(r TestResult) string {
	switch {
	case r.SetupError:
		return "SETUP ERROR"
	case len(r.Errors) != 0:
		return "FAILED"
	default:
		return "PASSED"
	}
}

// leafResults drops any result whose ID is a proper prefix of another result's ID. Results are
// recorded in completion order, so children always come before their parents.
func leafResults(all []TestResult) []TestResult {
	ret := make([]TestResult, 0, len(all))
	for i, r := range all {
		if len(r.TestID) == 0 {
			continue
		}
		isParent := false
		for _, earlier := range all[:i] {
			if len(earlier.TestID) > len(r.TestID) && isPrefix(r.TestID, earlier.TestID) {
				isParent = true
				break
			}
		}
		if !isParent {
			ret = append(ret, r)
		}
	}
	return ret
}

func isPrefix(prefix, id TestID) bool {
	for i := range prefix {
		if prefix[i] != id[i] {
			return false
		}
	}
	return true
}
