// Package cli formats analyses and stored runs for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json"; anything else is an error.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteAnalysis writes an analysis to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnalysis(w io.Writer, a *models.Analysis, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, a)
	}
	fmt.Fprintf(w, "\nAnalyzed %d posts, top %d words:\n\n", a.DocumentCount, a.TopK)
	if len(a.Vocabulary) == 0 {
		fmt.Fprintln(w, "(no words)")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WORD\tCOUNT\tPOSTS")
		for _, row := range a.Vocabulary {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Term, row.Frequency, utils.Truncate(row.PostsJoined(), 60))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nTF-IDF Scores for Query Terms (%q):\n", a.Query)
	if len(a.Scores) == 0 {
		fmt.Fprintln(w, "(no query terms after normalization)")
	}
	for _, r := range a.Scores {
		if r.Found {
			fmt.Fprintf(w, "%s: %s\n", r.Term, strconv.FormatFloat(r.Score, 'f', -1, 64))
		} else {
			fmt.Fprintf(w, "%s: Not found in the results.\n", r.Term)
		}
	}
	return nil
}

// WriteRuns writes a run listing to w in the given format.
func WriteRuns(w io.Writer, runs []models.RunSummary, total int64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"runs": runs, "total": total})
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tPOSTS\tTOP K\tQUERY")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Source,
			r.DocumentCount, r.TopK, utils.Truncate(r.Query, 40))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d of %d runs\n", len(runs), total)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
