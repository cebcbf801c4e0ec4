// Package sheet reads and writes the xlsx workbooks exchanged with the crawl and analyze steps.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/tango/internal/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Column headers of the results workbook.
var postHeader = []string{"Title", "Body", "Reddit Post URL", "Score", "Subreddit"}

// WritePosts writes posts to a results workbook at path, one row per post.
func WritePosts(path string, posts []models.Post) error {
	rows := make([][]interface{}, len(posts))
	for i, p := range posts {
		rows[i] = []interface{}{p.Title, p.Body, p.URL, p.Score, p.Subreddit}
	}
	return writeTable(path, postHeader, rows)
}

// ReadPosts reads a results workbook. Columns are located by header so reordered
// sheets still load; Title and Body are required, the others may be missing.
// Empty cells read as empty strings.
func ReadPosts(path string) ([]models.Post, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.Post{}, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Title", "Body"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("workbook %s: missing %q column", path, required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	posts := make([]models.Post, 0, len(rows)-1)
	for n, row := range rows[1:] {
		p := models.Post{
			Title:     cell(row, "Title"),
			Body:      cell(row, "Body"),
			URL:       cell(row, "Reddit Post URL"),
			Subreddit: cell(row, "Subreddit"),
		}
		if s := strings.TrimSpace(cell(row, "Score")); s != "" {
			score, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("workbook %s row %d: bad score %q: %w", path, n+2, s, err)
			}
			p.Score = score
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// WriteVocabulary writes the vocabulary table: one row per term with its posting list joined by commas.
func WriteVocabulary(path string, rows []models.VocabularyRow) error {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = []interface{}{r.Term, r.PostsJoined()}
	}
	return writeTable(path, []string{"word", "posts"}, out)
}

// WriteScores writes the TF-IDF report. Terms absent from the corpus get "not found" instead of a score.
func WriteScores(path string, results []models.QueryResult) error {
	out := make([][]interface{}, len(results))
	for i, r := range results {
		if r.Found {
			out[i] = []interface{}{r.Term, r.Score}
		} else {
			out[i] = []interface{}{r.Term, "not found"}
		}
	}
	return writeTable(path, []string{"term", "score"}, out)
}

func writeTable(path string, header []string, rows [][]interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("new stream writer: %w", err)
	}
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
