package sheet

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/tango/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestWritePosts_ReadPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reddit_results.xlsx")
	posts := []models.Post{
		{Title: "Funny cats jumping", Body: "look at them", URL: "https://reddit.com/r/cats/1", Score: 42, Subreddit: "cats"},
		{Title: "No body here", URL: "https://reddit.com/r/pics/2", Score: -3, Subreddit: "pics"},
	}
	if err := WritePosts(path, posts); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPosts(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, posts) {
		t.Errorf("ReadPosts = %+v, want %+v", got, posts)
	}
}

func TestWritePosts_header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	if err := WritePosts(path, nil); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, path)
	want := [][]string{{"Title", "Body", "Reddit Post URL", "Score", "Subreddit"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
	posts, err := ReadPosts(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 0 {
		t.Errorf("posts = %+v, want none", posts)
	}
}

func TestReadPosts_reorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.xlsx")
	f := excelize.NewFile()
	for cell, v := range map[string]interface{}{
		"A1": "Body", "B1": "Title",
		"A2": "body text", "B2": "title text",
	} {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	posts, err := ReadPosts(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Post{{Title: "title text", Body: "body text"}}
	if !reflect.DeepEqual(posts, want) {
		t.Errorf("posts = %+v, want %+v", posts, want)
	}
}

func TestReadPosts_errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadPosts(filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("expected error for missing workbook")
	}

	path := filepath.Join(dir, "nobody.xlsx")
	if err := writeTable(path, []string{"Title"}, [][]interface{}{{"x"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPosts(path); err == nil {
		t.Error("expected error for missing Body column")
	}

	path = filepath.Join(dir, "badscore.xlsx")
	if err := writeTable(path, postHeader, [][]interface{}{{"t", "b", "u", "lots", "s"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPosts(path); err == nil {
		t.Error("expected error for non-numeric score")
	}
}

func TestWriteVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "word_post_locations.xlsx")
	rows := []models.VocabularyRow{
		{Term: "cats", Frequency: 2, Posts: models.PostingList{1, 3}},
		{Term: "dogs", Frequency: 2, Posts: models.PostingList{2, 3}},
	}
	if err := WriteVocabulary(path, rows); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"word", "posts"}, {"cats", "1,3"}, {"dogs", "2,3"}}
	if got := readRows(t, path); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestWriteScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	results := []models.QueryResult{
		{Term: "cats", Score: 0.5, Found: true},
		{Term: "zebra"},
	}
	if err := WriteScores(path, results); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"term", "score"}, {"cats", "0.5"}, {"zebra", "not found"}}
	if got := readRows(t, path); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
