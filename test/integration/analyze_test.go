// Package integration provides end-to-end tests (requires real storage and workbooks).
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/tango/internal/config"
	"github.com/hyperjump/tango/internal/engine"
	"github.com/hyperjump/tango/internal/metrics"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/server"
	"github.com/hyperjump/tango/internal/sheet"
	"github.com/hyperjump/tango/internal/storage"
)

func petDocuments() []models.Document {
	return []models.Document{
		{ID: 1, Title: "funny cats jumping"},
		{ID: 2, Title: "funny dogs running"},
		{ID: 3, Title: "cats and dogs playing"},
	}
}

func TestIntegration_AnalyzeOverHTTP(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := config.Default()
	m := metrics.New()
	eng := engine.New(engine.WithTFIDF(cfg.TFIDF), engine.WithMetrics(m))
	api := httptest.NewServer(server.NewServer(eng, store, cfg, m, zap.NewNop()).Routes())
	defer api.Close()

	body, _ := json.Marshal(models.AnalyzeRequest{
		Documents: petDocuments(),
		Query:     "funny cats",
		TopK:      3,
		Source:    "integration",
	})
	resp, err := http.Post(api.URL+"/api/v1/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}
	var out struct {
		RunID    string           `json:"run_id"`
		Analysis *models.Analysis `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.RunID == "" || out.Analysis == nil {
		t.Fatalf("response = %+v", out)
	}

	want := []struct {
		term  string
		posts string
	}{{"funny", "1,2"}, {"cats", "1,3"}, {"dogs", "2,3"}}
	if len(out.Analysis.Vocabulary) != len(want) {
		t.Fatalf("vocabulary = %+v", out.Analysis.Vocabulary)
	}
	for i, w := range want {
		row := out.Analysis.Vocabulary[i]
		if row.Term != w.term || row.PostsJoined() != w.posts || row.Frequency != 2 {
			t.Errorf("row %d = %+v, want %s -> %s", i, row, w.term, w.posts)
		}
	}
	for _, s := range out.Analysis.Scores {
		if !s.Found || s.Score <= 0 {
			t.Errorf("score %+v, want found and positive", s)
		}
	}

	stored, err := store.GetRun(context.Background(), out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Source != "integration" || len(stored.Documents) != 3 {
		t.Errorf("stored run = %+v", stored)
	}

	listResp, err := http.Get(api.URL + "/api/v1/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	var list struct {
		Runs  []models.RunSummary `json:"runs"`
		Total int64               `json:"total"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || len(list.Runs) != 1 || list.Runs[0].ID != out.RunID || list.Runs[0].Query != "funny cats" {
		t.Errorf("list = %+v", list)
	}

	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/v1/runs/"+out.RunID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", delResp.StatusCode)
	}
	if n, err := store.CountRuns(context.Background()); err != nil || n != 0 {
		t.Errorf("CountRuns after delete = %d, %v", n, err)
	}
}

func TestIntegration_WorkbooksRoundTrip(t *testing.T) {
	dir := t.TempDir()
	analysis, err := engine.New().Analyze(context.Background(), petDocuments(), "funny cats zebra", 2)
	if err != nil {
		t.Fatal(err)
	}

	vocabPath := filepath.Join(dir, "word_post_locations.xlsx")
	scoresPath := filepath.Join(dir, "tfidf_scores.xlsx")
	if err := sheet.WriteVocabulary(vocabPath, analysis.Vocabulary); err != nil {
		t.Fatal(err)
	}
	if err := sheet.WriteScores(scoresPath, analysis.Scores); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, vocabPath)
	if len(rows) != len(analysis.Vocabulary)+1 {
		t.Fatalf("vocabulary rows = %v", rows)
	}
	for i, row := range rows[1:] {
		posts, err := models.ParsePostingList(row[1])
		if err != nil {
			t.Fatalf("row %d: %v", i+1, err)
		}
		v := analysis.Vocabulary[i]
		if row[0] != v.Term || fmt.Sprint(posts) != fmt.Sprint(v.Posts) {
			t.Errorf("row %d = %v, want %s %v", i+1, row, v.Term, v.Posts)
		}
	}

	rows = readRows(t, scoresPath)
	if len(rows) != 4 {
		t.Fatalf("score rows = %v", rows)
	}
	for i, r := range analysis.Scores {
		row := rows[i+1]
		if row[0] != r.Term {
			t.Errorf("score row %d term = %q, want %q", i+1, row[0], r.Term)
		}
		if !r.Found {
			if row[1] != "not found" {
				t.Errorf("score row %d = %v, want not found", i+1, row)
			}
			continue
		}
		got, err := strconv.ParseFloat(row[1], 64)
		if err != nil || math.Abs(got-r.Score) > 1e-9 {
			t.Errorf("score row %d = %v, want %v", i+1, row, r.Score)
		}
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
