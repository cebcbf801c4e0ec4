// Package vocabulary ranks the terms of a token stream by frequency.
package vocabulary

import (
	"sort"

	"github.com/hyperjump/tango/internal/models"
)

// Count returns one entry per distinct token, in order of first occurrence.
func Count(stream []string) []models.VocabularyEntry {
	pos := make(map[string]int)
	var entries []models.VocabularyEntry
	for _, tok := range stream {
		if i, ok := pos[tok]; ok {
			entries[i].Frequency++
			continue
		}
		pos[tok] = len(entries)
		entries = append(entries, models.VocabularyEntry{Term: tok, Frequency: 1})
	}
	return entries
}

// TopTerms returns the k most frequent tokens of stream, most frequent first.
// Equal frequencies keep first-occurrence order. Fewer than k distinct tokens yields all of them;
// an empty stream yields an empty slice. k must be positive.
func TopTerms(stream []string, k int) ([]models.VocabularyEntry, error) {
	if k <= 0 {
		return nil, models.NewInvalidInputError("k", "must be positive, got %d", k)
	}
	entries := Count(stream)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Frequency > entries[j].Frequency
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	if entries == nil {
		entries = []models.VocabularyEntry{}
	}
	return entries, nil
}
