// Package e2e provides end-to-end tests over a synthetic subreddit: crawl, index, score and store.
package e2e

import (
	"fmt"

	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/normalize"
)

// TermTestCase names a signature term and the posts (1-based, in crawl order) that contain it.
type TermTestCase struct {
	Term            string
	ExpectedPostIDs []int
	Description     string
}

// Corpus holds posts and the term test cases derived from them.
type Corpus struct {
	Posts      []models.Post
	TestCases  []TermTestCase
	TotalPosts int
}

type topic struct {
	signature string
	title     string
	body      string
}

// Each signature word appears in exactly one topic.
var topics = []topic{
	{"tabby", "My tabby knocked a glass off the table", "She stared at me the whole time, then did it again."},
	{"corgi", "Corgi zoomies at the beach", "Short legs, maximum speed. He ran circles around everyone."},
	{"parrot", "Parrot learned to imitate the microwave", "Now I never know when my food is ready."},
	{"hamster", "Hamster stuffed twelve sunflower seeds in his cheeks", "I counted them when he emptied the stash."},
	{"goldfish", "Goldfish turned ten today", "Still swimming laps in the same bowl, still judging us."},
	{"ferret", "Ferret stole my socks again", "Found a whole pile under the couch, including the missing remote."},
	{"hedgehog", "Hedgehog curled into a ball during bath time", "Took twenty minutes before she trusted the water."},
	{"tortoise", "Tortoise escaped the garden at top speed", "We found him two houses down eating strawberries."},
	{"axolotl", "Axolotl smiling for the camera", "Pink gills, permanent grin, zero thoughts."},
	{"alpaca", "Alpaca spat on my brother", "In fairness he was wearing a ridiculous hat."},
}

// BuildCorpus returns n posts cycling through the topics, plus one test case per topic
// that has at least one post.
func BuildCorpus(n int) *Corpus {
	posts := make([]models.Post, 0, n)
	expected := make(map[string][]int)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s (again)", t.title)
		}
		posts = append(posts, models.Post{
			Title:     title,
			Body:      t.body,
			URL:       fmt.Sprintf("https://reddit.com/r/aww/comments/e2e%03d/", i+1),
			Score:     (i * 37) % 500,
			Subreddit: "aww",
		})
		expected[t.signature] = append(expected[t.signature], i+1)
	}

	var cases []TermTestCase
	for _, t := range topics {
		ids, ok := expected[t.signature]
		if !ok {
			continue
		}
		cases = append(cases, TermTestCase{
			Term:            t.signature,
			ExpectedPostIDs: ids,
			Description:     fmt.Sprintf("term %q is indexed at %d posts", t.signature, len(ids)),
		})
	}
	return &Corpus{Posts: posts, TestCases: cases, TotalPosts: len(posts)}
}

// Signatures returns every topic's signature term.
func Signatures() []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.signature
	}
	return out
}

func containsTerm(p models.Post, term string) bool {
	for _, tok := range normalize.Normalize(p.Title + " " + p.Body) {
		if tok == term {
			return true
		}
	}
	return false
}
