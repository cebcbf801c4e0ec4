package normalize

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"only whitespace", " \t\n ", nil},
		{"simple", "Funny cats jumping", []string{"funny", "cats", "jumping"}},
		{"stopwords dropped", "cats and dogs playing", []string{"cats", "dogs", "playing"}},
		{"all stopwords", "I have a cat? No, THE cat is mine", []string{"cat", "no", "cat", "mine"}},
		{"punctuation removed inside words", "don't stop-believing!", []string{"dont", "stopbelieving"}},
		{"emoji dropped", "cats 😹😹 rule", []string{"cats", "rule"}},
		{"emoji glued to word", "lol😂", []string{"lol"}},
		{"underscore kept", "my_cat_is_cute", []string{"my_cat_is_cute"}},
		{"digits kept", "Top 10 cats of 2024", []string{"top", "10", "cats", "2024"}},
		{"mixed case", "CaTs AND DoGs", []string{"cats", "dogs"}},
		{"unicode letters", "Café Über naïve", []string{"café", "über", "naïve"}},
		{"url collapses", "https://reddit.com/r/cats", []string{"httpsredditcomrcats"}},
		{"only symbols", "!@#$%^&*()", nil},
		{"invalid utf8", "cat\xff\xfedog", []string{"catdog"}},
		{"newlines split", "cats\ndogs\r\nbirds", []string{"cats", "dogs", "birds"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_idempotent(t *testing.T) {
	inputs := []string{
		"Funny cats jumping!!",
		"I have a cat? No, THE cat is mine",
		"İstanbul ΣΊΣΥΦΟΣ Straße",
		"lol😂 don't @me #cats",
		"cat\xff\xfedog",
		"Ⅻ o'clock _under_score_",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(strings.Join(once, " "))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not a fixpoint for %q: %q then %q", in, once, twice)
		}
	}
}

func TestStopwords(t *testing.T) {
	words := Stopwords()
	if len(words) != 36 {
		t.Fatalf("got %d stopwords, want 36", len(words))
	}
	for i := 1; i < len(words); i++ {
		if words[i-1] >= words[i] {
			t.Fatalf("stopwords not sorted at %d: %q >= %q", i, words[i-1], words[i])
		}
	}
	for _, w := range words {
		if !IsStopword(w) {
			t.Errorf("IsStopword(%q) = false", w)
		}
		if got := Normalize(w); got != nil {
			t.Errorf("Normalize(%q) = %q, want nil", w, got)
		}
	}
	if IsStopword("cats") {
		t.Error("cats is not a stopword")
	}
}
