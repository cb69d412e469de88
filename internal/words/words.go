// Package words holds the category-tagged word corpus boards are drawn from.
package words

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

const (
	// DefaultCategoryCap is the most words a single category may contribute to one board
	DefaultCategoryCap = 4

	// MaxTokens is the longest phrase, in words, that fits on a board cell
	MaxTokens = 2
)

//go:embed default_corpus.csv
var embeddedCorpus string

// ErrNotEnoughWords is returned when the corpus cannot fill a board at all
var ErrNotEnoughWords = errors.New("not enough eligible words in corpus")

// Difficulty is an advisory rating carried by each word
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Word is a single corpus entry
type Word struct {
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// Corpus is an immutable set of words
type Corpus struct {
	words       []Word
	categoryCap int
}

// NewCorpus builds a corpus from the given words. Blank entries and
// duplicates (by text) are dropped.
func NewCorpus(ws []Word) *Corpus {
	seen := make(map[string]bool, len(ws))
	out := make([]Word, 0, len(ws))
	for _, w := range ws {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || seen[w.Text] {
			continue
		}
		seen[w.Text] = true
		out = append(out, w)
	}
	return &Corpus{words: out, categoryCap: DefaultCategoryCap}
}

// Default returns the embedded corpus
func Default() *Corpus {
	c, err := Parse(strings.NewReader(embeddedCorpus))
	if err != nil {
		panic(fmt.Sprintf("embedded corpus is invalid: %v", err))
	}
	return c
}

// Load reads a corpus file, or returns the embedded corpus when path is empty
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads "category,difficulty,word" records. Lines starting with #
// are comments.
func Parse(r io.Reader) (*Corpus, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var ws []Word
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse corpus: %w", err)
		}
		ws = append(ws, Word{
			Category:   strings.TrimSpace(rec[0]),
			Difficulty: Difficulty(strings.TrimSpace(rec[1])),
			Text:       rec[2],
		})
	}
	return NewCorpus(ws), nil
}

// Len returns the number of words in the corpus
func (c *Corpus) Len() int {
	return len(c.words)
}

// Sample draws count distinct words. No category contributes more than the
// category cap unless the corpus cannot fill the board otherwise, in which
// case the cap is relaxed and the remaining slots are filled from any
// unused eligible word. Phrases longer than MaxTokens are never drawn.
func (c *Corpus) Sample(r *rand.Rand, count int) ([]Word, error) {
	eligible := make([]Word, 0, len(c.words))
	for _, w := range c.words {
		if len(strings.Fields(w.Text)) <= MaxTokens {
			eligible = append(eligible, w)
		}
	}
	if len(eligible) < count {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughWords, len(eligible), count)
	}

	r.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	result := make([]Word, 0, count)
	used := make([]bool, len(eligible))
	perCategory := make(map[string]int)

	for i, w := range eligible {
		if len(result) == count {
			break
		}
		if perCategory[w.Category] >= c.categoryCap {
			continue
		}
		perCategory[w.Category]++
		used[i] = true
		result = append(result, w)
	}

	// Relax the cap rather than return a short board
	for i, w := range eligible {
		if len(result) == count {
			break
		}
		if !used[i] {
			used[i] = true
			result = append(result, w)
		}
	}

	return result, nil
}
