// Package score assigns relevance scores to export records. Scoring is a
// pure function over a fixed record and an externally supplied weight table;
// there is no network lookup and no global state.
package score

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"taxon/internal/export"
)

// Weights is a keyword weight table, loaded from TOML.
type Weights struct {
	// MinRelevant is the score at or above which a record counts as
	// relevant to the taxonomy.
	MinRelevant float64 `toml:"min_relevant"`
	// MaxScore caps the accumulated score.
	MaxScore float64 `toml:"max_score"`
	// TagFactor scales a keyword's weight when it matches a tag rather
	// than the repository URL. Tags are author-assigned, so a tag match
	// is usually a stronger signal.
	TagFactor float64 `toml:"tag_factor"`
	// Keywords maps a lowercase keyword to its weight.
	Keywords map[string]float64 `toml:"keywords"`
}

// DefaultWeights returns a conservative built-in table for running without
// a weights file.
func DefaultWeights() Weights {
	return Weights{
		MinRelevant: 30,
		MaxScore:    100,
		TagFactor:   1.5,
		Keywords: map[string]float64{
			"defi":     10,
			"dex":      10,
			"swap":     10,
			"staking":  10,
			"wallet":   10,
			"bridge":   10,
			"oracle":   10,
			"nft":      8,
			"dao":      8,
			"contract": 8,
			"web3":     8,
			"protocol": 5,
			"sdk":      5,
		},
	}
}

// LoadWeights reads a TOML weight table from path. Zero-valued caps fall
// back to the defaults so a table may list only keywords.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("score: reading weights: %w", err)
	}
	w := Weights{}
	if err := toml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("score: parsing weights: %w", err)
	}
	def := DefaultWeights()
	if w.MaxScore == 0 {
		w.MaxScore = def.MaxScore
	}
	if w.MinRelevant == 0 {
		w.MinRelevant = def.MinRelevant
	}
	if w.TagFactor == 0 {
		w.TagFactor = def.TagFactor
	}
	return w, nil
}

// Scored pairs an export record with its computed score.
type Scored struct {
	export.Record
	Score    float64 `json:"score"`
	Relevant bool    `json:"relevant"`
}

// Score computes the relevance of one record: each keyword contributes its
// weight when it appears in the repository URL and its weight times
// TagFactor when it appears in a tag. Matching is case-insensitive and the
// result is clamped to [0, MaxScore].
func Score(rec export.Record, w Weights) float64 {
	url := strings.ToLower(rec.RepoURL)
	tags := make([]string, len(rec.Tags))
	for i, t := range rec.Tags {
		tags[i] = strings.ToLower(t)
	}

	var total float64
	for kw, weight := range w.Keywords {
		if strings.Contains(url, kw) {
			total += weight
		}
		for _, t := range tags {
			if strings.Contains(t, kw) {
				total += weight * w.TagFactor
				break
			}
		}
	}
	if total < 0 {
		return 0
	}
	if total > w.MaxScore {
		return w.MaxScore
	}
	return total
}

// Apply scores every record against w.
func Apply(recs []export.Record, w Weights) []Scored {
	out := make([]Scored, len(recs))
	for i, r := range recs {
		s := Score(r, w)
		out[i] = Scored{Record: r, Score: s, Relevant: s >= w.MinRelevant}
	}
	return out
}
