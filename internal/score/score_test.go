package score

import (
	"os"
	"path/filepath"
	"testing"

	"taxon/internal/export"
)

func TestScoreKeywordInURL(t *testing.T) {
	t.Parallel()
	w := Weights{MaxScore: 100, TagFactor: 2, Keywords: map[string]float64{"defi": 10}}
	rec := export.Record{RepoURL: "https://github.com/acme/DeFi-vault"}
	if got := Score(rec, w); got != 10 {
		t.Errorf("Score = %v, want 10 for case-insensitive URL match", got)
	}
}

func TestScoreTagFactor(t *testing.T) {
	t.Parallel()
	w := Weights{MaxScore: 100, TagFactor: 2, Keywords: map[string]float64{"wallet": 10}}
	rec := export.Record{RepoURL: "https://x.test/r", Tags: []string{"Mobile-Wallet"}}
	if got := Score(rec, w); got != 20 {
		t.Errorf("Score = %v, want weight × tag factor", got)
	}
	// A keyword matching several tags still counts once.
	rec.Tags = append(rec.Tags, "hardware-wallet")
	if got := Score(rec, w); got != 20 {
		t.Errorf("Score = %v, want one tag credit per keyword", got)
	}
}

func TestScoreClamped(t *testing.T) {
	t.Parallel()
	w := Weights{MaxScore: 15, TagFactor: 1, Keywords: map[string]float64{
		"swap": 10, "dex": 10,
	}}
	rec := export.Record{RepoURL: "https://x.test/dex-swap"}
	if got := Score(rec, w); got != 15 {
		t.Errorf("Score = %v, want clamp to MaxScore", got)
	}
}

func TestScoreNoMatches(t *testing.T) {
	t.Parallel()
	rec := export.Record{RepoURL: "https://x.test/plain"}
	if got := Score(rec, DefaultWeights()); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
}

func TestLoadWeights(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "weights.toml")
	content := `
min_relevant = 25

[keywords]
bnb = 15
defi = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing weights: %v", err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if w.MinRelevant != 25 {
		t.Errorf("MinRelevant = %v, want 25", w.MinRelevant)
	}
	if w.Keywords["bnb"] != 15 || w.Keywords["defi"] != 10 {
		t.Errorf("Keywords = %v", w.Keywords)
	}
	// Unset caps fall back to defaults so partial tables stay usable.
	def := DefaultWeights()
	if w.MaxScore != def.MaxScore || w.TagFactor != def.TagFactor {
		t.Errorf("defaults not applied: MaxScore=%v TagFactor=%v", w.MaxScore, w.TagFactor)
	}
}

func TestApplyMarksRelevance(t *testing.T) {
	t.Parallel()
	w := Weights{MinRelevant: 10, MaxScore: 100, TagFactor: 1,
		Keywords: map[string]float64{"defi": 10}}
	recs := []export.Record{
		{RepoURL: "https://x.test/defi-vault"},
		{RepoURL: "https://x.test/nothing"},
	}

	scored := Apply(recs, w)
	if len(scored) != 2 {
		t.Fatalf("Apply = %d records, want 2", len(scored))
	}
	if !scored[0].Relevant || scored[0].Score != 10 {
		t.Errorf("scored[0] = %+v, want relevant at 10", scored[0])
	}
	if scored[1].Relevant || scored[1].Score != 0 {
		t.Errorf("scored[1] = %+v, want irrelevant at 0", scored[1])
	}
}
