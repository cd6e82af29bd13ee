package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"taxon/internal/score"
)

func TestScoreStream(t *testing.T) {
	t.Parallel()
	in := strings.NewReader(
		`{"eco_name":"BNB Chain","branch":[],"repo_url":"https://x.test/defi-vault","tags":["DeFi"]}` + "\n" +
			`{"eco_name":"BNB Chain","branch":[],"repo_url":"https://x.test/plain","tags":[]}` + "\n")
	w := score.Weights{MinRelevant: 10, MaxScore: 100, TagFactor: 1,
		Keywords: map[string]float64{"defi": 10}}

	var out bytes.Buffer
	if err := scoreStream(in, &out, w, false); err != nil {
		t.Fatalf("scoreStream: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var first score.Scored
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !first.Relevant || first.Score != 20 {
		t.Errorf("first = %+v, want relevant with url + tag credit", first)
	}
}

func TestScoreStreamRelevantOnly(t *testing.T) {
	t.Parallel()
	in := strings.NewReader(
		`{"eco_name":"X","branch":[],"repo_url":"https://x.test/defi","tags":[]}` + "\n" +
			`{"eco_name":"X","branch":[],"repo_url":"https://x.test/plain","tags":[]}` + "\n")
	w := score.Weights{MinRelevant: 10, MaxScore: 100, TagFactor: 1,
		Keywords: map[string]float64{"defi": 10}}

	var out bytes.Buffer
	if err := scoreStream(in, &out, w, true); err != nil {
		t.Fatalf("scoreStream: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want only the relevant record", len(lines))
	}
}
