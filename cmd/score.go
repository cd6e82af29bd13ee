package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/export"
	"taxon/internal/score"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an export stream against a keyword weight table",
	Long: "Score reads export records (JSONL, stdin or --in), computes a\n" +
		"relevance score per record from a TOML weight table, and writes the\n" +
		"scored records as JSONL to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		weightsPath, _ := cmd.Flags().GetString("weights")
		if weightsPath == "" {
			weightsPath = cfg.WeightsPath
		}
		weights := score.DefaultWeights()
		if weightsPath != "" {
			var err error
			weights, err = score.LoadWeights(weightsPath)
			if err != nil {
				return err
			}
		}

		in := os.Stdin
		if inPath, _ := cmd.Flags().GetString("in"); inPath != "" {
			f, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", inPath, err)
			}
			defer f.Close()
			in = f
		}

		relevantOnly, _ := cmd.Flags().GetBool("relevant-only")
		return scoreStream(in, os.Stdout, weights, relevantOnly)
	},
}

// scoreStream scores records one line at a time so arbitrarily large exports
// stream without being loaded whole.
func scoreStream(r io.Reader, w io.Writer, weights score.Weights, relevantOnly bool) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)
	for {
		var rec export.Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decoding export record: %w", err)
		}
		s := score.Score(rec, weights)
		if relevantOnly && s < weights.MinRelevant {
			continue
		}
		scored := score.Scored{Record: rec, Score: s, Relevant: s >= weights.MinRelevant}
		if err := enc.Encode(scored); err != nil {
			return fmt.Errorf("encoding scored record: %w", err)
		}
	}
}

func init() {
	scoreCmd.Flags().String("in", "", "export JSONL file (default stdin)")
	scoreCmd.Flags().String("weights", "", "TOML weight table (default built-in)")
	scoreCmd.Flags().Bool("relevant-only", false, "emit only records at or above min_relevant")
	rootCmd.AddCommand(scoreCmd)
}
