package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteJSONL streams records as newline-delimited JSON, one object per
// record. Consumers can process the stream line by line without loading the
// whole export.
func WriteJSONL(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("export: encode %s: %w", r.RepoURL, err)
		}
	}
	return nil
}

// WriteCSV writes records as CSV for downstream spreadsheet tooling. The
// branch path is joined with " > " and tags with a single space; tags are
// single tokens by construction.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"eco_name", "branch", "repo_url", "tags"}); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.EcoName,
			strings.Join(r.Branch, " > "),
			r.RepoURL,
			strings.Join(r.Tags, " "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row %s: %w", r.RepoURL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}
