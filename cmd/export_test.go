package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taxon/internal/export"
)

func TestWriteRecordsJSONLToFile(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "export.jsonl")
	recs := []export.Record{
		{EcoName: "Bitcoin", Branch: []string{}, RepoURL: "https://x.test/r", Tags: []string{}},
	}

	if err := writeRecords(recs, "jsonl", out); err != nil {
		t.Fatalf("writeRecords: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"eco_name":"Bitcoin"`) {
		t.Errorf("output = %s", data)
	}
}

func TestWriteRecordsUnknownFormat(t *testing.T) {
	t.Parallel()
	if err := writeRecords(nil, "xml", ""); err == nil {
		t.Fatal("writeRecords accepted an unknown format")
	}
}

func TestWriteRecordsSQLiteRequiresOut(t *testing.T) {
	t.Parallel()
	if err := writeRecords(nil, "sqlite", ""); err == nil {
		t.Fatal("sqlite export without --out should fail")
	}
}
