package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"taxon/internal/dsl"
	"taxon/internal/taxonomy"
)

// writeMigrations fills dir with the given name → content files.
func writeMigrations(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"2024-02-01T090000Z_later.txt":   "",
		"2024-01-15T120000Z_earlier.txt": "",
		"README.md":                      "not a migration",
		".hidden":                        "",
	})
	if err := os.Mkdir(filepath.Join(dir, "2024-archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	names, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"2024-01-15T120000Z_earlier.txt", "2024-02-01T090000Z_later.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Discover = %v, want %v", names, want)
	}
}

func TestApplyBuildsStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"0001_seed.txt": "ecoadd Bitcoin\necoadd Lightning\necocon Bitcoin Lightning\n",
		"0002_repos.txt": "repadd Lightning https://github.com/lightningnetwork/lnd #node\n" +
			"repadd Bitcoin https://github.com/bitcoin/bitcoin #core\n",
	})

	runner := &Runner{}
	store, err := runner.Apply(dir)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	st := store.Stats()
	if st.Ecosystems != 2 || st.Repos != 2 || st.Edges != 1 {
		t.Errorf("Stats = %+v, want 2 ecosystems, 2 repos, 1 edge", st)
	}
	if got := store.Children("Bitcoin"); !reflect.DeepEqual(got, []string{"Lightning"}) {
		t.Errorf("Children(Bitcoin) = %v, want [Lightning]", got)
	}
}

func TestApplyHaltsOnFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"0001_seed.txt": "ecoadd A\necoadd B\necocon A B\n",
		// Line 2 closes a cycle; line 1 must still apply.
		"0002_bad.txt":   "repadd A https://x.test/ok\necocon B A\n",
		"0003_never.txt": "ecoadd NeverApplied\n",
	})

	runner := &Runner{}
	store, err := runner.Apply(dir)
	if !errors.Is(err, taxonomy.ErrCycle) {
		t.Fatalf("Apply error = %v, want ErrCycle", err)
	}
	var aerr *ApplyError
	if !errors.As(err, &aerr) {
		t.Fatalf("Apply error type = %T, want *ApplyError", err)
	}
	if aerr.File != "0002_bad.txt" || aerr.Line != 2 {
		t.Errorf("halt at %s:%d, want 0002_bad.txt:2", aerr.File, aerr.Line)
	}

	// Store reflects everything up to the failing command, nothing after.
	if store.Has("NeverApplied") {
		t.Error("file after the halt was applied")
	}
	if repos := store.Repos("A"); len(repos) != 1 {
		t.Errorf("prior command in the failing file not applied: %v", repos)
	}
}

func TestApplyHaltsOnParseError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		// A parse failure anywhere in the file prevents applying any of it.
		"0001_bad.txt":   "ecoadd A\nnonsense\n",
		"0002_never.txt": "ecoadd B\n",
	})

	runner := &Runner{}
	store, err := runner.Apply(dir)
	var perr *dsl.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Apply error = %v, want *ParseError", err)
	}
	if store.Has("A") {
		t.Error("commands from the unparseable file were applied")
	}
	if store.Has("B") {
		t.Error("file after the halt was applied")
	}
}

func TestApplyUnknownEcosystem(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"0001_bad.txt": "repadd Ghost https://example.com/x\n",
	})

	runner := &Runner{}
	store, err := runner.Apply(dir)
	if !errors.Is(err, taxonomy.ErrUnknownEcosystem) {
		t.Fatalf("Apply error = %v, want ErrUnknownEcosystem", err)
	}
	if st := store.Stats(); st != (taxonomy.Stats{}) {
		t.Errorf("store changed: %+v", st)
	}
}

func TestLintAggregates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"0001_bad_syntax.txt": "what is this\n",
		"0002_ok.txt":         "ecoadd A\n",
		"0003_bad_ref.txt":    "repadd Ghost https://x.test/r\necocon A A\n",
	})

	runner := &Runner{}
	errs := runner.Lint(dir)
	if len(errs) != 3 {
		t.Fatalf("Lint = %d errors (%v), want 3", len(errs), errs)
	}
	var perr *dsl.ParseError
	if !errors.As(errs[0], &perr) {
		t.Errorf("errs[0] = %v, want parse error", errs[0])
	}
	if !errors.Is(errs[1], taxonomy.ErrUnknownEcosystem) {
		t.Errorf("errs[1] = %v, want ErrUnknownEcosystem", errs[1])
	}
	if !errors.Is(errs[2], taxonomy.ErrSelfEdge) {
		t.Errorf("errs[2] = %v, want ErrSelfEdge", errs[2])
	}
}

func TestIsMigrationName(t *testing.T) {
	t.Parallel()
	if !IsMigrationName("2024-01-15T120000Z_seed.txt") {
		t.Error("timestamped name rejected")
	}
	for _, name := range []string{"", "README.md", ".2024"} {
		if IsMigrationName(name) {
			t.Errorf("IsMigrationName(%q) = true, want false", name)
		}
	}
}
