// Package migrate discovers migration files and replays them into a
// taxonomy store. Files apply in ascending filename order; the timestamp
// prefix makes lexical order chronological. Application halts on the first
// failing command so the graph never reflects a partially trusted history.
package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"taxon/internal/dsl"
	"taxon/internal/events"
	"taxon/internal/taxonomy"
)

// ApplyError records a command that failed to apply, with source context.
type ApplyError struct {
	File string
	Line int
	Err  error
}

// Error returns a human-readable string including file and line.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Discover returns the migration filenames in dir, sorted lexically. Only
// regular files whose name starts with a digit are migrations; dotfiles,
// subdirectories, and stray files (README, notes) are skipped.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migration directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsMigrationName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// IsMigrationName reports whether a filename looks like a migration: the
// timestamp prefix means every migration starts with a digit.
func IsMigrationName(name string) bool {
	return len(name) > 0 && name[0] >= '0' && name[0] <= '9'
}

// Runner replays migration files into a store.
type Runner struct {
	// Events receives an audit record per file and on halt. Nil disables
	// auditing.
	Events *events.Emitter
}

// Apply builds a fresh store from every migration in dir, halting on the
// first parse or apply failure. The returned store is always non-nil and
// reflects exactly the commands that succeeded before the halt.
func (r *Runner) Apply(dir string) (*taxonomy.Store, error) {
	store := taxonomy.New()
	names, err := Discover(dir)
	if err != nil {
		return store, err
	}

	for _, name := range names {
		r.Events.Emit(events.Event{Kind: events.KindFileStart, File: name})

		cmds, err := parseFile(dir, name)
		if err != nil {
			r.Events.Emit(events.Event{Kind: events.KindHalt, File: name, Data: err.Error()})
			return store, err
		}
		for _, cmd := range cmds {
			if err := applyCommand(store, cmd); err != nil {
				aerr := &ApplyError{File: name, Line: cmd.Pos(), Err: err}
				r.Events.Emit(events.Event{Kind: events.KindHalt, File: name, Data: aerr.Error()})
				return store, aerr
			}
		}
		r.Events.Emit(events.Event{Kind: events.KindFileApplied, File: name, Data: len(cmds)})
	}
	return store, nil
}

// Lint parses and dry-applies every migration in dir into a throwaway
// store, collecting all failures instead of halting. A parse failure skips
// that file's commands but later files are still checked, so one run
// surfaces every problem the strict Apply would hit one at a time.
func (r *Runner) Lint(dir string) []error {
	var errs []error
	names, err := Discover(dir)
	if err != nil {
		return []error{err}
	}

	store := taxonomy.New()
	for _, name := range names {
		cmds, err := parseFile(dir, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, cmd := range cmds {
			if err := applyCommand(store, cmd); err != nil {
				errs = append(errs, &ApplyError{File: name, Line: cmd.Pos(), Err: err})
			}
		}
	}
	return errs
}

// parseFile reads and parses one migration file, keyed by bare filename so
// errors stay stable across working directories.
func parseFile(dir, name string) ([]dsl.Command, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return dsl.Parse(name, data)
}

// applyCommand dispatches one parsed command to the store.
func applyCommand(store *taxonomy.Store, cmd dsl.Command) error {
	switch c := cmd.(type) {
	case dsl.EcoAdd:
		return store.AddEcosystem(c.Name)
	case dsl.RepAdd:
		return store.AddRepo(c.Ecosystem, c.URL, c.Tags)
	case dsl.EcoCon:
		return store.Connect(c.Parent, c.Child)
	}
	return errors.New("unhandled command type")
}
