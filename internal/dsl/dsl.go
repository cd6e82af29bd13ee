// Package dsl parses taxonomy migration files. A migration file is a plain
// UTF-8 text file holding one command per non-blank, non-comment line:
//
//	ecoadd <name>
//	repadd <ecosystem> <url> [#tag]...
//	ecocon <parent> <child>
//
// Names may be double-quoted to allow embedded spaces. Lines whose first
// non-space byte is '#' are comments.
package dsl

import (
	"errors"
	"fmt"
)

// CommentMarker starts a comment line.
const CommentMarker = "#"

// TagMarker prefixes every repadd tag token. The marker is stripped before
// the tag is stored.
const TagMarker = "#"

// Sentinel parse failures, wrapped inside *ParseError.
var (
	// ErrUnknownKeyword indicates the first token is not a recognized command.
	ErrUnknownKeyword = errors.New("unknown command keyword")
	// ErrBadArity indicates the argument count does not match the keyword.
	ErrBadArity = errors.New("wrong argument count")
	// ErrUnterminatedQuote indicates a quoted token with no closing quote.
	ErrUnterminatedQuote = errors.New("unterminated quoted token")
	// ErrBadTag indicates a repadd tag token missing the '#' marker.
	ErrBadTag = errors.New("tag token must start with '#'")
)

// Command is one parsed migration command. The concrete types are EcoAdd,
// RepAdd, and EcoCon.
type Command interface {
	// Pos returns the 1-based source line the command was parsed from.
	Pos() int
}

// EcoAdd declares an ecosystem.
type EcoAdd struct {
	Name string
	Line int
}

// RepAdd attaches a repository URL to an ecosystem with zero or more tags.
type RepAdd struct {
	Ecosystem string
	URL       string
	Tags      []string
	Line      int
}

// EcoCon connects Child as a sub-ecosystem of Parent.
type EcoCon struct {
	Parent string
	Child  string
	Line   int
}

func (c EcoAdd) Pos() int { return c.Line }
func (c RepAdd) Pos() int { return c.Line }
func (c EcoCon) Pos() int { return c.Line }

// ParseError records a malformed line with its source location.
type ParseError struct {
	File string
	Line int // 1-based
	Text string
	Err  error
}

// Error returns a human-readable string including file and line context.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}
