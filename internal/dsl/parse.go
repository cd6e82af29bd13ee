package dsl

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Parse turns one migration file's text into an ordered command sequence.
// Source order is preserved: later commands may depend on earlier ones.
// Any malformed line aborts the whole file with a *ParseError, so a file
// either parses completely or not at all.
func Parse(file string, src []byte) ([]Command, error) {
	var cmds []Command

	sc := bufio.NewScanner(bytes.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, CommentMarker) {
			continue
		}

		cmd, err := parseLine(text, line)
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Text: text, Err: err}
		}
		cmds = append(cmds, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", file, err)
	}
	return cmds, nil
}

// parseLine splits one trimmed, non-empty line into a typed command.
func parseLine(text string, line int) (Command, error) {
	tokens, err := splitTokens(text)
	if err != nil {
		return nil, err
	}

	keyword, args := tokens[0], tokens[1:]
	switch keyword {
	case "ecoadd":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: ecoadd takes 1 argument, got %d", ErrBadArity, len(args))
		}
		return EcoAdd{Name: args[0], Line: line}, nil

	case "repadd":
		if len(args) < 2 {
			return nil, fmt.Errorf("%w: repadd takes an ecosystem and a url, got %d arguments", ErrBadArity, len(args))
		}
		tags := make([]string, 0, len(args)-2)
		for _, tok := range args[2:] {
			if !strings.HasPrefix(tok, TagMarker) || len(tok) == len(TagMarker) {
				return nil, fmt.Errorf("%w: %q", ErrBadTag, tok)
			}
			tags = append(tags, strings.TrimPrefix(tok, TagMarker))
		}
		return RepAdd{Ecosystem: args[0], URL: args[1], Tags: tags, Line: line}, nil

	case "ecocon":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: ecocon takes 2 arguments, got %d", ErrBadArity, len(args))
		}
		return EcoCon{Parent: args[0], Child: args[1], Line: line}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKeyword, keyword)
}

// splitTokens splits on whitespace, except that a double-quoted token may
// contain spaces and backslash-escaped quotes. Quotes are stripped from the
// stored token.
func splitTokens(text string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(text) {
		// Skip inter-token whitespace.
		if text[i] == ' ' || text[i] == '\t' {
			i++
			continue
		}

		if text[i] == '"' {
			tok, next, err := scanQuoted(text, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
			continue
		}

		start := i
		for i < len(text) && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		tokens = append(tokens, text[start:i])
	}
	return tokens, nil
}

// scanQuoted consumes a double-quoted token starting at the opening quote,
// returning the unquoted value and the index just past the closing quote.
func scanQuoted(text string, start int) (string, int, error) {
	var b strings.Builder
	i := start + 1 // past opening quote
	for i < len(text) {
		switch text[i] {
		case '\\':
			// An escaped quote becomes a literal quote; any other escape
			// is kept verbatim.
			if i+1 < len(text) && text[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			b.WriteByte(text[i])
			i++
		case '"':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return "", 0, fmt.Errorf("%w: %s", ErrUnterminatedQuote, text[start:])
}
