// Package deckio reads and writes card element lists, deck files and
// want-list reports in the element line grammar:
//
//	<code>[,[*artwork]][O][D][+]
//
// Blank lines and lines starting with '#' are ignored unless a format gives
// them a meaning.
package deckio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
)

// ReadElements reads one element per line.
func ReadElements(r io.Reader, resolve collection.Resolver) ([]*collection.Element, error) {
	var out []*collection.Element
	err := scanLines(r, func(lineNo int, line string) error {
		if isComment(line) {
			return nil
		}
		e, err := parseLine(lineNo, line, resolve)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteElements writes one element per line.
func WriteElements(w io.Writer, list []*collection.Element) error {
	bw := bufio.NewWriter(w)
	for _, e := range list {
		if _, err := fmt.Fprintln(bw, e.String()); err != nil {
			return fmt.Errorf("write element: %w", err)
		}
	}
	return bw.Flush()
}

// ParseLines parses element lines held in memory, e.g. from a YAML file.
// Line numbers in errors are 1-based indexes into lines.
func ParseLines(lines []string, resolve collection.Resolver) ([]*collection.Element, error) {
	out := make([]*collection.Element, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if isComment(line) {
			continue
		}
		e, err := parseLine(i+1, line, resolve)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// parseLine parses one line, attaching the line number to format errors.
func parseLine(lineNo int, line string, resolve collection.Resolver) (*collection.Element, error) {
	e, err := collection.ParseElement(line, resolve)
	if err != nil {
		var fe *collection.FormatError
		if errors.As(err, &fe) {
			fe.Line = lineNo
			return nil, fe
		}
		return nil, fmt.Errorf("line %d: %w", lineNo, err)
	}
	return e, nil
}

func scanLines(r io.Reader, fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := fn(lineNo, strings.TrimSpace(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}
	return nil
}

func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}
