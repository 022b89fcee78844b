/*
Package header implements the text section of a Nanonis SXM file.

The section is a sequence of caption lines of the shape :KEY:, each
followed by zero or more content lines belonging to that key, and is
terminated by a literal :SCANIT_END: line. It is encoded in ISO 8859-1
so every byte maps to exactly one character.
*/
package header

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Terminator separates the text section from the binary payload.
const Terminator = ":SCANIT_END:"

// ErrMissingTerminator is returned when the input is exhausted before
// a :SCANIT_END: line is seen.
var ErrMissingTerminator = errors.New("header: missing " + Terminator + " terminator")

// Map holds the raw header fields keyed by their prettified caption,
// preserving the order they were encountered in.
type Map struct {
	keys   []string
	values map[string]string
}

// Len returns the number of header fields.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the header keys in source order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Lookup returns the raw value for key and whether it was present.
func (m *Map) Lookup(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Get returns the raw value for key, or the empty string if absent.
func (m *Map) Get(key string) string {
	return m.values[key]
}

func (m *Map) set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// prettifyKey turns caption text into a map key; '>' separates nested
// captions in the file and becomes '_'.
func prettifyKey(s string) string {
	s = strings.ReplaceAll(s, ">", "_")
	s = strings.ReplaceAll(s, ":", "")
	return strings.TrimSpace(s)
}

func isCaption(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, ":") && strings.HasSuffix(line, ":")
}

// Parse reads ISO 8859-1 text from r up to and including the
// terminator line and returns the accumulated header fields.
func Parse(r io.Reader) (*Map, error) {
	m := &Map{
		values: make(map[string]string),
	}

	var key string
	var content strings.Builder

	flush := func() {
		if key != "" {
			m.set(key, strings.TrimSpace(content.String()))
		}
		content.Reset()
	}

	s := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())

		if line == Terminator {
			flush()
			return m, nil
		}

		if isCaption(line) {
			flush()
			key = prettifyKey(line[1 : len(line)-1])
			continue
		}

		if content.Len() > 0 {
			content.WriteByte('\n')
		}
		content.WriteString(line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return nil, ErrMissingTerminator
}
