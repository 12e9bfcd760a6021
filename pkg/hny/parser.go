// Package hny reads the .hny prompt file format.
//
// A file holds one or more sections separated by a line made of three or more
// dashes. The first line of a section is the prompt name and the remaining
// lines are its template body:
//
//	greet
//	Hello, {{ name }}!
//	---
//	farewell
//	Goodbye, {{ name }}.
//
// Sections are trimmed; empty sections are skipped and a section with a single
// line defines a prompt with an empty body. When a name repeats inside a file
// the later body wins and the prompt keeps its first position.
package hny

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Ext is the file extension of prompt files.
const Ext = ".hny"

var separator = regexp.MustCompile(`(?m)^-{3,}[ \t]*\r?$`)

// Section is one named prompt of a file.
type Section struct {
	Name string
	Body string
}

// ParseString splits text into its sections in file order.
func ParseString(text string) []Section {
	var sections []Section
	index := map[string]int{}

	for _, raw := range separator.Split(text, -1) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		name, body, _ := strings.Cut(raw, "\n")
		sec := Section{
			Name: strings.TrimSpace(name),
			Body: strings.TrimSpace(body),
		}

		if i, ok := index[sec.Name]; ok {
			sections[i] = sec
			continue
		}
		index[sec.Name] = len(sections)
		sections = append(sections, sec)
	}
	return sections
}

// Parse reads r fully and splits it into sections.
func Parse(r io.Reader) ([]Section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return ParseString(string(data)), nil
}

// ParseFile parses the file at path.
func ParseFile(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sections, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sections, nil
}

// Names returns the section names in order.
func Names(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}
