// Package parser extracts card entries from markdown deck files.
//
// Deck format: a card starts at a "Q:" line, its answer at the following
// "A:" line, with an optional "H:" hint. Any field may span multiple lines;
// "---" or a new "Q:" line ends the current card.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/studygenius/srs/internal/content"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	hintPrefix  = "H:"
	separator   = "---"
)

type field int

const (
	none field = iota
	front
	back
	hint
)

// ParseFile reads the deck file at path and extracts all entries.
func ParseFile(path string) ([]content.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a deck from r and extracts all entries. Text outside any
// Q:/A:/H: block is ignored, so decks can carry headings and prose.
func Parse(r io.Reader) ([]content.Entry, error) {
	var (
		entries []content.Entry
		current content.Entry
		block   []string
		active  = none
	)

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		// Blank lines between cards get collected into the open block;
		// they are never part of the field text.
		text := strings.TrimRight(strings.Join(block, "\n"), "\n")
		switch active {
		case front:
			current.Front = text
		case back:
			current.Back = text
		case hint:
			current.Hint = text
		}
		block = nil
	}

	flushEntry := func() {
		flushBlock()
		if current.Front != "" {
			entries = append(entries, current)
		}
		current = content.Entry{}
		active = none
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if line == separator {
			flushEntry()
			continue
		}

		switch {
		case strings.HasPrefix(line, frontPrefix):
			// A new front always starts a new card.
			if active != none {
				flushEntry()
			}
			active = front
			block = append(block, trimPrefix(line, frontPrefix))
		case strings.HasPrefix(line, backPrefix):
			flushBlock()
			active = back
			block = append(block, trimPrefix(line, backPrefix))
		case strings.HasPrefix(line, hintPrefix):
			flushBlock()
			active = hint
			block = append(block, trimPrefix(line, hintPrefix))
		default:
			if active != none {
				block = append(block, line)
			}
		}
	}
	flushEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// trimPrefix strips the field marker and at most one following space, so
// "Q: text" and "Q:text" both yield "text" while deeper indentation survives.
func trimPrefix(line, prefix string) string {
	rest := line[len(prefix):]
	return strings.TrimPrefix(rest, " ")
}
