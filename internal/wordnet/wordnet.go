// Package wordnet reads a WordNet 3.x database directory (the dict/ directory
// of a WordNet release or of the NLTK wordnet corpus) and answers lemma
// lookups with WordNet's morphological reduction.
//
// Only the index files (index.noun, index.verb, index.adj, index.adv) and the
// exception lists (noun.exc, verb.exc, adj.exc, adv.exc) are read. A lemma is
// present in a part of speech when its index line lists at least one synset.
package wordnet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// POS is a WordNet part of speech.
type POS byte

// Parts of speech, using the WordNet single-letter codes.
const (
	Noun      POS = 'n'
	Verb      POS = 'v'
	Adjective POS = 'a'
	Adverb    POS = 'r'
)

// AllPOS lists the parts of speech in the order lookups try them.
var AllPOS = []POS{Noun, Verb, Adjective, Adverb}

func (p POS) String() string {
	switch p {
	case Noun:
		return "noun"
	case Verb:
		return "verb"
	case Adjective:
		return "adj"
	case Adverb:
		return "adv"
	default:
		return "pos(" + string(p) + ")"
	}
}

func (p POS) bit() uint8 {
	switch p {
	case Noun:
		return 1
	case Verb:
		return 2
	case Adjective:
		return 4
	case Adverb:
		return 8
	default:
		return 0
	}
}

// ErrNoDatabase is returned when a directory holds no WordNet index files.
var ErrNoDatabase = errors.New("not a WordNet database directory")

// maxLineSize bounds index lines; the longest WordNet 3.0 lines are a few KB.
const maxLineSize = 1 << 20

// Database is an in-memory view of the WordNet index and exception files.
// It is read-only after Open and safe for concurrent use.
type Database struct {
	lemmas     map[string]uint8
	exceptions map[POS]map[string][]string
}

// Open loads the index and exception files found in dir. Every index file
// must be present and readable; exception files are optional.
func Open(dir string) (*Database, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDatabase)
	}

	db := &Database{
		lemmas:     make(map[string]uint8, 150000),
		exceptions: make(map[POS]map[string][]string, len(AllPOS)),
	}

	for _, pos := range AllPOS {
		path := filepath.Join(dir, "index."+pos.String())
		if err := db.loadIndex(path, pos); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w: %w", dir, ErrNoDatabase, err)
			}
			return nil, err
		}

		excPath := filepath.Join(dir, pos.String()+".exc")
		excs, err := loadExceptions(excPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		db.exceptions[pos] = excs
	}

	return db, nil
}

// Len returns the number of distinct lemma names.
func (db *Database) Len() int {
	return len(db.lemmas)
}

// Lemmas returns every lemma name in sorted order. Multi-word lemmas keep
// WordNet's underscore separator ("ice_cream").
func (db *Database) Lemmas() []string {
	out := make([]string, 0, len(db.lemmas))
	for lemma := range db.lemmas {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}

// Has reports whether lemma is indexed for pos. No morphology is applied.
func (db *Database) Has(lemma string, pos POS) bool {
	return db.lemmas[lemma]&pos.bit() != 0
}

// HasSynsets reports whether word has at least one synset in any part of
// speech after morphological reduction. Spaces are treated as the underscore
// WordNet uses for collocations.
func (db *Database) HasSynsets(word string) bool {
	lemma := strings.ReplaceAll(strings.ToLower(word), " ", "_")
	if lemma == "" {
		return false
	}
	for _, pos := range AllPOS {
		if len(db.Morphy(lemma, pos)) > 0 {
			return true
		}
	}
	return false
}

func (db *Database) loadIndex(path string, pos POS) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lineNo, err := scanLines(f, func(line string) error {
		// license header lines start with a space
		if line == "" || line[0] == ' ' {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return fmt.Errorf("expected at least 4 fields, got %d", len(fields))
		}
		synsets, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid synset count %q", fields[2])
		}
		if synsets > 0 {
			db.lemmas[fields[0]] |= pos.bit()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%d: %w", path, lineNo, err)
	}
	return nil
}

func loadExceptions(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return map[string][]string{}, err
	}
	defer f.Close()

	excs := make(map[string][]string)
	lineNo, err := scanLines(f, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil
		}
		excs[fields[0]] = append(excs[fields[0]], fields[1:]...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
	}
	return excs, nil
}

// scanLines calls fn for every line of r and returns the number of the line
// being processed when an error occurred.
func scanLines(r io.Reader, fn func(line string) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := fn(scanner.Text()); err != nil {
			return lineNo, err
		}
	}
	return lineNo, scanner.Err()
}
