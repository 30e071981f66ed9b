package runtime

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Normalize trims and lowercases every corpus entry, drops empty entries and
// removes duplicates. The first occurrence of each word keeps its position.
func Normalize(raw []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(raw))
	words := make([]string, 0, len(raw))
	for _, entry := range raw {
		word := lower.String(strings.TrimSpace(entry))
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}

// groupKey returns the key function for a grouping key name.
func groupKey(name string) (func(word string) string, error) {
	switch name {
	case sieve.GroupByFirstLetter:
		return func(word string) string {
			r, size := utf8.DecodeRuneInString(word)
			if size == 0 {
				return ""
			}
			return string(r)
		}, nil
	case sieve.GroupByLastLetter:
		return func(word string) string {
			r, size := utf8.DecodeLastRuneInString(word)
			if size == 0 {
				return ""
			}
			return string(r)
		}, nil
	default:
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("unknown grouping key %q (available: %s, %s)", name, sieve.GroupByFirstLetter, sieve.GroupByLastLetter), nil)
	}
}

// BuildResultSet deduplicates and sorts words and, when grouping is set,
// buckets them by key and drops buckets smaller than the minimum size.
// Sorting is by byte order, which for UTF-8 is code point order.
func BuildResultSet(words []string, grouping *sieve.Grouping) (*sieve.ResultSet, error) {
	sorted := slices.Clone(words)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted == nil {
		sorted = []string{}
	}

	if grouping == nil {
		return &sieve.ResultSet{Words: sorted}, nil
	}

	keyOf, err := groupKey(grouping.Key)
	if err != nil {
		return nil, err
	}
	minSize := grouping.MinSize
	if minSize < 1 {
		minSize = 1
	}

	buckets := make(map[string][]string)
	for _, word := range sorted {
		key := keyOf(word)
		buckets[key] = append(buckets[key], word)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	rs := &sieve.ResultSet{Words: []string{}, Grouped: true, Groups: []sieve.Group{}}
	for _, key := range keys {
		members := buckets[key]
		if len(members) < minSize {
			rs.DroppedGroups++
			continue
		}
		rs.Groups = append(rs.Groups, sieve.Group{Key: key, Words: members})
		rs.Words = append(rs.Words, members...)
	}
	// lastLetter groups interleave in global order.
	slices.Sort(rs.Words)
	return rs, nil
}
