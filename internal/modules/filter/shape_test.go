package filter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

func TestPredicates(t *testing.T) {
	ascending, _ := IsConsecutive(DirectionAscending)
	descending, _ := IsConsecutive(DirectionDescending)
	either, _ := IsConsecutive(DirectionEither)

	tests := []struct {
		name      string
		predicate Predicate
		accept    []string
		reject    []string
	}{
		{
			name:      "palindrome",
			predicate: IsPalindrome,
			accept:    []string{"noon", "level", "a", "été"},
			reject:    []string{"eye_", "test", "ab"},
		},
		{
			name:      "consecutive ascending",
			predicate: ascending,
			accept:    []string{"abc", "rst", "hi", "de"},
			reject:    []string{"cba", "abd", "aa", "ba"},
		},
		{
			name:      "consecutive descending",
			predicate: descending,
			accept:    []string{"cba", "ih", "fed"},
			reject:    []string{"abc", "cbb"},
		},
		{
			name:      "consecutive either",
			predicate: either,
			accept:    []string{"abc", "cba"},
			reject:    []string{"aba", "abd"},
		},
		{
			name:      "same ends",
			predicate: HasSameEnds,
			accept:    []string{"stats", "eye", "aa"},
			reject:    []string{"", "test2", "ab"},
		},
		{
			name:      "contains all",
			predicate: ContainsAll([]rune("eo")),
			accept:    []string{"one", "hello"},
			reject:    []string{"eye", "noon"},
		},
		{
			name:      "excludes",
			predicate: Excludes("_-"),
			accept:    []string{"icecream", "eye"},
			reject:    []string{"ice_cream", "x-ray"},
		},
		{
			name:      "alphabetic",
			predicate: IsAlphabetic,
			accept:    []string{"noon", "café"},
			reject:    []string{"", "r2d2", "ice_cream"},
		},
		{
			name:      "length between",
			predicate: LengthBetween(2, 4),
			accept:    []string{"ab", "noon", "été"},
			reject:    []string{"a", "level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.accept {
				if !tt.predicate(w) {
					t.Errorf("predicate(%q) = false, want true", w)
				}
			}
			for _, w := range tt.reject {
				if tt.predicate(w) {
					t.Errorf("predicate(%q) = true, want false", w)
				}
			}
		})
	}
}

func TestIsConsecutive_InvalidDirection(t *testing.T) {
	if _, err := IsConsecutive("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestShapeModule_MinLengthGuard(t *testing.T) {
	tests := []struct {
		cfg   sieve.ModuleConfig
		input []string
		want  []string
	}{
		{
			cfg:   sieve.ModuleConfig{Type: TypePalindrome},
			input: []string{"a", "i", "aa", "noon", "test"},
			want:  []string{"aa", "noon"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeConsecutive},
			input: []string{"a", "ab", "abc", "ba"},
			want:  []string{"ab", "abc"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeSameEnds},
			input: []string{"a", "eye", "noon"},
			want:  []string{"eye"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypePalindrome, Config: map[string]interface{}{"minLength": float64(4)}},
			input: []string{"aa", "eye", "noon", "level"},
			want:  []string{"noon", "level"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypePalindrome, Config: map[string]interface{}{"minLength": float64(1)}},
			input: []string{"a", "aa"},
			want:  []string{"aa"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeExcludes},
			input: []string{"ice_cream", "eye"},
			want:  []string{"eye"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeLength, Config: map[string]interface{}{"exact": float64(3)}},
			input: []string{"ab", "abc", "abcd"},
			want:  []string{"abc"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeContainsAll, Config: map[string]interface{}{"letters": []interface{}{"n", "o"}}},
			input: []string{"noon", "eye", "on"},
			want:  []string{"noon", "on"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeContainsAll, Config: map[string]interface{}{"letters": "QU"}},
			input: []string{"quick", "queen", "quiz", "tree"},
			want:  []string{"quick", "queen", "quiz"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeContainsAll, Config: map[string]interface{}{"letters": []interface{}{"Q", "u"}}},
			input: []string{"quick", "cue"},
			want:  []string{"quick"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeExcludes, Config: map[string]interface{}{"chars": []interface{}{"-", "'"}}},
			input: []string{"ice_cream", "o'clock", "x-ray", "eye"},
			want:  []string{"ice_cream", "eye"},
		},
		{
			cfg:   sieve.ModuleConfig{Type: TypeExcludes, Config: map[string]interface{}{"chars": "Z"}},
			input: []string{"zoo", "eye"},
			want:  []string{"eye"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Type, func(t *testing.T) {
			m, err := NewShapeFromConfig(tt.cfg)
			if err != nil {
				t.Fatalf("NewShapeFromConfig() error = %v", err)
			}
			got, err := m.Process(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Process() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewShapeFromConfig_Invalid(t *testing.T) {
	tests := map[string]sieve.ModuleConfig{
		"unknown type":         {Type: "anagram"},
		"bad direction":        {Type: TypeConsecutive, Config: map[string]interface{}{"direction": "up"}},
		"missing letters":      {Type: TypeContainsAll, Config: map[string]interface{}{}},
		"letters wrong type":   {Type: TypeContainsAll, Config: map[string]interface{}{"letters": 3.0}},
		"chars wrong type":     {Type: TypeExcludes, Config: map[string]interface{}{"chars": []interface{}{"-", 1.0}}},
		"max below min":        {Type: TypeLength, Config: map[string]interface{}{"min": 5.0, "max": 2.0}},
		"exact with min":       {Type: TypeLength, Config: map[string]interface{}{"min": 2.0, "exact": 3.0}},
		"fractional min":       {Type: TypeLength, Config: map[string]interface{}{"min": 2.5}},
		"negative minLength":   {Type: TypePalindrome, Config: map[string]interface{}{"minLength": -1.0}},
		"minLength not number": {Type: TypePalindrome, Config: map[string]interface{}{"minLength": "2"}},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewShapeFromConfig(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if errhandling.GetErrorCategory(err) != errhandling.CategoryConfiguration {
				t.Errorf("category = %v, want configuration", errhandling.GetErrorCategory(err))
			}
		})
	}
}

func TestShapeTypes(t *testing.T) {
	want := []string{"alphabetic", "consecutive", "containsAll", "excludes", "length", "palindrome", "sameEnds"}
	if got := ShapeTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("ShapeTypes() = %v, want %v", got, want)
	}
}

func TestShapeModule_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewShapeModule(TypePalindrome, 2, IsPalindrome)
	if _, err := m.Process(ctx, []string{"noon"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
