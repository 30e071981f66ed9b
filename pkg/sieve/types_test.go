package sieve

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResultSet_Len(t *testing.T) {
	tests := []struct {
		name string
		rs   *ResultSet
		want int
	}{
		{name: "nil", rs: nil, want: 0},
		{name: "empty", rs: &ResultSet{Words: []string{}}, want: 0},
		{name: "flat", rs: &ResultSet{Words: []string{"eye", "noon"}}, want: 2},
		{
			name: "grouped counts kept groups only",
			rs: &ResultSet{
				Words:         []string{"ant", "apple", "bee"},
				Grouped:       true,
				Groups:        []Group{{Key: "a", Words: []string{"ant", "apple"}}},
				DroppedGroups: 1,
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rs.Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPipeline_JSONRoundTripDropsBaseDir(t *testing.T) {
	p := Pipeline{
		ID:      "palindromes",
		Name:    "Palindromes",
		Version: "1.0.0",
		Corpus:  &ModuleConfig{Type: "wordlist", Config: map[string]interface{}{"path": "words.txt"}},
		Filters: []ModuleConfig{{Type: "palindrome"}},
		Grouping: &Grouping{
			Key:     GroupByFirstLetter,
			MinSize: 2,
		},
		Output:  &ModuleConfig{Type: "stdout"},
		BaseDir: "/etc/wordsieve",
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "/etc/wordsieve") {
		t.Errorf("BaseDir must not be serialized: %s", data)
	}
	for _, key := range []string{`"corpus"`, `"filters"`, `"grouping"`, `"minSize":2`, `"output"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("serialized pipeline missing %s: %s", key, data)
		}
	}
	if strings.Contains(string(data), `"meaning"`) {
		t.Errorf("nil meaning should be omitted: %s", data)
	}

	var back Pipeline
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.BaseDir != "" {
		t.Errorf("BaseDir = %q, want empty", back.BaseDir)
	}
	if back.Grouping == nil || back.Grouping.Key != GroupByFirstLetter {
		t.Errorf("Grouping = %+v", back.Grouping)
	}
}
