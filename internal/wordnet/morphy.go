package wordnet

import "strings"

type substitution struct {
	suffix, replacement string
}

// detachmentRules are WordNet's inflectional suffix rules per part of speech.
var detachmentRules = map[POS][]substitution{
	Noun: {
		{"s", ""},
		{"ses", "s"},
		{"ves", "f"},
		{"xes", "x"},
		{"zes", "z"},
		{"ches", "ch"},
		{"shes", "sh"},
		{"men", "man"},
		{"ies", "y"},
	},
	Verb: {
		{"s", ""},
		{"ies", "y"},
		{"es", "e"},
		{"es", ""},
		{"ed", "e"},
		{"ed", ""},
		{"ing", "e"},
		{"ing", ""},
	},
	Adjective: {
		{"er", ""},
		{"est", ""},
		{"er", "e"},
		{"est", "e"},
	},
	Adverb: nil,
}

// Morphy returns the base forms of form that are indexed for pos, in the
// order WordNet finds them.
//
// An entry in the exception list wins outright: the form and its listed base
// forms are the only candidates. Otherwise the form itself and every single
// suffix detachment are tried; while nothing matches, the rules are applied
// again to the detached forms until no candidates remain.
func (db *Database) Morphy(form string, pos POS) []string {
	form = strings.ToLower(form)

	if bases, ok := db.exceptions[pos][form]; ok {
		return db.filterForms(append([]string{form}, bases...), pos)
	}

	forms := applyRules([]string{form}, pos)
	if results := db.filterForms(append([]string{form}, forms...), pos); len(results) > 0 {
		return results
	}

	for len(forms) > 0 {
		forms = applyRules(forms, pos)
		if results := db.filterForms(forms, pos); len(results) > 0 {
			return results
		}
	}
	return nil
}

func applyRules(forms []string, pos POS) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, form := range forms {
		for _, rule := range detachmentRules[pos] {
			if !strings.HasSuffix(form, rule.suffix) {
				continue
			}
			next := form[:len(form)-len(rule.suffix)] + rule.replacement
			if next == "" {
				continue
			}
			if _, dup := seen[next]; dup {
				continue
			}
			seen[next] = struct{}{}
			out = append(out, next)
		}
	}
	return out
}

func (db *Database) filterForms(forms []string, pos POS) []string {
	var out []string
	seen := make(map[string]struct{}, len(forms))
	for _, form := range forms {
		if !db.Has(form, pos) {
			continue
		}
		if _, dup := seen[form]; dup {
			continue
		}
		seen[form] = struct{}{}
		out = append(out, form)
	}
	return out
}
