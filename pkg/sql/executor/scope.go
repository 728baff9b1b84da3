// pkg/sql/executor/scope.go
package executor

import (
	"fmt"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/types"
)

// tuple is an intermediate SELECT row: a map from qualified name
// "alias.column" to value (spec.md §4.3.6).
type tuple map[string]types.Value

func (t tuple) clone() tuple {
	out := make(tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func merge(a, b tuple) tuple {
	out := a.clone()
	for k, v := range b {
		out[k] = v
	}
	return out
}

// scope tracks which table aliases and columns are visible at a point in the
// join pipeline, so an unqualified column reference can be resolved or
// rejected as ambiguous (spec.md §4.3.6).
type scope struct {
	aliases []string
	cols    map[string][]string // alias -> column names, schema order
}

func newScope(alias string, cols []string) *scope {
	return &scope{aliases: []string{alias}, cols: map[string][]string{alias: cols}}
}

func (s *scope) with(alias string, cols []string) *scope {
	next := &scope{
		aliases: append(append([]string{}, s.aliases...), alias),
		cols:    make(map[string][]string, len(s.cols)+1),
	}
	for k, v := range s.cols {
		next.cols[k] = v
	}
	next.cols[alias] = cols
	return next
}

// resolve finds the qualified tuple key "alias.column" for ref, failing with
// SemanticError when the column is missing or ambiguous. The returned key is
// always built from the canonical alias/column casing recorded in the scope,
// never from ref's literal casing, so "U.id" resolves against an alias
// declared as "u" the same as "u.id" would (spec.md §4.1: identifiers are
// case-insensitive).
func (s *scope) resolve(ref parser.ColumnRef) (string, error) {
	if ref.Qualifier != "" {
		alias := s.canonicalAlias(ref.Qualifier)
		if alias == "" {
			return "", &SemanticError{Reason: fmt.Sprintf("unknown table or alias %q", ref.Qualifier)}
		}
		for _, c := range s.cols[alias] {
			if equalFold(c, ref.Name) {
				return alias + "." + c, nil
			}
		}
		return "", &SemanticError{Reason: fmt.Sprintf("column %q not found on %q", ref.Name, ref.Qualifier), Err: schema.ErrColumnNotFound}
	}
	var matches []string
	for _, alias := range s.aliases {
		for _, c := range s.cols[alias] {
			if equalFold(c, ref.Name) {
				matches = append(matches, alias+"."+c)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", &SemanticError{Reason: fmt.Sprintf("column %q not found", ref.Name), Err: schema.ErrColumnNotFound}
	case 1:
		return matches[0], nil
	default:
		return "", &SemanticError{Reason: fmt.Sprintf("column reference %q is ambiguous", ref.Name)}
	}
}

// canonicalAlias returns the scope's own casing for alias, or "" if no such
// alias is in scope.
func (s *scope) canonicalAlias(alias string) string {
	for _, a := range s.aliases {
		if equalFold(a, alias) {
			return a
		}
	}
	return ""
}

// nullTuple returns a tuple with every column in scope set to NULL, used to
// fill the missing side of an outer join.
func (s *scope) nullTuple() tuple {
	t := make(tuple)
	for _, alias := range s.aliases {
		for _, c := range s.cols[alias] {
			t[alias+"."+c] = types.NewNull()
		}
	}
	return t
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
