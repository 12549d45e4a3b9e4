// Package cascade evaluates ordered rule tables: the first rule whose
// predicate matches decides the result.
package cascade

import "strings"

// Rule pairs a predicate with the result it selects.
type Rule[T any] struct {
	Name   string
	Match  func(text string) bool
	Result T
}

// Table is an ordered list of rules. Order is priority.
type Table[T any] []Rule[T]

// Evaluate returns the result and name of the first matching rule. ok is
// false when no rule matches.
func (t Table[T]) Evaluate(text string) (result T, name string, ok bool) {
	for _, r := range t {
		if r.Match != nil && r.Match(text) {
			return r.Result, r.Name, true
		}
	}
	return result, "", false
}

// EvaluateOr returns the first matching result, or def when nothing matches.
func (t Table[T]) EvaluateOr(text string, def T) T {
	if r, _, ok := t.Evaluate(text); ok {
		return r
	}
	return def
}

// ContainsAny matches text containing any of the substrings. Matching is
// case-sensitive; callers lower-case input first.
func ContainsAny(substrs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range substrs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// Keywords builds a rule that fires on any of the substrings.
func Keywords[T any](name string, result T, substrs ...string) Rule[T] {
	return Rule[T]{Name: name, Match: ContainsAny(substrs...), Result: result}
}
