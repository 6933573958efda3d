// Package mangle implements a forward-only mapping from CIL
// fully-qualified names to target-language identifiers; no reverse
// mapping is maintained or needed.
package mangle

import (
	"strconv"
	"strings"
)

// escape replaces one rune with its deterministic string encoding.
var simpleReplacements = map[rune]string{
	'.': "_",
	'+': "_",
	'/': "_",
	'`': "_",
}

// Type mangles a CIL type full name (e.g. "System.Collections.Generic.List`1",
// "Outer+Inner") into a valid, module-unique target identifier for an
// instance (non-generic-template) form. The backtick arity marker folds
// to "_" like the separators do ("Wrapper`1" -> "Wrapper_1"); underscores
// left at the very end of the result are then trimmed in this form
// ("Wrapper`" -> "Wrapper"), while OpenTypeTemplate keeps them.
func Type(cilFullName string) string {
	return strings.TrimRight(mangleCore(cilFullName), "_")
}

// OpenTypeTemplate mangles the same name without trimming trailing
// underscores. When arity digits follow the backtick ("Wrapper`1") there
// is no trailing underscore, and the result equals Type's.
func OpenTypeTemplate(cilFullName string) string {
	return mangleCore(cilFullName)
}

func mangleCore(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if rep, ok := simpleReplacements[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GenericInstance mangles a generic instantiation's name from its open
// definition's full name and the mangled names of its concrete type
// arguments, joined by "_": each type argument is mangled recursively
// and the results are joined by "_", so angle brackets and commas never
// appear in the output. The open generic definition itself is never
// instantiable, so this is the only path that produces a generic
// instance's Type.MangledName.
func GenericInstance(openDefFullName string, argCilFullNames []string) string {
	base := strings.TrimSuffix(OpenTypeTemplate(openDefFullName), "_")
	// Drop a trailing arity marker like "`1" already folded to "_1" by
	// mangleCore's backtick replacement; find and strip the numeric arity
	// suffix if mangleCore left one (e.g. "List_1" -> "List").
	base = stripArity(base)

	parts := make([]string, 0, len(argCilFullNames)+1)
	parts = append(parts, base)
	for _, arg := range argCilFullNames {
		parts = append(parts, Type(arg))
	}
	return strings.Join(parts, "_")
}

// stripArity removes a trailing "_<digits>" arity marker left over from
// the backtick replacement, e.g. "List_1" -> "List".
func stripArity(s string) string {
	i := strings.LastIndexByte(s, '_')
	if i < 0 || i == len(s)-1 {
		return s
	}
	for _, r := range s[i+1:] {
		if r < '0' || r > '9' {
			return s
		}
	}
	return s[:i]
}

// syntheticBracketEscape is the deterministic escape applied to the
// angle brackets compiler-generated names carry, e.g. "<Clone>$" or
// "<TestLambda>b__0".
const syntheticBracketEscape = "___"

// Synthetic mangles a compiler-generated member name (one containing
// '<' and '>', optionally followed by a '$' or "b__N" suffix) into a
// valid identifier, e.g. "<Clone>$" -> "___Clone____dollar_".
func Synthetic(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2*syntheticBracketCount(name))
	for _, r := range name {
		switch r {
		case '<', '>':
			b.WriteString(syntheticBracketEscape)
		case '$':
			b.WriteString("_dollar_")
		default:
			if rep, ok := simpleReplacements[r]; ok {
				b.WriteString(rep)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func syntheticBracketCount(name string) int {
	n := 0
	for _, r := range name {
		if r == '<' || r == '>' {
			n++
		}
	}
	return n
}

// Table deduplicates mangled identifiers across an entire module: two
// distinct CIL full names must never collide on the same target
// identifier. Collisions are resolved by appending a dense numeric suffix
// to every name after the first that maps to an already-seen
// identifier, in first-seen order, so the result stays deterministic
// across repeated builds of the same input.
type Table struct {
	seen map[string]string // CIL full name -> final mangled identifier
	used map[string]int    // mangled identifier -> next disambiguation suffix
}

// NewTable returns an empty collision table.
func NewTable() *Table {
	return &Table{
		seen: make(map[string]string),
		used: make(map[string]int),
	}
}

// Intern mangles cilFullName with mangleFn (Type, OpenTypeTemplate, or
// Synthetic) and returns a module-unique identifier, resolving
// collisions deterministically. Repeated calls for the same
// cilFullName return the same identifier.
func (t *Table) Intern(cilFullName string, mangleFn func(string) string) string {
	if id, ok := t.seen[cilFullName]; ok {
		return id
	}
	base := mangleFn(cilFullName)
	id := base
	if n, collided := t.used[base]; collided {
		id = base + "_" + strconv.Itoa(n)
		t.used[base] = n + 1
	} else {
		t.used[base] = 1
	}
	t.seen[cilFullName] = id
	return id
}
