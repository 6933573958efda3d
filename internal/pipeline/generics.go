package pipeline

import (
	"strings"

	"github.com/axiomates/cil2cpp/internal/reach"
)

// baseGenericName strips an array, pointer, or by-ref suffix so an
// edge-discovery pass can treat "System.Int32[]" or "System.Int32&" as a
// reference to the element type System.Int32 — the only one of the two
// that is ever itself a reachable TypeDef.
func baseGenericName(name string) string {
	name = strings.TrimRight(name, "*&")
	for {
		switch {
		case strings.HasSuffix(name, "[,]"):
			name = strings.TrimSuffix(name, "[,]")
		case strings.HasSuffix(name, "[]"):
			name = strings.TrimSuffix(name, "[]")
		default:
			return name
		}
	}
}

// parseGenericInstanceName reverses the "Open`N<Arg1, Arg2>" string
// DecodeTypeSignature's ElemGenericInst case produces, splitting the
// argument list on top-level commas only (a nested "Dictionary<K, V>"
// argument's own comma must not split the outer list).
func parseGenericInstanceName(name string) (reach.GenericInstantiation, bool) {
	idx := strings.IndexByte(name, '<')
	if idx < 0 || !strings.HasSuffix(name, ">") {
		return reach.GenericInstantiation{}, false
	}
	open := name[:idx]
	inner := name[idx+1 : len(name)-1]
	args := splitTopLevelCommas(inner)
	if len(args) == 0 {
		return reach.GenericInstantiation{}, false
	}
	return reach.GenericInstantiation{OpenDefinitionName: open, TypeArgNames: args}, true
}

func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}
