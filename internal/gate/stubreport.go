package gate

import (
	"fmt"
	"io"
	"sort"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// Entry is one stub-report row: a stubbed method's canonical name and
// why it was stubbed.
type Entry struct {
	MethodFullName string
	Reason         string
}

// Report collects one Entry per stubbed method across mod, sorted by
// canonical name — the artifact the external emitter reads to know
// which methods it must not expect a body for.
func Report(mod *ir.Module) []Entry {
	var out []Entry
	for _, m := range mod.GetAllMethods() {
		if !m.IsStubbed() {
			continue
		}
		out = append(out, Entry{MethodFullName: m.QualifiedName(), Reason: m.StubReason.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MethodFullName < out[j].MethodFullName })
	return out
}

// WriteText renders entries as the stubbed_methods.txt-equivalent text
// report: one "{method-full-name}\t{stub-reason}" line per entry.
func WriteText(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", e.MethodFullName, e.Reason); err != nil {
			return err
		}
	}
	return nil
}
