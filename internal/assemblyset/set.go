package assemblyset

import (
	"path/filepath"

	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/metadata"
)

// LoadedAssembly is one node of the resolved assembly graph.
type LoadedAssembly struct {
	Name           string
	Path           string
	Reader         *metadata.Reader
	Classification Classification

	// ReferencedNames lists the simple names of this assembly's direct
	// AssemblyRef entries, in table order.
	ReferencedNames []string
}

// Set is the directed acyclic graph of loaded assemblies a build
// resolves from one entry path: the entry, its directly-referenced
// assemblies (resolved through the standard probing path plus the
// platform BCL directory), and the transitive closure.
type Set struct {
	Assemblies map[string]*LoadedAssembly
	// Order lists assembly names in load (first-seen, breadth-first)
	// order — the deterministic iteration order downstream passes use.
	Order []string
	Entry *LoadedAssembly

	// CyclesDetected lists names whose reference was met while that
	// assembly's own load was still in progress. The load walk checks
	// Assemblies first, and an assembly is in Assemblies before its
	// references are queued, so a reference cycle ends at that check:
	// nothing is appended here and cycles are not reported.
	CyclesDetected [][]string

	faults           *diag.Collector
	wantDebugSymbols bool
}

// Close releases every loaded assembly's metadata reader.
func (s *Set) Close() {
	for _, a := range s.Assemblies {
		if a.Reader != nil {
			a.Reader.Close()
		}
	}
}

// Load resolves entryPath and its transitive assembly references into a
// Set. wantDebugSymbols is forwarded to each metadata.Open call.
func Load(entryPath, bclDir string, wantDebugSymbols bool) (*Set, error) {
	s := &Set{
		Assemblies:       make(map[string]*LoadedAssembly),
		faults:           diag.NewCollector(),
		wantDebugSymbols: wantDebugSymbols,
	}

	prober := &Prober{AppDir: filepath.Dir(entryPath), BCLDir: bclDir}

	entry, err := s.load(entryPath, true, false)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Entry = entry

	// Worklist loop: resolve references recursively, guarded by the
	// Assemblies map so a visited assembly is never reloaded.
	var worklist []string
	worklist = append(worklist, entry.ReferencedNames...)
	inflight := map[string]bool{entry.Name: true}

	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]

		if _, already := s.Assemblies[name]; already {
			continue
		}
		if inflight[name] {
			s.CyclesDetected = append(s.CyclesDetected, []string{name})
			continue
		}

		path, fromBCL, ok := prober.Resolve(name)
		if !ok {
			s.faults.RecordFatal(diag.New(diag.KindUnresolvedReference, "assembly reference "+name))
			continue
		}

		inflight[name] = true
		loaded, err := s.load(path, false, fromBCL)
		inflight[name] = false
		if err != nil {
			if de, ok := err.(*diag.Error); ok {
				s.faults.RecordFatal(de)
			} else {
				s.faults.RecordFatal(diag.Wrap(diag.KindIOError, "loading "+path, err))
			}
			continue
		}

		worklist = append(worklist, loaded.ReferencedNames...)
	}

	if s.faults.HasFatal() {
		s.Close()
		return nil, s.faults.FatalErrors()[0]
	}

	return s, nil
}

func (s *Set) load(path string, isEntry bool, fromBCL bool) (*LoadedAssembly, error) {
	r, err := metadata.Open(path, s.wantDebugSymbols)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(r.AssemblyRefs()))
	for _, ref := range r.AssemblyRefs() {
		name, err := r.StringAt(ref.Name)
		if err != nil {
			r.Close()
			return nil, err
		}
		names = append(names, name)
	}

	la := &LoadedAssembly{
		Name:            r.AssemblyName(),
		Path:            path,
		Reader:          r,
		Classification:  Classify(r.AssemblyName(), fromBCL, isEntry),
		ReferencedNames: names,
	}
	s.Assemblies[la.Name] = la
	s.Order = append(s.Order, la.Name)
	return la, nil
}

// Faults returns the fault collector accumulated during Load. Load
// records only fatal faults (an unresolved reference or a failed
// assembly load) and returns an error instead of a Set when any was
// recorded, so a returned Set's collector holds no faults; no forwarder
// or cycle diagnostics are recorded.
func (s *Set) Faults() *diag.Collector {
	return s.faults
}
