// Package pipeline wires a loaded assemblyset.Set into the reachability
// analyzer and the IR builder: it is the only package that translates
// between raw ECMA-335 rows and the name-keyed, decoupled interfaces
// internal/reach and internal/build declare for themselves.
package pipeline

import (
	"strconv"
	"strings"

	"github.com/axiomates/cil2cpp/internal/assemblyset"
	"github.com/axiomates/cil2cpp/internal/build"
	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/icall"
	"github.com/axiomates/cil2cpp/internal/mangle"
	"github.com/axiomates/cil2cpp/internal/metadata"
	"github.com/axiomates/cil2cpp/internal/reach"
)

// typeEntry locates one TypeDef's owning assembly, so a Bridge can read
// its fields/methods/interfaces on demand instead of eagerly
// materializing every type up front.
type typeEntry struct {
	asm *assemblyset.LoadedAssembly
	td  metadata.TypeDef
}

// Bridge adapts a loaded assemblyset.Set into both reach.EdgeSource (for
// the reachability sweep) and build.Source (for the eight-pass
// builder), so neither package needs its own metadata reader.
type Bridge struct {
	set    *assemblyset.Set
	icalls *icall.Registry

	typeNames  *mangle.Table
	methodIDs  *mangle.Table

	byFullName map[string]typeEntry
	order      []string // FullName in first-seen (load, then declaration) order

	faults *diag.Collector

	// reachable narrows ReachableTypes/TypeDesc.Methods once the
	// reachability sweep has run; nil before SetReachability is called,
	// meaning "everything is reachable" (used by EdgeSource traversal
	// itself, which must see the whole graph).
	reachable *reach.Result
}

// NewBridge indexes every TypeDef across set's loaded assemblies by CIL
// full name, first assembly wins on a name collision (a forwarder or a
// duplicate facade never shadows the defining assembly, which is always
// visited first in load order).
func NewBridge(set *assemblyset.Set, icalls *icall.Registry) *Bridge {
	b := &Bridge{
		set:        set,
		icalls:     icalls,
		typeNames:  mangle.NewTable(),
		methodIDs:  mangle.NewTable(),
		byFullName: make(map[string]typeEntry),
		faults:     diag.NewCollector(),
	}
	for _, name := range set.Order {
		a := set.Assemblies[name]
		for _, td := range a.Reader.TypeDefs() {
			if _, exists := b.byFullName[td.FullName]; exists {
				continue
			}
			b.byFullName[td.FullName] = typeEntry{asm: a, td: td}
			b.order = append(b.order, td.FullName)
		}
	}
	return b
}

// Faults returns metadata-decode faults accumulated while walking
// method bodies for reachability edges or IR construction.
func (b *Bridge) Faults() *diag.Collector { return b.faults }

// SetReachability narrows every later ReachableTypes/OpenGenericDefinition
// call to res's closed set, and seeds InitialInstantiations from
// res.Instantiations. Call once, after reach.Analyze has run over this
// same Bridge used as a reach.EdgeSource.
func (b *Bridge) SetReachability(res reach.Result) {
	b.reachable = &res
}

// Roots returns the reachability seeds for a whole-program build: every
// method of every user-classified type (the entry assembly's own code),
// plus the COR20 entry point method if the entry assembly declares one.
// A user type's public surface is conservatively all-reachable since
// external callers (tests, reflection, a host embedding this binary)
// may invoke any of it; third-party and BCL code is only included
// transitively, through what user code actually calls.
func (b *Bridge) Roots() []reach.Member {
	var roots []reach.Member
	entry := b.set.Entry
	var entryPointName string
	if entry != nil && entry.Reader.EntryPointToken() != 0 {
		if tok, ok := entry.Reader.ResolveToken(entry.Reader.EntryPointToken()); ok {
			entryPointName = methodNodeName(tok.TypeFullName, tok.MemberName, tok.ParamCount)
		}
	}
	for _, fullName := range b.order {
		e := b.byFullName[fullName]
		if e.asm.Classification != assemblyset.ClassUser {
			continue
		}
		roots = append(roots, reach.Member{Kind: reach.KindType, Name: fullName})
		methods, err := e.asm.Reader.Methods(e.td)
		if err != nil {
			b.faults.RecordFatal(diag.Wrap(diag.KindMetadataFormatError, "reading methods of "+fullName, err))
			continue
		}
		for _, md := range methods {
			name := methodNodeName(fullName, md.Name, paramCountOf(e.asm.Reader, md))
			roots = append(roots, reach.Member{Kind: reach.KindMethod, Name: name})
			if name == entryPointName {
				entryPointName = "" // already rooted
			}
		}
	}
	if entryPointName != "" {
		roots = append(roots, reach.Member{Kind: reach.KindMethod, Name: entryPointName})
	}
	return roots
}

func paramCountOf(r *metadata.Reader, md metadata.MethodDef) int {
	sig, err := r.BlobAt(md.Row.Signature)
	if err != nil {
		return 0
	}
	return len(metadata.DecodeMethodSignature(sig, r.ResolveTypeDefOrRef).ParamTypeNames)
}

// methodNodeName is the canonical reach.Member.Name a Bridge uses for a
// method: declaring type, method name, and parameter count, joined with
// separators that never occur inside a CIL name. Parameter count (not
// the full parameter-type list) is the same precision the builder's own
// call-lowering already works at — a call-site token only carries
// arity, never the resolved parameter types of its target — so the
// reachability graph's key scheme matches what the rest of the pipeline
// can actually resolve a call site to.
func methodNodeName(typeFullName, methodName string, arity int) string {
	return typeFullName + "::" + methodName + "#" + strconv.Itoa(arity)
}

// parseMethodNode reverses methodNodeName.
func parseMethodNode(name string) (typeFullName, methodName string, arity int, ok bool) {
	hashIdx := strings.LastIndexByte(name, '#')
	if hashIdx < 0 {
		return "", "", 0, false
	}
	n, err := strconv.Atoi(name[hashIdx+1:])
	if err != nil {
		return "", "", 0, false
	}
	rest := name[:hashIdx]
	sepIdx := strings.LastIndex(rest, "::")
	if sepIdx < 0 {
		return "", "", 0, false
	}
	return rest[:sepIdx], rest[sepIdx+2:], n, true
}

// findMethod locates the MethodDef named by (typeFullName, methodName,
// arity) in the type's owning assembly.
func (b *Bridge) findMethod(typeFullName, methodName string, arity int) (metadata.MethodDef, *assemblyset.LoadedAssembly, bool) {
	e, ok := b.byFullName[typeFullName]
	if !ok {
		return metadata.MethodDef{}, nil, false
	}
	methods, err := e.asm.Reader.Methods(e.td)
	if err != nil {
		b.faults.RecordFatal(diag.Wrap(diag.KindMetadataFormatError, "reading methods of "+typeFullName, err))
		return metadata.MethodDef{}, nil, false
	}
	for _, md := range methods {
		if md.Name == methodName && paramCountOf(e.asm.Reader, md) == arity {
			return md, e.asm, true
		}
	}
	return metadata.MethodDef{}, nil, false
}

func (b *Bridge) decodeBody(r *metadata.Reader, md metadata.MethodDef) *build.MethodBody {
	if md.Body == nil {
		return nil
	}
	body, err := build.DecodeMethodBody(r, md)
	if err != nil {
		b.faults.Record(md.Name, diag.KindLoweringFailure, err.Error())
		return nil
	}
	return body
}
