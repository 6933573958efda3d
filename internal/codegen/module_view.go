// Package codegen is the stable, read-only handle a downstream emitter
// consumes: every accessor the core promises to keep stable across
// internal IR-builder changes, and nothing more. The core never writes
// source files itself; this package is the contract boundary an external
// text emitter builds against.
package codegen

import "github.com/axiomates/cil2cpp/internal/ir"

// ModuleView wraps a built Module behind the observational-only
// contract: every method here reads, none mutates.
type ModuleView struct {
	mod *ir.Module
}

// NewModuleView wraps mod. Callers pass a Module only once pass 8 (and,
// if used, the safety-net gate) have finished running — a ModuleView
// taken mid-build would see partially-populated Types.
func NewModuleView(mod *ir.Module) *ModuleView {
	return &ModuleView{mod: mod}
}

// Types returns every Type in declaration order.
func (v *ModuleView) Types() []*ir.Type {
	return v.mod.Types
}

// FindType looks up a Type by CIL full name, or nil if absent.
func (v *ModuleView) FindType(fullName string) *ir.Type {
	return v.mod.FindType(fullName)
}

// Methods iterates every Method owned by every Type, in
// Type-then-Method declaration order.
func (v *ModuleView) Methods() []*ir.Method {
	return v.mod.GetAllMethods()
}

// StringLiterals returns the interned string-literal table as
// content -> {id, value} pairs, in insertion order.
func (v *ModuleView) StringLiterals() []ir.StringLiteralEntry {
	return v.mod.StringLiterals()
}

// ArrayInitBlobs returns the registered array-initializer blobs in
// insertion order.
func (v *ModuleView) ArrayInitBlobs() []ir.ArrayInitBlob {
	return v.mod.ArrayInitBlobs()
}

// Primitives returns the primitive-type-info table: CIL fullname ->
// {mangled identifier, target scalar name}.
func (v *ModuleView) Primitives() map[string]ir.PrimitiveInfo {
	return v.mod.Primitives
}

// EntryPoint returns the build's entry-point method reference, or nil
// for a static-library build with no entry point.
func (v *ModuleView) EntryPoint() *ir.MethodRef {
	return v.mod.EntryPoint
}

// MethodInstructions returns m's full instruction stream, one
// basic block at a time, in basic-block declaration order. A stubbed
// method's single synthesized block is returned like any other — the
// emitter distinguishes stubs via StubInfo, not by inspecting the body.
func (v *ModuleView) MethodInstructions(m *ir.Method) []ir.Instruction {
	var out []ir.Instruction
	for _, bb := range m.BasicBlocks {
		out = append(out, bb.Instructions...)
	}
	return out
}

// StubInfo reports whether m was stubbed by the safety-net gate, and
// why.
type StubInfo struct {
	IsStub bool
	Reason string
}

// Stub returns m's stub status for the emitter's stub-report and
// stub-translation-unit partitioning.
func (v *ModuleView) Stub(m *ir.Method) StubInfo {
	return StubInfo{IsStub: m.IsStubbed(), Reason: m.StubReason.String()}
}
