// Package gate implements the safety-net gate: the final pass-independent
// sweep that keeps a handful of un-lowerable methods from failing an
// otherwise-complete build. It classifies each reachable,
// non-abstract/extern/ICall method into emittable or stubbed, recording a
// reason for every stub.
package gate

import (
	"strings"

	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/ir"
)

// Gate walks a built Module's methods and applies the lowering-failure
// check plus the four structural classification rules, downgrading any
// method that trips one to a default-value stub.
type Gate struct {
	faults *diag.Collector
}

// New returns a Gate that records every stub decision into faults.
func New(faults *diag.Collector) *Gate {
	return &Gate{faults: faults}
}

// Run classifies every method of mod and stubs the ones that fail a
// rule. It mutates mod.Types[*].Methods[*] in place: StubReason is set
// and BasicBlocks is replaced with a single default-value-return block
// (a bare Return for void).
func (g *Gate) Run(mod *ir.Module) {
	loweringFaults := g.loweringFaultDetails()
	for _, t := range mod.Types {
		for _, m := range t.Methods {
			if !eligible(m) {
				continue
			}
			if reason, detail, stub := g.classify(mod, t, m, loweringFaults); stub {
				g.stub(mod, t, m, reason, detail)
			}
		}
	}
}

// loweringFaultDetails snapshots every KindLoweringFailure fault already
// recorded against a method (by pass 7's opcode lowering) before this
// run starts stubbing, keyed by the method's qualified name.
func (g *Gate) loweringFaultDetails() map[string]string {
	out := make(map[string]string)
	if g.faults == nil {
		return out
	}
	for _, f := range g.faults.Faults() {
		if f.Kind == diag.KindLoweringFailure {
			out[f.Method] = f.Detail
		}
	}
	return out
}

// eligible reports whether m is a candidate for gating at all: abstract,
// extern (P/Invoke), and ICall-redirected methods never carry a lowered
// body and are never gated.
func eligible(m *ir.Method) bool {
	if m.IsAbstract || m.PInvoke != nil || m.IsICall {
		return false
	}
	return true
}

func (g *Gate) classify(mod *ir.Module, t *ir.Type, m *ir.Method, loweringFaults map[string]string) (ir.StubReason, string, bool) {
	if detail, ok := loweringFaults[m.QualifiedName()]; ok {
		return ir.StubLoweringFailure, detail, true
	}
	if reason, detail, ok := classifyCLRInternal(m); ok {
		return reason, detail, true
	}
	if reason, detail, ok := classifyKnownBrokenPattern(m); ok {
		return reason, detail, true
	}
	if reason, detail, ok := classifyRenderedBodyError(m); ok {
		return reason, detail, true
	}
	if reason, detail, ok := classifyUndeclaredReference(mod, m); ok {
		return reason, detail, true
	}
	return ir.StubNone, "", false
}

// classifyCLRInternal implements rule 1: any referenced type (parameter,
// return type, or an instruction operand type) matching the fixed
// CLR-internal set.
func classifyCLRInternal(m *ir.Method) (ir.StubReason, string, bool) {
	if isCLRInternalType(m.ReturnTypeName) {
		return ir.StubCLRInternalDependency, "return type " + m.ReturnTypeName + " is CLR-internal", true
	}
	for _, p := range m.Parameters {
		if isCLRInternalType(p.TypeName) {
			return ir.StubCLRInternalDependency, "parameter " + p.Name + " type " + p.TypeName + " is CLR-internal", true
		}
	}
	for _, name := range referencedTypeNames(m) {
		if isCLRInternalType(name) {
			return ir.StubCLRInternalDependency, "references CLR-internal type " + name, true
		}
	}
	return ir.StubNone, "", false
}

// classifyKnownBrokenPattern implements rule 2: unsupported JIT
// intrinsic families, undeclared type-info symbols, or unmodeled
// multi-dim-to-typed-pointer conversions.
func classifyKnownBrokenPattern(m *ir.Method) (ir.StubReason, string, bool) {
	if hasUnsupportedIntrinsicPrefix(m.ReturnTypeName) {
		return ir.StubKnownBrokenPattern, "return type uses an unsupported intrinsic family: " + m.ReturnTypeName, true
	}
	for _, p := range m.Parameters {
		if hasUnsupportedIntrinsicPrefix(p.TypeName) {
			return ir.StubKnownBrokenPattern, "parameter " + p.Name + " uses an unsupported intrinsic family: " + p.TypeName, true
		}
	}
	for _, name := range referencedTypeNames(m) {
		if hasUnsupportedIntrinsicPrefix(name) {
			return ir.StubKnownBrokenPattern, "references an unsupported intrinsic family: " + name, true
		}
	}
	for _, bb := range m.BasicBlocks {
		for _, instr := range bb.Instructions {
			if raw, ok := instr.(*ir.RawTargetCode); ok && strings.Contains(raw.Text, "__typeinfo_undeclared") {
				return ir.StubKnownBrokenPattern, "references an undeclared type-info symbol", true
			}
		}
	}
	return ir.StubNone, "", false
}

// classifyRenderedBodyError implements rule 3: a syntactic pattern known
// to fail codegen compilation, chiefly an unresolved generic-parameter
// leftover that pass 4's fixpoint should have closed but didn't.
func classifyRenderedBodyError(m *ir.Method) (ir.StubReason, string, bool) {
	if unresolvedGenericPlaceholder(m.ReturnTypeName) {
		return ir.StubRenderedBodyError, "unresolved generic parameter in return type: " + m.ReturnTypeName, true
	}
	for _, p := range m.Parameters {
		if unresolvedGenericPlaceholder(p.TypeName) {
			return ir.StubRenderedBodyError, "unresolved generic parameter in parameter " + p.Name + ": " + p.TypeName, true
		}
	}
	for _, name := range referencedTypeNames(m) {
		if unresolvedGenericPlaceholder(name) {
			return ir.StubRenderedBodyError, "unresolved generic parameter reference: " + name, true
		}
	}
	return ir.StubNone, "", false
}

// classifyUndeclaredReference implements rule 4: a residual dangling
// identifier left after the builder's fixpoint — a Call targeting a
// method whose declaring type never made it into the closed Module.
func classifyUndeclaredReference(mod *ir.Module, m *ir.Method) (ir.StubReason, string, bool) {
	for _, bb := range m.BasicBlocks {
		for _, instr := range bb.Instructions {
			call, ok := instr.(*ir.Call)
			if !ok || call.CalleeName == "" {
				continue
			}
			typeName, methodName := splitCalleeName(call.CalleeName)
			if typeName == "" {
				continue
			}
			declType := mod.FindType(typeName)
			if declType == nil {
				return ir.StubUndeclaredReference, "call target's declaring type " + typeName + " is not in the closed module", true
			}
			if methodName != "" && findMethodByName(declType, methodName) == nil {
				return ir.StubUndeclaredReference, "call target " + call.CalleeName + " has no matching method on " + typeName, true
			}
		}
	}
	return ir.StubNone, "", false
}

func findMethodByName(t *ir.Type, name string) *ir.Method {
	for _, m := range t.Methods {
		if m.CILName == name {
			return m
		}
	}
	return nil
}

func splitCalleeName(calleeName string) (typeName, methodName string) {
	i := strings.LastIndex(calleeName, ".")
	if i < 0 {
		return "", ""
	}
	return calleeName[:i], calleeName[i+1:]
}

// stub replaces m's body with the target-language default value for its
// return type (a bare Return for void) and records the decision.
func (g *Gate) stub(mod *ir.Module, t *ir.Type, m *ir.Method, reason ir.StubReason, detail string) {
	m.StubReason = reason
	m.BasicBlocks = defaultValueBody(m.ReturnTypeName)
	if g.faults != nil {
		g.faults.Record(m.QualifiedName(), diagKindFor(reason), detail)
	}
}

func diagKindFor(reason ir.StubReason) diag.Kind {
	switch reason {
	case ir.StubLoweringFailure:
		return diag.KindLoweringFailure
	default:
		return diag.KindInvariantViolation
	}
}

// defaultValueBody returns a single basic block that returns the
// target-language default for returnType, or a block holding a bare
// Return for void.
func defaultValueBody(returnTypeName string) []*ir.BasicBlock {
	block := &ir.BasicBlock{ID: 0}
	if returnTypeName == "" {
		block.Instructions = append(block.Instructions, &ir.Return{})
		return []*ir.BasicBlock{block}
	}
	block.Instructions = append(block.Instructions, &ir.RawTargetCode{Text: "return {};"})
	return []*ir.BasicBlock{block}
}
