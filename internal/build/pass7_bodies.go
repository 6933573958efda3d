package build

import (
	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/ir"
)

// lowerCtx carries the per-method mutable state the opcode lowering
// switch threads through: the typed evaluation stack, the temp
// allocator, local-variable type names, and the owning type/method (for
// StaticCtorGuard emission and ICall redirection).
type lowerCtx struct {
	b      *Builder
	t      *ir.Type
	m      *ir.Method
	stack  evalStack
	temps  tempAllocator
	locals []string // index -> CIL type name
	args   []string // index -> CIL type name (receiver prepended if instance)
	faults []string

	// blockIDFor maps an IL offset that starts a basic block to that
	// block's dense ID, so branch operands resolve to "BB_<id>" labels
	// instead of raw offsets.
	blockIDFor map[int]int
}

// pass7MethodBodies lowers the CIL stream of every reachable
// non-abstract, non-extern, non-ICall method into an ordered list of
// basic blocks: control-flow recovery (splitting at branch targets and
// exception-region boundaries) coupled with stack-to-temp rewriting.
func (b *Builder) pass7MethodBodies() {
	for _, t := range b.module.Types {
		for _, m := range t.Methods {
			if m.IsAbstract || m.IsICall || m.PInvoke != nil {
				continue
			}
			desc, ok := b.methodDescFor(t.FullName, m)
			if !ok || desc.Body == nil {
				continue
			}
			b.lowerMethod(t, m, desc)
		}
	}
}

// methodDescFor looks the originating MethodDesc back up by name; the
// builder's byName index only covers TypeDesc, so this re-scans that
// type's Methods list (small relative to the overall reachable set,
// and run once per method, not per instruction).
func (b *Builder) methodDescFor(typeFullName string, m *ir.Method) (MethodDesc, bool) {
	d, ok := b.byName[typeFullName]
	if !ok {
		// Generic instantiations aren't in byName (they're synthesized);
		// their bodies are substituted copies of the open definition's,
		// looked up by generic definition name instead.
		if m.IsGenericInstance {
			if open, ok2 := b.src.OpenGenericDefinition(genericDefinitionNameOf(typeFullName)); ok2 {
				d = open
				ok = true
			}
		}
	}
	if !ok {
		return MethodDesc{}, false
	}
	for _, md := range d.Methods {
		if md.Name == m.CILName && len(md.Parameters) == len(m.Parameters) {
			return md, true
		}
	}
	return MethodDesc{}, false
}

func genericDefinitionNameOf(closedName string) string {
	for i, c := range closedName {
		if c == '<' {
			return closedName[:i]
		}
	}
	return closedName
}

func (b *Builder) lowerMethod(t *ir.Type, m *ir.Method, desc MethodDesc) {
	ctx := &lowerCtx{b: b, t: t, m: m}
	ctx.locals = append([]string(nil), desc.Body.LocalTypeNames...)
	ctx.args = methodArgTypeNames(m)

	boundaries := blockBoundaries(desc.Body)
	ctx.blockIDFor = make(map[int]int, len(boundaries))
	var blocks []*ir.BasicBlock
	for i, off := range boundaries {
		blocks = append(blocks, &ir.BasicBlock{ID: i})
		ctx.blockIDFor[off] = i
	}

	regionsByStart := indexRegionMarkers(desc.Body.Regions)

	curBlockIdx := 0
	for i, instr := range desc.Body.Instructions {
		for curBlockIdx+1 < len(boundaries) && boundaries[curBlockIdx+1] <= instr.Offset {
			curBlockIdx++
		}
		blk := blocks[curBlockIdx]

		if markers, ok := regionsByStart[instr.Offset]; ok {
			blk.Instructions = append(blk.Instructions, markers...)
		}

		lowered := ctx.lowerInstruction(instr, desc.Body, boundaries, i)
		blk.Instructions = append(blk.Instructions, lowered...)
	}

	m.BasicBlocks = blocks

	for _, f := range ctx.faults {
		b.faults.Record(m.QualifiedName(), diag.KindLoweringFailure, f)
	}
}

// methodArgTypeNames returns the CIL type name for each argument slot,
// receiver type prepended for instance methods (ldarg.0 is `this`).
func methodArgTypeNames(m *ir.Method) []string {
	var out []string
	if !m.IsStatic {
		out = append(out, m.OwningTypeFullName)
	}
	for _, p := range m.Parameters {
		out = append(out, p.TypeName)
	}
	return out
}

// indexRegionMarkers builds the ExceptionMarker instructions that must
// be emitted at the start of each try/handler/filter region, keyed by
// IL offset.
func indexRegionMarkers(regions []ExceptionRegion) map[int][]ir.Instruction {
	out := make(map[int][]ir.Instruction)
	for i, r := range regions {
		out[r.TryStart] = append(out[r.TryStart], &ir.ExceptionMarker{Kind: ir.TryBeginMarker, RegionID: i})
		out[r.TryEnd] = append(out[r.TryEnd], &ir.ExceptionMarker{Kind: ir.TryEndMarker, RegionID: i})
		switch r.Kind {
		case RegionCatch:
			out[r.HandlerStart] = append(out[r.HandlerStart], &ir.ExceptionMarker{Kind: ir.CatchBeginMarker, RegionID: i, CatchTypeName: r.CatchTypeName})
		case RegionFinally:
			out[r.HandlerStart] = append(out[r.HandlerStart], &ir.ExceptionMarker{Kind: ir.FinallyBeginMarker, RegionID: i})
		case RegionFilter:
			out[r.FilterStart] = append(out[r.FilterStart], &ir.ExceptionMarker{Kind: ir.FilterBeginMarker, RegionID: i})
			out[r.HandlerStart] = append(out[r.HandlerStart], &ir.ExceptionMarker{Kind: ir.FilterHandlerBeginMarker, RegionID: i})
		case RegionFault:
			out[r.HandlerStart] = append(out[r.HandlerStart], &ir.ExceptionMarker{Kind: ir.FinallyBeginMarker, RegionID: i})
		}
	}
	return out
}
