package build

import (
	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/ir"
)

// Builder runs the eight passes in strict order over a Source, each
// pass depending on artifacts the prior ones laid down.
type Builder struct {
	src    Source
	module *ir.Module
	faults *diag.Collector

	// byName indexes TypeDesc by FullName for passes that need the raw
	// description after pass 1 has already consumed it into an ir.Type.
	byName map[string]TypeDesc

	// instantiationQueue holds generic instantiation requests not yet
	// materialized by pass 4; new requests fixpoint-append to it as
	// newly synthesized methods reference further instantiations.
	instantiationQueue []GenericInstantiationRequest
	instantiated       map[string]bool
}

// New returns a Builder ready to Run against src, recording faults on
// faults.
func New(src Source, faults *diag.Collector) *Builder {
	return &Builder{
		src:          src,
		module:       ir.NewModule(),
		faults:       faults,
		byName:       make(map[string]TypeDesc),
		instantiated: make(map[string]bool),
	}
}

// Run executes passes 1 through 8 in order and returns the finished
// Module.
func (b *Builder) Run() *ir.Module {
	descs := b.src.ReachableTypes()
	for _, d := range descs {
		b.byName[d.FullName] = d
	}

	b.pass1Shells(descs)
	b.pass2FieldsAndBaseWiring(descs)
	b.pass3MethodShells(descs)
	b.pass4Generics()
	b.pass5VTables()
	b.pass6InterfaceImpls()
	b.pass7MethodBodies()
	b.pass8Synthesis()

	return b.module
}

func (b *Builder) invariantFault(method, detail string) {
	b.faults.Record(method, diag.KindInvariantViolation, detail)
}
