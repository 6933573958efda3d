package reach

// Member identifies one reachability-graph node: either a method or a
// type, named by canonical string so the analyzer never needs a typed
// reference into whatever representation produced it (raw metadata
// rows, at this stage — the IR builder's Type/Method records don't
// exist yet).
type Member struct {
	Kind MemberKind
	Name string // method names use the EdgeSource's own scheme (pipeline.Bridge: "Type::Method#Arity"); "TypeFullName" for types
}

// MemberKind tags whether a Member is a method or a type.
type MemberKind int

const (
	KindMethod MemberKind = iota
	KindType
)

// GenericInstantiation is one seeded type-argument tuple a reachable
// call-site or typeref requested.
type GenericInstantiation struct {
	OpenDefinitionName string
	TypeArgNames       []string
}

// EdgeSource provides the analyzer with a method body's outgoing edges:
// every other method, type, or generic instantiation that becomes
// reachable because this method is. pipeline.Bridge supplies the real
// implementation over raw metadata; tests supply a fake.
type EdgeSource interface {
	// MethodEdges returns the methods and types directly reachable from
	// methodName's body: call targets (direct, virtual, or interface),
	// delegate-creation targets, newobj targets, field types read as a
	// delegate, custom-attribute constructors, and explicit
	// interface-overrides.
	MethodEdges(methodName string) (methods []string, types []string)
	// TypeEdges returns a type's declaring-field types, base type, and
	// implemented interfaces.
	TypeEdges(typeName string) (fieldDeclaringTypes []string, baseType string, interfaces []string)
	// VirtualOverrides returns every override of the named virtual slot
	// on reachable descendant types of declaringType (conservative:
	// called once a type housing the slot is known reachable).
	VirtualOverrides(declaringType, slotName string) []string
	// GenericSeeds returns any generic instantiations a method's body
	// directly seeds (typeref<T>/methodref<T> occurrences).
	GenericSeeds(methodName string) []GenericInstantiation
}

// Result is the closed reachability set the analyzer computes.
type Result struct {
	ReachableMethods map[string]bool
	ReachableTypes   map[string]bool
	Instantiations   []GenericInstantiation
}

// Analyze runs the fixed-point worklist over src, starting from roots,
// and returns the closed reachable set. The worklist shape — a
// reachable set guarding a FIFO/LIFO queue of newly-discovered names —
// mirrors a classic mark phase: each name is scanned for outgoing edges
// exactly once.
func Analyze(src EdgeSource, roots []Member) Result {
	res := Result{
		ReachableMethods: make(map[string]bool),
		ReachableTypes:   make(map[string]bool),
	}

	var methodWorklist []string
	var typeWorklist []string
	seenInstantiation := make(map[string]bool)

	addMethod := func(name string) {
		if name == "" || res.ReachableMethods[name] {
			return
		}
		res.ReachableMethods[name] = true
		methodWorklist = append(methodWorklist, name)
	}
	addType := func(name string) {
		if name == "" || res.ReachableTypes[name] {
			return
		}
		res.ReachableTypes[name] = true
		typeWorklist = append(typeWorklist, name)
	}
	addInstantiation := func(inst GenericInstantiation) {
		key := inst.OpenDefinitionName
		for _, a := range inst.TypeArgNames {
			key += "|" + a
		}
		if seenInstantiation[key] {
			return
		}
		seenInstantiation[key] = true
		res.Instantiations = append(res.Instantiations, inst)
	}

	for _, r := range roots {
		if r.Kind == KindMethod {
			addMethod(r.Name)
		} else {
			addType(r.Name)
		}
	}

	for len(methodWorklist) > 0 || len(typeWorklist) > 0 {
		for len(methodWorklist) > 0 {
			name := methodWorklist[len(methodWorklist)-1]
			methodWorklist = methodWorklist[:len(methodWorklist)-1]

			methods, types := src.MethodEdges(name)
			for _, m := range methods {
				addMethod(m)
			}
			for _, ty := range types {
				addType(ty)
			}
			for _, inst := range src.GenericSeeds(name) {
				addInstantiation(inst)
			}
		}

		for len(typeWorklist) > 0 {
			name := typeWorklist[len(typeWorklist)-1]
			typeWorklist = typeWorklist[:len(typeWorklist)-1]

			fieldTypes, base, ifaces := src.TypeEdges(name)
			for _, ft := range fieldTypes {
				addType(ft)
			}
			addType(base)
			for _, i := range ifaces {
				addType(i)
			}
		}
	}

	return res
}

// AddVirtualOverrides conservatively expands the reachable method set
// to include every override of declaringType.slotName found on a
// reachable descendant, per the "virtual-call reachability" rule. It only
// marks the overrides reachable; it does not scan their bodies.
// ResolveVirtualCalls calls it per virtual call site and runs Analyze
// again from the enlarged set (virtual dispatch can only be resolved
// once the type hierarchy below the call's static receiver type is
// itself known reachable).
func AddVirtualOverrides(src EdgeSource, res *Result, declaringType, slotName string) {
	for _, override := range src.VirtualOverrides(declaringType, slotName) {
		if !res.ReachableMethods[override] {
			res.ReachableMethods[override] = true
		}
	}
}
