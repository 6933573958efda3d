package icall

import "fmt"

// Signature identifies one overload of a BCL method by declaring type,
// method name, arity, and (only when arity alone doesn't disambiguate)
// its first parameter's CIL type name.
type Signature struct {
	TypeFullName       string
	MethodName         string
	Arity              int
	FirstParamTypeName string // "" unless arity collides across overloads
}

// Registry maps BCL method signatures the builder recognizes as
// intrinsics to the runtime-primitive symbol the emitter's collaborator
// provides, so pass 7 can redirect a call-site instead of lowering a
// (possibly CLR-internal) body.
type Registry struct {
	byArity    map[string]string   // "Type::Method/arity" -> runtime symbol
	byFirstArg map[string]string   // "Type::Method/arity/firstArgType" -> runtime symbol
}

// NewRegistry returns a Registry preloaded with the default mapping:
// core Math, String, Array, and Object primitives the external runtime
// collaborator is always assumed to provide.
func NewRegistry() *Registry {
	r := &Registry{
		byArity:    make(map[string]string),
		byFirstArg: make(map[string]string),
	}
	r.registerDefaults()
	return r
}

// Register adds or overwrites a mapping disambiguated by arity alone.
func (r *Registry) Register(sig Signature, runtimeSymbol string) {
	r.byArity[arityKey(sig)] = runtimeSymbol
}

// RegisterDisambiguated adds a mapping for signatures that collide on
// arity, distinguished by the first parameter's CIL type name.
func (r *Registry) RegisterDisambiguated(sig Signature, runtimeSymbol string) {
	r.byFirstArg[firstArgKey(sig)] = runtimeSymbol
}

// Lookup resolves a call-site's runtime-primitive symbol, if any. It
// checks the first-parameter-type-qualified mapping before the
// arity-only mapping, since the qualified entry only exists when arity
// alone was ambiguous.
func (r *Registry) Lookup(sig Signature) (string, bool) {
	if sig.FirstParamTypeName != "" {
		if sym, ok := r.byFirstArg[firstArgKey(sig)]; ok {
			return sym, true
		}
	}
	sym, ok := r.byArity[arityKey(sig)]
	return sym, ok
}

func arityKey(sig Signature) string {
	return fmt.Sprintf("%s::%s/%d", sig.TypeFullName, sig.MethodName, sig.Arity)
}

func firstArgKey(sig Signature) string {
	return fmt.Sprintf("%s::%s/%d/%s", sig.TypeFullName, sig.MethodName, sig.Arity, sig.FirstParamTypeName)
}

func (r *Registry) registerDefaults() {
	math := func(method string, arity int, symbol string) {
		r.Register(Signature{TypeFullName: "System.Math", MethodName: method, Arity: arity}, symbol)
	}
	math("Abs", 1, "cil2cpp::icall::Math_Abs_R8")
	math("Sqrt", 1, "cil2cpp::icall::Math_Sqrt_R8")
	math("Pow", 2, "cil2cpp::icall::Math_Pow_R8")
	math("Floor", 1, "cil2cpp::icall::Math_Floor_R8")
	math("Ceiling", 1, "cil2cpp::icall::Math_Ceiling_R8")
	math("Max", 2, "cil2cpp::icall::Math_Max_R8")
	math("Min", 2, "cil2cpp::icall::Math_Min_R8")

	str := func(method string, arity int, symbol string) {
		r.Register(Signature{TypeFullName: "System.String", MethodName: method, Arity: arity}, symbol)
	}
	str("Concat", 2, "cil2cpp::icall::String_Concat2")
	str("Equals", 2, "cil2cpp::icall::String_Equals")
	str("get_Length", 0, "cil2cpp::icall::String_get_Length")

	r.Register(Signature{TypeFullName: "System.Array", MethodName: "get_Length", Arity: 0}, "cil2cpp::icall::Array_get_Length")
	r.Register(Signature{TypeFullName: "System.Object", MethodName: "GetType", Arity: 0}, "cil2cpp::icall::Object_GetType")
	r.Register(Signature{TypeFullName: "System.Object", MethodName: "MemberwiseClone", Arity: 0}, "cil2cpp::icall::object_memberwise_clone")

	// Multi-dimensional array operations, keyed by the first-parameter
	// qualifier "rank2". Lookup compares the qualifier exactly, so these
	// entries match only a call site whose first argument's type name is
	// literally "rank2"; an array type name such as "System.Int32[,]"
	// does not match them.
	r.RegisterDisambiguated(Signature{TypeFullName: "System.Array", MethodName: ".ctor", Arity: 2, FirstParamTypeName: "rank2"}, "cil2cpp::icall::mdarray_new")
	r.RegisterDisambiguated(Signature{TypeFullName: "System.Array", MethodName: "Get", Arity: 2, FirstParamTypeName: "rank2"}, "cil2cpp::icall::mdarray_get")
	r.RegisterDisambiguated(Signature{TypeFullName: "System.Array", MethodName: "Set", Arity: 3, FirstParamTypeName: "rank2"}, "cil2cpp::icall::mdarray_set")
}
