package icall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupResolvesArityOnly(t *testing.T) {
	r := NewRegistry()
	sym, ok := r.Lookup(Signature{TypeFullName: "System.Math", MethodName: "Abs", Arity: 1})
	assert.True(t, ok)
	assert.Equal(t, "cil2cpp::icall::Math_Abs_R8", sym)
}

func TestLookupUnknownSignature(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(Signature{TypeFullName: "System.Math", MethodName: "Nope", Arity: 1})
	assert.False(t, ok)
}

func TestLookupPrefersFirstParamQualifiedOverArity(t *testing.T) {
	r := NewRegistry()
	r.Register(Signature{TypeFullName: "System.Array", MethodName: "Get", Arity: 2}, "cil2cpp::icall::array_get_1d")
	sym, ok := r.Lookup(Signature{TypeFullName: "System.Array", MethodName: "Get", Arity: 2, FirstParamTypeName: "rank2"})
	assert.True(t, ok)
	assert.Equal(t, "cil2cpp::icall::mdarray_get", sym)
}

func TestRegisterOverwritesExistingMapping(t *testing.T) {
	r := NewRegistry()
	r.Register(Signature{TypeFullName: "System.Math", MethodName: "Abs", Arity: 1}, "custom_abs")
	sym, ok := r.Lookup(Signature{TypeFullName: "System.Math", MethodName: "Abs", Arity: 1})
	assert.True(t, ok)
	assert.Equal(t, "custom_abs", sym)
}
