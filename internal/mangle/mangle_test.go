package mangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeReplacesSeparators(t *testing.T) {
	assert.Equal(t, "System_Int32", Type("System.Int32"))
	assert.Equal(t, "Outer_Inner", Type("Outer+Inner"))
}

func TestTypeFoldsArityBacktickAndStripsTrailingUnderscore(t *testing.T) {
	assert.NotContains(t, Type("Wrapper`1"), "`")
	assert.Equal(t, "Wrapper_1", Type("Wrapper`1"))
	assert.Equal(t, "Wrapper", Type("Wrapper`"))
}

func TestOpenTypeTemplatePreservesArityUnderscore(t *testing.T) {
	assert.Equal(t, "Wrapper_1", OpenTypeTemplate("Wrapper`1"))
}

func TestGenericInstanceHasNoAngleBracketsOrBackticks(t *testing.T) {
	name := GenericInstance("Wrapper`1", []string{"System.Int32"})
	assert.NotContains(t, name, "<")
	assert.NotContains(t, name, ">")
	assert.NotContains(t, name, "`")
	assert.Equal(t, "Wrapper_System_Int32", name)
}

func TestSyntheticEscapesBrackets(t *testing.T) {
	assert.Equal(t, "___Clone___", Synthetic("<Clone>$")[:len("___Clone___")])
}

func TestTableDeduplicatesCollisions(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("NS.Foo", Type)
	b := tbl.Intern("NS2.Foo", func(string) string { return "NS_Foo" })
	assert.NotEqual(t, a, b)

	// repeated interning of the same CIL name returns the same id
	again := tbl.Intern("NS.Foo", Type)
	assert.Equal(t, a, again)
}
