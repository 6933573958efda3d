package gate

import "strings"

// clrInternalTypes is the fixed set of CLR-internal type full names that
// a lowered method body can never legally reference: these are runtime
// marshaling/reflection plumbing with no meaning outside the CLR's own
// native implementation.
var clrInternalTypes = map[string]bool{
	"System.Runtime.CompilerServices.QCallTypeHandle":    true,
	"System.StubHelpers.ObjectHandleOnStack":             true,
	"System.Reflection.MetadataImport":                   true,
	"System.Reflection.RuntimeCustomAttributeData":        true,
	"System.RuntimeTypeHandle":                            true,
	"System.RuntimeMethodHandleInternal":                  true,
	"System.RuntimeFieldHandleInternal":                   true,
	"System.Reflection.RuntimeAssembly":                   true,
	"System.Reflection.RuntimeModule":                     true,
}

// isCLRInternalType reports whether fullName names a CLR-internal type.
func isCLRInternalType(fullName string) bool {
	return clrInternalTypes[fullName]
}

// unsupportedIntrinsicPrefixes names method-signature type prefixes
// whose presence marks a known-broken pattern: JIT intrinsic families
// with no scalar fallback modeled in this builder.
var unsupportedIntrinsicPrefixes = []string{
	"System.Runtime.Intrinsics.",
	"System.Numerics.Vector`",
}

func hasUnsupportedIntrinsicPrefix(typeName string) bool {
	for _, p := range unsupportedIntrinsicPrefixes {
		if strings.HasPrefix(typeName, p) {
			return true
		}
	}
	return false
}

// unresolvedGenericPlaceholder reports whether typeName still carries an
// ECMA-335 unresolved generic-parameter marker (!0, !!0, or a bare
// single-letter type-parameter name) after pass 4's fixpoint should have
// substituted every closed instantiation's operand types.
func unresolvedGenericPlaceholder(typeName string) bool {
	return strings.HasPrefix(typeName, "!") || typeName == "T" || strings.HasPrefix(typeName, "T`")
}
