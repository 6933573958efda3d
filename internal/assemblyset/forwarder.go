package assemblyset

// ForwardedType records that a type name resolved through a
// type-forwarder (an ExportedType entry whose Implementation points at
// another assembly) rather than being defined directly in the assembly
// that was asked for it.
type ForwardedType struct {
	TypeFullName   string
	FromAssembly   string
	ToAssembly     string
}

// ResolveType looks up fullName in the TypeDef tables of the Set's
// assemblies, in load order, and returns the first defining assembly's
// name with found == true. ExportedType (type-forwarder) entries are not
// read: a type reachable only through a forwarder is reported as not
// found, and fwd is always the zero value.
func (s *Set) ResolveType(fullName string) (ownerAssembly string, fwd ForwardedType, found bool) {
	for _, name := range s.Order {
		a := s.Assemblies[name]
		if _, ok := a.Reader.FindTypeDef(fullName); ok {
			return name, ForwardedType{}, true
		}
	}
	// No assembly defines fullName directly; the reader does not
	// materialize ExportedType rows, so no forwarder is consulted.
	return "", ForwardedType{}, false
}
