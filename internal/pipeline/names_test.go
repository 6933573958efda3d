package pipeline

import "testing"

func TestMethodNodeNameRoundTrip(t *testing.T) {
	name := methodNodeName("System.Collections.Generic.List`1", ".ctor", 1)
	typeFullName, methodName, arity, ok := parseMethodNode(name)
	if !ok {
		t.Fatalf("parseMethodNode(%q) failed", name)
	}
	if typeFullName != "System.Collections.Generic.List`1" || methodName != ".ctor" || arity != 1 {
		t.Fatalf("got (%q, %q, %d)", typeFullName, methodName, arity)
	}
}

func TestMethodNodeNameRoundTripStaticCctor(t *testing.T) {
	name := methodNodeName("Acme.Widget", ".cctor", 0)
	typeFullName, methodName, arity, ok := parseMethodNode(name)
	if !ok || typeFullName != "Acme.Widget" || methodName != ".cctor" || arity != 0 {
		t.Fatalf("round trip broke for .cctor: (%q, %q, %d, %v)", typeFullName, methodName, arity, ok)
	}
}

func TestParseMethodNodeRejectsMalformedNames(t *testing.T) {
	for _, bad := range []string{"", "NoSeparator#0", "Type::Method", "Type::Method#notanumber"} {
		if _, _, _, ok := parseMethodNode(bad); ok {
			t.Fatalf("parseMethodNode(%q) unexpectedly succeeded", bad)
		}
	}
}

func TestMethodKeyDistinguishesOverloads(t *testing.T) {
	a := methodKey("Acme.Widget", "Do", []string{"System.Int32"})
	b := methodKey("Acme.Widget", "Do", []string{"System.String"})
	if a == b {
		t.Fatalf("methodKey did not distinguish overloads: %q == %q", a, b)
	}
}
