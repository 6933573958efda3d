package pipeline

import "testing"

func TestBaseGenericNameStripsArraySuffixes(t *testing.T) {
	cases := map[string]string{
		"System.Int32":       "System.Int32",
		"System.Int32[]":     "System.Int32",
		"System.Int32[,]":    "System.Int32",
		"System.Int32[][]":   "System.Int32",
		"System.Int32&":      "System.Int32",
		"System.Object*":     "System.Object",
	}
	for in, want := range cases {
		if got := baseGenericName(in); got != want {
			t.Errorf("baseGenericName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseGenericInstanceNameSimple(t *testing.T) {
	inst, ok := parseGenericInstanceName("System.Collections.Generic.List`1<System.Int32>")
	if !ok {
		t.Fatal("expected a parse")
	}
	if inst.OpenDefinitionName != "System.Collections.Generic.List`1" {
		t.Errorf("open def = %q", inst.OpenDefinitionName)
	}
	if len(inst.TypeArgNames) != 1 || inst.TypeArgNames[0] != "System.Int32" {
		t.Errorf("args = %v", inst.TypeArgNames)
	}
}

func TestParseGenericInstanceNameNestedCommaIsNotASplit(t *testing.T) {
	inst, ok := parseGenericInstanceName(
		"System.Collections.Generic.Dictionary`2<System.String, System.Collections.Generic.List`1<System.Int32>>")
	if !ok {
		t.Fatal("expected a parse")
	}
	if len(inst.TypeArgNames) != 2 {
		t.Fatalf("expected 2 top-level args, got %d: %v", len(inst.TypeArgNames), inst.TypeArgNames)
	}
	if inst.TypeArgNames[0] != "System.String" {
		t.Errorf("arg0 = %q", inst.TypeArgNames[0])
	}
	if inst.TypeArgNames[1] != "System.Collections.Generic.List`1<System.Int32>" {
		t.Errorf("arg1 = %q", inst.TypeArgNames[1])
	}
}

func TestParseGenericInstanceNameRejectsNonGeneric(t *testing.T) {
	if _, ok := parseGenericInstanceName("System.Int32"); ok {
		t.Fatal("expected no parse for a non-generic name")
	}
}
