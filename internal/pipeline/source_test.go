package pipeline

import "testing"

func TestPrimitiveKnownScalar(t *testing.T) {
	b := &Bridge{}
	info, ok := b.Primitive("System.Int32")
	if !ok {
		t.Fatal("expected System.Int32 to be a primitive")
	}
	if info.Mangled != "System_Int32" || info.Scalar != "int32_t" {
		t.Errorf("got %+v", info)
	}
}

func TestPrimitiveRejectsReferenceTypes(t *testing.T) {
	b := &Bridge{}
	if _, ok := b.Primitive("System.String"); ok {
		t.Error("System.String must not be reported as a primitive scalar")
	}
	if _, ok := b.Primitive("Acme.Widget"); ok {
		t.Error("an unrelated user type must not be reported as a primitive")
	}
}

func TestAttributeDescsEmptyForNoRefs(t *testing.T) {
	if out := attributeDescs(nil); out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}
