package class

import (
	"bytes"
	"testing"

	"github.com/tangzhangming/lava/internal/accessflags"
)

func TestGetMethodByNameAndDescriptor(t *testing.T) {
	c := &Class{
		Name: "A",
		Methods: []Method{
			{Name: "m", Descriptor: "()I"},
			{Name: "m", Descriptor: "(I)I"},
		},
	}

	m, ok := c.GetMethod("m", "(I)I")
	if !ok || m.Descriptor != "(I)I" {
		t.Fatalf("GetMethod exact descriptor failed: ok=%v m=%+v", ok, m)
	}

	m, ok = c.GetMethod("m", "")
	if !ok || m.Descriptor != "()I" {
		t.Fatalf("GetMethod first match failed: ok=%v m=%+v", ok, m)
	}

	_, ok = c.GetMethod("missing", "")
	if ok {
		t.Fatalf("GetMethod should not find missing method")
	}
}

func TestDumpIncludesNameAndSupers(t *testing.T) {
	b := &Class{Name: "B"}
	a := &Class{Name: "A", AccessFlags: accessflags.Public, Supers: []*Class{b}}

	var buf bytes.Buffer
	a.Dump(&buf)
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("class A")) {
		t.Errorf("Dump output missing class name: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("B")) {
		t.Errorf("Dump output missing super name: %s", out)
	}
}
