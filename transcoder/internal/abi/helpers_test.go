package abi

import (
	"testing"
)

func TestTypeName(t *testing.T) {
	if TypeName(nil) != "nil" {
		t.Errorf("TypeName(nil) = %q", TypeName(nil))
	}
	if TypeName(uint8(1)) != "uint8" {
		t.Errorf("TypeName(uint8) = %q", TypeName(uint8(1)))
	}
}
