package common

import (
	"bytes"
	"errors"
	"testing"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if buf == nil {
		t.Fatalf("expected non-nil slice")
	}
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	if bytes.Equal(a, b) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- errors ----------

func TestValidationErrors_WrapValidation(t *testing.T) {
	for _, err := range []error{ErrorInvalidUsername, ErrorInvalidDescriptor} {
		if !errors.Is(err, ErrorValidation) {
			t.Fatalf("%v must wrap ErrorValidation", err)
		}
	}
	if !errors.Is(ErrorUsernameTaken, ErrorAlreadyExists) {
		t.Fatalf("ErrorUsernameTaken must wrap ErrorAlreadyExists")
	}
	if errors.Is(ErrorUsernameTaken, ErrorValidation) {
		t.Fatalf("conflict must not be reported as validation")
	}
}
