// Package descriptor converts face descriptors to and from their textual
// transport form.
//
// A descriptor is the fixed-length float vector produced by the upstream
// feature extractor. Its text form is a JSON array in feature order, e.g.
// "[0.1,-0.03,...]". Encoding uses the shortest float32 representation, so
// Decode(Encode(d)) reproduces d exactly.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	// ErrMalformed is returned when text is not a valid numeric sequence.
	ErrMalformed = errors.New("malformed descriptor")
	// ErrLengthMismatch is returned when a descriptor does not have the
	// expected number of components.
	ErrLengthMismatch = errors.New("descriptor length mismatch")
)

// Descriptor is a face descriptor.
type Descriptor []float32

// Encode returns the canonical text form of d.
func Encode(d Descriptor) (string, error) {
	if err := checkFinite(d); err != nil {
		return "", err
	}
	if d == nil {
		d = Descriptor{}
	}
	b, err := json.Marshal([]float32(d))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(b), nil
}

// Decode parses the text form produced by Encode. Surrounding whitespace is
// allowed; anything else that is not a flat array of numbers is rejected.
func Decode(text string) (Descriptor, error) {
	return DecodeBytes([]byte(text))
}

// DecodeBytes is Decode for raw bytes. It lets callers parse decrypted
// plaintext without copying it into an immutable string.
func DecodeBytes(b []byte) (Descriptor, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, ErrMalformed
	}

	var raw []any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}

	d := make(Descriptor, len(raw))
	for i, elem := range raw {
		// quoted numbers would also fit a json.Number field, so check the type
		n, ok := elem.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: component %d is not a number", ErrMalformed, i)
		}
		// parsed at 32 bits directly, so no double rounding through float64
		v, err := strconv.ParseFloat(string(n), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrMalformed, i, err)
		}
		d[i] = float32(v)
	}
	return d, nil
}

// Validate checks that d has exactly n finite components.
func Validate(d Descriptor, n int) error {
	if len(d) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(d), n)
	}
	return checkFinite(d)
}

func checkFinite(d Descriptor) error {
	for i, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is not finite", ErrMalformed, i)
		}
	}
	return nil
}
