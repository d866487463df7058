package cryptox

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// recordSeparator joins the hex fields of a stored record. It never occurs
// in hex output.
const recordSeparator = ":"

var (
	// ErrMalformedRecord is returned when a stored record cannot be split into
	// its three hex fields or a field has the wrong size.
	ErrMalformedRecord = errors.New("malformed encrypted record")
	// ErrAuthenticationFailed is returned when the authentication tag does not
	// verify: the record was tampered with, corrupted, or sealed under another key.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Record is an encrypted descriptor as stored in the user store.
type Record struct {
	IV         []byte
	Ciphertext []byte
	Tag        []byte
}

// String returns the storable form "ivHex:cipherHex:tagHex".
func (r Record) String() string {
	return hex.EncodeToString(r.IV) + recordSeparator +
		hex.EncodeToString(r.Ciphertext) + recordSeparator +
		hex.EncodeToString(r.Tag)
}

// ParseRecord parses the form produced by Record.String. All three fields must
// be present and valid hex; IV and tag must be non-empty.
func ParseRecord(s string) (Record, error) {
	parts := strings.Split(s, recordSeparator)
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedRecord, len(parts))
	}

	names := [3]string{"iv", "ciphertext", "tag"}
	var fields [3][]byte
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, names[i], err)
		}
		fields[i] = b
	}

	if len(fields[0]) == 0 || len(fields[2]) == 0 {
		return Record{}, fmt.Errorf("%w: empty iv or tag", ErrMalformedRecord)
	}

	return Record{IV: fields[0], Ciphertext: fields[1], Tag: fields[2]}, nil
}
