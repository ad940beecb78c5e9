// Package keyhash derives stable string identities from structured
// subscription keys.
//
// Two structurally equal keys always produce the same string: the key is
// serialized with canonical CBOR (deterministic map-key ordering), so map
// insertion order never leaks into the identity, while slice and array
// element order does. Comparison is value-based; pointers are followed,
// never compared by address.
package keyhash

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Size is the digest length in bytes. Hashes are 2*Size hex characters.
const Size = 16

// encMode is the canonical CBOR encoder mode for key serialization.
var encMode cbor.EncMode

func init() {
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	var err error
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create keyhash CBOR encoder mode: %v", err))
	}
}

// Hash returns the stable identity string for a structured key.
// It returns an error if the key contains values CBOR cannot encode
// (channels, functions).
func Hash(key any) (string, error) {
	data, err := encMode.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("keyhash: encode key: %w", err)
	}

	h, err := blake2b.New(Size, nil)
	if err != nil {
		return "", fmt.Errorf("keyhash: create digest: %w", err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustHash is like Hash but panics on error. Use for keys known to be
// encodable, such as literals and plain config structs.
func MustHash(key any) string {
	s, err := Hash(key)
	if err != nil {
		panic(err)
	}
	return s
}
