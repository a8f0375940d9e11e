package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix leaves room for a
// future encoding change without colliding with recorded hashes.
const (
	DomainState  = "guitarhero/state/v1"
	DomainEvent  = "guitarhero/event/v1"
	DomainConfig = "guitarhero/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data), hex encoded.
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical fingerprints any canonical value under the given domain.
func HashCanonical(domain string, v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// StateFingerprint returns a stable hash of every field of s.
// Two states fingerprint equally iff they are field-for-field identical,
// floats compared bitwise.
func StateFingerprint(s State) string {
	// State.ToIR never produces nil, so marshaling cannot fail.
	fp, err := HashCanonical(DomainState, s.ToIR())
	if err != nil {
		panic(err)
	}
	return fp
}

// EventFingerprint returns a stable hash of one event.
func EventFingerprint(ev Event) string {
	fp, err := HashCanonical(DomainEvent, EventToIR(ev))
	if err != nil {
		panic(err)
	}
	return fp
}
