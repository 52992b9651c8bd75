// Package hmacsha256 implements the keyed-hash message authentication
// code defined by RFC 2104, instantiated with SHA-256 (block size 64
// bytes, digest size 32 bytes) per RFC 4231. crypto/sha256 is used only
// as the underlying compression primitive; the ipad/opad construction
// itself is built by hand so its correctness is directly testable
// against the RFC 4231 vectors rather than inherited from crypto/hmac.
package hmacsha256

import "crypto/sha256"

const (
	blockSize  = 64
	digestSize = 32
)

// Sum computes HMAC-SHA-256(key, data).
func Sum(key, data []byte) [digestSize]byte {
	k := normalizeKey(key)

	ipad := make([]byte, blockSize)
	opad := make([]byte, blockSize)
	for i := 0; i < blockSize; i++ {
		ipad[i] = k[i] ^ 0x36
		opad[i] = k[i] ^ 0x5C
	}

	inner := sha256.Sum256(append(ipad, data...))
	outer := sha256.Sum256(append(opad, inner[:]...))
	return outer
}

// normalizeKey reduces key to exactly blockSize bytes: hashed down if
// longer, zero-padded on the right if shorter or equal.
func normalizeKey(key []byte) [blockSize]byte {
	var k [blockSize]byte
	if len(key) > blockSize {
		digest := sha256.Sum256(key)
		copy(k[:], digest[:])
		return k
	}
	copy(k[:], key)
	return k
}
