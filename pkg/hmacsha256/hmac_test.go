package hmacsha256

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

// RFC 4231 test case 1.
func TestSumRFC4231Case1(t *testing.T) {
	key := bytes.Repeat([]byte{0x0b}, 20)
	data := []byte("Hi There")
	want, err := hex.DecodeString("b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7")
	if err != nil {
		t.Fatalf("bad test vector: %v", err)
	}

	got := Sum(key, data)
	if !bytes.Equal(got[:], want) {
		t.Errorf("Sum() = %x, want %x", got, want)
	}
}

func TestSumLongKeyIsHashed(t *testing.T) {
	longKey := bytes.Repeat([]byte{0xAA}, 100)
	data := []byte("payload")

	a := Sum(longKey, data)
	b := Sum(longKey, data)
	if a != b {
		t.Errorf("Sum() not deterministic for same inputs")
	}

	digest := sha256.Sum256(longKey)
	if Sum(digest[:], data) != a {
		t.Errorf("Sum() with a long key should equal Sum() with that key's SHA-256 digest")
	}

	shortKey := bytes.Repeat([]byte{0xAA}, 32)
	if Sum(shortKey, data) == a {
		t.Errorf("Sum() with long key should not equal Sum() with an unrelated short key")
	}
}

func TestSumDifferentDataDiffers(t *testing.T) {
	key := []byte("key")
	a := Sum(key, []byte("data one"))
	b := Sum(key, []byte("data two"))
	if a == b {
		t.Errorf("Sum() returned same MAC for different data")
	}
}
