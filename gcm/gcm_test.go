package gcm

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/kauma/kauma/gf128"
)

func b64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return b
}

// TestEncryptEmptyNISTVector is NIST SP 800-38D GCM Test Case 1: an
// all-zero key and nonce, with empty plaintext and associated data.
func TestEncryptEmptyNISTVector(t *testing.T) {
	key := make([]byte, 16)
	nonce := make([]byte, 12)

	res, err := Encrypt(gf128.P1, key, nonce, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Ciphertext) != 0 {
		t.Fatalf("ciphertext = %x, want empty", res.Ciphertext)
	}
	wantH := b64(t, "ZulL1O+KLDuITPpZyjQrLg==")
	wantTag := b64(t, "WOL8zvp+MGE2fx1XpOdFWg==")
	if !bytes.Equal(res.H[:], wantH) {
		t.Fatalf("H = %x, want %x", res.H, wantH)
	}
	if !bytes.Equal(res.Tag[:], wantTag) {
		t.Fatalf("tag = %x, want %x", res.Tag, wantTag)
	}
}

// TestEncryptSingleBlockNISTVector is NIST SP 800-38D GCM Test Case 2: a
// single all-zero plaintext block under the all-zero key and nonce.
func TestEncryptSingleBlockNISTVector(t *testing.T) {
	key := make([]byte, 16)
	nonce := make([]byte, 12)
	plaintext := make([]byte, 16)

	res, err := Encrypt(gf128.P1, key, nonce, plaintext, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantC := b64(t, "A4jazmC2o5LzKMK5cbL+eA==")
	wantTag := b64(t, "q25H1CzsE731OmeyEle93w==")
	if !bytes.Equal(res.Ciphertext, wantC) {
		t.Fatalf("ciphertext = %x, want %x", res.Ciphertext, wantC)
	}
	if !bytes.Equal(res.Tag[:], wantTag) {
		t.Fatalf("tag = %x, want %x", res.Tag, wantTag)
	}
}

func TestEncryptRejectsBadKeyOrNonceLength(t *testing.T) {
	if _, err := Encrypt(gf128.P1, make([]byte, 15), make([]byte, 12), nil, nil); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := Encrypt(gf128.P1, make([]byte, 16), make([]byte, 11), nil, nil); err == nil {
		t.Fatal("expected error for short nonce")
	}
}

func TestEncryptP2Deterministic(t *testing.T) {
	key := []byte("0123456789abcdef")
	nonce := []byte("uniquenonce!")
	plaintext := []byte("attack at dawn!!")
	ad := []byte("header")

	first, err := Encrypt(gf128.P2, key, nonce, plaintext, ad)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encrypt(gf128.P2, key, nonce, plaintext, ad)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Ciphertext, second.Ciphertext) || first.Tag != second.Tag {
		t.Fatal("encryption is not deterministic for identical inputs")
	}
	if len(first.Ciphertext) != len(plaintext) {
		t.Fatalf("ciphertext length = %d, want %d", len(first.Ciphertext), len(plaintext))
	}

	// Changing a single ciphertext byte must invalidate the tag under an
	// independently recomputed GHASH.
	tampered := append([]byte(nil), first.Ciphertext...)
	tampered[0] ^= 0x01
	h := gf128.FromBlock(first.H, gf128.P2)
	original, err := Ghash(gf128.P2, h, ad, first.Ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	mutated, err := Ghash(gf128.P2, h, ad, tampered)
	if err != nil {
		t.Fatal(err)
	}
	if original.Equal(mutated) {
		t.Fatal("GHASH did not change after tampering with ciphertext")
	}
}
