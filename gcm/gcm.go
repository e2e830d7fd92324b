// Package gcm implements AES-GCM encryption from first principles -- CTR
// encryption with an inc32 counter and a GHASH universal hash built on
// package gf128 -- rather than delegating to crypto/cipher's NewGCM, so the
// reduction polynomial (P1 or P2) and every intermediate value are under
// this toolkit's direct control. crypto/aes supplies only the single-block
// AES-128 primitive (AES_K(*)); everything built on top of it is ours.
package gcm

import (
	"crypto/aes"
	"encoding/base64"
	"encoding/binary"

	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/kerrors"
)

// Result holds every output the gcm_encrypt action reports.
type Result struct {
	Ciphertext []byte
	Tag        [16]byte
	L          [16]byte
	H          [16]byte
}

// CiphertextBase64 returns the ciphertext, base64-encoded.
func (r Result) CiphertextBase64() string { return base64.StdEncoding.EncodeToString(r.Ciphertext) }

// TagBase64 returns the authentication tag, base64-encoded.
func (r Result) TagBase64() string { return base64.StdEncoding.EncodeToString(r.Tag[:]) }

// LBase64 returns the length block, base64-encoded.
func (r Result) LBase64() string { return base64.StdEncoding.EncodeToString(r.L[:]) }

// HBase64 returns the hash subkey H, base64-encoded.
func (r Result) HBase64() string { return base64.StdEncoding.EncodeToString(r.H[:]) }

// Encrypt performs AES-GCM encryption of plaintext under key and nonce, with
// associated data ad authenticated but not encrypted, using poly as the
// GHASH reduction polynomial.
func Encrypt(poly gf128.Poly, key, nonce, plaintext, ad []byte) (Result, error) {
	if len(key) != 16 {
		return Result{}, kerrors.Newf(kerrors.InputFormat, "key must be 16 bytes, got %d", len(key))
	}
	if len(nonce) != 12 {
		return Result{}, kerrors.Newf(kerrors.InputFormat, "nonce must be 12 bytes, got %d", len(nonce))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return Result{}, kerrors.Wrap(kerrors.InputFormat, "invalid AES key", err)
	}

	var hBlock [16]byte
	block.Encrypt(hBlock[:], make([]byte, 16))
	h := gf128.FromBlock(hBlock, poly)

	y0 := make([]byte, 16)
	copy(y0, nonce)
	binary.BigEndian.PutUint32(y0[12:], 1)

	ctr := make([]byte, 16)
	copy(ctr, nonce)
	binary.BigEndian.PutUint32(ctr[12:], 2)

	ciphertext := make([]byte, len(plaintext))
	for off := 0; off < len(plaintext); off += 16 {
		end := off + 16
		if end > len(plaintext) {
			end = len(plaintext)
		}
		var keystream [16]byte
		block.Encrypt(keystream[:], ctr)
		for i := off; i < end; i++ {
			ciphertext[i] = plaintext[i] ^ keystream[i-off]
		}
		inc32(ctr)
	}

	ghash, err := Ghash(poly, h, ad, ciphertext)
	if err != nil {
		return Result{}, err
	}

	var e0Block [16]byte
	block.Encrypt(e0Block[:], y0)
	e0 := gf128.FromBlock(e0Block, poly)

	tagElem, err := gf128.Add(e0, ghash)
	if err != nil {
		return Result{}, err
	}

	var lBlock [16]byte
	binary.BigEndian.PutUint64(lBlock[0:8], uint64(len(ad))*8)
	binary.BigEndian.PutUint64(lBlock[8:16], uint64(len(ciphertext))*8)

	return Result{
		Ciphertext: ciphertext,
		Tag:        tagElem.Block(),
		L:          lBlock,
		H:          hBlock,
	}, nil
}

// inc32 increments the last 4 bytes of y, treated as a big-endian counter
// modulo 2^32, in place.
func inc32(y []byte) {
	ctr := binary.BigEndian.Uint32(y[12:16])
	ctr++
	binary.BigEndian.PutUint32(y[12:16], ctr)
}

// Ghash computes GHASH_H(ad, ciphertext): fold zero-padded ad, then
// zero-padded ciphertext, then the 128-bit length block, into the
// accumulator X <- (X xor block) * H.
func Ghash(poly gf128.Poly, h gf128.Element, ad, ciphertext []byte) (gf128.Element, error) {
	x := gf128.Zero(poly)

	fold := func(data []byte) error {
		for off := 0; off < len(data); off += 16 {
			end := off + 16
			if end > len(data) {
				end = len(data)
			}
			var block [16]byte
			copy(block[:], data[off:end])
			elem := gf128.FromBlock(block, poly)
			var err error
			x, err = gf128.Add(x, elem)
			if err != nil {
				return err
			}
			x, err = gf128.Mul(x, h)
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := fold(ad); err != nil {
		return gf128.Element{}, err
	}
	if err := fold(ciphertext); err != nil {
		return gf128.Element{}, err
	}

	var lBlock [16]byte
	binary.BigEndian.PutUint64(lBlock[0:8], uint64(len(ad))*8)
	binary.BigEndian.PutUint64(lBlock[8:16], uint64(len(ciphertext))*8)
	lElem := gf128.FromBlock(lBlock, poly)

	var err error
	x, err = gf128.Add(x, lElem)
	if err != nil {
		return gf128.Element{}, err
	}
	x, err = gf128.Mul(x, h)
	if err != nil {
		return gf128.Element{}, err
	}
	return x, nil
}
