// Package gf128 implements GF(2^128) field arithmetic under the two
// reduction pentanomials used by this toolkit, together with the GCM
// block codec that maps a 16-byte wire block to the field's internal
// bit-i-is-coefficient-of-x^i integer representation.
//
// The 128-bit field value (and the up to 255-bit carryless-multiply
// intermediate produced before reduction) is held in a
// github.com/holiman/uint256.Int, a fixed four-limb 256-bit integer --
// wide enough for both without ever reaching for math/big on this hot
// path.
package gf128

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/kauma/kauma/kerrors"
)

// Poly selects one of the two supported reduction pentanomials.
type Poly int

const (
	// P1 is the AES-GCM standard polynomial x^128 + x^7 + x^2 + x + 1.
	P1 Poly = iota
	// P2 is x^128 + x^98 + x^69 + x^33 + 1, supported for testing.
	P2
)

func (p Poly) String() string {
	switch p {
	case P1:
		return "p1"
	case P2:
		return "p2"
	default:
		return fmt.Sprintf("poly(%d)", int(p))
	}
}

// ParsePoly accepts "p1"/"p2" case-insensitively, matching the wire
// argument's poly field.
func ParsePoly(s string) (Poly, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p1":
		return P1, nil
	case "p2":
		return P2, nil
	default:
		return 0, kerrors.Newf(kerrors.InputFormat, "poly must be p1 or p2, got %q", s)
	}
}

// r is the low-128-bit part of the reduction polynomial (the pentanomial
// minus its x^128 term); m is (1<<128)|r, used by inversion's extended
// Euclidean algorithm.
var (
	p1R, p2R uint256.Int
	p1M, p2M uint256.Int
)

func init() {
	p1R = *uint256.NewInt(0x87) // x^7 + x^2 + x + 1
	for _, bitIdx := range []uint{0, 33, 69, 98} {
		setBit(&p2R, bitIdx)
	}
	p1M = *uint256.NewInt(1)
	p1M.Lsh(&p1M, 128)
	p1M.Xor(&p1M, &p1R)

	p2M = *uint256.NewInt(1)
	p2M.Lsh(&p2M, 128)
	p2M.Xor(&p2M, &p2R)
}

func rOf(p Poly) *uint256.Int {
	if p == P1 {
		return &p1R
	}
	return &p2R
}

func modulusOf(p Poly) *uint256.Int {
	if p == P1 {
		return &p1M
	}
	return &p2M
}

// Element is a single value of GF(2^128) under a chosen reduction
// polynomial. Every binary operation requires both operands to carry the
// same Poly; a mismatch is a domain error. Elements are immutable: every
// operation returns a fresh value.
type Element struct {
	value uint256.Int
	poly  Poly
}

// Zero returns the additive identity.
func Zero(poly Poly) Element { return Element{poly: poly} }

// One returns the multiplicative identity.
func One(poly Poly) Element { return Element{value: *uint256.NewInt(1), poly: poly} }

// FromUint64 builds an element directly from a 64-bit value, useful for
// small constants and tests.
func FromUint64(v uint64, poly Poly) Element {
	return Element{value: *uint256.NewInt(v), poly: poly}
}

// FromRawBits builds an element directly from its internal 128-bit value
// (hi holding bits 64-127, lo holding bits 0-63), bypassing the GCM block
// codec. Used by EDF's random-polynomial generation, which needs raw
// uniformly-random field values rather than wire-encoded ones.
func FromRawBits(hi, lo uint64, poly Poly) Element {
	v := *uint256.NewInt(hi)
	v.Lsh(&v, 64)
	loInt := uint256.NewInt(lo)
	v.Or(&v, loInt)
	return Element{value: v, poly: poly}
}

// FromBlock decodes a 16-byte GCM wire block into its internal field value
// via the bit-reversal codec (spec's C1).
func FromBlock(b [16]byte, poly Poly) Element {
	raw := reverseBlock(b)
	var v uint256.Int
	v.SetBytes(raw[:])
	return Element{value: v, poly: poly}
}

// FromBase64 decodes a base64-encoded 16-byte block.
func FromBase64(s string, poly Poly) (Element, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Element{}, kerrors.Wrap(kerrors.InputFormat, "invalid base64", err)
	}
	if len(raw) != 16 {
		return Element{}, kerrors.Newf(kerrors.InputFormat, "field element must be 16 bytes, got %d", len(raw))
	}
	var b [16]byte
	copy(b[:], raw)
	return FromBlock(b, poly), nil
}

// Poly reports the element's reduction polynomial.
func (e Element) Poly() Poly { return e.poly }

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.value.IsZero() }

// Block encodes the element back into its 16-byte GCM wire form.
func (e Element) Block() [16]byte {
	full := e.value.Bytes32()
	var raw [16]byte
	copy(raw[:], full[16:])
	return reverseBlock(raw)
}

// Base64 encodes the element's wire block as base64.
func (e Element) Base64() string {
	b := e.Block()
	return base64.StdEncoding.EncodeToString(b[:])
}

// Equal reports whether a and b carry the same reduction polynomial and the
// same field value.
func (e Element) Equal(o Element) bool {
	return e.poly == o.poly && e.value == o.value
}

// Cmp compares the raw integer value of two elements sharing the same
// field, used by the polynomial ring's total ordering (spec's sort action).
// It does not compare poly tags; callers are expected to have already
// established the elements share a field.
func (e Element) Cmp(o Element) int {
	return e.value.Cmp(&o.value)
}

func sameField(a, b Element) error {
	if a.poly != b.poly {
		return kerrors.Newf(kerrors.Domain, "mismatched reduction polynomials: %s vs %s", a.poly, b.poly)
	}
	return nil
}

// Add returns a XOR b (addition and subtraction coincide in characteristic 2).
func Add(a, b Element) (Element, error) {
	if err := sameField(a, b); err != nil {
		return Element{}, err
	}
	var v uint256.Int
	v.Xor(&a.value, &b.value)
	return Element{value: v, poly: a.poly}, nil
}

// Mul returns the carryless product of a and b reduced modulo the chosen
// pentanomial.
func Mul(a, b Element) (Element, error) {
	if err := sameField(a, b); err != nil {
		return Element{}, err
	}
	prod := carrylessMul(&a.value, &b.value)
	reduced := reduceWide(&prod, rOf(a.poly))
	return Element{value: reduced, poly: a.poly}, nil
}

// Inv returns the multiplicative inverse of a, or a domain error if a is
// zero.
func Inv(a Element) (Element, error) {
	if a.IsZero() {
		return Element{}, kerrors.New(kerrors.Domain, "cannot invert zero")
	}
	m := modulusOf(a.poly)
	oldR, r := *m, a.value
	oldT, t := uint256.Int{}, *uint256.NewInt(1)
	for degree(&r) >= 0 {
		q, rem := polyDivModRaw(&oldR, &r)
		oldR, r = r, rem
		qt := carrylessMul(&q, &t)
		newT := oldT
		newT.Xor(&newT, &qt)
		oldT, t = t, newT
	}
	// oldR now holds gcd(m, a.value); since the pentanomial is irreducible
	// and a != 0, this gcd is always the constant polynomial 1.
	return Element{value: oldT, poly: a.poly}, nil
}

// Div returns a * inv(b).
func Div(a, b Element) (Element, error) {
	inv, err := Inv(b)
	if err != nil {
		return Element{}, err
	}
	return Mul(a, inv)
}

// Pow returns a raised to the non-negative exponent e via square-and-multiply.
func Pow(a Element, e *big.Int) Element {
	result := One(a.poly)
	if e.Sign() == 0 {
		return result
	}
	base := a
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			result, _ = Mul(result, base)
		}
		if i != e.BitLen()-1 {
			base, _ = Mul(base, base)
		}
	}
	return result
}

// PowUint64 is a convenience wrapper for small exponents.
func PowUint64(a Element, e uint64) Element {
	return Pow(a, new(big.Int).SetUint64(e))
}

// Sqrt returns a^(2^127): since squaring is the Frobenius endomorphism of
// GF(2^128), a^(2^128) = a, so a^(2^127) is the unique square root of a.
func Sqrt(a Element) Element {
	result := a
	for i := 0; i < 127; i++ {
		result, _ = Mul(result, result)
	}
	return result
}

// ---------------------------------------------------------------------------
// GF(2)[x] bit-vector helpers shared by reduction and inversion.
// ---------------------------------------------------------------------------

func bitAt(v *uint256.Int, i uint) bool {
	var t uint256.Int
	t.Rsh(v, i)
	t.And(&t, uint256.NewInt(1))
	return !t.IsZero()
}

func setBit(v *uint256.Int, i uint) {
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), i)
	v.Xor(v, &mask)
}

// degree returns the index of the highest set bit, or -1 for the zero
// polynomial.
func degree(v *uint256.Int) int {
	for i := 255; i >= 0; i-- {
		if bitAt(v, uint(i)) {
			return i
		}
	}
	return -1
}

// carrylessMul computes the GF(2)[x] product of a and b (no reduction). Both
// operands, and therefore the product, must fit within 256 bits -- true for
// every use in this package (operands of degree <= 128).
func carrylessMul(a, b *uint256.Int) uint256.Int {
	var result uint256.Int
	for i := 0; i <= 255; i++ {
		if bitAt(a, uint(i)) {
			var shifted uint256.Int
			shifted.Lsh(b, uint(i))
			result.Xor(&result, &shifted)
		}
	}
	return result
}

// reduceWide folds a wide (up to 255-bit) carryless-multiply result down
// modulo the pentanomial x^128 + r, bit by bit from the top down: since
// x^128 = r(x) in the quotient field, x^h = x^(h-128) * r(x) for h >= 128.
func reduceWide(wide *uint256.Int, r *uint256.Int) uint256.Int {
	result := *wide
	for h := 254; h >= 128; h-- {
		if bitAt(&result, uint(h)) {
			var hBit uint256.Int
			hBit.Lsh(uint256.NewInt(1), uint(h))
			result.Xor(&result, &hBit)

			var shiftedR uint256.Int
			shiftedR.Lsh(r, uint(h-128))
			result.Xor(&result, &shiftedR)
		}
	}
	return result
}

// polyDivModRaw performs GF(2)[x] long division of a by b (no field
// reduction) and is the raw operation behind the gf_divmod action as well
// as the extended Euclidean algorithm used by Inv. b must be nonzero.
func polyDivModRaw(a, b *uint256.Int) (q, r uint256.Int) {
	degB := degree(b)
	r = *a
	for degree(&r) >= degB {
		shift := uint(degree(&r) - degB)
		var qBit uint256.Int
		qBit.Lsh(uint256.NewInt(1), shift)
		q.Xor(&q, &qBit)

		var shiftedB uint256.Int
		shiftedB.Lsh(b, shift)
		r.Xor(&r, &shiftedB)
	}
	return q, r
}

// DivModRaw exposes the raw GF(2)[x] long division (no field reduction) for
// the gf_divmod action, which operates directly on the bit-reversed 128-bit
// representation rather than on field elements.
func DivModRaw(a, b Element) (q, r Element, err error) {
	if err := sameField(a, b); err != nil {
		return Element{}, Element{}, err
	}
	if b.IsZero() {
		return Element{}, Element{}, kerrors.New(kerrors.Domain, "division by zero polynomial")
	}
	qv, rv := polyDivModRaw(&a.value, &b.value)
	return Element{value: qv, poly: a.poly}, Element{value: rv, poly: a.poly}, nil
}
