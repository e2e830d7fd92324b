// Package gfpoly implements the polynomial ring GF(2^128)[X]: coefficients
// are held in ascending-degree order and every constructor normalizes away
// trailing zero coefficients, so the zero polynomial always has length 1
// (degree 0, treated as degree -infinity for ordering purposes).
package gfpoly

import (
	"math/big"

	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/kerrors"
)

// GFPoly is an immutable polynomial over GF(2^128). Every arithmetic
// operation returns a fresh value.
type GFPoly struct {
	coeffs []gf128.Element
	poly   gf128.Poly
}

func normalize(coeffs []gf128.Element) []gf128.Element {
	i := len(coeffs) - 1
	for i > 0 && coeffs[i].IsZero() {
		i--
	}
	return coeffs[:i+1]
}

// New builds a polynomial from coefficients, which must all share the same
// reduction polynomial. A nil or empty slice produces the zero polynomial.
func New(coeffs []gf128.Element, poly gf128.Poly) (GFPoly, error) {
	if len(coeffs) == 0 {
		return GFPoly{coeffs: []gf128.Element{gf128.Zero(poly)}, poly: poly}, nil
	}
	cp := make([]gf128.Element, len(coeffs))
	for i, c := range coeffs {
		if c.Poly() != poly {
			return GFPoly{}, kerrors.New(kerrors.Domain, "all coefficients must use the same reduction polynomial")
		}
		cp[i] = c
	}
	return GFPoly{coeffs: normalize(cp), poly: poly}, nil
}

// FromBase64 decodes an ordered slice of base64 16-byte coefficients.
func FromBase64(arr []string, poly gf128.Poly) (GFPoly, error) {
	coeffs := make([]gf128.Element, len(arr))
	for i, s := range arr {
		e, err := gf128.FromBase64(s, poly)
		if err != nil {
			return GFPoly{}, err
		}
		coeffs[i] = e
	}
	return New(coeffs, poly)
}

// Zero returns the zero polynomial in the given field.
func Zero(poly gf128.Poly) GFPoly {
	return GFPoly{coeffs: []gf128.Element{gf128.Zero(poly)}, poly: poly}
}

// One returns the constant polynomial 1.
func One(poly gf128.Poly) GFPoly {
	return GFPoly{coeffs: []gf128.Element{gf128.One(poly)}, poly: poly}
}

// X returns the polynomial X (degree 1, coefficients [0, 1]).
func X(poly gf128.Poly) GFPoly {
	return GFPoly{coeffs: []gf128.Element{gf128.Zero(poly), gf128.One(poly)}, poly: poly}
}

// Deg returns the polynomial's degree.
func (p GFPoly) Deg() int { return len(p.coeffs) - 1 }

// Poly reports the reduction polynomial shared by all coefficients.
func (p GFPoly) Poly() gf128.Poly { return p.poly }

// IsZero reports whether p is the zero polynomial.
func (p GFPoly) IsZero() bool { return len(p.coeffs) == 1 && p.coeffs[0].IsZero() }

// IsOne reports whether p is the constant polynomial 1.
func (p GFPoly) IsOne() bool {
	return len(p.coeffs) == 1 && p.coeffs[0].Equal(gf128.One(p.poly))
}

// LeadingCoeff returns the coefficient of the highest-degree term.
func (p GFPoly) LeadingCoeff() gf128.Element { return p.coeffs[len(p.coeffs)-1] }

// Coeffs returns a defensive copy of the coefficient slice.
func (p GFPoly) Coeffs() []gf128.Element {
	out := make([]gf128.Element, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

// ToBase64 serializes the coefficients as base64 strings.
func (p GFPoly) ToBase64() []string {
	out := make([]string, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = c.Base64()
	}
	return out
}

func assertSamePoly(a, b GFPoly) error {
	if a.poly != b.poly {
		return kerrors.New(kerrors.Domain, "polynomial fields must match")
	}
	return nil
}

// Equal reports structural equality: same field, same coefficients.
func (p GFPoly) Equal(o GFPoly) bool {
	if p.poly != o.poly || len(p.coeffs) != len(o.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if !p.coeffs[i].Equal(o.coeffs[i]) {
			return false
		}
	}
	return true
}

// Less implements the spec's total ordering: strictly by degree, ties
// broken by comparing raw coefficient values from the highest index down.
func (p GFPoly) Less(o GFPoly) bool {
	if p.Deg() != o.Deg() {
		return p.Deg() < o.Deg()
	}
	for i := p.Deg(); i >= 0; i-- {
		c := p.coeffs[i].Cmp(o.coeffs[i])
		if c != 0 {
			return c < 0
		}
	}
	return false
}

// Monic scales p so its leading coefficient is 1; the zero polynomial is
// returned unchanged.
func (p GFPoly) Monic() (GFPoly, error) {
	if p.IsZero() {
		return Zero(p.poly), nil
	}
	lead := p.LeadingCoeff()
	if lead.Equal(gf128.One(p.poly)) {
		return p, nil
	}
	invLead, err := gf128.Inv(lead)
	if err != nil {
		return GFPoly{}, err
	}
	out := make([]gf128.Element, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i], err = gf128.Mul(c, invLead)
		if err != nil {
			return GFPoly{}, err
		}
	}
	return New(out, p.poly)
}

// Add returns the coefficient-wise XOR of p and o (addition and subtraction
// coincide in characteristic 2).
func Add(p, o GFPoly) (GFPoly, error) {
	if err := assertSamePoly(p, o); err != nil {
		return GFPoly{}, err
	}
	n := len(p.coeffs)
	if len(o.coeffs) > n {
		n = len(o.coeffs)
	}
	out := make([]gf128.Element, n)
	for i := 0; i < n; i++ {
		a := gf128.Zero(p.poly)
		if i < len(p.coeffs) {
			a = p.coeffs[i]
		}
		b := gf128.Zero(p.poly)
		if i < len(o.coeffs) {
			b = o.coeffs[i]
		}
		sum, err := gf128.Add(a, b)
		if err != nil {
			return GFPoly{}, err
		}
		out[i] = sum
	}
	return New(out, p.poly)
}

// Sub is identical to Add in characteristic 2.
func Sub(p, o GFPoly) (GFPoly, error) { return Add(p, o) }

// Mul computes the schoolbook product of p and o.
func Mul(p, o GFPoly) (GFPoly, error) {
	if err := assertSamePoly(p, o); err != nil {
		return GFPoly{}, err
	}
	out := make([]gf128.Element, p.Deg()+o.Deg()+1)
	for i := range out {
		out[i] = gf128.Zero(p.poly)
	}
	for i, ai := range p.coeffs {
		for j, bj := range o.coeffs {
			prod, err := gf128.Mul(ai, bj)
			if err != nil {
				return GFPoly{}, err
			}
			sum, err := gf128.Add(out[i+j], prod)
			if err != nil {
				return GFPoly{}, err
			}
			out[i+j] = sum
		}
	}
	return New(out, p.poly)
}

// DivMod performs Euclidean long division, returning (Q, R) such that
// p = Q*o + R and deg(R) < deg(o). o must be nonzero.
func DivMod(p, o GFPoly) (q, r GFPoly, err error) {
	if err = assertSamePoly(p, o); err != nil {
		return
	}
	if o.IsZero() {
		return GFPoly{}, GFPoly{}, kerrors.New(kerrors.Domain, "division by zero polynomial")
	}
	invLeadDivisor, err := gf128.Inv(o.LeadingCoeff())
	if err != nil {
		return GFPoly{}, GFPoly{}, err
	}
	quotientLen := p.Deg() - o.Deg() + 1
	if quotientLen < 1 {
		quotientLen = 1
	}
	Q := make([]gf128.Element, quotientLen)
	for i := range Q {
		Q[i] = gf128.Zero(p.poly)
	}
	R := normalize(append([]gf128.Element(nil), p.coeffs...))

	for len(R)-1 >= o.Deg() && !isZeroSlice(R) {
		shift := (len(R) - 1) - o.Deg()
		scale, err := gf128.Mul(R[len(R)-1], invLeadDivisor)
		if err != nil {
			return GFPoly{}, GFPoly{}, err
		}
		Q[shift], err = gf128.Add(Q[shift], scale)
		if err != nil {
			return GFPoly{}, GFPoly{}, err
		}

		shifted := make([]gf128.Element, shift, shift+len(o.coeffs))
		for i := range shifted {
			shifted[i] = gf128.Zero(p.poly)
		}
		for _, c := range o.coeffs {
			scaled, err := gf128.Mul(c, scale)
			if err != nil {
				return GFPoly{}, GFPoly{}, err
			}
			shifted = append(shifted, scaled)
		}

		maxLen := len(R)
		if len(shifted) > maxLen {
			maxLen = len(shifted)
		}
		newR := make([]gf128.Element, maxLen)
		for i := 0; i < maxLen; i++ {
			a := gf128.Zero(p.poly)
			if i < len(R) {
				a = R[i]
			}
			b := gf128.Zero(p.poly)
			if i < len(shifted) {
				b = shifted[i]
			}
			sum, err := gf128.Add(a, b)
			if err != nil {
				return GFPoly{}, GFPoly{}, err
			}
			newR[i] = sum
		}
		R = normalize(newR)
	}

	qp, err := New(Q, p.poly)
	if err != nil {
		return GFPoly{}, GFPoly{}, err
	}
	rp, err := New(R, p.poly)
	if err != nil {
		return GFPoly{}, GFPoly{}, err
	}
	return qp, rp, nil
}

func isZeroSlice(coeffs []gf128.Element) bool {
	for _, c := range coeffs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

// Mod returns the remainder of p divided by o.
func Mod(p, o GFPoly) (GFPoly, error) {
	_, r, err := DivMod(p, o)
	return r, err
}

// Gcd computes the monic greatest common divisor of p and o via the
// Euclidean algorithm; gcd(0,0) = 0.
func Gcd(p, o GFPoly) (GFPoly, error) {
	if err := assertSamePoly(p, o); err != nil {
		return GFPoly{}, err
	}
	a, b := p, o
	for !isZeroSlice(b.coeffs) {
		_, r, err := DivMod(a, b)
		if err != nil {
			return GFPoly{}, err
		}
		a, b = b, r
	}
	if a.IsZero() {
		return Zero(p.poly), nil
	}
	return a.Monic()
}

// Pow raises p to the non-negative exponent e via square-and-multiply. e is
// a *big.Int because DDF/EDF exponents (powers of q = 2^128) vastly exceed
// any fixed machine word.
func Pow(p GFPoly, e *big.Int) (GFPoly, error) {
	z := One(p.poly)
	base := p
	var err error
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			z, err = Mul(z, base)
			if err != nil {
				return GFPoly{}, err
			}
		}
		if i != e.BitLen()-1 {
			base, err = Mul(base, base)
			if err != nil {
				return GFPoly{}, err
			}
		}
	}
	return z, nil
}

// PowIntExp is a convenience wrapper for small, machine-word exponents.
func PowIntExp(p GFPoly, e int) (GFPoly, error) {
	return Pow(p, big.NewInt(int64(e)))
}

// PowMod computes p^e mod m, reducing after every squaring and multiply
// step so intermediate degrees stay bounded by deg(m).
func PowMod(p GFPoly, e *big.Int, m GFPoly) (GFPoly, error) {
	if err := assertSamePoly(p, m); err != nil {
		return GFPoly{}, err
	}
	if m.IsOne() {
		return Zero(p.poly), nil
	}
	if e.Sign() == 0 {
		return One(p.poly), nil
	}
	if p.IsZero() {
		return Zero(p.poly), nil
	}
	base, err := Mod(p, m)
	if err != nil {
		return GFPoly{}, err
	}
	z := One(p.poly)
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			z, err = Mul(z, base)
			if err != nil {
				return GFPoly{}, err
			}
			z, err = Mod(z, m)
			if err != nil {
				return GFPoly{}, err
			}
		}
		if i != e.BitLen()-1 {
			base, err = Mul(base, base)
			if err != nil {
				return GFPoly{}, err
			}
			base, err = Mod(base, m)
			if err != nil {
				return GFPoly{}, err
			}
		}
	}
	return z, nil
}

// PowModIntExp is a convenience wrapper for small, machine-word exponents.
func PowModIntExp(p GFPoly, e int, m GFPoly) (GFPoly, error) {
	return PowMod(p, big.NewInt(int64(e)), m)
}

// Diff returns the formal derivative: in characteristic 2 the coefficient
// of X^(i-1) in p' is c_i when i is odd, else 0.
func (p GFPoly) Diff() (GFPoly, error) {
	if len(p.coeffs) <= 1 {
		return Zero(p.poly), nil
	}
	out := make([]gf128.Element, len(p.coeffs)-1)
	for i := 1; i < len(p.coeffs); i++ {
		if i%2 == 1 {
			out[i-1] = p.coeffs[i]
		} else {
			out[i-1] = gf128.Zero(p.poly)
		}
	}
	return New(out, p.poly)
}

// Sqrt returns R such that R^2 = p, assuming p has nonzero coefficients only
// at even indices (the shape produced by squaring in characteristic 2):
// R_i = sqrt(c_2i).
func (p GFPoly) Sqrt() (GFPoly, error) {
	maxI := (len(p.coeffs) - 1) / 2
	out := make([]gf128.Element, maxI+1)
	for i := 0; i <= maxI; i++ {
		idx := 2 * i
		c := gf128.Zero(p.poly)
		if idx < len(p.coeffs) {
			c = p.coeffs[idx]
		}
		out[i] = gf128.Sqrt(c)
	}
	return New(out, p.poly)
}
