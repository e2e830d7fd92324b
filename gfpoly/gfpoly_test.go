package gfpoly

import (
	"math/big"
	"testing"

	"github.com/kauma/kauma/gf128"
)

func elem(hi, lo uint64) gf128.Element { return gf128.FromRawBits(hi, lo, gf128.P1) }

func mustPoly(t *testing.T, coeffs []gf128.Element) GFPoly {
	t.Helper()
	p, err := New(coeffs, gf128.P1)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewNormalizesTrailingZeros(t *testing.T) {
	p := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 0), elem(0, 0)})
	if p.Deg() != 0 {
		t.Fatalf("Deg() = %d, want 0 after trailing-zero normalization", p.Deg())
	}
}

func TestZeroPolynomialShape(t *testing.T) {
	z := Zero(gf128.P1)
	if z.Deg() != 0 || !z.IsZero() {
		t.Fatalf("Zero() has degree %d, IsZero=%v", z.Deg(), z.IsZero())
	}
}

func TestAddSubIdentity(t *testing.T) {
	a := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 2), elem(0, 3)})
	sum, err := Add(a, Zero(gf128.P1))
	if err != nil || !sum.Equal(a) {
		t.Fatalf("A + 0 = %v, %v; want A", sum, err)
	}
	self, err := Sub(a, a)
	if err != nil || !self.IsZero() {
		t.Fatalf("A - A = %v, %v; want 0", self, err)
	}
}

func TestMulByOneAndZero(t *testing.T) {
	a := mustPoly(t, []gf128.Element{elem(0, 5), elem(0, 7)})
	one := One(gf128.P1)
	prod, err := Mul(a, one)
	if err != nil || !prod.Equal(a) {
		t.Fatalf("A * 1 = %v, %v; want A", prod, err)
	}
	prod, err = Mul(a, Zero(gf128.P1))
	if err != nil || !prod.IsZero() {
		t.Fatalf("A * 0 = %v, %v; want 0", prod, err)
	}
}

func TestDivModInvariant(t *testing.T) {
	a := mustPoly(t, []gf128.Element{elem(0, 9), elem(0, 1), elem(0, 4), elem(0, 1)})
	b := mustPoly(t, []gf128.Element{elem(0, 3), elem(0, 1)})

	q, r, err := DivMod(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if r.Deg() >= b.Deg() && !r.IsZero() {
		t.Fatalf("deg(R) = %d, want < deg(B) = %d", r.Deg(), b.Deg())
	}
	qb, err := Mul(q, b)
	if err != nil {
		t.Fatal(err)
	}
	reconstructed, err := Add(qb, r)
	if err != nil {
		t.Fatal(err)
	}
	if !reconstructed.Equal(a) {
		t.Fatalf("Q*B + R = %v, want A = %v", reconstructed, a)
	}
}

func TestDivModByZeroIsError(t *testing.T) {
	a := mustPoly(t, []gf128.Element{elem(0, 1)})
	if _, _, err := DivMod(a, Zero(gf128.P1)); err == nil {
		t.Fatal("DivMod by zero should fail")
	}
}

func TestGcdDividesBoth(t *testing.T) {
	a := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 1), elem(0, 0), elem(0, 1)})
	b := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 1)})

	g, err := Gcd(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if _, r, err := DivMod(a, g); err != nil || !r.IsZero() {
		t.Fatalf("gcd does not divide A: r=%v, err=%v", r, err)
	}
	if _, r, err := DivMod(b, g); err != nil || !r.IsZero() {
		t.Fatalf("gcd does not divide B: r=%v, err=%v", r, err)
	}
	if !g.IsZero() {
		m, err := g.Monic()
		if err != nil || !m.Equal(g) {
			t.Fatalf("gcd result is not monic: %v", g)
		}
	}
}

func TestGcdOfZeroIsZero(t *testing.T) {
	g, err := Gcd(Zero(gf128.P1), Zero(gf128.P1))
	if err != nil || !g.IsZero() {
		t.Fatalf("gcd(0,0) = %v, %v; want 0", g, err)
	}
}

func TestMonicScalesLeadingCoeffToOne(t *testing.T) {
	lead := elem(0, 5)
	p := mustPoly(t, []gf128.Element{elem(0, 1), lead})
	m, err := p.Monic()
	if err != nil {
		t.Fatal(err)
	}
	if !m.LeadingCoeff().Equal(gf128.One(gf128.P1)) {
		t.Fatalf("leading coeff after Monic = %v, want 1", m.LeadingCoeff())
	}
}

func TestPowAndPowMod(t *testing.T) {
	x := X(gf128.P1)
	p0, err := Pow(x, big.NewInt(0))
	if err != nil || !p0.IsOne() {
		t.Fatalf("X^0 = %v, %v; want 1", p0, err)
	}
	p3, err := Pow(x, big.NewInt(3))
	if err != nil || p3.Deg() != 3 {
		t.Fatalf("X^3 has degree %d, want 3", p3.Deg())
	}

	m := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 1), elem(0, 0), elem(0, 1)})
	reduced, err := PowMod(x, big.NewInt(5), m)
	if err != nil {
		t.Fatal(err)
	}
	if reduced.Deg() >= m.Deg() {
		t.Fatalf("PowMod result has degree %d, want < %d", reduced.Deg(), m.Deg())
	}
}

func TestDiffOnlyOddIndicesSurvive(t *testing.T) {
	c0, c1, c2, c3 := elem(0, 1), elem(0, 2), elem(0, 3), elem(0, 4)
	p := mustPoly(t, []gf128.Element{c0, c1, c2, c3})
	d, err := p.Diff()
	if err != nil {
		t.Fatal(err)
	}
	want := mustPoly(t, []gf128.Element{c1, gf128.Zero(gf128.P1), c3})
	if !d.Equal(want) {
		t.Fatalf("Diff() = %v, want %v", d, want)
	}
}

func TestSqrtOfSquareRecoversOriginal(t *testing.T) {
	original := mustPoly(t, []gf128.Element{elem(0, 1), elem(1, 0), elem(0xdead, 0xbeef)})
	squared, err := Mul(original, original)
	if err != nil {
		t.Fatal(err)
	}
	root, err := squared.Sqrt()
	if err != nil {
		t.Fatal(err)
	}
	if !root.Equal(original) {
		t.Fatalf("Sqrt(A*A) = %v, want %v", root, original)
	}
}

func TestLessOrdering(t *testing.T) {
	low := mustPoly(t, []gf128.Element{elem(0, 1)})
	high := mustPoly(t, []gf128.Element{elem(0, 1), elem(0, 1)})
	if !low.Less(high) {
		t.Fatal("lower-degree polynomial should sort first")
	}
	if high.Less(low) {
		t.Fatal("higher-degree polynomial should not sort first")
	}
	zero := Zero(gf128.P1)
	if high.Less(zero) {
		t.Fatal("nonzero polynomial should never sort before the zero polynomial")
	}
}
