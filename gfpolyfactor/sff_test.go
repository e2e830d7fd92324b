package gfpolyfactor

import (
	"sort"
	"testing"

	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/gfpoly"
)

func elem(v uint64) gf128.Element { return gf128.FromRawBits(0, v, gf128.P1) }

func linear(c gf128.Element) gfpoly.GFPoly {
	p, _ := gfpoly.New([]gf128.Element{c, gf128.One(gf128.P1)}, gf128.P1)
	return p
}

func mustMul(t *testing.T, ps ...gfpoly.GFPoly) gfpoly.GFPoly {
	t.Helper()
	acc := ps[0]
	for _, p := range ps[1:] {
		var err error
		acc, err = gfpoly.Mul(acc, p)
		if err != nil {
			t.Fatal(err)
		}
	}
	return acc
}

// TestSFFHandWorkedExample mirrors the spec's worked example: F = (X+1)^2 *
// (X^2+X+alpha)^3 for a nonzero constant alpha. X^2+X+alpha is square-free
// for any alpha (its derivative is the constant 1, coprime to everything),
// and alpha != 0 means it shares no root with X+1, so the two square-free
// groups never collide regardless of whether X^2+X+alpha itself is
// irreducible.
func TestSFFHandWorkedExample(t *testing.T) {
	one := gf128.One(gf128.P1)
	alpha := elem(1)

	xPlus1 := linear(one)
	quad, err := gfpoly.New([]gf128.Element{alpha, one, one}, gf128.P1)
	if err != nil {
		t.Fatal(err)
	}

	xPlus1Sq := mustMul(t, xPlus1, xPlus1)
	quadCubed := mustMul(t, quad, quad, quad)
	f := mustMul(t, xPlus1Sq, quadCubed)

	factors, err := SFF(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(factors) != 2 {
		t.Fatalf("SFF returned %d factors, want 2: %+v", len(factors), factors)
	}

	sort.Slice(factors, func(i, j int) bool { return factors[i].Factor.Less(factors[j].Factor) })
	if factors[0].Exponent != 2 || !factors[0].Factor.Equal(xPlus1) {
		t.Fatalf("first factor = %+v, want (X+1, 2)", factors[0])
	}
	if factors[1].Exponent != 3 || !factors[1].Factor.Equal(quad) {
		t.Fatalf("second factor = %+v, want (X^2+X+alpha, 3)", factors[1])
	}
}

func TestSFFReconstructsInput(t *testing.T) {
	one := gf128.One(gf128.P1)
	a := linear(elem(1))
	b := linear(elem(2))
	f := mustMul(t, a, a, b)

	factors, err := SFF(f)
	if err != nil {
		t.Fatal(err)
	}
	product, err := gfpoly.New([]gf128.Element{one}, gf128.P1)
	if err != nil {
		t.Fatal(err)
	}
	for _, sf := range factors {
		for e := 0; e < sf.Exponent; e++ {
			var err error
			product, err = gfpoly.Mul(product, sf.Factor)
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	monicF, err := f.Monic()
	if err != nil {
		t.Fatal(err)
	}
	if !product.Equal(monicF) {
		t.Fatalf("product of factor^exponent = %v, want monic(F) = %v", product, monicF)
	}
}
