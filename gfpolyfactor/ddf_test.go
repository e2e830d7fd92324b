package gfpolyfactor

import (
	"testing"

	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/gfpoly"
)

// TestDDFGroupsLinearFactorsTogether builds F = (X+a)(X+b) for two distinct
// field elements a, b: every element of GF(2^128) satisfies x^q = x, so DDF's
// degree-1 pass must find the whole (square-free) product as a single
// distinct-degree group rather than stopping early.
func TestDDFGroupsLinearFactorsTogether(t *testing.T) {
	a := linear(elem(7))
	b := linear(elem(42))
	f := mustMul(t, a, b)

	factors, err := DDF(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(factors) != 1 {
		t.Fatalf("DDF returned %d groups, want 1: %+v", len(factors), factors)
	}
	if factors[0].Degree != 1 {
		t.Fatalf("group degree = %d, want 1", factors[0].Degree)
	}
	fm, err := f.Monic()
	if err != nil {
		t.Fatal(err)
	}
	if !factors[0].Factor.Equal(fm) {
		t.Fatalf("group factor = %v, want monic(F) = %v", factors[0].Factor, fm)
	}
}

func TestDDFReconstructsInput(t *testing.T) {
	a := linear(elem(1))
	b := linear(elem(2))
	f := mustMul(t, a, b)

	factors, err := DDF(f)
	if err != nil {
		t.Fatal(err)
	}
	one := gfpoly.One(gf128.P1)
	product := one
	for _, df := range factors {
		var err error
		product, err = gfpoly.Mul(product, df.Factor)
		if err != nil {
			t.Fatal(err)
		}
	}
	fm, err := f.Monic()
	if err != nil {
		t.Fatal(err)
	}
	if !product.Equal(fm) {
		t.Fatalf("product of DDF groups = %v, want monic(F) = %v", product, fm)
	}
}
