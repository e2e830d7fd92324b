// Package gfpolyfactor implements the square-free / distinct-degree /
// equal-degree factorization pipeline (Cantor-Zassenhaus over
// characteristic 2) used both directly by the gfpoly_factor_* actions and,
// as a subroutine, by the GCM nonce-reuse cracker (package gcmcrack) to
// recover a linear factor (X - H) from a formal GHASH polynomial.
package gfpolyfactor

import (
	"math/big"
	"sort"

	"github.com/kauma/kauma/gfpoly"
)

// qBig is the field size 2^128, shared by DDF's q^d exponent and EDF's
// (q^d-1)/3 exponent.
var qBig = new(big.Int).Lsh(big.NewInt(1), 128)

// SFFFactor pairs a square-free factor with its multiplicity.
type SFFFactor struct {
	Factor   gfpoly.GFPoly
	Exponent int
}

// SFF runs square-free factorization on f (monicized first if needed),
// returning (factor, exponent) pairs sorted by factor.
func SFF(f gfpoly.GFPoly) ([]SFFFactor, error) {
	F, err := f.Monic()
	if err != nil {
		return nil, err
	}

	var sff func(f gfpoly.GFPoly) ([]SFFFactor, error)
	sff = func(f gfpoly.GFPoly) ([]SFFFactor, error) {
		df, err := f.Diff()
		if err != nil {
			return nil, err
		}
		c, err := gfpoly.Gcd(f, df)
		if err != nil {
			return nil, err
		}
		fDivC, _, err := gfpoly.DivMod(f, c)
		if err != nil {
			return nil, err
		}

		var z []SFFFactor
		e := 1
		fCur := fDivC
		cCur := c
		for !fCur.IsOne() {
			y, err := gfpoly.Gcd(fCur, cCur)
			if err != nil {
				return nil, err
			}
			if !fCur.Equal(y) {
				q, _, err := gfpoly.DivMod(fCur, y)
				if err != nil {
					return nil, err
				}
				qm, err := q.Monic()
				if err != nil {
					return nil, err
				}
				z = append(z, SFFFactor{Factor: qm, Exponent: e})
			}
			fCur = y
			cCur, _, err = gfpoly.DivMod(cCur, y)
			if err != nil {
				return nil, err
			}
			e++
		}

		if !cCur.IsOne() {
			sq, err := cCur.Sqrt()
			if err != nil {
				return nil, err
			}
			rFactors, err := sff(sq)
			if err != nil {
				return nil, err
			}
			for _, rf := range rFactors {
				z = append(z, SFFFactor{Factor: rf.Factor, Exponent: 2 * rf.Exponent})
			}
		}
		return z, nil
	}

	factors, err := sff(F)
	if err != nil {
		return nil, err
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].Factor.Less(factors[j].Factor) })
	return factors, nil
}
