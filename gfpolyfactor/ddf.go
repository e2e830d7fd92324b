package gfpolyfactor

import (
	"math/big"
	"sort"

	"github.com/kauma/kauma/gfpoly"
)

// DDFFactor pairs a distinct-degree factor (the product of all irreducible
// factors of a given degree) with that degree.
type DDFFactor struct {
	Factor gfpoly.GFPoly
	Degree int
}

// DDF runs distinct-degree factorization on a monic, square-free f.
func DDF(f gfpoly.GFPoly) ([]DDFFactor, error) {
	fm, err := f.Monic()
	if err != nil {
		return nil, err
	}

	var z []DDFFactor
	d := 1
	fStar := fm
	x := gfpoly.X(f.Poly())

	for fStar.Deg() >= 2*d {
		qd := new(big.Int).Exp(qBig, big.NewInt(int64(d)), nil)
		h, err := gfpoly.PowMod(x, qd, fStar)
		if err != nil {
			return nil, err
		}
		hMinusX, err := gfpoly.Sub(h, x)
		if err != nil {
			return nil, err
		}
		g, err := gfpoly.Gcd(hMinusX, fStar)
		if err != nil {
			return nil, err
		}
		if !g.IsOne() {
			gm, err := g.Monic()
			if err != nil {
				return nil, err
			}
			z = append(z, DDFFactor{Factor: gm, Degree: d})

			q, _, err := gfpoly.DivMod(fStar, g)
			if err != nil {
				return nil, err
			}
			fStar, err = q.Monic()
			if err != nil {
				return nil, err
			}
		}
		d++
	}

	if !fStar.IsOne() {
		fsm, err := fStar.Monic()
		if err != nil {
			return nil, err
		}
		z = append(z, DDFFactor{Factor: fsm, Degree: fStar.Deg()})
	} else if len(z) == 0 {
		z = append(z, DDFFactor{Factor: fm, Degree: 1})
	}

	sort.Slice(z, func(i, j int) bool { return z[i].Factor.Less(z[j].Factor) })
	return z, nil
}
