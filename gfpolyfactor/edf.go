package gfpolyfactor

import (
	"math/big"
	"sort"

	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/gfpoly"
	"github.com/kauma/kauma/kerrors"
)

// Source is the minimal randomness interface EDF needs: a degree selector
// and a 64-bit-at-a-time coefficient generator. *math/rand.Rand satisfies
// this directly, so tests can pass rand.New(rand.NewSource(seed)) for
// reproducible runs (spec's concurrency/resource model requires EDF's
// randomness to be seedable rather than ambient-global).
type Source interface {
	Intn(n int) int
	Uint64() uint64
}

// EDF runs equal-degree factorization on a monic, square-free f whose
// irreducible factors all have degree d, returning the n = deg(f)/d
// factors, sorted.
func EDF(f gfpoly.GFPoly, d int, src Source) ([]gfpoly.GFPoly, error) {
	fm, err := f.Monic()
	if err != nil {
		return nil, err
	}
	if d <= 0 || fm.Deg()%d != 0 {
		return nil, kerrors.Newf(kerrors.Domain, "degree %d is not a multiple of %d", fm.Deg(), d)
	}
	n := fm.Deg() / d

	exponent := new(big.Int).Exp(qBig, big.NewInt(int64(d)), nil)
	exponent.Sub(exponent, big.NewInt(1))
	exponent.Div(exponent, big.NewInt(3))

	poly := fm.Poly()
	z := []gfpoly.GFPoly{fm}
	for len(z) < n {
		upper := fm.Deg() - 1
		if upper < 1 {
			upper = 1
		}
		degH := src.Intn(upper) + 1

		coeffs := make([]gf128.Element, degH+1)
		allZero := true
		for i := range coeffs {
			hi := src.Uint64()
			lo := src.Uint64()
			coeffs[i] = gf128.FromRawBits(hi, lo, poly)
			if !coeffs[i].IsZero() {
				allZero = false
			}
		}
		if allZero {
			coeffs[0] = gf128.One(poly)
		}

		h, err := gfpoly.New(coeffs, poly)
		if err != nil {
			return nil, err
		}
		hPowE, err := gfpoly.PowMod(h, exponent, fm)
		if err != nil {
			return nil, err
		}
		g, err := gfpoly.Sub(hPowE, gfpoly.One(poly))
		if err != nil {
			return nil, err
		}

		snapshot := append([]gfpoly.GFPoly(nil), z...)
		for _, u := range snapshot {
			if u.Deg() <= d {
				continue
			}
			j, err := gfpoly.Gcd(u, g)
			if err != nil {
				return nil, err
			}
			if j.IsOne() || j.Equal(u) {
				continue
			}
			qDiv, _, err := gfpoly.DivMod(u, j)
			if err != nil {
				return nil, err
			}
			z = removeFirst(z, u)
			jMonic, err := j.Monic()
			if err != nil {
				return nil, err
			}
			qMonic, err := qDiv.Monic()
			if err != nil {
				return nil, err
			}
			if jMonic.Deg() >= d {
				z = append(z, jMonic)
			}
			if qMonic.Deg() >= d {
				z = append(z, qMonic)
			}
		}
	}

	var out []gfpoly.GFPoly
	for _, p := range z {
		if p.Deg() == d && !p.IsOne() && !p.IsZero() {
			pm, err := p.Monic()
			if err != nil {
				return nil, err
			}
			out = append(out, pm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

func removeFirst(z []gfpoly.GFPoly, target gfpoly.GFPoly) []gfpoly.GFPoly {
	for i, p := range z {
		if p.Equal(target) {
			out := make([]gfpoly.GFPoly, 0, len(z)-1)
			out = append(out, z[:i]...)
			out = append(out, z[i+1:]...)
			return out
		}
	}
	return z
}
