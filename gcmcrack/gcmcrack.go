// Package gcmcrack implements the GCM nonce-reuse GHASH key-recovery
// attack: given three messages authenticated under the same (key, nonce),
// it builds formal GHASH polynomials in the unknown hash subkey H, factors
// their difference to recover candidate values of H, validates each
// against the third message's tag, and forges a tag for a fourth, chosen
// message.
package gcmcrack

import (
	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/gfpoly"
	"github.com/kauma/kauma/gfpolyfactor"
	"github.com/kauma/kauma/kerrors"
)

// Message is one (associated_data, ciphertext, tag) triple encrypted under
// the reused (key, nonce) pair.
type Message struct {
	AD         []byte
	Ciphertext []byte
	Tag        [16]byte
}

// Result is everything the gcm_crack action reports: the recovered hash
// subkey H, the recovered tag mask E0 = AES_K(Y0), and the forged tag for
// the requested forgery (associated_data, ciphertext) pair.
type Result struct {
	H    gf128.Element
	Mask gf128.Element
	Tag  [16]byte
}

// formalGhashPoly builds the polynomial S(X) in the indeterminate X
// (standing for the unknown H) such that S(H) equals the real GHASH
// accumulator: each zero-padded input block (ad, then ciphertext, then the
// length block) is folded in via S <- (S + block) * X.
func formalGhashPoly(poly gf128.Poly, ad, ciphertext []byte) (gfpoly.GFPoly, error) {
	s := gfpoly.Zero(poly)
	x := gfpoly.X(poly)

	fold := func(data []byte) error {
		for off := 0; off < len(data); off += 16 {
			end := off + 16
			if end > len(data) {
				end = len(data)
			}
			var raw [16]byte
			copy(raw[:], data[off:end])
			blockElem := gf128.FromBlock(raw, poly)
			blockPoly, err := gfpoly.New([]gf128.Element{blockElem}, poly)
			if err != nil {
				return err
			}
			s, err = gfpoly.Add(s, blockPoly)
			if err != nil {
				return err
			}
			s, err = gfpoly.Mul(s, x)
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := fold(ad); err != nil {
		return gfpoly.GFPoly{}, err
	}
	if err := fold(ciphertext); err != nil {
		return gfpoly.GFPoly{}, err
	}

	var lBlock [16]byte
	putLengthBlock(lBlock[:], len(ad), len(ciphertext))
	lElem := gf128.FromBlock(lBlock, poly)
	lPoly, err := gfpoly.New([]gf128.Element{lElem}, poly)
	if err != nil {
		return gfpoly.GFPoly{}, err
	}
	s, err = gfpoly.Add(s, lPoly)
	if err != nil {
		return gfpoly.GFPoly{}, err
	}
	s, err = gfpoly.Mul(s, x)
	if err != nil {
		return gfpoly.GFPoly{}, err
	}
	return s, nil
}

func putLengthBlock(dst []byte, adLen, ctLen int) {
	be64 := func(v uint64) [8]byte {
		var b [8]byte
		for i := 7; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		return b
	}
	a := be64(uint64(adLen) * 8)
	c := be64(uint64(ctLen) * 8)
	copy(dst[0:8], a[:])
	copy(dst[8:16], c[:])
}

// horner evaluates the polynomial s at the point h using Horner's method:
// acc = 0; for each coefficient from the highest index down, acc = acc*h
// (skipped while acc is still zero) then acc ^= coefficient.
func horner(s gfpoly.GFPoly, h gf128.Element) (gf128.Element, error) {
	coeffs := s.Coeffs()
	acc := gf128.Zero(h.Poly())
	for k := len(coeffs) - 1; k >= 0; k-- {
		if !acc.IsZero() {
			var err error
			acc, err = gf128.Mul(acc, h)
			if err != nil {
				return gf128.Element{}, err
			}
		}
		var err error
		acc, err = gf128.Add(acc, coeffs[k])
		if err != nil {
			return gf128.Element{}, err
		}
	}
	return acc, nil
}

// linearFactors runs SFF -> DDF -> EDF over f and returns the constant term
// of every degree-1 monic factor found, i.e. every candidate root.
func linearFactors(f gfpoly.GFPoly, src gfpolyfactor.Source) ([]gf128.Element, error) {
	if f.IsOne() || f.IsZero() {
		return nil, nil
	}
	sffFactors, err := gfpolyfactor.SFF(f)
	if err != nil {
		return nil, err
	}
	var out []gf128.Element
	for _, sf := range sffFactors {
		ddfFactors, err := gfpolyfactor.DDF(sf.Factor)
		if err != nil {
			return nil, err
		}
		for _, df := range ddfFactors {
			if df.Degree != 1 {
				continue
			}
			linearOnes, err := gfpolyfactor.EDF(df.Factor, 1, src)
			if err != nil {
				return nil, err
			}
			for _, lin := range linearOnes {
				out = append(out, lin.Coeffs()[0])
			}
		}
	}
	return out, nil
}

// Crack recovers H and E0 from three messages sharing a (key, nonce) pair
// and forges a tag for (forgeryAD, forgeryCiphertext).
func Crack(poly gf128.Poly, m1, m2, m3 Message, forgeryAD, forgeryCiphertext []byte, src gfpolyfactor.Source) (Result, error) {
	s1, err := formalGhashPoly(poly, m1.AD, m1.Ciphertext)
	if err != nil {
		return Result{}, err
	}
	s2, err := formalGhashPoly(poly, m2.AD, m2.Ciphertext)
	if err != nil {
		return Result{}, err
	}
	s3, err := formalGhashPoly(poly, m3.AD, m3.Ciphertext)
	if err != nil {
		return Result{}, err
	}

	t1 := gf128.FromBlock(m1.Tag, poly)
	t2 := gf128.FromBlock(m2.Tag, poly)
	t3 := gf128.FromBlock(m3.Tag, poly)

	buildF := func(sa, sb gfpoly.GFPoly, ta, tb gf128.Element) (gfpoly.GFPoly, error) {
		sum, err := gfpoly.Add(sa, sb)
		if err != nil {
			return gfpoly.GFPoly{}, err
		}
		tConst, err := gf128.Add(ta, tb)
		if err != nil {
			return gfpoly.GFPoly{}, err
		}
		tConstPoly, err := gfpoly.New([]gf128.Element{tConst}, poly)
		if err != nil {
			return gfpoly.GFPoly{}, err
		}
		sum, err = gfpoly.Add(sum, tConstPoly)
		if err != nil {
			return gfpoly.GFPoly{}, err
		}
		return sum.Monic()
	}

	f12, err := buildF(s1, s2, t1, t2)
	if err != nil {
		return Result{}, err
	}
	f13, err := buildF(s1, s3, t1, t3)
	if err != nil {
		return Result{}, err
	}

	g, err := gfpoly.Gcd(f12, f13)
	if err != nil {
		return Result{}, err
	}

	var sources []gfpoly.GFPoly
	if !g.IsOne() {
		sources = []gfpoly.GFPoly{g}
	} else {
		sources = []gfpoly.GFPoly{f12, f13}
	}

	var h, mask gf128.Element
	found := false
	for _, src2 := range sources {
		candidates, err := linearFactors(src2, src)
		if err != nil {
			return Result{}, err
		}
		for _, hCand := range candidates {
			e0Cand, err := horner(s1, hCand)
			if err != nil {
				return Result{}, err
			}
			e0Cand, err = gf128.Add(t1, e0Cand)
			if err != nil {
				return Result{}, err
			}
			check, err := horner(s3, hCand)
			if err != nil {
				return Result{}, err
			}
			check, err = gf128.Add(e0Cand, check)
			if err != nil {
				return Result{}, err
			}
			if check.Equal(t3) {
				h, mask = hCand, e0Cand
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return Result{}, kerrors.New(kerrors.Domain, "no candidate H validated against the third message's tag")
	}

	sf, err := formalGhashPoly(poly, forgeryAD, forgeryCiphertext)
	if err != nil {
		return Result{}, err
	}
	sfAtH, err := horner(sf, h)
	if err != nil {
		return Result{}, err
	}
	forgeTag, err := gf128.Add(mask, sfAtH)
	if err != nil {
		return Result{}, err
	}

	return Result{H: h, Mask: mask, Tag: forgeTag.Block()}, nil
}
