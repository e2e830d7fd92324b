// Package batchgcd recovers shared prime factors across a set of RSA
// moduli in near-linear time using a product tree: build the tree bottom
// up, then reduce its root top-down modulo each leaf's square to recover,
// for every modulus, its GCD with the product of all the others.
package batchgcd

import (
	"math/big"
	"sort"
)

// Factored is a recovered (p, q) prime pair with p <= q such that p*q is
// one of the input moduli.
type Factored struct {
	P, Q *big.Int
}

// Factor finds every modulus in moduli that shares a prime factor with at
// least one other modulus in the set, and returns the corresponding (p, q)
// factorizations, deduplicated and sorted.
func Factor(moduli []*big.Int) ([]Factored, error) {
	if len(moduli) == 0 {
		return nil, nil
	}

	levels := buildProductTree(moduli)
	root := levels[len(levels)-1][0]

	z := make([]*big.Int, len(moduli))
	var reduce func(level, idx int, value *big.Int)
	reduce = func(level, idx int, value *big.Int) {
		nodeVal := levels[level][idx]
		nodeSq := new(big.Int).Mul(nodeVal, nodeVal)
		reduced := new(big.Int).Mod(value, nodeSq)
		if level == 0 {
			z[idx] = reduced
			return
		}
		leftIdx, rightIdx := 2*idx, 2*idx+1
		if rightIdx >= len(levels[level-1]) {
			// lone child carried forward from the level below: it inherits
			// this node's reduced value unchanged.
			reduce(level-1, leftIdx, reduced)
			return
		}
		reduce(level-1, leftIdx, reduced)
		reduce(level-1, rightIdx, reduced)
	}
	reduce(len(levels)-1, 0, root)

	one := big.NewInt(1)
	var results []Factored
	var fallback []int
	for i, ni := range moduli {
		if ni.Cmp(one) <= 0 {
			continue
		}
		zDivN := new(big.Int).Div(z[i], ni)
		g := new(big.Int).GCD(nil, nil, zDivN, ni)
		switch {
		case g.Cmp(one) > 0 && g.Cmp(ni) < 0:
			q := new(big.Int).Div(ni, g)
			results = append(results, sortedPair(g, q))
		case g.Cmp(ni) == 0:
			// coincidence collapse: the per-leaf reduction degenerated to
			// the modulus itself, so fall back to a direct pairwise search.
			fallback = append(fallback, i)
		}
	}

	for _, i := range fallback {
		ni := moduli[i]
		for j, nj := range moduli {
			if j == i {
				continue
			}
			g := new(big.Int).GCD(nil, nil, ni, nj)
			if g.Cmp(one) > 0 && g.Cmp(ni) < 0 {
				q := new(big.Int).Div(ni, g)
				results = append(results, sortedPair(g, q))
				break
			}
		}
	}

	return dedupeSorted(results), nil
}

// buildProductTree returns the levels of the product tree, level 0 being
// the input moduli themselves and each subsequent level the pairwise
// products of the level below, with a lone last element carried forward
// unchanged.
func buildProductTree(moduli []*big.Int) [][]*big.Int {
	levels := [][]*big.Int{moduli}
	cur := moduli
	for len(cur) > 1 {
		next := make([]*big.Int, 0, (len(cur)+1)/2)
		i := 0
		for ; i+1 < len(cur); i += 2 {
			next = append(next, new(big.Int).Mul(cur[i], cur[i+1]))
		}
		if i < len(cur) {
			next = append(next, cur[i])
		}
		levels = append(levels, next)
		cur = next
	}
	return levels
}

func sortedPair(a, b *big.Int) Factored {
	if a.Cmp(b) <= 0 {
		return Factored{P: a, Q: b}
	}
	return Factored{P: b, Q: a}
}

func dedupeSorted(in []Factored) []Factored {
	sort.Slice(in, func(i, j int) bool {
		if c := in[i].P.Cmp(in[j].P); c != 0 {
			return c < 0
		}
		return in[i].Q.Cmp(in[j].Q) < 0
	})
	out := make([]Factored, 0, len(in))
	for i, f := range in {
		if i > 0 && f.P.Cmp(in[i-1].P) == 0 && f.Q.Cmp(in[i-1].Q) == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}
