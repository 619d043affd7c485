// Package batchgcd recovers shared prime factors across a batch of RSA
// moduli via Bernstein's product-tree/remainder-tree batch-GCD
// algorithm, avoiding the O(m^2) cost of pairwise GCDs.
//
// Grounded on the pack's convention of doing arbitrary-precision
// arithmetic directly against *big.Int rather than hand-rolling bignum
// arithmetic (see math/ec/curve.go's P/N/order fields and GetP/GetOrder
// accessors); the tree structure itself follows the classic Bernstein
// construction referenced by spec.md §4.7.
package batchgcd

import (
	"math/big"

	"github.com/kauma/kauma-go/errs"
)

// Classification describes what kind of factor, if any, was recovered
// for one modulus.
type Classification int

const (
	// Factored means 1 < f < N: a genuine nontrivial shared factor.
	Factored Classification = iota
	// Coprime means gcd(N, product of the rest) = 1: N shares no
	// prime factor with any other modulus in the batch.
	Coprime
	// FullyShared means f == N: N divides the product of all the
	// other moduli, which is only possible if N is itself a product
	// of primes that together appear elsewhere in the batch.
	FullyShared
)

func (c Classification) String() string {
	switch c {
	case Factored:
		return "factored"
	case Coprime:
		return "coprime"
	case FullyShared:
		return "fully_shared"
	default:
		return "unknown"
	}
}

// Result is the outcome for one modulus in the batch.
type Result struct {
	Factor         *big.Int
	Classification Classification
}

// Factor computes, for each N_i in moduli, f_i = gcd(N_i, product of
// all N_j for j != i), classifying the result. Fails with DomainError
// if fewer than two moduli are given or any modulus is not positive.
func Factor(moduli []*big.Int) ([]Result, error) {
	if len(moduli) < 2 {
		return nil, errs.New(errs.DomainError, "batchgcd: need at least two moduli, got %d", len(moduli))
	}
	for i, n := range moduli {
		if n == nil || n.Sign() <= 0 {
			return nil, errs.New(errs.DomainError, "batchgcd: modulus %d must be positive", i)
		}
	}

	tree := buildProductTree(moduli)
	root := tree[len(tree)-1][0]

	remainders := make([]*big.Int, len(moduli))
	topRemainder := []*big.Int{root}
	descendRemainderTree(tree, len(tree)-1, topRemainder, remainders)

	results := make([]Result, len(moduli))
	for i, n := range moduli {
		// remainders[i] already equals (product of the rest) mod n^2,
		// from the remainder-tree descent; dividing out n leaves
		// (product of the rest) mod n, congruent to it for GCD purposes.
		q := new(big.Int).Div(remainders[i], n)
		f := new(big.Int).GCD(nil, nil, q, n)

		switch {
		case f.Cmp(big.NewInt(1)) == 0:
			results[i] = Result{Factor: big.NewInt(1), Classification: Coprime}
		case f.Cmp(n) == 0:
			results[i] = Result{Factor: new(big.Int).Set(n), Classification: FullyShared}
		default:
			results[i] = Result{Factor: f, Classification: Factored}
		}
	}

	return results, nil
}

// buildProductTree returns levels[0] = leaves (copies of moduli),
// levels[k] = pairwise products of levels[k-1], up to a single-element
// root level. Odd elements at any level are carried up unchanged.
func buildProductTree(moduli []*big.Int) [][]*big.Int {
	level := make([]*big.Int, len(moduli))
	for i, n := range moduli {
		level[i] = new(big.Int).Set(n)
	}
	tree := [][]*big.Int{level}

	for len(level) > 1 {
		next := make([]*big.Int, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, new(big.Int).Mul(level[i], level[i+1]))
			} else {
				next = append(next, new(big.Int).Set(level[i]))
			}
		}
		tree = append(tree, next)
		level = next
	}
	return tree
}

// descendRemainderTree walks the product tree from a given level down
// to the leaves, computing at each node parent_remainder mod
// (node^2), writing leaf-level remainders into out.
func descendRemainderTree(tree [][]*big.Int, level int, remainders []*big.Int, out []*big.Int) {
	nodes := tree[level]
	if level == 0 {
		copy(out, remainders)
		return
	}

	children := tree[level-1]
	childRemainders := make([]*big.Int, len(children))

	for i := range nodes {
		leftIdx := 2 * i
		rightIdx := 2*i + 1

		r := remainders[i]

		left := children[leftIdx]
		leftSq := new(big.Int).Mul(left, left)
		childRemainders[leftIdx] = new(big.Int).Mod(r, leftSq)

		if rightIdx < len(children) {
			right := children[rightIdx]
			rightSq := new(big.Int).Mul(right, right)
			childRemainders[rightIdx] = new(big.Int).Mod(r, rightSq)
		}
	}

	descendRemainderTree(tree, level-1, childRemainders, out)
}
