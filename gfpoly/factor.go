package gfpoly

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gf128"
)

// FieldOrder is q = 2^128, the size of the coefficient field. DDF's
// Frobenius step raises to this power through math/big, since q does
// not fit any fixed-width integer.
var FieldOrder = new(big.Int).Lsh(big.NewInt(1), 128)

// SFFTerm is one square-free component: factor_i raised to exponent_i.
type SFFTerm struct {
	Factor   Poly
	Exponent int
}

// SquareFree factors f (treated via Monic(f)) into square-free,
// pairwise-coprime, monic components such that the product of
// factor_i^exponent_i equals Monic(f). Handles the characteristic-2
// perfect-square case: when Diff(f) = 0, f is itself a square (every
// exponent in f is even in characteristic 2), so we take its square
// root and recurse with doubled exponents.
func SquareFree(f Poly) ([]SFFTerm, error) {
	f = Monic(f)
	if f.IsZero() {
		return nil, errs.New(errs.DomainError, "gfpoly: square-free factorization of zero polynomial")
	}
	if Equal(f, One) {
		return nil, nil
	}

	df := Diff(f)
	if df.IsZero() {
		root, err := Sqrt(f)
		if err != nil {
			return nil, err
		}
		inner, err := SquareFree(root)
		if err != nil {
			return nil, err
		}
		out := make([]SFFTerm, len(inner))
		for i, t := range inner {
			out[i] = SFFTerm{Factor: t.Factor, Exponent: t.Exponent * 2}
		}
		return out, nil
	}

	c := GCD(f, df)
	w, _, err := DivMod(f, c)
	if err != nil {
		return nil, err
	}

	var terms []SFFTerm
	exp := 1
	for !Equal(w, One) {
		y := GCD(w, c)
		factor, _, err := DivMod(w, y)
		if err != nil {
			return nil, err
		}
		if !Equal(factor, One) {
			terms = append(terms, SFFTerm{Factor: factor, Exponent: exp})
		}
		w = y
		c, _, err = DivMod(c, y)
		if err != nil {
			return nil, err
		}
		exp++
	}

	if !c.IsZero() && !Equal(c, One) {
		// Remaining c is itself a perfect power picked up from the
		// characteristic-2 derivative collapse; recurse on its square
		// root exactly like the top-level Diff(f)=0 branch.
		root, err := Sqrt(c)
		if err != nil {
			return nil, err
		}
		inner, err := SquareFree(root)
		if err != nil {
			return nil, err
		}
		for _, t := range inner {
			terms = append(terms, SFFTerm{Factor: t.Factor, Exponent: t.Exponent * 2})
		}
	}

	return terms, nil
}

// DDFTerm is one distinct-degree component: factor_i is the product of
// all monic irreducible factors of the input with degree degree_i.
type DDFTerm struct {
	Factor Poly
	Degree int
}

// DistinctDegree runs distinct-degree factorization on a square-free
// monic polynomial f.
func DistinctDegree(f Poly) ([]DDFTerm, error) {
	if f.IsZero() {
		return nil, errs.New(errs.DomainError, "gfpoly: DDF of zero polynomial")
	}
	f = Monic(f)

	var terms []DDFTerm
	x := Poly{gf128.Zero, gf128.One} // x

	xPowQd := x.Clone() // x^(q^d) mod f, built incrementally

	for d := 1; !Equal(f, One) && f.Degree() >= 2*d; d++ {
		var err error
		// x^(q^d) = (x^(q^(d-1)))^q mod f
		xPowQd, err = PowMod(xPowQd, FieldOrder, f)
		if err != nil {
			return nil, err
		}

		h := Add(xPowQd, x) // x^(q^d) - x, char 2 so subtraction is XOR
		_, h, err = DivMod(h, f)
		if err != nil {
			return nil, err
		}

		g := GCD(f, h)
		if !Equal(g, One) {
			terms = append(terms, DDFTerm{Factor: g, Degree: d})
			var rem Poly
			f, rem, err = DivMod(f, g)
			if err != nil {
				return nil, err
			}
			if !rem.IsZero() {
				return nil, errs.New(errs.DomainError, "gfpoly: DDF division had nonzero remainder")
			}
			_, xPowQd, err = DivMod(xPowQd, f)
			if err != nil {
				return nil, err
			}
		}
	}

	if !Equal(f, One) {
		terms = append(terms, DDFTerm{Factor: f, Degree: f.Degree()})
	}

	return terms, nil
}

// EqualDegree splits a square-free monic polynomial f, known to be the
// product of r monic irreducible factors each of degree d, into those r
// factors. Randomized Cantor-Zassenhaus. rng is the entropy source for
// random trial polynomials; pass nil to use crypto/rand for a
// cryptographically uniform source, or a deterministic io.Reader (for
// instance a math/rand.Rand wrapped via a seeded byte stream) for
// reproducible tests.
func EqualDegree(f Poly, d, r int, rng io.Reader) ([]Poly, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if r == 1 {
		return []Poly{Monic(f)}, nil
	}

	for {
		h, err := randomPoly(f.Degree(), rng)
		if err != nil {
			return nil, err
		}
		if h.IsZero() {
			continue
		}

		g, err := splittingCandidate(h, d, f)
		if err != nil {
			return nil, err
		}

		g = GCD(g, f)
		if g.IsZero() || Equal(g, One) || Equal(Monic(g), Monic(f)) {
			continue
		}

		fOverG, rem, err := DivMod(f, g)
		if err != nil {
			return nil, err
		}
		if !rem.IsZero() {
			continue
		}

		rLeft := g.Degree() / d
		rRight := r - rLeft
		left, err := EqualDegree(g, d, rLeft, rng)
		if err != nil {
			return nil, err
		}
		right, err := EqualDegree(fOverG, d, rRight, rng)
		if err != nil {
			return nil, err
		}
		return Sort(append(left, right...)), nil
	}
}

// splittingCandidate computes the Cantor-Zassenhaus splitting
// polynomial for characteristic 2 as the absolute trace down to GF(2):
// T(h) = h + h^2 + h^4 + ... + h^(2^(128*d-1)) mod f, i.e. the
// accumulator is squared 128*d-1 times. This must be the trace to
// GF(2), not the relative trace to GF(q=2^128): the relative trace
// T(h) = h + h^q + ... + h^(q^(d-1)) (squaring q = 2^128 times per
// term instead of once) lands in GF(q) itself, so for an irreducible
// degree-d factor it is zero with probability ~q^-1 and gcd(T(h), f)
// essentially never splits, spinning EqualDegree's retry loop forever.
func splittingCandidate(h Poly, d int, f Poly) (Poly, error) {
	trace := h.Clone()
	term := h.Clone()
	for i := 1; i < 128*d; i++ {
		var err error
		term, err = squareMod(term, f)
		if err != nil {
			return nil, err
		}
		trace = Add(trace, term)
	}
	return trace, nil
}

// squareMod computes term^2 mod f.
func squareMod(term, f Poly) (Poly, error) {
	_, rem, err := DivMod(Mul(term, term), f)
	if err != nil {
		return nil, err
	}
	return rem, nil
}

// randomPoly returns a uniformly random polynomial of degree strictly
// less than maxDegreeExclusive (i.e. maxDegreeExclusive coefficients).
func randomPoly(maxDegreeExclusive int, rng io.Reader) (Poly, error) {
	if maxDegreeExclusive <= 0 {
		maxDegreeExclusive = 1
	}
	coeffs := make(Poly, maxDegreeExclusive)
	var buf [16]byte
	for i := range coeffs {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, errs.New(errs.DomainError, "gfpoly: failed to read randomness: %v", err)
		}
		hi := beUint64(buf[0:8])
		lo := beUint64(buf[8:16])
		coeffs[i] = gf128.Elem{Hi: hi, Lo: lo}
	}
	return normalize(coeffs), nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
