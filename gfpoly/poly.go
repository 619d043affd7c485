// Package gfpoly implements polynomials over GF(2^128), coefficients
// held low-degree first, and the Euclidean-style arithmetic used by
// factorization and nonce-reuse recovery.
//
// Grounded on the teacher's util package's "operate on explicit slices,
// normalize results" style (its Arrays helpers trim/copy rather than
// hiding length invariants behind methods); the field arithmetic itself
// always goes through gf128, never reimplemented here.
package gfpoly

import (
	"math/big"
	"sort"

	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gf128"
)

// Poly is a polynomial over GF(2^128), coefficients ordered low-degree
// first: Poly[i] is the coefficient of x^i. A normalized Poly has no
// trailing zero coefficients, except for the Poly representing 0,
// which is the empty slice.
type Poly []gf128.Elem

// Zero is the additive identity polynomial.
var Zero = Poly{}

// One is the multiplicative identity polynomial.
var One = Poly{gf128.One}

// normalize trims trailing zero coefficients.
func normalize(p Poly) Poly {
	n := len(p)
	for n > 0 && p[n-1].IsZero() {
		n--
	}
	return p[:n:n]
}

// New builds a normalized Poly from raw low-degree-first coefficients,
// copying the input so the caller's slice may be reused.
func New(coeffs []gf128.Elem) Poly {
	cp := make(Poly, len(coeffs))
	copy(cp, coeffs)
	return normalize(cp)
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(normalize(p)) == 0
}

// Degree returns deg(p). By convention deg(0) = -1.
func (p Poly) Degree() int {
	p = normalize(p)
	return len(p) - 1
}

// LeadingCoeff returns the coefficient of the highest-degree term, or
// gf128.Zero for the zero polynomial.
func (p Poly) LeadingCoeff() gf128.Elem {
	p = normalize(p)
	if len(p) == 0 {
		return gf128.Zero
	}
	return p[len(p)-1]
}

// Clone returns an independent copy of p.
func (p Poly) Clone() Poly {
	cp := make(Poly, len(p))
	copy(cp, p)
	return cp
}

// Equal reports whether p and q represent the same polynomial.
func Equal(p, q Poly) bool {
	p, q = normalize(p), normalize(q)
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(q[i]) {
			return false
		}
	}
	return true
}

// Add returns p + q, coefficient-wise XOR, normalized.
func Add(p, q Poly) Poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Poly, n)
	for i := 0; i < n; i++ {
		var a, b gf128.Elem
		if i < len(p) {
			a = p[i]
		}
		if i < len(q) {
			b = q[i]
		}
		out[i] = gf128.Add(a, b)
	}
	return normalize(out)
}

// Mul returns p * q by schoolbook convolution over the field; deg(p*q)
// = deg(p) + deg(q) when both are nonzero.
func Mul(p, q Poly) Poly {
	p, q = normalize(p), normalize(q)
	if len(p) == 0 || len(q) == 0 {
		return Zero
	}
	out := make(Poly, len(p)+len(q)-1)
	for i, a := range p {
		if a.IsZero() {
			continue
		}
		for j, b := range q {
			out[i+j] = gf128.Add(out[i+j], gf128.Mul(a, b))
		}
	}
	return normalize(out)
}

// ScalarMul returns c*p, multiplying every coefficient by the field
// element c.
func ScalarMul(c gf128.Elem, p Poly) Poly {
	if c.IsZero() {
		return Zero
	}
	out := make(Poly, len(p))
	for i, a := range p {
		out[i] = gf128.Mul(c, a)
	}
	return normalize(out)
}

// DivMod computes (quotient, remainder) such that p = q*quotient +
// remainder and deg(remainder) < deg(q). Fails with DomainError when q
// is the zero polynomial.
func DivMod(p, q Poly) (Poly, Poly, error) {
	q = normalize(q)
	if len(q) == 0 {
		return nil, nil, errs.New(errs.DomainError, "gfpoly: divmod by zero polynomial")
	}
	r := p.Clone()
	qDeg := q.Degree()
	qLead := q.LeadingCoeff()
	qLeadInv, _ := gf128.Inv(qLead)

	quotDeg := r.Degree() - qDeg
	var quot Poly
	if quotDeg >= 0 {
		quot = make(Poly, quotDeg+1)
	}

	for r.Degree() >= qDeg && !r.IsZero() {
		d := r.Degree() - qDeg
		coeff := gf128.Mul(r.LeadingCoeff(), qLeadInv)
		quot[d] = coeff
		// r -= coeff * x^d * q
		shifted := make(Poly, d+len(q))
		for i, c := range q {
			shifted[i+d] = gf128.Mul(coeff, c)
		}
		r = Add(r, shifted)
	}

	return normalize(quot), normalize(r), nil
}

// GCD returns the monic greatest common divisor of p and q via the
// Euclidean algorithm. GCD(0,0) = 0; GCD(p,0) = Monic(p).
func GCD(p, q Poly) Poly {
	p, q = normalize(p), normalize(q)
	for !q.IsZero() {
		_, r, err := DivMod(p, q)
		if err != nil {
			// q is non-zero here by the loop guard, so DivMod cannot fail.
			panic(err)
		}
		p, q = q, r
	}
	return Monic(p)
}

// Monic divides every coefficient by the leading coefficient, so the
// result has leading coefficient One. Monic(0) = 0.
func Monic(p Poly) Poly {
	p = normalize(p)
	if len(p) == 0 {
		return Zero
	}
	lead := p.LeadingCoeff()
	inv, _ := gf128.Inv(lead)
	return ScalarMul(inv, p)
}

// Pow returns p^e for a non-negative integer exponent e, by repeated
// squaring.
func Pow(p Poly, e uint64) Poly {
	result := One
	base := p.Clone()
	for e > 0 {
		if e&1 == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
		e >>= 1
	}
	return result
}

// PowMod returns p^e mod m for a non-negative big.Int exponent e,
// modulus m != 0, by repeated squaring with reduction after each step.
// The big.Int exponent is required since DDF/EDF work with exponents
// on the order of 2^128*d.
func PowMod(p Poly, e *big.Int, m Poly) (Poly, error) {
	if m.IsZero() {
		return nil, errs.New(errs.DomainError, "gfpoly: powmod with zero modulus")
	}
	result := One
	_, base, err := DivMod(p, m)
	if err != nil {
		return nil, err
	}

	exp := new(big.Int).Set(e)
	zero := big.NewInt(0)
	two := big.NewInt(2)
	bit := new(big.Int)

	for exp.Cmp(zero) > 0 {
		bit.And(exp, big.NewInt(1))
		if bit.Sign() != 0 {
			result = Mul(result, base)
			_, result, err = DivMod(result, m)
			if err != nil {
				return nil, err
			}
		}
		base = Mul(base, base)
		_, base, err = DivMod(base, m)
		if err != nil {
			return nil, err
		}
		exp.Div(exp, two)
	}
	return result, nil
}

// Diff returns the formal derivative of p. Because the field has
// characteristic 2, d/dx(sum c_i x^i) = sum (i mod 2) c_i x^(i-1), so
// every even-degree term vanishes.
func Diff(p Poly) Poly {
	p = normalize(p)
	if len(p) <= 1 {
		return Zero
	}
	out := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		if i%2 == 1 {
			out[i-1] = p[i]
		}
	}
	return normalize(out)
}

// Sqrt returns q such that Mul(q,q) = p, defined only when every
// odd-degree coefficient of p is zero; q's coefficient at degree i is
// gf128.Sqrt(p[2i]). Fails DomainError otherwise.
func Sqrt(p Poly) (Poly, error) {
	p = normalize(p)
	for i := 1; i < len(p); i += 2 {
		if !p[i].IsZero() {
			return nil, errs.New(errs.DomainError, "gfpoly: sqrt of non-square polynomial")
		}
	}
	n := (len(p) + 1) / 2
	out := make(Poly, n)
	for i := 0; i < n; i++ {
		idx := 2 * i
		if idx < len(p) {
			out[i] = gf128.Sqrt(p[idx])
		}
	}
	return normalize(out), nil
}

// Sort orders polynomials lexicographically: first by degree
// ascending, then by coefficients from highest degree downward
// comparing their numeric encoding.
func Sort(polys []Poly) []Poly {
	out := make([]Poly, len(polys))
	copy(out, polys)
	sort.Slice(out, func(i, j int) bool {
		return lessPoly(out[i], out[j])
	})
	return out
}

func lessPoly(a, b Poly) bool {
	a, b = normalize(a), normalize(b)
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Equal(b[i]) {
			continue
		}
		return elemLess(a[i], b[i])
	}
	return false
}

// elemLess compares the numeric encoding of two field elements as
// 128-bit unsigned integers (Hi first, then Lo).
func elemLess(a, b gf128.Elem) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}
