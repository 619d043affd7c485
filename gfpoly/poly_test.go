package gfpoly

import (
	"math/big"
	"testing"

	"github.com/kauma/kauma-go/gf128"
)

func elem(lo uint64) gf128.Elem { return gf128.Elem{Lo: lo} }

func TestAddIsXorAndNormalizes(t *testing.T) {
	p := Poly{elem(1), elem(2), elem(3)}
	q := Poly{elem(1), elem(2), elem(3)}
	got := Add(p, q)
	if !got.IsZero() {
		t.Fatalf("p+p should be zero, got %v", got)
	}
}

func TestMulDegreeAdditive(t *testing.T) {
	p := Poly{elem(1), elem(1)} // x + 1
	q := Poly{elem(1), elem(0), elem(1)} // x^2 + 1
	got := Mul(p, q)
	if got.Degree() != p.Degree()+q.Degree() {
		t.Fatalf("deg(p*q) = %d, want %d", got.Degree(), p.Degree()+q.Degree())
	}
}

func TestDivModRecoversDividend(t *testing.T) {
	p := Poly{elem(5), elem(9), elem(2), elem(7)}
	q := Poly{elem(3), elem(1)}

	quot, rem, err := DivMod(p, q)
	if err != nil {
		t.Fatalf("DivMod: %v", err)
	}
	if rem.Degree() >= q.Degree() {
		t.Fatalf("deg(rem) = %d, want < %d", rem.Degree(), q.Degree())
	}
	recombined := Add(Mul(quot, q), rem)
	if !Equal(recombined, p) {
		t.Fatalf("q*quot+rem != p: got %v, want %v", recombined, p)
	}
}

func TestDivModByZeroIsDomainError(t *testing.T) {
	_, _, err := DivMod(Poly{elem(1)}, Zero)
	if err == nil {
		t.Fatalf("expected DomainError")
	}
}

func TestGCDOfZeroIsZero(t *testing.T) {
	g := GCD(Zero, Zero)
	if !g.IsZero() {
		t.Fatalf("GCD(0,0) should be 0, got %v", g)
	}
}

func TestGCDOfPAndZeroIsMonicP(t *testing.T) {
	p := Poly{elem(6), elem(3)}
	g := GCD(p, Zero)
	if !Equal(g, Monic(p)) {
		t.Fatalf("GCD(p,0) = %v, want Monic(p) = %v", g, Monic(p))
	}
}

func TestGCDDividesBoth(t *testing.T) {
	a := Poly{elem(1), elem(1)}     // x+1
	b := Poly{elem(1), elem(0), elem(1)} // x^2+1 = (x+1)^2 in char 2
	p := Mul(a, a)
	q := Mul(a, b)
	g := GCD(p, q)
	if _, rem, err := DivMod(p, g); err != nil || !rem.IsZero() {
		t.Fatalf("gcd does not divide p")
	}
	if _, rem, err := DivMod(q, g); err != nil || !rem.IsZero() {
		t.Fatalf("gcd does not divide q")
	}
}

func TestMonicOfZeroIsZero(t *testing.T) {
	if !Monic(Zero).IsZero() {
		t.Fatalf("Monic(0) should be 0")
	}
}

func TestMonicHasLeadingOne(t *testing.T) {
	p := Poly{elem(9), elem(0), elem(5)}
	m := Monic(p)
	if !m.LeadingCoeff().Equal(gf128.One) {
		t.Fatalf("Monic leading coeff = %v, want One", m.LeadingCoeff())
	}
}

func TestPowZeroIsOne(t *testing.T) {
	p := Poly{elem(7), elem(2)}
	got := Pow(p, 0)
	if !Equal(got, One) {
		t.Fatalf("p^0 = %v, want One", got)
	}
}

func TestPowModAgreesWithPowWhenModulusLarge(t *testing.T) {
	p := Poly{elem(1), elem(1)}
	m := Poly{elem(1), elem(0), elem(0), elem(0), elem(1)} // degree 4, larger than p^2

	direct := Pow(p, 2)
	viaMod, err := PowMod(p, big.NewInt(2), m)
	if err != nil {
		t.Fatalf("PowMod: %v", err)
	}
	if !Equal(direct, viaMod) {
		t.Fatalf("PowMod disagrees with Pow when reduction is a no-op: %v vs %v", viaMod, direct)
	}
}

func TestDiffKillsEvenDegreeTerms(t *testing.T) {
	p := Poly{elem(1), elem(2), elem(3), elem(4), elem(5)}
	d := Diff(p)
	// d[i-1] = p[i] for i odd only => d = [p1, 0, p3] (indices 0,2 set from p[1],p[3])
	want := Poly{elem(2), elem(0), elem(4)}
	if !Equal(d, want) {
		t.Fatalf("Diff = %v, want %v", d, want)
	}
}

func TestSqrtRoundTrip(t *testing.T) {
	p := Poly{elem(3), elem(0), elem(5), elem(0), elem(9)}
	sq := Mul(p, p)
	root, err := Sqrt(sq)
	if err != nil {
		t.Fatalf("Sqrt: %v", err)
	}
	if !Equal(root, p) {
		t.Fatalf("Sqrt(p*p) = %v, want %v", root, p)
	}
}

func TestSqrtOfNonSquareFails(t *testing.T) {
	p := Poly{elem(1), elem(1)} // odd-degree coeff is nonzero
	if _, err := Sqrt(p); err == nil {
		t.Fatalf("expected DomainError for non-square polynomial")
	}
}

func TestSortOrdersByDegreeThenCoefficients(t *testing.T) {
	a := Poly{elem(1)}                // degree 0
	b := Poly{elem(1), elem(1)}       // degree 1
	c := Poly{elem(2), elem(1)}       // degree 1, same leading coeff as b, larger constant term
	sorted := Sort([]Poly{c, b, a})
	if sorted[0].Degree() != 0 {
		t.Fatalf("expected lowest-degree polynomial first")
	}
	if sorted[1].Degree() != 1 || sorted[2].Degree() != 1 {
		t.Fatalf("expected both degree-1 polynomials after the degree-0 one")
	}
	if !Equal(sorted[1], b) || !Equal(sorted[2], c) {
		t.Fatalf("expected b before c (equal leading coefficients, 1 < 2 at degree 0), got %v", sorted)
	}
}
