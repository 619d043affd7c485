package batchgcd

import (
	"math/big"
	"testing"
)

func bi(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad literal: " + s)
	}
	return n
}

func TestFactorSharedPrimeAcrossTwoModuli(t *testing.T) {
	p := bi("10007")
	q := bi("10009")
	r := bi("10037")

	n1 := new(big.Int).Mul(p, q)
	n2 := new(big.Int).Mul(p, r)

	results, err := Factor([]*big.Int{n1, n2})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	for i, res := range results {
		if res.Classification != Factored {
			t.Fatalf("result %d: classification = %v, want Factored", i, res.Classification)
		}
		if res.Factor.Cmp(p) != 0 {
			t.Fatalf("result %d: factor = %v, want %v", i, res.Factor, p)
		}
	}
}

func TestFactorThreeModuliTwoSharePrime(t *testing.T) {
	p := bi("10007")
	q := bi("10009")
	r := bi("10037")
	s := bi("10039")
	u := bi("10061")

	n1 := new(big.Int).Mul(p, q)
	n2 := new(big.Int).Mul(p, r)
	n3 := new(big.Int).Mul(s, u)

	results, err := Factor([]*big.Int{n1, n2, n3})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}

	if results[0].Classification != Factored || results[0].Factor.Cmp(p) != 0 {
		t.Fatalf("n1: got %v/%v, want Factored/%v", results[0].Classification, results[0].Factor, p)
	}
	if results[1].Classification != Factored || results[1].Factor.Cmp(p) != 0 {
		t.Fatalf("n2: got %v/%v, want Factored/%v", results[1].Classification, results[1].Factor, p)
	}
	if results[2].Classification != Coprime {
		t.Fatalf("n3: got %v, want Coprime (shares nothing with n1/n2)", results[2].Classification)
	}
}

func TestFactorAllCoprimeModuli(t *testing.T) {
	n1 := bi("10007")
	n2 := bi("10009")
	n3 := bi("10037")

	results, err := Factor([]*big.Int{n1, n2, n3})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	for i, res := range results {
		if res.Classification != Coprime {
			t.Fatalf("result %d: classification = %v, want Coprime", i, res.Classification)
		}
	}
}

func TestFactorOddBatchSize(t *testing.T) {
	p := bi("10007")
	q := bi("10009")
	r := bi("10037")
	s := bi("10039")
	u := bi("10061")

	n1 := new(big.Int).Mul(p, q)
	n2 := new(big.Int).Mul(p, r)
	n3 := new(big.Int).Mul(s, u)
	n4 := new(big.Int).Mul(q, r)
	n5 := bi("104729") // prime, coprime with all the rest

	results, err := Factor([]*big.Int{n1, n2, n3, n4, n5})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	if results[4].Classification != Coprime {
		t.Fatalf("n5 (prime, unrelated): got %v, want Coprime", results[4].Classification)
	}
	// n1 = pq, n2 = pr and n4 = qr each have both primes elsewhere in the
	// batch, so each divides the product of the rest; n3 = su shares none.
	want := []Classification{FullyShared, FullyShared, Coprime, FullyShared}
	for i := 0; i < 4; i++ {
		if results[i].Classification != want[i] {
			t.Fatalf("result %d: got %v, want %v", i, results[i].Classification, want[i])
		}
	}
}

func TestFactorRejectsFewerThanTwoModuli(t *testing.T) {
	if _, err := Factor([]*big.Int{bi("7")}); err == nil {
		t.Fatalf("expected DomainError for a single modulus")
	}
}

func TestFactorRejectsNonPositiveModulus(t *testing.T) {
	if _, err := Factor([]*big.Int{bi("7"), bi("0")}); err == nil {
		t.Fatalf("expected DomainError for a non-positive modulus")
	}
}
