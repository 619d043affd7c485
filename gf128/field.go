// Package gf128 implements arithmetic in GF(2^128) under the AES-GCM
// reduction polynomial R = x^128 + x^7 + x^2 + x + 1, plus the bit-order
// codec between the GCM wire encoding and the field's numeric encoding.
//
// Grounded on crypto/modes/gcm_util.go's GCMMultiply: that routine
// already walks a 128-bit block bit by bit, shifting and XORing a copy
// of the other operand — the same shape this package's Mul uses,
// generalized from a GCM-only helper bound to the reflected wire
// encoding into a full field type operating purely in numeric encoding
// (see field_codec.go for the boundary between the two).
package gf128

import (
	"math/big"

	"github.com/kauma/kauma-go/errs"
)

// Elem is an element of GF(2^128) in numeric encoding: bit i of the
// pair (Hi, Lo) is the coefficient of x^i. Lo holds x^0..x^63, Hi holds
// x^64..x^127.
type Elem struct {
	Hi, Lo uint64
}

// Zero is the additive identity.
var Zero = Elem{}

// One is the multiplicative identity.
var One = Elem{Lo: 1}

// IsZero reports whether e is the zero element.
func (e Elem) IsZero() bool {
	return e.Hi == 0 && e.Lo == 0
}

// Equal reports whether a and b are the same field element.
func (a Elem) Equal(b Elem) bool {
	return a.Hi == b.Hi && a.Lo == b.Lo
}

// Add returns a+b, which in characteristic 2 is bitwise XOR.
func Add(a, b Elem) Elem {
	return Elem{Hi: a.Hi ^ b.Hi, Lo: a.Lo ^ b.Lo}
}

// reductionBits lists the exponents of every term of R =
// x^128+x^7+x^2+x+1, the leading one included; XORing a copy of these
// shifted by i-128 into a 256-bit product clears bit i and folds in
// the lower terms.
var reductionBits = [5]int{0, 1, 2, 7, 128}

// clmul64 performs carry-less (XOR) multiplication of two 64-bit words,
// producing a 128-bit product (hi, lo). Bit-by-bit shift-and-xor,
// mirroring the shift/xor structure of GCMMultiply.
func clmul64(x, y uint64) (hi, lo uint64) {
	for i := 0; i < 64; i++ {
		if (y>>uint(i))&1 == 0 {
			continue
		}
		if i == 0 {
			lo ^= x
			continue
		}
		lo ^= x << uint(i)
		hi ^= x >> uint(64-i)
	}
	return hi, lo
}

func testBit(r [4]uint64, i int) bool {
	return (r[i/64]>>uint(i%64))&1 == 1
}

func xorBit(r *[4]uint64, i int) {
	r[i/64] ^= uint64(1) << uint(i%64)
}

// reduce folds a 256-bit carry-less product (r[0] lowest 64 bits ...
// r[3] highest) modulo R, returning the resulting field element.
func reduce(r [4]uint64) Elem {
	for i := 255; i >= 128; i-- {
		if !testBit(r, i) {
			continue
		}
		shift := i - 128
		for _, o := range reductionBits {
			xorBit(&r, shift+o)
		}
	}
	return Elem{Hi: r[1], Lo: r[0]}
}

// Mul returns a*b reduced modulo R. Satisfies Mul(a, One) == a and is
// commutative.
func Mul(a, b Elem) Elem {
	p0hi, p0lo := clmul64(a.Lo, b.Lo)
	p1hi, p1lo := clmul64(a.Lo, b.Hi)
	p2hi, p2lo := clmul64(a.Hi, b.Lo)
	p3hi, p3lo := clmul64(a.Hi, b.Hi)

	r0 := p0lo
	r1 := p0hi ^ p1lo ^ p2lo
	r2 := p1hi ^ p2hi ^ p3lo
	r3 := p3hi

	return reduce([4]uint64{r0, r1, r2, r3})
}

// twoPow128Minus2 is the exponent used for Fermat inversion in the
// 2^128-element field: a^-1 = a^(2^128-2).
var twoPow128Minus2 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(2))

// twoPow127 is the exponent for the characteristic-2 Frobenius square
// root: sqrt(a) = a^(2^127).
var twoPow127 = new(big.Int).Lsh(big.NewInt(1), 127)

// Pow returns a^e via square-and-multiply for a non-negative big.Int
// exponent e. Pow(a, 0) == One for every a, including Pow(0, 0) == One.
func Pow(a Elem, e *big.Int) Elem {
	if e.Sign() == 0 {
		return One
	}
	result := One
	base := a
	bits := e.BitLen()
	for i := 0; i < bits; i++ {
		if e.Bit(i) == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
	}
	return result
}

// PowUint is a convenience wrapper over Pow for small exponents.
func PowUint(a Elem, e uint64) Elem {
	return Pow(a, new(big.Int).SetUint64(e))
}

// Inv returns the multiplicative inverse of a via Fermat's little
// theorem (a^(2^128-2)). Fails with a DomainError when a is zero.
func Inv(a Elem) (Elem, error) {
	if a.IsZero() {
		return Zero, errs.New(errs.DomainError, "inverse of zero in GF(2^128)")
	}
	return Pow(a, twoPow128Minus2), nil
}

// Div returns a/b = a * Inv(b).
func Div(a, b Elem) (Elem, error) {
	inv, err := Inv(b)
	if err != nil {
		return Zero, err
	}
	return Mul(a, inv), nil
}

// DivMod matches the JSON surface's divmod action for field elements:
// since GF(2^128) is a field, the remainder is always zero.
func DivMod(a, b Elem) (quot, rem Elem, err error) {
	quot, err = Div(a, b)
	return quot, Zero, err
}

// Sqrt returns the unique square root of a in characteristic 2, via
// the Frobenius endomorphism a^(2^127).
func Sqrt(a Elem) Elem {
	return Pow(a, twoPow127)
}
