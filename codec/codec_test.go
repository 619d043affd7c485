package codec

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/kauma/kauma-go/gf128"
	"github.com/kauma/kauma-go/gfpoly"
)

func TestFieldElementRoundTrip(t *testing.T) {
	e := gf128.Elem{Hi: 0x0102030405060708, Lo: 0x1112131415161718}
	s := EncodeFieldElement(e)
	got, err := DecodeFieldElement(s)
	if err != nil {
		t.Fatalf("DecodeFieldElement: %v", err)
	}
	if !got.Equal(e) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestDecodeFieldElementRejectsBadBase64(t *testing.T) {
	if _, err := DecodeFieldElement("not base64!!"); err == nil {
		t.Fatalf("expected an error for invalid base64")
	}
}

func TestDecodeFieldElementRejectsWrongLength(t *testing.T) {
	// "AAAA" base64-decodes to 3 zero bytes, not 16.
	if _, err := DecodeFieldElement("AAAA"); err == nil {
		t.Fatalf("expected an error for a non-16-byte block")
	}
}

func TestPolyRoundTrip(t *testing.T) {
	p := gfpoly.Poly{
		{Hi: 0, Lo: 1},
		{Hi: 0, Lo: 0},
		{Hi: 1, Lo: 0},
	}
	encoded := EncodePoly(p)
	if len(encoded) != 3 {
		t.Fatalf("expected 3 coefficients encoded, got %d", len(encoded))
	}
	decoded, err := DecodePoly(encoded)
	if err != nil {
		t.Fatalf("DecodePoly: %v", err)
	}
	if !gfpoly.Equal(decoded, p) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, p)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	b := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	s := EncodeBytes(b)
	got, err := DecodeBytes(s)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if string(got) != string(b) {
		t.Fatalf("round trip mismatch: got %x, want %x", got, b)
	}
}

func TestDecodeBigIntAcceptsNumberAndString(t *testing.T) {
	n, err := DecodeBigInt(json.RawMessage(`12345`))
	if err != nil {
		t.Fatalf("DecodeBigInt(number): %v", err)
	}
	if n.Cmp(big.NewInt(12345)) != 0 {
		t.Fatalf("got %v, want 12345", n)
	}

	n, err = DecodeBigInt(json.RawMessage(`"98765432109876543210"`))
	if err != nil {
		t.Fatalf("DecodeBigInt(string): %v", err)
	}
	want, _ := new(big.Int).SetString("98765432109876543210", 10)
	if n.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", n, want)
	}
}

func TestDecodeBigIntRejectsGarbage(t *testing.T) {
	if _, err := DecodeBigInt(json.RawMessage(`"not a number"`)); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestEncodeBigIntPreservesLargeMagnitude(t *testing.T) {
	big64, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	s := EncodeBigInt(big64)
	got, ok := new(big.Int).SetString(s, 10)
	if !ok || got.Cmp(big64) != 0 {
		t.Fatalf("EncodeBigInt round trip failed: got %q", s)
	}
}
