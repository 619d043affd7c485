// Package codec converts between the JSON value encodings spec.md §6
// defines for the job file surface (base64 field elements, polynomial
// arrays, base64 byte strings, and JSON-number-or-decimal-string
// integers) and the core's native types in gf128/gfpoly.
//
// Grounded on asn1/octet_string.go's pattern of a dedicated
// marshal/unmarshal pair per wire value type, adapted from ASN.1 DER
// encoding to this job file's JSON shape.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gf128"
	"github.com/kauma/kauma-go/gfpoly"
)

// DecodeFieldElement decodes a base64-encoded 16-byte GCM block into a
// field element.
func DecodeFieldElement(s string) (gf128.Elem, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return gf128.Zero, errs.New(errs.EncodingError, "codec: invalid base64 field element: %v", err)
	}
	return gf128.DecodeGCMBytes(raw)
}

// EncodeFieldElement renders a field element as a base64 GCM block.
func EncodeFieldElement(e gf128.Elem) string {
	return base64.StdEncoding.EncodeToString(gf128.EncodeGCMBytes(e))
}

// DecodePoly decodes a JSON array of base64 field-element strings,
// index = degree, low-degree first, into a gfpoly.Poly.
func DecodePoly(coeffs []string) (gfpoly.Poly, error) {
	out := make(gfpoly.Poly, len(coeffs))
	for i, s := range coeffs {
		e, err := DecodeFieldElement(s)
		if err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", i, err)
		}
		out[i] = e
	}
	return gfpoly.New(out), nil
}

// EncodePoly renders a polynomial as the JSON array of base64
// field-element strings spec.md §6 describes.
func EncodePoly(p gfpoly.Poly) []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = EncodeFieldElement(e)
	}
	return out
}

// DecodeBytes decodes a base64 byte string.
func DecodeBytes(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.New(errs.EncodingError, "codec: invalid base64 byte string: %v", err)
	}
	return raw, nil
}

// EncodeBytes renders a byte string as base64.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBigInt accepts either a JSON number or a decimal string,
// per spec.md §6's "Integer: JSON number (within safe range) or
// decimal string".
func DecodeBigInt(raw json.RawMessage) (*big.Int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errs.New(errs.EncodingError, "codec: invalid integer string: %v", err)
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errs.New(errs.EncodingError, "codec: %q is not a decimal integer", s)
		}
		return n, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, errs.New(errs.EncodingError, "codec: %q is not a decimal integer", trimmed)
	}
	return n, nil
}

// EncodeBigInt renders a big.Int as a decimal string, safe regardless
// of magnitude (unlike a JSON number, which is only safe within the
// float64 mantissa's 53 bits).
func EncodeBigInt(n *big.Int) string {
	return n.String()
}
