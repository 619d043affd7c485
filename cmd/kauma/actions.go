// The action handlers below are intentionally thin: each one decodes
// its arguments with the codec package, calls straight into the core
// package that owns the behavior, and re-encodes the result. This is
// the "external collaborator" layer spec.md explicitly scopes out of
// the core — kept as undecorated wrapper functions the way the
// teacher's own examples/*.go demo files are thin func main() wrappers
// around its library packages.
package main

import (
	"encoding/json"
	"io"
	"math/big"
	"math/rand"

	"github.com/kauma/kauma-go/batchgcd"
	"github.com/kauma/kauma-go/codec"
	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gcm"
	"github.com/kauma/kauma-go/gcmcrack"
	"github.com/kauma/kauma-go/gf128"
	"github.com/kauma/kauma-go/gfpoly"
	"github.com/kauma/kauma-go/paddingoracle"
)

type actionFunc func(args json.RawMessage, seed int64) (interface{}, error)

var dispatch = map[string]actionFunc{
	"gfmul":              handleGFMul,
	"gfdiv":              handleGFDiv,
	"gfpoly_add":         handlePolyAdd,
	"gfpoly_mul":         handlePolyMul,
	"gfpoly_divmod":      handlePolyDivMod,
	"gfpoly_pow":         handlePolyPow,
	"gfpoly_powmod":      handlePolyPowMod,
	"gfpoly_sort":        handlePolySort,
	"gfpoly_make_monic":  handlePolyMakeMonic,
	"gfpoly_sqrt":        handlePolySqrt,
	"gfpoly_diff":        handlePolyDiff,
	"gfpoly_gcd":         handlePolyGCD,
	"gfpoly_factor_sff":  handleFactorSFF,
	"gfpoly_factor_ddf":  handleFactorDDF,
	"gfpoly_factor_edf":  handleFactorEDF,
	"gcm_encrypt":        handleGCMEncrypt,
	"gcm_decrypt":        handleGCMDecrypt,
	"gcm_crack":          handleGCMCrack,
	"padding_oracle":     handlePaddingOracle,
	"rsa_factor":         handleRSAFactor,
	"calc":               handleCalc,
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.New(errs.EncodingError, "malformed arguments: %v", err)
	}
	return nil
}

// --- GF(2^128) element ops (C2) ---

func handleGFMul(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ A, B string }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := codec.DecodeFieldElement(args.A)
	if err != nil {
		return nil, err
	}
	b, err := codec.DecodeFieldElement(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]string{"product": codec.EncodeFieldElement(gf128.Mul(a, b))}, nil
}

func handleGFDiv(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ A, B string }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := codec.DecodeFieldElement(args.A)
	if err != nil {
		return nil, err
	}
	b, err := codec.DecodeFieldElement(args.B)
	if err != nil {
		return nil, err
	}
	q, err := gf128.Div(a, b)
	if err != nil {
		return nil, err
	}
	return map[string]string{"q": codec.EncodeFieldElement(q)}, nil
}

// --- Polynomial arithmetic (C5) ---

func decodePolyArg(raw json.RawMessage, key string) (gfpoly.Poly, error) {
	var m map[string]json.RawMessage
	if err := decodeArgs(raw, &m); err != nil {
		return nil, err
	}
	var coeffs []string
	if err := json.Unmarshal(m[key], &coeffs); err != nil {
		return nil, errs.New(errs.EncodingError, "argument %q: %v", key, err)
	}
	return codec.DecodePoly(coeffs)
}

func handlePolyAdd(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	b, err := decodePolyArg(raw, "B")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": codec.EncodePoly(gfpoly.Add(a, b))}, nil
}

func handlePolyMul(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	b, err := decodePolyArg(raw, "B")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"P": codec.EncodePoly(gfpoly.Mul(a, b))}, nil
}

func handlePolyDivMod(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	b, err := decodePolyArg(raw, "B")
	if err != nil {
		return nil, err
	}
	q, r, err := gfpoly.DivMod(a, b)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Q": codec.EncodePoly(q), "R": codec.EncodePoly(r)}, nil
}

func handlePolyPow(raw json.RawMessage, _ int64) (interface{}, error) {
	var m map[string]json.RawMessage
	if err := decodeArgs(raw, &m); err != nil {
		return nil, err
	}
	var coeffs []string
	if err := json.Unmarshal(m["A"], &coeffs); err != nil {
		return nil, errs.New(errs.EncodingError, "argument A: %v", err)
	}
	a, err := codec.DecodePoly(coeffs)
	if err != nil {
		return nil, err
	}
	var k uint64
	if err := json.Unmarshal(m["k"], &k); err != nil {
		return nil, errs.New(errs.EncodingError, "argument k: %v", err)
	}
	return map[string]interface{}{"Z": codec.EncodePoly(gfpoly.Pow(a, k))}, nil
}

func handlePolyPowMod(raw json.RawMessage, _ int64) (interface{}, error) {
	var m map[string]json.RawMessage
	if err := decodeArgs(raw, &m); err != nil {
		return nil, err
	}
	a, err := decodePolyFromRaw(m["A"])
	if err != nil {
		return nil, err
	}
	mod, err := decodePolyFromRaw(m["M"])
	if err != nil {
		return nil, err
	}
	k, err := codec.DecodeBigInt(m["k"])
	if err != nil {
		return nil, err
	}
	z, err := gfpoly.PowMod(a, k, mod)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Z": codec.EncodePoly(z)}, nil
}

func decodePolyFromRaw(raw json.RawMessage) (gfpoly.Poly, error) {
	var coeffs []string
	if err := json.Unmarshal(raw, &coeffs); err != nil {
		return nil, errs.New(errs.EncodingError, "malformed polynomial: %v", err)
	}
	return codec.DecodePoly(coeffs)
}

func handlePolySort(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ Polys [][]string }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	polys := make([]gfpoly.Poly, len(args.Polys))
	for i, coeffs := range args.Polys {
		p, err := codec.DecodePoly(coeffs)
		if err != nil {
			return nil, err
		}
		polys[i] = p
	}
	sorted := gfpoly.Sort(polys)
	out := make([][]string, len(sorted))
	for i, p := range sorted {
		out[i] = codec.EncodePoly(p)
	}
	return map[string]interface{}{"sorted": out}, nil
}

func handlePolyMakeMonic(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"A*": codec.EncodePoly(gfpoly.Monic(a))}, nil
}

func handlePolySqrt(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	s, err := gfpoly.Sqrt(a)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": codec.EncodePoly(s)}, nil
}

func handlePolyDiff(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"F": codec.EncodePoly(gfpoly.Diff(a))}, nil
}

func handlePolyGCD(raw json.RawMessage, _ int64) (interface{}, error) {
	a, err := decodePolyArg(raw, "A")
	if err != nil {
		return nil, err
	}
	b, err := decodePolyArg(raw, "B")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"G": codec.EncodePoly(gfpoly.GCD(a, b))}, nil
}

// --- Factorization (C6) ---

func handleFactorSFF(raw json.RawMessage, _ int64) (interface{}, error) {
	f, err := decodePolyArg(raw, "F")
	if err != nil {
		return nil, err
	}
	terms, err := gfpoly.SquareFree(f)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(terms))
	for i, t := range terms {
		out[i] = map[string]interface{}{
			"factor":   codec.EncodePoly(t.Factor),
			"exponent": t.Exponent,
		}
	}
	return map[string]interface{}{"factors": out}, nil
}

func handleFactorDDF(raw json.RawMessage, _ int64) (interface{}, error) {
	f, err := decodePolyArg(raw, "F")
	if err != nil {
		return nil, err
	}
	terms, err := gfpoly.DistinctDegree(f)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(terms))
	for i, t := range terms {
		out[i] = map[string]interface{}{
			"factor": codec.EncodePoly(t.Factor),
			"degree": t.Degree,
		}
	}
	return map[string]interface{}{"factors": out}, nil
}

func handleFactorEDF(raw json.RawMessage, globalSeed int64) (interface{}, error) {
	var m map[string]json.RawMessage
	if err := decodeArgs(raw, &m); err != nil {
		return nil, err
	}
	f, err := decodePolyFromRaw(m["F"])
	if err != nil {
		return nil, err
	}
	var d, r int
	if err := json.Unmarshal(m["d"], &d); err != nil {
		return nil, errs.New(errs.EncodingError, "argument d: %v", err)
	}
	if err := json.Unmarshal(m["r"], &r); err != nil {
		return nil, errs.New(errs.EncodingError, "argument r: %v", err)
	}

	seed := globalSeed
	if raw, ok := m["seed"]; ok {
		if err := json.Unmarshal(raw, &seed); err != nil {
			return nil, errs.New(errs.EncodingError, "argument seed: %v", err)
		}
	}

	var reader io.Reader
	if seed != 0 {
		reader = newDeterministicReader(seed)
	}

	factors, err := gfpoly.EqualDegree(f, d, r, reader)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(factors))
	for i, p := range factors {
		out[i] = codec.EncodePoly(p)
	}
	return map[string]interface{}{"factors": out}, nil
}

// deterministicReader adapts a seeded math/rand generator into an
// io.Reader, letting callers (and tests) replay EqualDegree's random
// trial polynomials deterministically, per spec.md §9's "randomness
// must be passed as an injected source" instruction.
type deterministicReader struct {
	rnd *rand.Rand
}

func newDeterministicReader(seed int64) *deterministicReader {
	return &deterministicReader{rnd: rand.New(rand.NewSource(seed))}
}

func (d *deterministicReader) Read(p []byte) (int, error) {
	return d.rnd.Read(p)
}

// --- AES-128-GCM (C3/C4) ---

func handleGCMEncrypt(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ Key, Nonce, Ad, Plaintext string }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	key, err := codec.DecodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	nonce, err := codec.DecodeBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	ad, err := codec.DecodeBytes(args.Ad)
	if err != nil {
		return nil, err
	}
	pt, err := codec.DecodeBytes(args.Plaintext)
	if err != nil {
		return nil, err
	}

	result, err := gcm.Encrypt(key, nonce, ad, pt)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"ciphertext": codec.EncodeBytes(result.C),
		"tag":        codec.EncodeBytes(result.T[:]),
		"H":          codec.EncodeFieldElement(result.H),
		"L":          codec.EncodeBytes(result.L[:]),
	}, nil
}

func handleGCMDecrypt(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ Key, Nonce, Ad, Ciphertext, Tag string }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	key, err := codec.DecodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	nonce, err := codec.DecodeBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	ad, err := codec.DecodeBytes(args.Ad)
	if err != nil {
		return nil, err
	}
	ct, err := codec.DecodeBytes(args.Ciphertext)
	if err != nil {
		return nil, err
	}
	tagBytes, err := codec.DecodeBytes(args.Tag)
	if err != nil {
		return nil, err
	}
	if len(tagBytes) != 16 {
		return nil, errs.New(errs.EncodingError, "tag must be 16 bytes, got %d", len(tagBytes))
	}
	var tag [16]byte
	copy(tag[:], tagBytes)

	pt, err := gcm.Decrypt(key, nonce, ad, ct, tag)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"plaintext": codec.EncodeBytes(pt)}, nil
}

// --- GCM nonce-reuse forgery (C7) ---

func decodeTriple(raw json.RawMessage) (gcmcrack.Triple, error) {
	var t struct{ Ad, Ciphertext, Tag string }
	if err := json.Unmarshal(raw, &t); err != nil {
		return gcmcrack.Triple{}, errs.New(errs.EncodingError, "malformed GCM triple: %v", err)
	}
	ad, err := codec.DecodeBytes(t.Ad)
	if err != nil {
		return gcmcrack.Triple{}, err
	}
	ct, err := codec.DecodeBytes(t.Ciphertext)
	if err != nil {
		return gcmcrack.Triple{}, err
	}
	tagBytes, err := codec.DecodeBytes(t.Tag)
	if err != nil {
		return gcmcrack.Triple{}, err
	}
	if len(tagBytes) != 16 {
		return gcmcrack.Triple{}, errs.New(errs.EncodingError, "tag must be 16 bytes, got %d", len(tagBytes))
	}
	var tag [16]byte
	copy(tag[:], tagBytes)
	return gcmcrack.Triple{AAD: ad, Ciphertext: ct, Tag: tag}, nil
}

func handleGCMCrack(raw json.RawMessage, _ int64) (interface{}, error) {
	var m map[string]json.RawMessage
	if err := decodeArgs(raw, &m); err != nil {
		return nil, err
	}
	pair1, err := decodeTriple(m["m1"])
	if err != nil {
		return nil, err
	}
	pair2, err := decodeTriple(m["m2"])
	if err != nil {
		return nil, err
	}
	oracle, err := decodeTriple(m["oracle"])
	if err != nil {
		return nil, err
	}

	var forgeArgs struct{ Ad, Ciphertext string }
	if err := json.Unmarshal(m["forge"], &forgeArgs); err != nil {
		return nil, errs.New(errs.EncodingError, "malformed forge request: %v", err)
	}
	forgeAd, err := codec.DecodeBytes(forgeArgs.Ad)
	if err != nil {
		return nil, err
	}
	forgeCt, err := codec.DecodeBytes(forgeArgs.Ciphertext)
	if err != nil {
		return nil, err
	}

	result, err := gcmcrack.Recover(pair1, pair2, oracle, gcmcrack.ForgeRequest{AAD: forgeAd, Ciphertext: forgeCt})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"H":         codec.EncodeFieldElement(result.H),
		"mask":      codec.EncodeFieldElement(result.EKY0),
		"tag":       codec.EncodeBytes(result.ForgedT[:]),
		"ambiguous": result.Ambiguous,
	}, nil
}

// --- Padding oracle (C8) ---

func handlePaddingOracle(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct {
		Host       string
		Port       int
		Iv         string
		Ciphertext string
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	iv, err := codec.DecodeBytes(args.Iv)
	if err != nil {
		return nil, err
	}
	ct, err := codec.DecodeBytes(args.Ciphertext)
	if err != nil {
		return nil, err
	}
	if len(iv) != 16 || len(ct)%16 != 0 || len(ct) == 0 {
		return nil, errs.New(errs.EncodingError, "padding_oracle: IV must be 16 bytes and ciphertext a non-empty multiple of 16")
	}

	plaintext, err := recoverCiphertext(args.Host, args.Port, iv, ct)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"plaintext": codec.EncodeBytes(plaintext)}, nil
}

// recoverCiphertext attacks every ciphertext block in sequence,
// opening one paddingoracle.Session per block per spec.md §5's scoped
// acquisition discipline.
func recoverCiphertext(host string, port int, iv []byte, ciphertext []byte) ([]byte, error) {
	addr := netJoinHostPort(host, port)
	blocks := len(ciphertext) / 16
	plaintext := make([]byte, len(ciphertext))

	prev := iv
	for b := 0; b < blocks; b++ {
		target := ciphertext[b*16 : b*16+16]

		block, err := attackOneBlock(addr, prev, target)
		if err != nil {
			return nil, err
		}
		copy(plaintext[b*16:b*16+16], block[:])
		prev = target
	}
	return plaintext, nil
}

// attackOneBlock opens a fresh session for one ciphertext block, per
// spec.md §5's scoped-acquisition discipline ("opened per target
// block, guaranteed closed on all exit paths"). The harness is assumed
// to dedicate the dialed connection to this target block server-side;
// the wire protocol itself (spec.md §4.6) carries no explicit block
// index, so which block a session attacks is a connection-level
// concern outside the core.
func attackOneBlock(addr string, prev, target []byte) ([16]byte, error) {
	ctx, cancel := paddingOracleContext()
	defer cancel()

	session, err := paddingoracle.Dial(ctx, addr, globalTimeout)
	if err != nil {
		return [16]byte{}, err
	}
	defer session.Close()

	var prevBlock [16]byte
	copy(prevBlock[:], prev)

	return session.RecoverBlock(prevBlock)
}

// --- Batch-GCD (C9) ---

func handleRSAFactor(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct{ Moduli []json.RawMessage }
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	moduli := make([]*big.Int, len(args.Moduli))
	for i, m := range args.Moduli {
		n, err := codec.DecodeBigInt(m)
		if err != nil {
			return nil, err
		}
		moduli[i] = n
	}

	results, err := batchgcd.Factor(moduli)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(results))
	for i, r := range results {
		entry := map[string]interface{}{"classification": r.Classification.String()}
		if r.Classification == batchgcd.Factored {
			entry["factor"] = codec.EncodeBigInt(r.Factor)
		}
		out[i] = entry
	}
	return map[string]interface{}{"factors": out}, nil
}

// --- calc (trivial glue action, out of the core's scope) ---

func handleCalc(raw json.RawMessage, _ int64) (interface{}, error) {
	var args struct {
		Op   string
		A, B json.RawMessage
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := codec.DecodeBigInt(args.A)
	if err != nil {
		return nil, err
	}
	b, err := codec.DecodeBigInt(args.B)
	if err != nil {
		return nil, err
	}

	result := new(big.Int)
	switch args.Op {
	case "add":
		result.Add(a, b)
	case "sub":
		result.Sub(a, b)
	case "mul":
		result.Mul(a, b)
	case "div":
		if b.Sign() == 0 {
			return nil, errs.New(errs.DomainError, "calc: division by zero")
		}
		result.Div(a, b)
	default:
		return nil, errs.New(errs.EncodingError, "calc: unknown op %q", args.Op)
	}
	return map[string]interface{}{"result": codec.EncodeBigInt(result)}, nil
}
