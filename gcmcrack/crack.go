// Package gcmcrack recovers the GHASH key H and the AES-encrypted
// counter-zero block E_K(Y0) from two GCM ciphertexts that share a
// nonce (and therefore a key and an H), then uses them to forge a tag
// on an attacker-chosen message. It composes gf128, gcm, and gfpoly:
// the shared-nonce forgery reduces to finding roots of a polynomial
// over GF(2^128), which is exactly what gfpoly's SFF/DDF/EDF pipeline
// is built to do.
package gcmcrack

import (
	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gcm"
	"github.com/kauma/kauma-go/gf128"
	"github.com/kauma/kauma-go/gfpoly"
)

const blockSize = 16

// Triple is one GCM ciphertext observation: associated data, ciphertext,
// and the tag it produced, all under the same (unknown) key and nonce.
type Triple struct {
	AAD        []byte
	Ciphertext []byte
	Tag        [blockSize]byte
}

// ForgeRequest is the attacker-chosen message to produce a valid tag
// for, once H and E_K(Y0) are recovered.
type ForgeRequest struct {
	AAD        []byte
	Ciphertext []byte
}

// Result is the recovered key material and the forged tag.
type Result struct {
	H        gf128.Elem
	EKY0     gf128.Elem
	ForgedT  [blockSize]byte
	Ambiguous bool
}

// Recover implements spec.md §4.5: given two tag-sharing triples and a
// third oracle triple to disambiguate candidates, recover (H, E_K(Y0))
// and forge a tag for forge.
func Recover(pair1, pair2, oracle Triple, forge ForgeRequest) (Result, error) {
	g1 := ghashPoly(pair1)
	g2 := ghashPoly(pair2)
	f := gfpoly.Add(g1, g2)

	if f.IsZero() {
		return Result{}, errs.New(errs.NoSolution, "gcmcrack: the two triples produce an identically-zero difference polynomial")
	}

	roots, err := findRoots(f)
	if err != nil {
		return Result{}, err
	}
	if len(roots) == 0 {
		return Result{}, errs.New(errs.NoSolution, "gcmcrack: no candidate H found")
	}

	var confirmed []gf128.Elem
	var confirmedEKY0 gf128.Elem

	for _, h := range roots {
		ghash1 := gcm.GHASH(h, pair1.AAD, pair1.Ciphertext)
		eky0 := gf128.Add(gf128.DecodeGCM(pair1.Tag), ghash1)

		ghashOracle := gcm.GHASH(h, oracle.AAD, oracle.Ciphertext)
		candidateOracleTag := gf128.EncodeGCM(gf128.Add(ghashOracle, eky0))

		if candidateOracleTag == oracle.Tag {
			if len(confirmed) == 0 {
				confirmedEKY0 = eky0
			}
			confirmed = append(confirmed, h)
		}
	}

	if len(confirmed) == 0 {
		return Result{}, errs.New(errs.NoSolution, "gcmcrack: no candidate H verified against the oracle triple")
	}

	h := confirmed[0]
	ghashForged := gcm.GHASH(h, forge.AAD, forge.Ciphertext)
	forgedTag := gf128.EncodeGCM(gf128.Add(ghashForged, confirmedEKY0))

	return Result{
		H:         h,
		EKY0:      confirmedEKY0,
		ForgedT:   forgedTag,
		Ambiguous: len(confirmed) > 1,
	}, nil
}

// ghashPoly builds G_i(X) = sum_j B_{i,j} * X^(n_i - j + 1) + T_i, the
// symbolic evaluation of GHASH at H=X for one triple's blocks (A padded
// || C padded || L), represented as a gfpoly.Poly indexed by degree
// (low-degree first).
func ghashPoly(t Triple) gfpoly.Poly {
	blocks := paddedBlocks(t.AAD, t.Ciphertext)
	n := len(blocks)

	// B_{i,j} for j=1..n multiplies X^(n-j+1); as j runs 1..n, the
	// exponent runs n..1, i.e. blocks[0] (j=1) gets exponent n and
	// blocks[n-1] (j=n) gets exponent 1. The constant term (degree 0)
	// is T_i.
	coeffs := make(gfpoly.Poly, n+1)
	coeffs[0] = gf128.DecodeGCM(t.Tag)
	for j := 0; j < n; j++ {
		degree := n - j
		coeffs[degree] = blocks[j]
	}
	return gfpoly.New(coeffs)
}

// paddedBlocks returns the GCM-encoded field elements of A padded to
// 16-byte blocks, then C padded to 16-byte blocks, then the length
// block L, in that order.
func paddedBlocks(aad, ciphertext []byte) []gf128.Elem {
	var blocks []gf128.Elem
	blocks = append(blocks, splitBlocks(aad)...)
	blocks = append(blocks, splitBlocks(ciphertext)...)

	var l [blockSize]byte
	putBigEndian64(l[0:8], uint64(len(aad))*8)
	putBigEndian64(l[8:16], uint64(len(ciphertext))*8)
	blocks = append(blocks, gf128.DecodeGCM(l))

	return blocks
}

func splitBlocks(data []byte) []gf128.Elem {
	var blocks []gf128.Elem
	for off := 0; off < len(data); off += blockSize {
		var block [blockSize]byte
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		copy(block[:], data[off:end])
		blocks = append(blocks, gf128.DecodeGCM(block))
	}
	return blocks
}

func putBigEndian64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

// findRoots finds every root of f in GF(2^128) by factoring: roots are
// exactly the degree-1 irreducible factors X - h = X + h (char 2).
func findRoots(f gfpoly.Poly) ([]gf128.Elem, error) {
	sffTerms, err := gfpoly.SquareFree(f)
	if err != nil {
		return nil, err
	}

	var roots []gf128.Elem
	for _, term := range sffTerms {
		ddfTerms, err := gfpoly.DistinctDegree(term.Factor)
		if err != nil {
			return nil, err
		}
		for _, ddf := range ddfTerms {
			if ddf.Degree != 1 {
				continue
			}
			r := ddf.Factor.Degree()
			factors, err := gfpoly.EqualDegree(ddf.Factor, 1, r, nil)
			if err != nil {
				return nil, err
			}
			for _, lin := range factors {
				// lin = X + h, normalized low-degree first: lin[0] = h.
				roots = append(roots, lin[0])
			}
		}
	}
	return roots, nil
}
