// Package gcm implements AES-128-GCM from first principles: counter-mode
// encryption over the aes128 engine plus a GHASH authenticator built on
// gf128. It exposes H and the length block L alongside the usual
// ciphertext/tag pair because the nonce-reuse forgery in gcmcrack needs
// both.
//
// Generalizes the teacher's crypto/modes authenticated-mode shape (a
// BlockCipherMode wrapping an underlying crypto.BlockCipher) into a set
// of pure functions: GCM here is not a resumable streaming mode, it is
// "encrypt this whole message", matching spec.md's one-shot API.
package gcm

import (
	"encoding/binary"

	"github.com/kauma/kauma-go/aes128"
	"github.com/kauma/kauma-go/errs"
	"github.com/kauma/kauma-go/gf128"
	"github.com/kauma/kauma-go/util"
)

const blockSize = 16

// Result is the output of Encrypt: ciphertext, tag, and the two values
// C7's nonce-reuse recovery needs: the GHASH key H and the length block
// L that was folded into the tag.
type Result struct {
	C []byte
	T [blockSize]byte
	H gf128.Elem
	L [blockSize]byte
}

// Encrypt performs AES-128-GCM encryption. key must be 16 bytes; nonce
// is typically 12 bytes (the fast path) but any non-empty length is
// accepted per the GHASH-based Y0 fallback.
func Encrypt(key, nonce, aad, plaintext []byte) (Result, error) {
	if len(key) != blockSize {
		return Result{}, errs.New(errs.DomainError, "gcm: key must be %d bytes, got %d", blockSize, len(key))
	}

	var k [blockSize]byte
	copy(k[:], key)

	hBlock := aes128.EncryptBlock(k, [blockSize]byte{})
	h := gf128.DecodeGCM(hBlock)

	y0 := computeY0(k, h, nonce)

	c := ctrEncrypt(k, y0, plaintext)

	l := lengthBlock(len(aad), len(c))

	ghashOut := ghash(h, aad, c, l)

	eky0 := aes128.EncryptBlock(k, y0)
	var tag [blockSize]byte
	tagElem := gf128.Add(ghashOut, gf128.DecodeGCM(eky0))
	tag = gf128.EncodeGCM(tagElem)

	return Result{C: c, T: tag, H: h, L: l}, nil
}

// Decrypt performs AES-128-GCM decryption and tag verification. Returns
// DomainError if the tag does not match.
func Decrypt(key, nonce, aad, ciphertext []byte, tag [blockSize]byte) ([]byte, error) {
	if len(key) != blockSize {
		return nil, errs.New(errs.DomainError, "gcm: key must be %d bytes, got %d", blockSize, len(key))
	}

	var k [blockSize]byte
	copy(k[:], key)

	hBlock := aes128.EncryptBlock(k, [blockSize]byte{})
	h := gf128.DecodeGCM(hBlock)

	y0 := computeY0(k, h, nonce)

	l := lengthBlock(len(aad), len(ciphertext))
	ghashOut := ghash(h, aad, ciphertext, l)
	eky0 := aes128.EncryptBlock(k, y0)
	wantTag := gf128.EncodeGCM(gf128.Add(ghashOut, gf128.DecodeGCM(eky0)))

	if !util.ConstantTimeCompare(wantTag[:], tag[:]) {
		return nil, errs.New(errs.DomainError, "gcm: authentication tag mismatch")
	}

	return ctrEncrypt(k, y0, ciphertext), nil
}

// computeY0 builds the initial counter block: the 96-bit-nonce fast
// path per spec.md §4.2, or GHASH(H, "", N) otherwise.
func computeY0(key [blockSize]byte, h gf128.Elem, nonce []byte) [blockSize]byte {
	if len(nonce) == 12 {
		var y0 [blockSize]byte
		copy(y0[:12], nonce)
		y0[15] = 1
		return y0
	}
	return gf128.EncodeGCM(GHASH(h, nil, nonce))
}

// ctrEncrypt XORs input against the AES-128 keystream generated from
// counter blocks Y1, Y2, ... (Y0 is reserved for the tag mask).
func ctrEncrypt(key [blockSize]byte, y0 [blockSize]byte, input []byte) []byte {
	out := make([]byte, len(input))
	counter := binary.BigEndian.Uint32(y0[12:16])
	y := y0
	for off := 0; off < len(input); off += blockSize {
		counter++
		binary.BigEndian.PutUint32(y[12:16], counter)
		ks := aes128.EncryptBlock(key, y)
		end := off + blockSize
		if end > len(input) {
			end = len(input)
		}
		for i := off; i < end; i++ {
			out[i] = input[i] ^ ks[i-off]
		}
	}
	return out
}

// lengthBlock builds the 128-bit L block: 64-bit big-endian bit-length
// of AAD followed by 64-bit big-endian bit-length of the ciphertext.
func lengthBlock(aadLen, cLen int) [blockSize]byte {
	var l [blockSize]byte
	binary.BigEndian.PutUint64(l[0:8], uint64(aadLen)*8)
	binary.BigEndian.PutUint64(l[8:16], uint64(cLen)*8)
	return l
}

// GHASH computes GHASH(H, A, C): A padded to 16-byte blocks, then C
// padded to 16-byte blocks, then a length block L derived from their
// byte lengths, folding each block as X <- (X XOR B) * H. Exported for
// gcmcrack (C7), which recomputes GHASH over the oracle triple during
// candidate verification.
func GHASH(h gf128.Elem, aad, c []byte) gf128.Elem {
	return ghash(h, aad, c, lengthBlock(len(aad), len(c)))
}

// ghash is the internal form taking L directly, since Encrypt/Decrypt
// also need L as a return value and would otherwise recompute it.
func ghash(h gf128.Elem, aad, c []byte, l [blockSize]byte) gf128.Elem {
	x := gf128.Zero
	x = ghashBlocks(x, h, aad)
	x = ghashBlocks(x, h, c)
	x = gf128.Mul(gf128.Add(x, gf128.DecodeGCM(l)), h)
	return x
}

func ghashBlocks(x, h gf128.Elem, data []byte) gf128.Elem {
	for off := 0; off < len(data); off += blockSize {
		var block [blockSize]byte
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		copy(block[:], data[off:end])
		x = gf128.Mul(gf128.Add(x, gf128.DecodeGCM(block)), h)
	}
	return x
}
