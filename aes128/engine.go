package aes128

import (
	"fmt"
	"sync"

	"github.com/kauma/kauma-go/crypto"
	"github.com/kauma/kauma-go/crypto/params"
)

// roundKeyCache memoizes expandKey results keyed by the raw 16-byte
// key, per spec.md §5's "lazily initialized, thread-safe AES round-key
// cache keyed by the raw key bytes" — an optional optimization;
// correctness never depends on its presence since Init always falls
// back to computing the schedule directly.
var roundKeyCache sync.Map // string(key) -> [176]byte

func scheduleFor(key [keySize]byte) [176]byte {
	cacheKey := string(key[:])
	if v, ok := roundKeyCache.Load(cacheKey); ok {
		return v.([176]byte)
	}
	rk := expandKey(key)
	roundKeyCache.Store(cacheKey, rk)
	return rk
}

// Engine implements AES-128 single-block encryption and decryption as
// a crypto.BlockCipher, the same interface shape the teacher's engines
// package gives SM4.
type Engine struct {
	roundKeys  [176]byte
	hasKey     bool
	forEncrypt bool
}

// NewEngine creates an uninitialized AES-128 engine; call Init before
// ProcessBlock.
func NewEngine() *Engine {
	return &Engine{}
}

// Init sets the key and direction. GCM only ever calls AES_K in the
// encrypt direction (counter mode, H, and the tag mask are all forward
// transforms); CBC mode and the padding-oracle test server need both
// directions.
func (e *Engine) Init(forEncryption bool, parameters crypto.CipherParameters) {
	keyParam, ok := parameters.(*params.KeyParameter)
	if !ok {
		panic("aes128: Init requires a *params.KeyParameter")
	}
	key := keyParam.GetKey()
	if len(key) != keySize {
		panic(fmt.Sprintf("aes128: key must be %d bytes, got %d", keySize, len(key)))
	}
	var k [keySize]byte
	copy(k[:], key)
	e.roundKeys = scheduleFor(k)
	e.hasKey = true
	e.forEncrypt = forEncryption
}

// GetAlgorithmName returns the algorithm name.
func (e *Engine) GetAlgorithmName() string {
	return "AES-128"
}

// GetBlockSize returns 16, the AES block size in bytes.
func (e *Engine) GetBlockSize() int {
	return blockSize
}

// ProcessBlock encrypts (or decrypts, per the direction passed to
// Init) one 16-byte block from in[inOff:] into out[outOff:].
func (e *Engine) ProcessBlock(in []byte, inOff int, out []byte, outOff int) int {
	if !e.hasKey {
		panic("aes128: engine not initialised")
	}
	if inOff+blockSize > len(in) {
		panic("aes128: input buffer too short")
	}
	if outOff+blockSize > len(out) {
		panic("aes128: output buffer too short")
	}

	var state [16]byte
	copy(state[:], in[inOff:inOff+blockSize])

	if e.forEncrypt {
		encryptState(&state, &e.roundKeys)
	} else {
		decryptState(&state, &e.roundKeys)
	}

	copy(out[outOff:outOff+blockSize], state[:])
	return blockSize
}

func encryptState(state *[16]byte, roundKeys *[176]byte) {
	addRoundKey(state, roundKeys[0:16])
	for round := 1; round < numRounds; round++ {
		subBytes(state)
		shiftRows(state)
		mixColumns(state)
		addRoundKey(state, roundKeys[round*16:round*16+16])
	}
	subBytes(state)
	shiftRows(state)
	addRoundKey(state, roundKeys[numRounds*16:numRounds*16+16])
}

// decryptState runs the straightforward AES inverse cipher: rounds
// applied in reverse order, each step the inverse of its forward
// counterpart.
func decryptState(state *[16]byte, roundKeys *[176]byte) {
	addRoundKey(state, roundKeys[numRounds*16:numRounds*16+16])
	for round := numRounds - 1; round >= 1; round-- {
		invShiftRows(state)
		invSubBytes(state)
		addRoundKey(state, roundKeys[round*16:round*16+16])
		invMixColumns(state)
	}
	invShiftRows(state)
	invSubBytes(state)
	addRoundKey(state, roundKeys[0:16])
}

// Reset is a no-op: this engine carries no chaining state of its own.
func (e *Engine) Reset() {}

// EncryptBlock is a convenience wrapper for callers that don't need
// the full crypto.BlockCipher lifecycle (GCM's per-counter-block
// encryption, principally).
func EncryptBlock(key [keySize]byte, block [16]byte) [16]byte {
	e := &Engine{roundKeys: scheduleFor(key), hasKey: true, forEncrypt: true}
	var out [16]byte
	e.ProcessBlock(block[:], 0, out[:], 0)
	return out
}

// DecryptBlock is the inverse of EncryptBlock: AES-128 single-block
// decryption under the given key.
func DecryptBlock(key [keySize]byte, block [16]byte) [16]byte {
	e := &Engine{roundKeys: scheduleFor(key), hasKey: true, forEncrypt: false}
	var out [16]byte
	e.ProcessBlock(block[:], 0, out[:], 0)
	return out
}

func addRoundKey(state *[16]byte, rk []byte) {
	for i := 0; i < 16; i++ {
		state[i] ^= rk[i]
	}
}

func subBytes(state *[16]byte) {
	for i := range state {
		state[i] = sbox[state[i]]
	}
}

func invSubBytes(state *[16]byte) {
	for i := range state {
		state[i] = invSBox[state[i]]
	}
}

// shiftRows operates on the state in AES column-major byte order:
// byte index = col*4 + row.
func shiftRows(state *[16]byte) {
	var s [16]byte
	copy(s[:], state[:])
	for row := 1; row < 4; row++ {
		for col := 0; col < 4; col++ {
			state[col*4+row] = s[((col+row)%4)*4+row]
		}
	}
}

// invShiftRows rotates each row the opposite direction of shiftRows.
func invShiftRows(state *[16]byte) {
	var s [16]byte
	copy(s[:], state[:])
	for row := 1; row < 4; row++ {
		for col := 0; col < 4; col++ {
			state[((col+row)%4)*4+row] = s[col*4+row]
		}
	}
}

func xtime(b byte) byte {
	if b&0x80 != 0 {
		return (b << 1) ^ 0x1b
	}
	return b << 1
}

func mixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[c*4], state[c*4+1], state[c*4+2], state[c*4+3]
		state[c*4] = xtime(a0) ^ (xtime(a1) ^ a1) ^ a2 ^ a3
		state[c*4+1] = a0 ^ xtime(a1) ^ (xtime(a2) ^ a2) ^ a3
		state[c*4+2] = a0 ^ a1 ^ xtime(a2) ^ (xtime(a3) ^ a3)
		state[c*4+3] = (xtime(a0) ^ a0) ^ a1 ^ a2 ^ xtime(a3)
	}
}

// invMixColumns applies the inverse MixColumns matrix (0x0e, 0x0b,
// 0x0d, 0x09), via the shared GF(2^8) multiply gmul.
func invMixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[c*4], state[c*4+1], state[c*4+2], state[c*4+3]
		state[c*4] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		state[c*4+1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		state[c*4+2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		state[c*4+3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

var _ crypto.BlockCipher = (*Engine)(nil)
