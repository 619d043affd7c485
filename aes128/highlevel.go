package aes128

import (
	"github.com/kauma/kauma-go/crypto/modes"
	"github.com/kauma/kauma-go/crypto/paddings"
	"github.com/kauma/kauma-go/crypto/params"
)

// EncryptCBC encrypts plaintext under AES-128-CBC with PKCS#7 padding.
// Generalizes the teacher's sm4.go EncryptCBC convenience wrapper
// (engine + CBCBlockCipher + PKCS7Padding + PaddedBufferedBlockCipher)
// from the SM4 engine onto this package's AES-128 engine.
func EncryptCBC(plaintext, key, iv []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, errInvalidKeySize(len(key))
	}
	if len(iv) != blockSize {
		return nil, errInvalidIVSize(len(iv))
	}

	engine := NewEngine()
	mode := modes.NewCBCBlockCipher(engine)
	padding := paddings.NewPKCS7Padding()
	cipher := modes.NewPaddedBufferedBlockCipher(mode, padding)

	cipher.Init(true, params.NewParametersWithIV(params.NewKeyParameter(key), iv))

	out := make([]byte, cipher.GetOutputSize(len(plaintext)))
	n, err := cipher.ProcessBytes(plaintext, 0, len(plaintext), out, 0)
	if err != nil {
		return nil, err
	}
	final, err := cipher.DoFinal(out, n)
	if err != nil {
		return nil, err
	}
	return out[:n+final], nil
}

// DecryptCBC decrypts ciphertext under AES-128-CBC, verifying and
// stripping PKCS#7 padding.
func DecryptCBC(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, errInvalidKeySize(len(key))
	}
	if len(iv) != blockSize {
		return nil, errInvalidIVSize(len(iv))
	}

	engine := NewEngine()
	mode := modes.NewCBCBlockCipher(engine)
	padding := paddings.NewPKCS7Padding()
	cipher := modes.NewPaddedBufferedBlockCipher(mode, padding)

	cipher.Init(false, params.NewParametersWithIV(params.NewKeyParameter(key), iv))

	out := make([]byte, cipher.GetOutputSize(len(ciphertext)))
	n, err := cipher.ProcessBytes(ciphertext, 0, len(ciphertext), out, 0)
	if err != nil {
		return nil, err
	}
	final, err := cipher.DoFinal(out, n)
	if err != nil {
		return nil, err
	}
	return out[:n+final], nil
}

type sizeError struct {
	what string
	got  int
}

func (e *sizeError) Error() string {
	return e.what
}

func errInvalidKeySize(got int) error {
	return &sizeError{what: "aes128: key must be 16 bytes", got: got}
}

func errInvalidIVSize(got int) error {
	return &sizeError{what: "aes128: IV must be 16 bytes", got: got}
}
