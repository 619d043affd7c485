package paddingoracle

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kauma/kauma-go/aes128"
	"github.com/kauma/kauma-go/crypto/paddings"
	"github.com/kauma/kauma-go/crypto/params"
)

// buildCBCBlock returns the ciphertext block that results from
// CBC-encrypting plaintext (already padded to exactly 16 bytes) under
// key with prevBlock as the chaining value.
func buildCBCBlock(key, prevBlock, plaintext [16]byte) [16]byte {
	var xored [16]byte
	for i := range xored {
		xored[i] = plaintext[i] ^ prevBlock[i]
	}
	return aes128.EncryptBlock(key, xored)
}

func startOracle(t *testing.T, key, target [16]byte) (addr string, stop func()) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	oracle := NewTestOracle(key, target)
	ctx, cancel := context.WithCancel(context.Background())
	go oracle.Serve(ctx, l)
	return l.Addr().String(), func() { cancel(); l.Close() }
}

func TestRecoverBlockSinglePadByte(t *testing.T) {
	var key [16]byte
	for i := range key {
		key[i] = byte(i + 1)
	}
	var iv [16]byte
	for i := range iv {
		iv[i] = byte(0xF0 + i)
	}

	var plaintext [16]byte
	plaintext[15] = 0x01 // single pad byte, rest arbitrary but here zero

	target := buildCBCBlock(key, iv, plaintext)

	addr, stop := startOracle(t, key, target)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := Dial(ctx, addr, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer session.Close()

	got, err := session.RecoverBlock(iv)
	if err != nil {
		t.Fatalf("RecoverBlock: %v", err)
	}
	if got != plaintext {
		t.Fatalf("recovered plaintext = %x, want %x", got, plaintext)
	}
}

func TestRecoverBlockFullPadding(t *testing.T) {
	var key [16]byte
	for i := range key {
		key[i] = byte(i * 11)
	}
	var iv [16]byte
	for i := range iv {
		iv[i] = byte(i * 3)
	}

	var plaintext [16]byte
	for i := range plaintext {
		plaintext[i] = 16 // full block of padding, value 0x10
	}

	target := buildCBCBlock(key, iv, plaintext)
	addr, stop := startOracle(t, key, target)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := Dial(ctx, addr, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer session.Close()

	got, err := session.RecoverBlock(iv)
	if err != nil {
		t.Fatalf("RecoverBlock: %v", err)
	}
	if got != plaintext {
		t.Fatalf("recovered plaintext = %x, want %x", got, plaintext)
	}
}

func TestRecoverBlockArbitraryPlaintext(t *testing.T) {
	var key [16]byte
	for i := range key {
		key[i] = byte(i*17 + 1)
	}
	var iv [16]byte
	for i := range iv {
		iv[i] = byte(i*5 + 2)
	}

	plaintext := [16]byte{'A', 'B', 'C', 0xFF, 0x00, 0x7F, 9, 9, 9, 9, 1, 2, 3, 4, 5, 0x03}
	// make the padding valid: last 3 bytes must equal 0x03 for this to
	// decode as padded data; overwrite to ensure a consistent pad.
	plaintext[13], plaintext[14], plaintext[15] = 0x03, 0x03, 0x03

	target := buildCBCBlock(key, iv, plaintext)
	addr, stop := startOracle(t, key, target)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := Dial(ctx, addr, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer session.Close()

	got, err := session.RecoverBlock(iv)
	if err != nil {
		t.Fatalf("RecoverBlock: %v", err)
	}
	if got != plaintext {
		t.Fatalf("recovered plaintext = %x, want %x", got, plaintext)
	}
}

func TestDialFailsOnUnreachableAddress(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := Dial(ctx, "127.0.0.1:1", 100*time.Millisecond); err == nil {
		t.Fatalf("expected TransportError dialing an unreachable address")
	}
}

func TestOracleValidateAgreesWithPKCS7PadCount(t *testing.T) {
	var key [16]byte
	var target [16]byte
	oracle := NewTestOracle(key, target)

	// Independently CBC-decrypt the same (key, target) under
	// candidate-as-IV and check PadCount directly, to confirm
	// Validate's verdict without reaching into the oracle's internals.
	var candidate [16]byte
	engine := aes128.NewEngine()
	engine.Init(false, params.NewKeyParameter(key[:]))
	decrypted := make([]byte, 16)
	engine.ProcessBlock(target[:], 0, decrypted, 0)
	plaintext := make([]byte, 16)
	for i := range plaintext {
		plaintext[i] = decrypted[i] ^ candidate[i]
	}

	padding := paddings.NewPKCS7Padding()
	_, padErr := padding.PadCount(plaintext)
	want := padErr == nil

	if got := oracle.Validate(candidate); got != want {
		t.Fatalf("Validate = %v, want %v (PadCount err = %v)", got, want, padErr)
	}
}
