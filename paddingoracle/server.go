package paddingoracle

import (
	"context"
	"net"

	"github.com/kauma/kauma-go/aes128"
	"github.com/kauma/kauma-go/crypto/modes"
	"github.com/kauma/kauma-go/crypto/paddings"
	"github.com/kauma/kauma-go/crypto/params"
	"github.com/kauma/kauma-go/errs"
)

// TestOracle is an in-process CBC padding-oracle server used to
// exercise Session/RecoverBlock in tests over a local listener.
// Per spec.md §4.6 it answers requests against one fixed target
// ciphertext block, decrypted through the teacher's CBCBlockCipher
// decrypt path with the candidate standing in for the previous
// ciphertext block (CBC's chaining IV).
type TestOracle struct {
	key     [16]byte
	target  [16]byte
	padding *paddings.PKCS7Padding
}

// NewTestOracle builds an oracle bound to one target ciphertext block
// under the given 16-byte key.
func NewTestOracle(key [16]byte, target [16]byte) *TestOracle {
	return &TestOracle{
		key:     key,
		target:  target,
		padding: paddings.NewPKCS7Padding(),
	}
}

// Validate reports whether CBC-decrypting the target block with
// candidate as the chaining IV yields validly PKCS#7-padded plaintext.
func (o *TestOracle) Validate(candidate [16]byte) bool {
	cbc := modes.NewCBCBlockCipher(aes128.NewEngine())
	cbc.Init(false, params.NewParametersWithIV(params.NewKeyParameter(o.key[:]), candidate[:]))

	plaintext := make([]byte, 16)
	cbc.ProcessBlock(o.target[:], 0, plaintext, 0)

	_, err := o.padding.PadCount(plaintext)
	return err == nil
}

// Serve accepts connections on l and answers padding-oracle requests
// against this oracle's bound target block until ctx is cancelled or l
// is closed.
func (o *TestOracle) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return errs.New(errs.TransportError, "paddingoracle: accept: %v", err)
			}
		}
		go o.handleConn(conn)
	}
}

func (o *TestOracle) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		req, err := readRequest(conn)
		if err != nil {
			return
		}
		valid := make([]bool, len(req.Candidates))
		for i, c := range req.Candidates {
			valid[i] = o.Validate(c)
		}
		if err := writeResponse(conn, valid); err != nil {
			return
		}
	}
}
