package paddingoracle

import (
	"context"
	"net"
	"time"

	"github.com/kauma/kauma-go/errs"
)

// DefaultTimeout is the per-request timeout used when none is supplied,
// matching spec.md §5's "configurable per-request timeout (default
// 10 s)".
const DefaultTimeout = 10 * time.Second

// Session is one padding-oracle attack connection, scoped to a single
// target ciphertext block per spec.md §5's "scoped acquisition, opened
// per target block" resource discipline.
type Session struct {
	conn    net.Conn
	timeout time.Duration
}

// Dial opens a new session against the oracle server at addr. The
// caller must Close the session when done attacking a block.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.New(errs.TransportError, "paddingoracle: dial %s: %v", addr, err)
	}
	return &Session{conn: conn, timeout: timeout}, nil
}

// Close closes the underlying transport.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) roundTrip(req request) ([]bool, error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, errs.New(errs.TransportError, "paddingoracle: set deadline: %v", err)
	}
	if err := writeRequest(s.conn, req); err != nil {
		return nil, err
	}
	return readResponse(s.conn, len(req.Candidates))
}

// RecoverBlock recovers the plaintext of this session's target
// ciphertext block (bound to the session at the server side; one
// session attacks exactly one target block) given prevBlock, the real
// previous ciphertext block or the IV for the first block.
func (s *Session) RecoverBlock(prevBlock [blockSize]byte) ([blockSize]byte, error) {
	var intermediate [blockSize]byte

	for p := blockSize - 1; p >= 0; p-- {
		padValue := byte(blockSize - p)

		template := buildTemplate(intermediate, padValue, p)

		candidates := make([][blockSize]byte, maxCandidates)
		for guess := 0; guess < maxCandidates; guess++ {
			c := template
			c[p] = byte(guess)
			candidates[guess] = c
		}

		valid, err := s.roundTrip(request{Q: template, Candidates: candidates})
		if err != nil {
			return [blockSize]byte{}, err
		}

		winners := validIndices(valid)
		if len(winners) == 0 {
			return [blockSize]byte{}, errs.New(errs.OracleProtocolError, "paddingoracle: no candidate produced valid padding at byte %d", p)
		}

		winner := winners[0]
		if p == blockSize-1 && len(winners) > 1 {
			winner, err = disambiguateLastByte(s, template, winners, p)
			if err != nil {
				return [blockSize]byte{}, err
			}
		}

		intermediate[p] = byte(winner) ^ padValue
	}

	var plaintext [blockSize]byte
	for i := range plaintext {
		plaintext[i] = intermediate[i] ^ prevBlock[i]
	}
	return plaintext, nil
}

// buildTemplate returns a block whose bytes p+1..15 are set so that,
// once XORed with the (still unknown) intermediate value at those
// positions, they produce padValue — i.e. template[i] = intermediate[i]
// XOR padValue for i > p. Byte p and below are left zero; the caller
// fills byte p per-candidate.
func buildTemplate(intermediate [blockSize]byte, padValue byte, p int) [blockSize]byte {
	var template [blockSize]byte
	for i := p + 1; i < blockSize; i++ {
		template[i] = intermediate[i] ^ padValue
	}
	return template
}

func validIndices(valid []bool) []int {
	var out []int
	for i, v := range valid {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// disambiguateLastByte resolves the case where more than one candidate
// produces valid padding when recovering the very last plaintext byte
// (p = 15): a false positive occurs when the guessed byte makes the
// plaintext end in 0x02 0x02 by coincidence. Flipping the byte at p-1
// breaks that coincidence for every candidate except the true one,
// which remains valid because it genuinely ends in 0x01.
func disambiguateLastByte(s *Session, template [blockSize]byte, winners []int, p int) (int, error) {
	flipped := template
	flipped[p-1] ^= 0xFF

	candidates := make([][blockSize]byte, len(winners))
	for i, w := range winners {
		c := flipped
		c[p] = byte(w)
		candidates[i] = c
	}

	valid, err := s.roundTrip(request{Q: flipped, Candidates: candidates})
	if err != nil {
		return 0, err
	}
	for i, v := range valid {
		if v {
			return winners[i], nil
		}
	}
	return 0, errs.New(errs.OracleProtocolError, "paddingoracle: disambiguation round eliminated every candidate")
}
