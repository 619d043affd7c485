// Package paddingoracle implements the byte-by-byte CBC padding-oracle
// attack (client side) and an in-process test oracle (server side)
// speaking a minimal length-prefixed binary protocol over any
// io.ReadWriter.
//
// Wire protocol, one session per target ciphertext block:
//
//	request:  Q [16]byte, count uint16 (big-endian, <= 256), then
//	          count * 16 bytes of candidate blocks (each Q with its
//	          currently-targeted byte substituted)
//	response: count bytes, 1 if the corresponding candidate produced
//	          valid PKCS#7 padding under decryption, else 0
package paddingoracle

import (
	"encoding/binary"
	"io"

	"github.com/kauma/kauma-go/errs"
)

const (
	blockSize    = 16
	maxCandidates = 256
)

// request is one batch of padding-oracle probes against a fixed target
// ciphertext block: Q is the shared template, candidates are full
// 16-byte blocks derived from Q by substituting the byte currently
// under attack.
type request struct {
	Q          [blockSize]byte
	Candidates [][blockSize]byte
}

func writeRequest(w io.Writer, req request) error {
	if len(req.Candidates) > maxCandidates {
		return errs.New(errs.OracleProtocolError, "paddingoracle: too many candidates: %d > %d", len(req.Candidates), maxCandidates)
	}

	buf := make([]byte, 0, blockSize+2+len(req.Candidates)*blockSize)
	buf = append(buf, req.Q[:]...)
	var countBytes [2]byte
	binary.BigEndian.PutUint16(countBytes[:], uint16(len(req.Candidates)))
	buf = append(buf, countBytes[:]...)
	for _, c := range req.Candidates {
		buf = append(buf, c[:]...)
	}

	if _, err := w.Write(buf); err != nil {
		return errs.New(errs.TransportError, "paddingoracle: write request: %v", err)
	}
	return nil
}

func readRequest(r io.Reader) (request, error) {
	var req request

	if _, err := io.ReadFull(r, req.Q[:]); err != nil {
		return request{}, errs.New(errs.TransportError, "paddingoracle: read Q: %v", err)
	}

	var countBytes [2]byte
	if _, err := io.ReadFull(r, countBytes[:]); err != nil {
		return request{}, errs.New(errs.TransportError, "paddingoracle: read count: %v", err)
	}
	count := binary.BigEndian.Uint16(countBytes[:])
	if int(count) > maxCandidates {
		return request{}, errs.New(errs.OracleProtocolError, "paddingoracle: count %d exceeds maximum %d", count, maxCandidates)
	}

	req.Candidates = make([][blockSize]byte, count)
	for i := range req.Candidates {
		if _, err := io.ReadFull(r, req.Candidates[i][:]); err != nil {
			return request{}, errs.New(errs.TransportError, "paddingoracle: read candidate %d: %v", i, err)
		}
	}

	return req, nil
}

func writeResponse(w io.Writer, valid []bool) error {
	buf := make([]byte, len(valid))
	for i, v := range valid {
		if v {
			buf[i] = 1
		}
	}
	if _, err := w.Write(buf); err != nil {
		return errs.New(errs.TransportError, "paddingoracle: write response: %v", err)
	}
	return nil
}

func readResponse(r io.Reader, count int) ([]bool, error) {
	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errs.New(errs.TransportError, "paddingoracle: read response: %v", err)
	}
	valid := make([]bool, count)
	for i, b := range buf {
		if b > 1 {
			return nil, errs.New(errs.OracleProtocolError, "paddingoracle: response byte %d is %d, want 0 or 1", i, b)
		}
		valid[i] = b != 0
	}
	return valid, nil
}
