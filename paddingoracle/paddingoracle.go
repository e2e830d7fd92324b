// Package paddingoracle implements the CBC padding-oracle attack: for each
// ciphertext block it opens a fresh, length-framed TCP connection to a
// server that leaks only whether a candidate block decrypts to valid PKCS#7
// padding, and recovers the plaintext byte-by-byte, right to left.
//
// Protocol errors are wrapped with github.com/pkg/errors rather than plain
// fmt.Errorf: unlike every other failure in this toolkit, a padding-oracle
// session is gone the moment the connection drops, so the stack trace
// captured at the point of failure is the only record of where in the
// 16-batch exchange things went wrong.
package paddingoracle

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/kauma/kauma/kerrors"
)

const connectTimeout = 5 * time.Second

// Attack recovers the plaintext of one or more CBC-encrypted blocks given
// the known iv and the server-side key identified by keyID. len(ciphertext)
// must be a multiple of 16.
func Attack(host string, port int, keyID uint16, iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != 16 {
		return nil, kerrors.Newf(kerrors.InputFormat, "iv must be 16 bytes, got %d", len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%16 != 0 {
		return nil, kerrors.Newf(kerrors.InputFormat, "ciphertext length must be a positive multiple of 16, got %d", len(ciphertext))
	}

	var prev [16]byte
	copy(prev[:], iv)

	plaintext := make([]byte, 0, len(ciphertext))
	for off := 0; off < len(ciphertext); off += 16 {
		var target [16]byte
		copy(target[:], ciphertext[off:off+16])

		block, err := attackBlock(host, port, keyID, prev, target)
		if err != nil {
			return nil, errors.Wrapf(err, "recovering block %d", off/16)
		}
		plaintext = append(plaintext, block[:]...)
		prev = target
	}
	return plaintext, nil
}

func attackBlock(host string, port int, keyID uint16, prevBlock, targetBlock [16]byte) ([16]byte, error) {
	var plain [16]byte

	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return plain, errors.Wrap(err, "dial padding oracle")
	}
	defer conn.Close()
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	header := make([]byte, 2)
	binary.LittleEndian.PutUint16(header, keyID)
	if _, err := conn.Write(header); err != nil {
		return plain, errors.Wrap(err, "send key id")
	}
	if _, err := conn.Write(targetBlock[:]); err != nil {
		return plain, errors.Wrap(err, "send target block")
	}

	for i := 15; i >= 0; i-- {
		v := byte(16 - i)

		candidates := make([][16]byte, 256)
		for g := 0; g < 256; g++ {
			for j := i + 1; j < 16; j++ {
				candidates[g][j] = plain[j] ^ v ^ prevBlock[j]
			}
			candidates[g][i] = byte(g) ^ v ^ prevBlock[i]
		}

		results, err := sendBatch(conn, candidates)
		if err != nil {
			return plain, errors.Wrapf(err, "byte %d: batch guess", i)
		}

		var valid []int
		for g, r := range results {
			if r == 1 {
				valid = append(valid, g)
			}
		}

		var accepted int
		switch len(valid) {
		case 0:
			return plain, kerrors.Newf(kerrors.Protocol, "byte %d: no candidate reported valid padding", i)
		case 1:
			accepted = valid[0]
		default:
			accepted, err = disambiguate(conn, candidates, valid, i)
			if err != nil {
				return plain, errors.Wrapf(err, "byte %d: disambiguation", i)
			}
		}

		plain[i] = byte(accepted)
	}

	if _, err := sendBatch(conn, nil); err != nil {
		return plain, errors.Wrap(err, "send termination")
	}
	return plain, nil
}

// disambiguate resolves a multi-candidate round (possible at byte index 15:
// the Q-blocks carry zero before index i, so the oracle sees the raw block
// decryption there, i.e. plaintext XOR preceding block, and if that already
// ends in valid padding such as 0x02 0x02 a second guess also reports
// valid) by resending each candidate with one byte flipped: the true guess
// still reports valid padding, the false ones do not. The flipped index is i-1, or 1 when i is 0, exactly as the attack's
// first implementation pinned it.
func disambiguate(conn net.Conn, candidates [][16]byte, valid []int, i int) (int, error) {
	flipIdx := i - 1
	if i == 0 {
		flipIdx = 1
	}
	for _, g := range valid {
		mod := candidates[g]
		mod[flipIdx] ^= 0xFF
		resp, err := sendBatch(conn, [][16]byte{mod})
		if err != nil {
			return 0, err
		}
		if resp[0] == 1 {
			return g, nil
		}
	}
	return 0, kerrors.New(kerrors.Protocol, "no candidate survived disambiguation")
}

// sendBatch sends q_count followed by q_count 16-byte Q-blocks and reads
// back q_count response bytes (1 = valid padding). A nil/empty blocks slice
// sends q_count=0, the protocol's termination signal.
func sendBatch(conn net.Conn, blocks [][16]byte) ([]byte, error) {
	count := len(blocks)
	header := make([]byte, 2)
	binary.LittleEndian.PutUint16(header, uint16(count))
	if _, err := conn.Write(header); err != nil {
		return nil, errors.Wrap(err, "send q_count")
	}
	if count > 0 {
		buf := make([]byte, 0, count*16)
		for _, b := range blocks {
			buf = append(buf, b[:]...)
		}
		if _, err := conn.Write(buf); err != nil {
			return nil, errors.Wrap(err, "send q blocks")
		}
	}
	resp := make([]byte, count)
	if count > 0 {
		if _, err := io.ReadFull(conn, resp); err != nil {
			return nil, errors.Wrap(err, "read oracle response")
		}
	}
	return resp, nil
}
