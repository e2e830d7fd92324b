package paddingoracle

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"testing"
)

// fakeOracle is a minimal in-process CBC padding oracle: for each connection
// it reads a key id (ignored; the test uses one fixed key), a target block,
// then repeated Q-batches, answering each Q-block with whether
// AES_ECB_Decrypt(target) XOR Q is valid PKCS#7.
func fakeOracle(t *testing.T, key []byte) (host string, port int, stop func()) {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveOne(conn, block)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, func() { ln.Close() }
}

func serveOne(conn net.Conn, block cipher.Block) {
	defer conn.Close()

	header := make([]byte, 2)
	if _, err := io.ReadFull(conn, header); err != nil {
		return
	}
	var target [16]byte
	if _, err := io.ReadFull(conn, target[:]); err != nil {
		return
	}
	var intermediate [16]byte
	block.Decrypt(intermediate[:], target[:])

	for {
		countHeader := make([]byte, 2)
		if _, err := io.ReadFull(conn, countHeader); err != nil {
			return
		}
		count := binary.LittleEndian.Uint16(countHeader)
		if count == 0 {
			return
		}

		buf := make([]byte, int(count)*16)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}

		resp := make([]byte, count)
		for i := 0; i < int(count); i++ {
			var candidate [16]byte
			for j := 0; j < 16; j++ {
				candidate[j] = intermediate[j] ^ buf[i*16+j]
			}
			if validPKCS7(candidate) {
				resp[i] = 1
			}
		}
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}

func validPKCS7(b [16]byte) bool {
	v := b[15]
	if v == 0 || v > 16 {
		return false
	}
	for i := 16 - int(v); i < 16; i++ {
		if b[i] != v {
			return false
		}
	}
	return true
}

// TestAttackRecoversKnownPlaintext encrypts a two-block PKCS#7-padded
// plaintext under a known key/IV with real AES-CBC, serves it from a fake
// oracle, and checks Attack recovers the exact original plaintext. Position
// 15 reports more than one valid guess only when byte 14 of plaintext XOR
// preceding block is 0x02 (the attack sends zero there); for this fixture
// that byte is 0x7f in block 1 and 0x2e in block 2, so disambiguation is
// not exercised here.
func TestAttackRecoversKnownPlaintext(t *testing.T) {
	key := []byte("0123456789abcdef")
	iv := []byte("fedcba9876543210")

	plaintext := append([]byte("YELLOW SUBMARINE"), padBlock(16)...)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	host, port, stop := fakeOracle(t, key)
	defer stop()

	got, err := Attack(host, port, 1, iv, ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("Attack recovered %q, want %q", got, plaintext)
	}
}

func padBlock(v byte) []byte {
	b := make([]byte, v)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestAttackRejectsBadIVLength(t *testing.T) {
	if _, err := Attack("127.0.0.1", 1, 1, make([]byte, 15), make([]byte, 16)); err == nil {
		t.Fatal("expected error for short iv")
	}
}

func TestAttackRejectsNonBlockCiphertextLength(t *testing.T) {
	if _, err := Attack("127.0.0.1", 1, 1, make([]byte, 16), make([]byte, 17)); err == nil {
		t.Fatal("expected error for non-multiple-of-16 ciphertext")
	}
}

func TestAttackRejectsEmptyCiphertext(t *testing.T) {
	if _, err := Attack("127.0.0.1", 1, 1, make([]byte, 16), nil); err == nil {
		t.Fatal("expected error for empty ciphertext")
	}
}
