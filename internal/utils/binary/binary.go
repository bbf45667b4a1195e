// internal/utils/binary/binary.go
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrOutOfRange is returned when a read would run past the end of the buffer.
var ErrOutOfRange = errors.New("binary: read out of range")

// Reader walks a byte slice from front to back, validating every read
// against the remaining length. Reads never panic on truncated data.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a bounds-checked reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset reports the current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Skip advances the cursor n bytes without reading them.
func (r *Reader) Skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// Uint64 reads a little-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off : r.off+8])
	r.off += 8
	return v, nil
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4
	return v, nil
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off : r.off+2])
	r.off += 2
	return v, nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// Bool reads a single byte as a boolean (0 = false, non-zero = true).
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// PubKey reads a 32-byte Solana public key.
func (r *Reader) PubKey() (solana.PublicKey, error) {
	if err := r.require(32); err != nil {
		return solana.PublicKey{}, err
	}
	var key solana.PublicKey
	copy(key[:], r.data[r.off:r.off+32])
	r.off += 32
	return key, nil
}

// Bytes reads n raw bytes as a copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+n])
	r.off += n
	return out, nil
}

// BorshString reads a borsh-encoded string: u32 length prefix then bytes.
func (r *Reader) BorshString() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptionPubKey reads an SPL COption<Pubkey>: u32 tag then 32 key bytes.
// The key bytes are present in the account layout even when the tag is 0.
func (r *Reader) OptionPubKey() (*solana.PublicKey, error) {
	tag, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	key, err := r.PubKey()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	return &key, nil
}

func (r *Reader) require(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrOutOfRange, n, r.off, len(r.data)-r.off)
	}
	return nil
}

// WriteUint64LittleEndian writes a uint64 to a byte slice in little-endian format.
func WriteUint64LittleEndian(val uint64, data []byte, offset int) {
	binary.LittleEndian.PutUint64(data[offset:offset+8], val)
}

// WriteUint32LittleEndian writes a uint32 to a byte slice in little-endian format.
func WriteUint32LittleEndian(val uint32, data []byte, offset int) {
	binary.LittleEndian.PutUint32(data[offset:offset+4], val)
}

// AppendUint64LittleEndian appends a little-endian uint64 to data.
func AppendUint64LittleEndian(data []byte, val uint64) []byte {
	return binary.LittleEndian.AppendUint64(data, val)
}

// WritePubKey writes a Solana public key to a byte slice.
func WritePubKey(key solana.PublicKey, data []byte, offset int) {
	copy(data[offset:offset+32], key[:])
}
