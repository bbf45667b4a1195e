// internal/utils/binary/binary_test.go
package binary

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderScalars(t *testing.T) {
	data := []byte{
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // u64 = 1
		0xd2, 0x04, 0x00, 0x00, // u32 = 1234
		0x39, 0x30, // u16 = 12345
		0x07, // u8 = 7
		0x01, // bool = true
		0x00, // bool = false
	}
	r := NewReader(data)

	v64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v64)

	v32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), v32)

	v16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(12345), v16)

	v8, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v8)

	b, err := r.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.Bool()
	require.NoError(t, err)
	assert.False(t, b)

	assert.Equal(t, len(data), r.Offset())
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderOutOfRange(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})

	_, err := r.Uint64()
	assert.ErrorIs(t, err, ErrOutOfRange)

	// A failed read must not move the cursor.
	assert.Equal(t, 0, r.Offset())

	v, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	_, err = r.Uint8()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReaderPubKey(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	data := make([]byte, 40)
	copy(data[8:], key[:])

	r := NewReader(data)
	require.NoError(t, r.Skip(8))

	got, err := r.PubKey()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = r.PubKey()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReaderBorshString(t *testing.T) {
	data := []byte{0x05, 0x00, 0x00, 0x00, 'h', 'e', 'l', 'l', 'o', 0xFF}
	r := NewReader(data)

	s, err := r.BorshString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, 1, r.Remaining())
}

func TestReaderBorshStringTruncated(t *testing.T) {
	// Length prefix promises more bytes than the buffer holds.
	data := []byte{0x20, 0x00, 0x00, 0x00, 'h', 'i'}
	_, err := NewReader(data).BorshString()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReaderOptionPubKey(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("TSLvdd1pWpHVjahSpsvCXUbgwsL3JAcvokwaKt1eokM")

	present := make([]byte, 36)
	present[0] = 1
	copy(present[4:], key[:])

	got, err := NewReader(present).OptionPubKey()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, key, *got)

	// Tag 0 still consumes the 32 key bytes.
	absent := make([]byte, 36)
	copy(absent[4:], key[:])

	r := NewReader(absent)
	got, err = r.OptionPubKey()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 36, r.Offset())
}

func TestReaderBytesCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)

	out, err := r.Bytes(2)
	require.NoError(t, err)
	out[0] = 0xFF
	assert.Equal(t, byte(1), data[0])
}

func TestWriteHelpers(t *testing.T) {
	buf := make([]byte, 12)
	WriteUint64LittleEndian(258, buf, 0)
	WriteUint32LittleEndian(7, buf, 8)
	assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0x07, 0, 0, 0}, buf)

	appended := AppendUint64LittleEndian([]byte{0xAA}, 1)
	assert.Equal(t, []byte{0xAA, 0x01, 0, 0, 0, 0, 0, 0, 0}, appended)

	key := solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	keyBuf := make([]byte, 32)
	WritePubKey(key, keyBuf, 0)
	assert.Equal(t, key[:], keyBuf)
}

func TestSkipPastEnd(t *testing.T) {
	r := NewReader(make([]byte, 3))
	assert.True(t, errors.Is(r.Skip(4), ErrOutOfRange))
	require.NoError(t, r.Skip(3))
	assert.Equal(t, 0, r.Remaining())
}
