// pkg/reader/errors.go
package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when an address string does not parse as
	// a Solana public key.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNoTokenBalance is returned when a token account exists but the node
	// reports no balance for it.
	ErrNoTokenBalance = errors.New("no token balance found")
)

// DecodeError reports where account data failed to parse. Address may be
// empty when decoding detached data.
type DecodeError struct {
	Address string
	Field   string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s of %s: %v", e.Field, e.Address, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(address, field string, err error) *DecodeError {
	return &DecodeError{Address: address, Field: field, Err: err}
}
