// pkg/blockchain/solbc/rpc/errors_test.go
package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := NewError(errors.New("connection refused"), "https://node.example.com", "getAccountInfo")
	assert.Equal(t, "RPC error [getAccountInfo] at https://node.example.com: connection refused", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewError(underlying, "https://node.example.com", "getBalance")

	assert.ErrorIs(t, err, underlying)

	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "https://node.example.com", rpcErr.NodeURL)
	assert.Equal(t, "getBalance", rpcErr.Method)
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrRateLimit, want: true},
		{name: "wrapped sentinel", err: fmt.Errorf("request failed: %w", ErrRateLimit), want: true},
		{name: "rpc error around sentinel", err: NewError(ErrRateLimit, "https://node.example.com", "getBalance"), want: true},
		{name: "status code in message", err: errors.New("server responded with 429"), want: true},
		{name: "throttle text in message", err: errors.New("Too Many Requests"), want: true},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}
