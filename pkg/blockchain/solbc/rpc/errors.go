// pkg/blockchain/solbc/rpc/errors.go
package rpc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimit is reported when the node rejects a request for throttling reasons.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrInvalidResponse is reported when the node answers without the expected payload.
	ErrInvalidResponse = errors.New("invalid RPC response")
)

// Error carries the node URL and RPC method alongside the underlying failure,
// so that a toolkit user running against several endpoints can tell them apart.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with node and method context.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsRateLimited reports whether err looks like node-side throttling. Public
// endpoints answer 429 with varying bodies, so this also sniffs the message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimit) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
