// pkg/transaction/types.go
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrEmptyTransaction is returned when Build is called with no instructions.
	ErrEmptyTransaction = errors.New("transaction has no instructions")

	// ErrInvalidAmount is returned when an operation receives a zero,
	// negative or non-finite amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAddress is returned when an address string does not parse.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrStaleBlockhash is returned when a fresh blockhash cannot be
	// obtained at build time, or the node rejects the one a transaction
	// carries.
	ErrStaleBlockhash = errors.New("blockhash is stale or unavailable")

	// ErrConfirmationTimeout is returned when a submitted transaction does
	// not reach the requested commitment within the configured window.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")

	// ErrTransactionFailed is the sentinel under every FailedError.
	ErrTransactionFailed = errors.New("transaction failed on chain")

	// ErrNonEmptyTokenAccount is returned when CloseTokenAccounts meets a
	// balance it was not told to burn.
	ErrNonEmptyTokenAccount = errors.New("token account has a balance")

	// Validation failures.
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// FailedError reports a transaction that landed on chain but executed with
// an error. TxError is the node's error rendered as text.
type FailedError struct {
	Signature solana.Signature
	TxError   string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Signature.String(), e.TxError)
}

func (e *FailedError) Unwrap() error {
	return ErrTransactionFailed
}

// Config controls submission and confirmation behavior. Submission is never
// retried; the poll schedule only governs how confirmation is awaited.
type Config struct {
	// SkipPreflight submits without the node's preflight simulation.
	SkipPreflight bool
	// PreflightCommitment is the commitment preflight simulates against.
	PreflightCommitment rpc.CommitmentType
	// Commitment is the confirmation depth SendAndConfirm waits for.
	// Finalized always satisfies the wait regardless of this value.
	Commitment rpc.CommitmentType
	// ConfirmationTimeout bounds the whole confirmation wait.
	ConfirmationTimeout time.Duration
	// PollInterval is the initial delay between status polls; subsequent
	// polls back off exponentially.
	PollInterval time.Duration
	// MinConfirmations is the vote depth accepted as confirmed when the
	// node reports a confirmation count instead of a status.
	MinConfirmations uint8
}

// DefaultConfig waits up to 30s for Confirmed, polling from 500ms.
func DefaultConfig() Config {
	return Config{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
		Commitment:          rpc.CommitmentConfirmed,
		ConfirmationTimeout: 30 * time.Second,
		PollInterval:        500 * time.Millisecond,
		MinConfirmations:    1,
	}
}

// Transaction lifecycle states as reported by Status.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFinalized = "finalized"
	StatusFailed    = "failed"
)

// Status is a point-in-time view of a submitted transaction.
type Status struct {
	Signature     string
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
