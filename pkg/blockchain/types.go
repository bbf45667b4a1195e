// pkg/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions controls how a transaction is submitted to the node.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// SimulationResult is the outcome of a transaction simulation. Err carries
// the node's program error verbatim when the simulated execution failed;
// Logs and UnitsConsumed are populated either way when the node returns them.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// Client is the transport contract the toolkit is written against. The
// production implementation lives in pkg/blockchain/solbc; tests substitute
// in-memory fakes.
type Client interface {
	// GetRecentBlockhash returns the latest blockhash at the client's commitment.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// IsBlockhashValid reports whether the node still accepts the blockhash.
	IsBlockhashValid(ctx context.Context, hash solana.Hash) (bool, error)
	// GetAccountInfo fetches a single account. A missing account is reported
	// with the solbc not-found sentinel.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// GetMultipleAccounts fetches several accounts in one round trip. Missing
	// accounts come back as nil entries, index-aligned with the request.
	GetMultipleAccounts(ctx context.Context, pubkeys ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
	// GetBalance returns an account's lamport balance.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// GetTokenAccountBalance returns the token balance of an SPL token account.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	// GetTokenAccountsByOwner lists the owner's SPL token accounts.
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) (*rpc.GetTokenAccountsResult, error)
	// SendTransaction submits a signed transaction with default options.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SendTransactionWithOpts submits a signed transaction with explicit options.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// SimulateTransaction dry-runs the transaction against current state.
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	// GetSignatureStatuses returns confirmation state for the given signatures.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	// WaitForTransactionConfirmation blocks until the signature reaches the
	// commitment or ctx is done.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}
