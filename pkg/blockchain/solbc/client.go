// pkg/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
	"github.com/jong319/easy-solana-go/pkg/blockchain/solbc/rpc"
)

// Client is a thin adapter over the solana-go RPC client. It normalizes
// errors (missing accounts become ErrAccountNotFound, everything else is
// wrapped with node and method context) and fixes the commitment level all
// reads run at.
type Client struct {
	rpc        *solanarpc.Client
	endpoint   string
	commitment solanarpc.CommitmentType
	logger     *zap.Logger
}

// ErrAccountNotFound is returned when the requested account does not exist
// on chain at the client's commitment.
var ErrAccountNotFound = errors.New("account not found")

// IsAccountNotFoundError reports whether err means the account is missing,
// regardless of which layer produced it.
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) || errors.Is(err, solanarpc.ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient builds a client for the given endpoint. Reads default to the
// Confirmed commitment.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:        solanarpc.New(rpcURL),
		endpoint:   rpcURL,
		commitment: solanarpc.CommitmentConfirmed,
		logger:     logger.Named("solbc-client"),
	}
}

// NewClientWithCommitment builds a client whose reads run at the given commitment.
func NewClientWithCommitment(rpcURL string, commitment solanarpc.CommitmentType, logger *zap.Logger) *Client {
	c := NewClient(rpcURL, logger)
	if commitment != "" {
		c.commitment = commitment
	}
	return c
}

// Endpoint returns the RPC URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Commitment returns the commitment level reads run at.
func (c *Client) Commitment() solanarpc.CommitmentType {
	return c.commitment
}

// GetRecentBlockhash returns the latest blockhash at the client's commitment.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, rpc.NewError(err, c.endpoint, "getLatestBlockhash")
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, rpc.NewError(rpc.ErrInvalidResponse, c.endpoint, "getLatestBlockhash")
	}
	return result.Value.Blockhash, nil
}

// IsBlockhashValid reports whether the node still accepts the blockhash.
func (c *Client) IsBlockhashValid(ctx context.Context, hash solana.Hash) (bool, error) {
	result, err := c.rpc.IsBlockhashValid(ctx, hash, c.commitment)
	if err != nil {
		c.logger.Debug("IsBlockhashValid error", zap.Error(err))
		return false, rpc.NewError(err, c.endpoint, "isBlockhashValid")
	}
	if result == nil {
		return false, rpc.NewError(rpc.ErrInvalidResponse, c.endpoint, "isBlockhashValid")
	}
	return result.Value, nil
}

// GetAccountInfo fetches a single account as base64 data. Missing accounts
// are reported as ErrAccountNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &solanarpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, rpc.NewError(err, c.endpoint, "getAccountInfo")
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result, nil
}

// GetMultipleAccounts fetches several accounts in one round trip. Missing
// accounts come back as nil entries, index-aligned with pubkeys.
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys ...solana.PublicKey) (*solanarpc.GetMultipleAccountsResult, error) {
	if len(pubkeys) == 0 {
		return &solanarpc.GetMultipleAccountsResult{}, nil
	}
	result, err := c.rpc.GetMultipleAccountsWithOpts(ctx, pubkeys, &solanarpc.GetMultipleAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		c.logger.Debug("GetMultipleAccounts error", zap.Error(err))
		return nil, rpc.NewError(err, c.endpoint, "getMultipleAccounts")
	}
	return result, nil
}

// GetBalance returns an account's lamport balance.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment solanarpc.CommitmentType) (uint64, error) {
	if commitment == "" {
		commitment = c.commitment
	}
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, rpc.NewError(err, c.endpoint, "getBalance")
	}
	if result == nil {
		return 0, rpc.NewError(rpc.ErrInvalidResponse, c.endpoint, "getBalance")
	}
	return result.Value, nil
}

// GetTokenAccountBalance returns the token balance of an SPL token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment solanarpc.CommitmentType) (*solanarpc.GetTokenAccountBalanceResult, error) {
	if commitment == "" {
		commitment = c.commitment
	}
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, commitment)
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, rpc.NewError(err, c.endpoint, "getTokenAccountBalance")
	}
	return result, nil
}

// GetTokenAccountsByOwner lists the owner's SPL token accounts as base64 data.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) (*solanarpc.GetTokenAccountsResult, error) {
	result, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&solanarpc.GetTokenAccountsConfig{
			ProgramId: solana.TokenProgramID.ToPointer(),
		},
		&solanarpc.GetTokenAccountsOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
	if err != nil {
		c.logger.Debug("GetTokenAccountsByOwner error",
			zap.String("owner", owner.String()),
			zap.Error(err))
		return nil, rpc.NewError(err, c.endpoint, "getTokenAccountsByOwner")
	}
	return result, nil
}

// SendTransaction submits a signed transaction with default options.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, rpc.NewError(err, c.endpoint, "sendTransaction")
	}
	return sig, nil
}

// SendTransactionWithOpts submits a signed transaction with explicit options.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, rpc.NewError(err, c.endpoint, "sendTransaction")
	}
	return sig, nil
}

// SimulateTransaction dry-runs the transaction against current state. The
// node is asked to skip signature verification and substitute a fresh
// blockhash, so unsigned or stale-hash transactions still simulate.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	result, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &solanarpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             c.commitment,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		c.logger.Error("SimulateTransaction error", zap.Error(err))
		return nil, rpc.NewError(err, c.endpoint, "simulateTransaction")
	}
	if result == nil || result.Value == nil {
		return nil, rpc.NewError(rpc.ErrInvalidResponse, c.endpoint, "simulateTransaction")
	}
	units := uint64(0)
	if result.Value.UnitsConsumed != nil {
		units = *result.Value.UnitsConsumed
	}
	return &blockchain.SimulationResult{
		Err:           result.Value.Err,
		Logs:          result.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// GetSignatureStatuses returns confirmation state for the given signatures.
// Transaction history is not searched, so signatures older than the node's
// recent-status cache come back nil.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, rpc.NewError(err, c.endpoint, "getSignatureStatuses")
	}
	return result, nil
}

// WaitForTransactionConfirmation polls signature status until the requested
// commitment is reached, the 30s deadline passes, or ctx is done. Finalized
// always satisfies the wait.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment solanarpc.CommitmentType) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(30 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return errors.New("confirmation timeout")
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.ConfirmationStatus == solanarpc.ConfirmationStatusFinalized {
				return nil
			}
			if commitment != solanarpc.CommitmentFinalized &&
				status.ConfirmationStatus == solanarpc.ConfirmationStatusConfirmed {
				return nil
			}
		}
	}
}

// Client implements the blockchain.Client contract.
var _ blockchain.Client = (*Client)(nil)
