// pkg/reader/reader.go
package reader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// Reader turns raw RPC account responses into classified, decoded values.
// All operations are result-bearing: malformed on-chain data is reported as
// an error, never panicked on.
type Reader struct {
	client blockchain.Client
	logger *zap.Logger
}

// NewReader builds a Reader on top of a blockchain client.
func NewReader(client blockchain.Client, logger *zap.Logger) *Reader {
	return &Reader{
		client: client,
		logger: logger.Named("account-reader"),
	}
}

// GetAccount fetches a single account by address and classifies it. A
// missing account surfaces the client's not-found sentinel unchanged.
func (r *Reader) GetAccount(ctx context.Context, address string) (*Account, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, address, err)
	}

	info, err := r.client.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	account := buildAccount(pubkey, info.Value)
	r.logger.Debug("fetched account",
		zap.String("address", address),
		zap.String("type", string(account.Type)),
		zap.Uint64("lamports", account.Lamports))
	return account, nil
}

// GetAccounts fetches several accounts in one round trip. Accounts that do
// not exist are returned in missing rather than failing the whole batch.
func (r *Reader) GetAccounts(ctx context.Context, addresses []string) (accounts []Account, missing []solana.PublicKey, err error) {
	pubkeys := make([]solana.PublicKey, 0, len(addresses))
	for _, address := range addresses {
		pubkey, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, address, err)
		}
		pubkeys = append(pubkeys, pubkey)
	}
	if len(pubkeys) == 0 {
		return nil, nil, nil
	}

	result, err := r.client.GetMultipleAccounts(ctx, pubkeys...)
	if err != nil {
		return nil, nil, err
	}

	accounts = make([]Account, 0, len(pubkeys))
	for i, value := range result.Value {
		if value == nil {
			missing = append(missing, pubkeys[i])
			continue
		}
		accounts = append(accounts, *buildAccount(pubkeys[i], value))
	}

	if len(missing) > 0 {
		r.logger.Debug("some accounts missing from batch",
			zap.Int("requested", len(pubkeys)),
			zap.Int("missing", len(missing)))
	}
	return accounts, missing, nil
}

// GetSolBalance returns an address's balance in lamports and in SOL.
func (r *Reader) GetSolBalance(ctx context.Context, address string) (uint64, float64, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, address, err)
	}

	lamports, err := r.client.GetBalance(ctx, pubkey, "")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}
	return lamports, float64(lamports) / float64(solana.LAMPORTS_PER_SOL), nil
}

// GetTokenBalance returns the owner's balance of mint in token base units.
// The owner's associated token account is derived, then queried at Processed
// commitment with a Confirmed fallback, trading a little consistency for
// latency on fresh accounts.
func (r *Reader) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive associated token account: %w", err)
	}

	result, err := r.client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentProcessed)
	if err != nil {
		r.logger.Debug("Failed to get balance with Processed commitment, trying Confirmed",
			zap.String("mint", mint.String()),
			zap.String("ata", ata.String()),
			zap.Error(err))
		result, err = r.client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}

	if result == nil || result.Value == nil || result.Value.Amount == "" {
		return 0, ErrNoTokenBalance
	}

	balance, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance %q: %w", result.Value.Amount, err)
	}
	return balance, nil
}

// GetPortfolio snapshots a wallet: SOL balance and all SPL token accounts,
// fetched in parallel.
func (r *Reader) GetPortfolio(ctx context.Context, owner solana.PublicKey) (*Portfolio, error) {
	portfolio := &Portfolio{Owner: owner}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lamports, err := r.client.GetBalance(gctx, owner, "")
		if err != nil {
			return fmt.Errorf("failed to get SOL balance: %w", err)
		}
		portfolio.Lamports = lamports
		portfolio.SolBalance = float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
		return nil
	})
	g.Go(func() error {
		tokens, err := r.GetTokenAccountsByOwner(gctx, owner)
		if err != nil {
			return err
		}
		portfolio.Tokens = tokens
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func buildAccount(pubkey solana.PublicKey, value *rpc.Account) *Account {
	account := &Account{
		Pubkey:     pubkey,
		Lamports:   value.Lamports,
		SolBalance: float64(value.Lamports) / float64(solana.LAMPORTS_PER_SOL),
		Owner:      value.Owner,
		Executable: value.Executable,
	}
	if value.RentEpoch != nil {
		account.RentEpoch = value.RentEpoch.Uint64()
	}
	if value.Data != nil {
		account.Data = value.Data.GetBinary()
	}
	account.Type = classifyAccount(account.Owner, account.Executable, account.Data)
	return account
}

// classifyAccount applies the same ordering the explorer does: programs
// first, then system-owned wallets, then token-program accounts by size.
func classifyAccount(owner solana.PublicKey, executable bool, data []byte) AccountType {
	switch {
	case executable:
		return AccountTypeProgram
	case owner.Equals(solana.SystemProgramID):
		return AccountTypeWallet
	case owner.Equals(solana.TokenProgramID):
		switch len(data) {
		case tokenAccountDataSize:
			return AccountTypeTokenAccount
		case mintAccountDataSize:
			return AccountTypeMint
		}
		return AccountTypeUnknown
	default:
		return AccountTypeUnknown
	}
}
