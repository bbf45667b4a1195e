// pkg/reader/token_accounts.go
package reader

import (
	"context"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/internal/utils/binary"
)

// DeriveAssociatedTokenAccount returns the canonical token account address
// for an (owner, mint) pair. Deterministic; no RPC involved.
func DeriveAssociatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return ata, nil
}

// DecodeTokenAccount parses the fixed-layout prefix of an SPL token account:
// mint (32), owner (32), amount (u64 LE). Shorter buffers fail without
// touching the data.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < tokenAccountMinSize {
		return nil, newDecodeError("", "token account",
			fmt.Errorf("%w: %d bytes, want at least %d", binary.ErrOutOfRange, len(data), tokenAccountMinSize))
	}

	rd := binary.NewReader(data)
	account := &TokenAccount{}
	var err error
	if account.Mint, err = rd.PubKey(); err != nil {
		return nil, newDecodeError("", "mint", err)
	}
	if account.Owner, err = rd.PubKey(); err != nil {
		return nil, newDecodeError("", "owner", err)
	}
	if account.Amount, err = rd.Uint64(); err != nil {
		return nil, newDecodeError("", "amount", err)
	}
	return account, nil
}

// DecodeMint parses an SPL mint account: mint authority option, supply,
// decimals, initialized flag and, when present, the freeze authority.
func DecodeMint(data []byte) (*MintAccount, error) {
	if len(data) < mintAccountMinSize {
		return nil, newDecodeError("", "mint account",
			fmt.Errorf("%w: %d bytes, want at least %d", binary.ErrOutOfRange, len(data), mintAccountMinSize))
	}

	rd := binary.NewReader(data)
	mint := &MintAccount{}
	var err error
	if mint.MintAuthority, err = rd.OptionPubKey(); err != nil {
		return nil, newDecodeError("", "mint authority", err)
	}
	if mint.Supply, err = rd.Uint64(); err != nil {
		return nil, newDecodeError("", "supply", err)
	}
	if mint.Decimals, err = rd.Uint8(); err != nil {
		return nil, newDecodeError("", "decimals", err)
	}
	if mint.Initialized, err = rd.Bool(); err != nil {
		return nil, newDecodeError("", "initialized", err)
	}
	if rd.Remaining() >= 36 {
		if mint.FreezeAuthority, err = rd.OptionPubKey(); err != nil {
			return nil, newDecodeError("", "freeze authority", err)
		}
	}
	return mint, nil
}

// GetTokenAccountsByOwner lists every SPL token account the owner holds,
// enriched with each mint's supply, decimals and authority through one batch
// read. Token accounts whose data fails to decode are skipped with a warning
// rather than failing the portfolio.
func (r *Reader) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error) {
	result, err := r.client.GetTokenAccountsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts of %s: %w", owner.String(), err)
	}
	if result == nil || len(result.Value) == 0 {
		return nil, nil
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for _, raw := range result.Value {
		if raw == nil || raw.Account.Data == nil {
			continue
		}
		decoded, err := DecodeTokenAccount(raw.Account.Data.GetBinary())
		if err != nil {
			r.logger.Warn("skipping undecodable token account",
				zap.String("pubkey", raw.Pubkey.String()),
				zap.Error(err))
			continue
		}
		decoded.Pubkey = raw.Pubkey
		accounts = append(accounts, *decoded)
	}

	if err := r.enrichWithMints(ctx, accounts); err != nil {
		// Balances are still usable without mint metadata.
		r.logger.Debug("mint enrichment failed", zap.Error(err))
	}
	return accounts, nil
}

// enrichWithMints resolves each distinct mint once and copies supply,
// decimals and authority onto the token accounts.
func (r *Reader) enrichWithMints(ctx context.Context, accounts []TokenAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	seen := make(map[solana.PublicKey]struct{}, len(accounts))
	mints := make([]solana.PublicKey, 0, len(accounts))
	for i := range accounts {
		if _, ok := seen[accounts[i].Mint]; ok {
			continue
		}
		seen[accounts[i].Mint] = struct{}{}
		mints = append(mints, accounts[i].Mint)
	}

	result, err := r.client.GetMultipleAccounts(ctx, mints...)
	if err != nil {
		return err
	}

	decoded := make(map[solana.PublicKey]*MintAccount, len(mints))
	for i, value := range result.Value {
		if value == nil || value.Data == nil {
			continue
		}
		mint, err := DecodeMint(value.Data.GetBinary())
		if err != nil {
			r.logger.Debug("skipping undecodable mint",
				zap.String("mint", mints[i].String()),
				zap.Error(err))
			continue
		}
		decoded[mints[i]] = mint
	}

	for i := range accounts {
		mint, ok := decoded[accounts[i].Mint]
		if !ok {
			continue
		}
		accounts[i].Decimals = mint.Decimals
		accounts[i].MintSupply = mint.Supply
		accounts[i].MintAuthority = mint.MintAuthority
		accounts[i].UIAmount = float64(accounts[i].Amount) / math.Pow10(int(mint.Decimals))
	}
	return nil
}
