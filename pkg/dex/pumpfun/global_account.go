// pkg/dex/pumpfun/global_account.go
package pumpfun

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// globalAccountDataSize: 8-byte discriminator, initialized flag, two pubkeys,
// five u64 curve parameters.
const globalAccountDataSize = 8 + 1 + 32 + 32 + 40

// GlobalAccount is the protocol-wide state account. FeeRecipient is the
// address buy and sell instructions must pay fees to; the Initial* fields are
// the reserve parameters every new bonding curve starts from.
type GlobalAccount struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// DecodeGlobalAccount parses raw global account data.
func DecodeGlobalAccount(data []byte) (*GlobalAccount, error) {
	if len(data) < globalAccountDataSize {
		return nil, fmt.Errorf("global account data too short: %d bytes, want at least %d", len(data), globalAccountDataSize)
	}

	var account GlobalAccount
	// Skip the 8-byte anchor discriminator.
	if err := bin.NewBorshDecoder(data[8:]).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode global account: %w", err)
	}
	return &account, nil
}

// FetchGlobalAccount fetches and decodes the protocol's global state account.
// The account owner is checked against the program ID before decoding.
func FetchGlobalAccount(ctx context.Context, client blockchain.Client, globalAddr solana.PublicKey) (*GlobalAccount, error) {
	accountInfo, err := client.GetAccountInfo(ctx, globalAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get global account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("global account not found: %s", globalAddr.String())
	}

	if !accountInfo.Value.Owner.Equals(ProgramID) {
		return nil, fmt.Errorf("global account has incorrect owner: expected %s, got %s",
			ProgramID.String(), accountInfo.Value.Owner.String())
	}

	account, err := DecodeGlobalAccount(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("global account %s: %w", globalAddr.String(), err)
	}
	return account, nil
}
