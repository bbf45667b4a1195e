// pkg/reader/types.go
package reader

import (
	"github.com/gagliardetto/solana-go"
)

// AccountType is a coarse classification of what an address points at.
type AccountType string

const (
	AccountTypeWallet       AccountType = "wallet"
	AccountTypeProgram      AccountType = "program"
	AccountTypeTokenAccount AccountType = "token_account"
	AccountTypeMint         AccountType = "mint"
	AccountTypeUnknown      AccountType = "unknown"
)

// SPL account data sizes used for classification.
const (
	tokenAccountDataSize = 165
	mintAccountDataSize  = 82

	// Minimum bytes needed to decode the fields the toolkit reads.
	tokenAccountMinSize = 72 // mint + owner + amount
	mintAccountMinSize  = 46 // authority option + supply + decimals + initialized
)

// Account is a fetched account with its classification attached. Data is the
// raw account data; the typed decode helpers interpret it further.
type Account struct {
	Pubkey     solana.PublicKey
	Lamports   uint64
	SolBalance float64
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
	Type       AccountType
	Data       []byte
}

// TokenAccount is a decoded SPL token account, optionally enriched with the
// mint's supply and decimals. UIAmount is Amount scaled by the mint decimals
// and is zero until the mint has been resolved.
type TokenAccount struct {
	Pubkey        solana.PublicKey
	Mint          solana.PublicKey
	Owner         solana.PublicKey
	Amount        uint64
	Decimals      uint8
	UIAmount      float64
	MintSupply    uint64
	MintAuthority *solana.PublicKey
}

// MintAccount is a decoded SPL mint.
type MintAccount struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	Initialized     bool
	FreezeAuthority *solana.PublicKey
}

// Portfolio is a wallet snapshot: the SOL balance plus every SPL token
// account the wallet owns.
type Portfolio struct {
	Owner      solana.PublicKey
	Lamports   uint64
	SolBalance float64
	Tokens     []TokenAccount
}
