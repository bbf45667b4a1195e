// pkg/dex/pumpfun/instructions.go
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/jong319/easy-solana-go/internal/utils/binary"
)

// InstructionAccounts carries the protocol accounts shared by buy and sell
// instructions for one token.
type InstructionAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	EventAuthority         solana.PublicKey
	Program                solana.PublicKey
}

// NewInstructionAccounts derives the curve addresses for mint and fills the
// protocol defaults. FeeRecipient should be replaced with the global
// account's value when it has been fetched.
func NewInstructionAccounts(mint solana.PublicKey) (InstructionAccounts, error) {
	bondingCurve, associatedBondingCurve, err := DeriveBondingCurveAccounts(mint)
	if err != nil {
		return InstructionAccounts{}, err
	}
	return InstructionAccounts{
		Global:                 GlobalAccountAddress,
		FeeRecipient:           FeeRecipientAddress,
		Mint:                   mint,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associatedBondingCurve,
		EventAuthority:         EventAuthority,
		Program:                ProgramID,
	}, nil
}

// TradeInstructionParams are the inputs to a single buy or sell instruction.
// Amount is in token base units; SolLimit is maxSolCost in lamports for buys
// and minSolOutput in lamports for sells.
type TradeInstructionParams struct {
	Accounts InstructionAccounts
	User     solana.PublicKey
	UserATA  solana.PublicKey
	Amount   uint64
	SolLimit uint64
}

func (p *TradeInstructionParams) validate() error {
	if p.User.IsZero() {
		return fmt.Errorf("user account is required")
	}
	if p.UserATA.IsZero() {
		return fmt.Errorf("user token account is required")
	}
	if p.Accounts.Mint.IsZero() {
		return fmt.Errorf("mint account is required")
	}
	if p.Amount == 0 {
		return fmt.Errorf("token amount must be positive")
	}
	return nil
}

// BuildBuyTokenInstruction builds a Pump.fun buy: Amount tokens for at most
// SolLimit lamports.
func BuildBuyTokenInstruction(params TradeInstructionParams) (solana.Instruction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	data := make([]byte, len(buyDiscriminator), len(buyDiscriminator)+16)
	copy(data, buyDiscriminator)
	data = binary.AppendUint64LittleEndian(data, params.Amount)
	data = binary.AppendUint64LittleEndian(data, params.SolLimit)

	// Account list must be in the exact order expected by the program.
	accounts := params.Accounts
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: params.UserATA, IsSigner: false, IsWritable: true},
		{PublicKey: params.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data), nil
}

// BuildSellTokenInstruction builds a Pump.fun sell: Amount tokens for at
// least SolLimit lamports. The sell account list swaps the rent sysvar for
// the associated token program.
func BuildSellTokenInstruction(params TradeInstructionParams) (solana.Instruction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	data := make([]byte, len(sellDiscriminator), len(sellDiscriminator)+16)
	copy(data, sellDiscriminator)
	data = binary.AppendUint64LittleEndian(data, params.Amount)
	data = binary.AppendUint64LittleEndian(data, params.SolLimit)

	// Account list must be in the exact order expected by the program.
	accounts := params.Accounts
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: params.UserATA, IsSigner: false, IsWritable: true},
		{PublicKey: params.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data), nil
}
