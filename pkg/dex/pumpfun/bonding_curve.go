// pkg/dex/pumpfun/bonding_curve.go
package pumpfun

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// bondingCurveDataSize is the minimum account size: 8-byte discriminator,
// five u64 reserve fields, one completion flag.
const bondingCurveDataSize = 49

// ErrCurveDataTooShort is returned when the on-chain account holds fewer
// bytes than the bonding curve layout requires.
var ErrCurveDataTooShort = errors.New("bonding curve data too short")

// BondingCurve mirrors the on-chain bonding curve account. All integer
// fields are little-endian u64 in base units (lamports for SOL, 10^-6 for
// tokens). Complete flips to true once the curve has graduated and trading
// moves to an AMM.
type BondingCurve struct {
	Discriminator        uint64
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TotalTokenSupply     uint64
	Complete             bool
}

// DeriveBondingCurve returns the bonding curve PDA for a mint. The
// derivation is deterministic: the same mint always maps to the same curve.
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	curve, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedBondingCurve), mint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	return curve, nil
}

// DeriveBondingCurveAccounts returns the bonding curve PDA and its
// associated token account for a mint.
func DeriveBondingCurveAccounts(mint solana.PublicKey) (bondingCurve, associatedBondingCurve solana.PublicKey, err error) {
	bondingCurve, err = DeriveBondingCurve(mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}

	associatedBondingCurve, _, err = solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}

	return bondingCurve, associatedBondingCurve, nil
}

// DecodeBondingCurve parses raw account data into a BondingCurve. Truncated
// buffers are rejected before any field is read.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	if len(data) < bondingCurveDataSize {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrCurveDataTooShort, len(data), bondingCurveDataSize)
	}

	var curve BondingCurve
	if err := bin.NewBorshDecoder(data).Decode(&curve); err != nil {
		return nil, fmt.Errorf("failed to decode bonding curve: %w", err)
	}
	return &curve, nil
}

// FetchBondingCurve derives the curve PDA for mint, fetches it and decodes
// the state. A missing curve account surfaces the client's not-found
// sentinel; on a graduated token the account is still present with
// Complete set.
func FetchBondingCurve(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (solana.PublicKey, *BondingCurve, error) {
	bondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	curve, err := FetchBondingCurveState(ctx, client, bondingCurve)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return bondingCurve, curve, nil
}

// FetchBondingCurveState fetches and decodes an already-derived curve account.
func FetchBondingCurveState(ctx context.Context, client blockchain.Client, bondingCurve solana.PublicKey) (*BondingCurve, error) {
	accountInfo, err := client.GetAccountInfo(ctx, bondingCurve)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve account %s: %w", bondingCurve.String(), err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, fmt.Errorf("bonding curve account %s is empty", bondingCurve.String())
	}

	curve, err := DecodeBondingCurve(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("bonding curve %s: %w", bondingCurve.String(), err)
	}
	return curve, nil
}
