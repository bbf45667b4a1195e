// pkg/dex/pumpfun/token_calc.go
package pumpfun

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Decimal places for SOL and Pump.fun tokens
	SolDecimals   = 9
	TokenDecimals = 6
	// Floor below which a computed price is treated as corrupt curve state
	minPriceThreshold = 1e-18
	// Protocol fee charged on both sides of a trade
	protocolFeePercent = 1.0
)

var (
	// ErrZeroReserves is returned when the curve's virtual token reserves are
	// zero and a price would divide by zero.
	ErrZeroReserves = errors.New("bonding curve has zero virtual token reserves")

	// ErrCurveComplete is returned when the curve has graduated; a completed
	// curve no longer prices the token.
	ErrCurveComplete = errors.New("bonding curve is complete")

	// ErrInvalidCurveState is returned when the reserves produce a price
	// below the sane minimum.
	ErrInvalidCurveState = errors.New("bonding curve state is invalid")
)

// TokenPrice computes the spot price in SOL per token from the virtual
// reserves: (VirtualSolReserves / 10^9) / (VirtualTokenReserves / 10^6).
func TokenPrice(curve *BondingCurve) (float64, error) {
	if curve == nil {
		return 0, fmt.Errorf("bonding curve is nil")
	}
	if curve.Complete {
		return 0, ErrCurveComplete
	}
	if curve.VirtualTokenReserves == 0 {
		return 0, ErrZeroReserves
	}

	virtualSol := float64(curve.VirtualSolReserves) / math.Pow10(SolDecimals)
	virtualTokens := float64(curve.VirtualTokenReserves) / math.Pow10(TokenDecimals)

	price := virtualSol / virtualTokens
	if price < minPriceThreshold {
		return 0, fmt.Errorf("%w: price %g below %g", ErrInvalidCurveState, price, minPriceThreshold)
	}
	return price, nil
}

// TokensForSol sizes a buy: how many token base units (10^-6) the given SOL
// amount purchases at the current spot price.
func TokensForSol(curve *BondingCurve, solAmount float64) (uint64, error) {
	if solAmount <= 0 {
		return 0, fmt.Errorf("sol amount must be positive, got %f", solAmount)
	}
	price, err := TokenPrice(curve)
	if err != nil {
		return 0, err
	}
	tokens := solAmount / price
	return uint64(math.Round(tokens * math.Pow10(TokenDecimals))), nil
}

// ExpectedSolOutput estimates the lamports received for selling tokenAmount
// base units through the curve, after the protocol fee. Uses the AMM
// formula: tokens * virtualSol / (virtualTokens + tokens).
func ExpectedSolOutput(curve *BondingCurve, tokenAmount uint64) (uint64, error) {
	if curve == nil {
		return 0, fmt.Errorf("bonding curve is nil")
	}
	if curve.VirtualTokenReserves == 0 && tokenAmount == 0 {
		return 0, ErrZeroReserves
	}

	lamports := float64(tokenAmount) * float64(curve.VirtualSolReserves) /
		float64(curve.VirtualTokenReserves+tokenAmount)
	afterFee := lamports * (1.0 - protocolFeePercent/100.0)
	return uint64(afterFee), nil
}

// MinSolOutput applies a slippage tolerance on top of the expected output,
// giving the floor a sell instruction should accept.
func MinSolOutput(curve *BondingCurve, tokenAmount uint64, slippagePercent float64) (uint64, error) {
	expected, err := ExpectedSolOutput(curve, tokenAmount)
	if err != nil {
		return 0, err
	}
	slippageFactor := 1.0 - slippagePercent/100.0
	if slippageFactor < 0 {
		slippageFactor = 0
	}
	return uint64(float64(expected) * slippageFactor), nil
}
