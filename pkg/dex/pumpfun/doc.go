// Package pumpfun models the Pump.fun bonding curve protocol on Solana.
//
// The package provides:
//   - Deterministic derivation of the bonding curve PDA and its associated
//     token account for any mint (DeriveBondingCurveAccounts).
//   - Fetching and decoding of curve state (FetchBondingCurve) and the
//     protocol's global account (FetchGlobalAccount).
//   - Spot pricing from virtual reserves (TokenPrice) plus trade sizing
//     helpers (TokensForSol, ExpectedSolOutput, MinSolOutput).
//   - Raw buy and sell instruction construction with the exact account
//     ordering the program expects (BuildBuyTokenInstruction,
//     BuildSellTokenInstruction).
//
// Higher-level composition (associated token account creation, compute
// budget, signing, submission) lives in pkg/transaction; this package stays
// at the instruction and account level.
//
// A completed curve (Complete == true) means the token has graduated to an
// AMM; TokenPrice refuses to price it and callers should quote the AMM
// instead (see pkg/dex/raydium).
package pumpfun
