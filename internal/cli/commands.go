// internal/cli/commands.go
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/pkg/blockchain/solbc"
	"github.com/jong319/easy-solana-go/pkg/dex/pumpfun"
	"github.com/jong319/easy-solana-go/pkg/dex/raydium"
	"github.com/jong319/easy-solana-go/pkg/transaction"
)

func (a *App) runBalance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: easysol balance <address>")
	}
	owner, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}

	portfolio, err := a.reader.GetPortfolio(ctx, owner)
	if err != nil {
		return err
	}

	fmt.Printf("Address: %s\n", portfolio.Owner)
	fmt.Printf("SOL:     %.9f (%d lamports)\n", portfolio.SolBalance, portfolio.Lamports)
	if len(portfolio.Tokens) == 0 {
		fmt.Println("No token accounts")
		return nil
	}
	fmt.Printf("Tokens (%d):\n", len(portfolio.Tokens))
	for _, token := range portfolio.Tokens {
		fmt.Printf("  %s  %g (%d base units)\n", token.Mint, token.UIAmount, token.Amount)
	}
	return nil
}

func (a *App) runPrice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: easysol price <mint>")
	}
	mint := args[0]
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", mint, err)
	}

	if metadata, err := a.reader.GetTokenMetadata(ctx, mintKey); err == nil {
		fmt.Printf("Token:  %s (%s)\n", metadata.Name, metadata.Symbol)
	} else {
		a.log.Debug("No token metadata", zap.String("mint", mint), zap.Error(err))
	}

	_, curve, err := pumpfun.FetchBondingCurve(ctx, a.client, mintKey)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			fmt.Println("No bonding curve on chain; quoting through Raydium")
			return a.printRaydiumPrice(ctx, mint)
		}
		return err
	}

	price, err := pumpfun.TokenPrice(curve)
	switch {
	case err == nil:
		fmt.Printf("Price:  %.12f SOL per token\n", price)
		fmt.Printf("Curve:  %d lamports virtual SOL, %d virtual token units\n",
			curve.VirtualSolReserves, curve.VirtualTokenReserves)
		return nil
	case errors.Is(err, pumpfun.ErrCurveComplete):
		fmt.Println("Bonding curve complete; quoting through Raydium")
		return a.printRaydiumPrice(ctx, mint)
	default:
		return err
	}
}

func (a *App) printRaydiumPrice(ctx context.Context, mint string) error {
	tokensPerSol, err := a.quotes.GetSwapOutput(ctx,
		raydium.WSOLMint, pumpfun.SolDecimals, 1.0,
		mint, pumpfun.TokenDecimals, a.cfg.SlippagePercent)
	if err != nil {
		return err
	}
	if tokensPerSol <= 0 {
		return fmt.Errorf("raydium returned a zero quote for %s", mint)
	}
	fmt.Printf("Price:  %.12f SOL per token (1 SOL buys %.4f tokens on Raydium)\n",
		1.0/tokensPerSol, tokensPerSol)
	return nil
}

func (a *App) runTransfer(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: easysol transfer <recipient> <amount_sol>")
	}
	recipient := args[0]
	amountSol, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid SOL amount %q: %w", args[1], err)
	}

	payer, err := a.signingWallet()
	if err != nil {
		return err
	}

	tx, err := a.newBuilder(payer).
		TransferSol(recipient, amountSol).
		Build(ctx)
	if err != nil {
		return err
	}

	return a.simulateAndSend(ctx, tx)
}

func (a *App) runBump(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: easysol bump <mint> <max_sol>")
	}
	mint := args[0]
	maxSol, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid SOL amount %q: %w", args[1], err)
	}

	payer, err := a.signingWallet()
	if err != nil {
		return err
	}

	tx, err := a.newBuilder(payer).
		CreateAssociatedTokenAccount(mint).
		BumpPumpFunToken(ctx, mint, maxSol).
		Build(ctx)
	if err != nil {
		return err
	}

	return a.simulateAndSend(ctx, tx)
}

func (a *App) runClose(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("close", flag.ContinueOnError)
	force := flags.Bool("force", false, "burn leftover balances before closing")
	recipient := flags.String("recipient", "", "rent recipient (defaults to the wallet)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	mints := flags.Args()
	if len(mints) == 0 {
		return fmt.Errorf("usage: easysol close [-force] [-recipient addr] <mint> [mint...]")
	}

	payer, err := a.signingWallet()
	if err != nil {
		return err
	}
	rentRecipient := *recipient
	if rentRecipient == "" {
		rentRecipient = payer.PublicKey.String()
	}

	tx, err := a.newBuilder(payer).
		CloseTokenAccounts(ctx, mints, rentRecipient, *force).
		Build(ctx)
	if err != nil {
		if errors.Is(err, transaction.ErrEmptyTransaction) {
			fmt.Println("No token accounts to close")
			return nil
		}
		return err
	}

	return a.simulateAndSend(ctx, tx)
}

// simulateAndSend refuses to submit a transaction whose simulation already
// failed, then submits and waits for confirmation.
func (a *App) simulateAndSend(ctx context.Context, tx *solana.Transaction) error {
	manager := a.newManager()

	result, err := manager.Simulate(ctx, tx)
	if err != nil {
		return err
	}
	if result.Err != nil {
		return fmt.Errorf("simulation failed: %s", transaction.ExtractSimulationError(result))
	}
	a.log.Debug("Simulation passed", zap.Uint64("units_consumed", result.UnitsConsumed))

	status, err := manager.SendAndConfirm(ctx, tx)
	if err != nil {
		return err
	}
	a.log.WithTransaction(status.Signature).Info("Transaction confirmed",
		zap.String("status", status.Status),
		zap.Uint64("slot", status.Slot))

	fmt.Printf("Signature: %s\n", status.Signature)
	fmt.Printf("Status:    %s (slot %d)\n", status.Status, status.Slot)
	return nil
}
