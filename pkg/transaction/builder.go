// pkg/transaction/builder.go
package transaction

import (
	"context"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jong319/easy-solana-go/internal/utils/binary"
	"github.com/jong319/easy-solana-go/pkg/blockchain"
	"github.com/jong319/easy-solana-go/pkg/dex/pumpfun"
	"github.com/jong319/easy-solana-go/pkg/reader"
	"github.com/jong319/easy-solana-go/pkg/wallet"
)

// bumpSizeFactor shrinks a bump's buy below its SOL budget so the paired
// sell and the protocol fee still fit inside maxSolCost.
const bumpSizeFactor = 0.8

// Builder accumulates instructions for a single transaction. Methods chain;
// the first failure latches and Build reports it. A failed operation leaves
// the instruction list unchanged.
type Builder struct {
	client blockchain.Client
	payer  *wallet.Wallet
	logger *zap.Logger

	instructions     []solana.Instruction
	extraSigners     []*wallet.Wallet
	computeUnitLimit uint32
	computeUnitPrice uint64
	err              error
}

// NewBuilder starts an empty transaction paid for and signed by payer.
func NewBuilder(client blockchain.Client, payer *wallet.Wallet, logger *zap.Logger) *Builder {
	return &Builder{
		client: client,
		payer:  payer,
		logger: logger.Named("tx-builder"),
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
		b.logger.Debug("Builder operation failed", zap.Error(err))
	}
	return b
}

func (b *Builder) add(instructions ...solana.Instruction) *Builder {
	b.instructions = append(b.instructions, instructions...)
	return b
}

// Err returns the first error a builder operation produced, if any. Build
// returns the same error; Err lets callers bail out before fetching a
// blockhash.
func (b *Builder) Err() error {
	return b.err
}

// Instructions returns a copy of the queued instructions, without the
// compute budget prelude Build prepends.
func (b *Builder) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, len(b.instructions))
	copy(out, b.instructions)
	return out
}

// SetComputeUnitLimit caps the compute units the transaction may consume.
// Build prepends the matching compute budget instruction.
func (b *Builder) SetComputeUnitLimit(units uint32) *Builder {
	b.computeUnitLimit = units
	return b
}

// SetComputeUnitPrice sets the priority fee in micro-lamports per compute
// unit. Build prepends the instruction after the unit limit.
func (b *Builder) SetComputeUnitPrice(microLamports uint64) *Builder {
	b.computeUnitPrice = microLamports
	return b
}

// TransferSol queues a system transfer of amountSol from the payer.
func (b *Builder) TransferSol(recipient string, amountSol float64) *Builder {
	if b.err != nil {
		return b
	}
	return b.transferSol(b.payer.PublicKey, recipient, amountSol, nil)
}

// TransferSolFrom queues a system transfer funded by a wallet other than
// the payer. The funding wallet co-signs the built transaction.
func (b *Builder) TransferSolFrom(from *wallet.Wallet, recipient string, amountSol float64) *Builder {
	if b.err != nil {
		return b
	}
	if from == nil {
		return b.fail(fmt.Errorf("%w: funding wallet is nil", ErrInvalidAddress))
	}
	return b.transferSol(from.PublicKey, recipient, amountSol, from)
}

func (b *Builder) transferSol(from solana.PublicKey, recipient string, amountSol float64, signer *wallet.Wallet) *Builder {
	lamports, err := solToLamports(amountSol)
	if err != nil {
		return b.fail(err)
	}
	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return b.fail(fmt.Errorf("%w: recipient %q: %v", ErrInvalidAddress, recipient, err))
	}

	if signer != nil && !signer.PublicKey.Equals(b.payer.PublicKey) {
		b.extraSigners = append(b.extraSigners, signer)
	}

	b.logger.Debug("Queued SOL transfer",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("lamports", lamports))

	return b.add(system.NewTransferInstruction(lamports, from, to).Build())
}

// CreateAssociatedTokenAccount queues an idempotent ATA creation for the
// payer and mint. A no-op on chain when the account already exists.
func (b *Builder) CreateAssociatedTokenAccount(mint string) *Builder {
	if b.err != nil {
		return b
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return b.fail(fmt.Errorf("%w: mint %q: %v", ErrInvalidAddress, mint, err))
	}
	return b.add(b.payer.CreateAssociatedTokenAccountIdempotentInstruction(
		b.payer.PublicKey, b.payer.PublicKey, mintKey))
}

// BuyPumpFunToken queues a Pump.fun buy spending solAmount SOL, allowing
// the final cost to exceed the quote by slippagePercent. An idempotent ATA
// creation is queued first so the tokens have somewhere to land.
func (b *Builder) BuyPumpFunToken(ctx context.Context, mint string, solAmount, slippagePercent float64) *Builder {
	if b.err != nil {
		return b
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return b.fail(fmt.Errorf("%w: mint %q: %v", ErrInvalidAddress, mint, err))
	}
	if _, err := solToLamports(solAmount); err != nil {
		return b.fail(err)
	}

	curve, global, err := b.fetchPumpFunState(ctx, mintKey)
	if err != nil {
		return b.fail(err)
	}

	tokenAmount, err := pumpfun.TokensForSol(curve, solAmount)
	if err != nil {
		return b.fail(fmt.Errorf("failed to size buy for mint %s: %w", mint, err))
	}

	maxCost := uint64(math.Round(solAmount * (1 + slippagePercent/100.0) * float64(solana.LAMPORTS_PER_SOL)))

	params, err := b.tradeParams(mintKey, global, tokenAmount, maxCost)
	if err != nil {
		return b.fail(err)
	}
	buyInstruction, err := pumpfun.BuildBuyTokenInstruction(params)
	if err != nil {
		return b.fail(err)
	}

	b.logger.Debug("Queued pump.fun buy",
		zap.String("mint", mint),
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("max_cost_lamports", maxCost))

	return b.add(
		b.payer.CreateAssociatedTokenAccountIdempotentInstruction(b.payer.PublicKey, b.payer.PublicKey, mintKey),
		buyInstruction,
	)
}

// SellPumpFunToken queues a Pump.fun sell of tokenAmount whole tokens,
// accepting no less than the quoted output minus slippagePercent.
func (b *Builder) SellPumpFunToken(ctx context.Context, mint string, tokenAmount, slippagePercent float64) *Builder {
	if b.err != nil {
		return b
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return b.fail(fmt.Errorf("%w: mint %q: %v", ErrInvalidAddress, mint, err))
	}
	baseUnits, err := tokensToBaseUnits(tokenAmount)
	if err != nil {
		return b.fail(err)
	}

	curve, global, err := b.fetchPumpFunState(ctx, mintKey)
	if err != nil {
		return b.fail(err)
	}

	minOutput, err := pumpfun.MinSolOutput(curve, baseUnits, slippagePercent)
	if err != nil {
		return b.fail(fmt.Errorf("failed to quote sell for mint %s: %w", mint, err))
	}

	params, err := b.tradeParams(mintKey, global, baseUnits, minOutput)
	if err != nil {
		return b.fail(err)
	}
	sellInstruction, err := pumpfun.BuildSellTokenInstruction(params)
	if err != nil {
		return b.fail(err)
	}

	b.logger.Debug("Queued pump.fun sell",
		zap.String("mint", mint),
		zap.Uint64("token_amount", baseUnits),
		zap.Uint64("min_output_lamports", minOutput))

	return b.add(sellInstruction)
}

// BumpPumpFunToken queues a paired buy and sell of the same token amount,
// sized at bumpSizeFactor of what maxSolCost buys at the current price. The
// sell accepts any output. The payer's ATA must already exist; pair with
// CreateAssociatedTokenAccount on first use of a mint.
func (b *Builder) BumpPumpFunToken(ctx context.Context, mint string, maxSolCost float64) *Builder {
	if b.err != nil {
		return b
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return b.fail(fmt.Errorf("%w: mint %q: %v", ErrInvalidAddress, mint, err))
	}
	maxCostLamports, err := solToLamports(maxSolCost)
	if err != nil {
		return b.fail(err)
	}

	curve, global, err := b.fetchPumpFunState(ctx, mintKey)
	if err != nil {
		return b.fail(err)
	}

	price, err := pumpfun.TokenPrice(curve)
	if err != nil {
		return b.fail(fmt.Errorf("failed to price mint %s: %w", mint, err))
	}
	tokenAmount := uint64(math.Round(maxSolCost / price * bumpSizeFactor * math.Pow10(pumpfun.TokenDecimals)))
	if tokenAmount == 0 {
		return b.fail(fmt.Errorf("%w: %f SOL buys no tokens at price %g", ErrInvalidAmount, maxSolCost, price))
	}

	params, err := b.tradeParams(mintKey, global, tokenAmount, maxCostLamports)
	if err != nil {
		return b.fail(err)
	}
	buyInstruction, err := pumpfun.BuildBuyTokenInstruction(params)
	if err != nil {
		return b.fail(err)
	}
	params.SolLimit = 0 // sell side accepts any output
	sellInstruction, err := pumpfun.BuildSellTokenInstruction(params)
	if err != nil {
		return b.fail(err)
	}

	b.logger.Debug("Queued pump.fun bump",
		zap.String("mint", mint),
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("max_cost_lamports", maxCostLamports))

	return b.add(buyInstruction, sellInstruction)
}

// CloseTokenAccounts queues burn-and-close instructions for the payer's
// ATAs of the given mints, sending reclaimed rent to rentRecipient. A
// leftover balance is burned only when force is set; otherwise it fails
// with ErrNonEmptyTokenAccount. Mints without a token account are skipped.
func (b *Builder) CloseTokenAccounts(ctx context.Context, mints []string, rentRecipient string, force bool) *Builder {
	if b.err != nil {
		return b
	}
	recipient, err := solana.PublicKeyFromBase58(rentRecipient)
	if err != nil {
		return b.fail(fmt.Errorf("%w: rent recipient %q: %v", ErrInvalidAddress, rentRecipient, err))
	}

	mintKeys := make([]solana.PublicKey, 0, len(mints))
	atas := make([]solana.PublicKey, 0, len(mints))
	for _, mint := range mints {
		mintKey, err := solana.PublicKeyFromBase58(mint)
		if err != nil {
			return b.fail(fmt.Errorf("%w: mint %q: %v", ErrInvalidAddress, mint, err))
		}
		ata, err := b.payer.GetATA(mintKey)
		if err != nil {
			return b.fail(err)
		}
		mintKeys = append(mintKeys, mintKey)
		atas = append(atas, ata)
	}
	if len(atas) == 0 {
		return b
	}

	result, err := b.client.GetMultipleAccounts(ctx, atas...)
	if err != nil {
		return b.fail(fmt.Errorf("failed to fetch token accounts: %w", err))
	}

	var closeInstructions []solana.Instruction
	for i, account := range result.Value {
		if account == nil {
			b.logger.Debug("No token account to close", zap.String("mint", mintKeys[i].String()))
			continue
		}
		tokenAccount, err := reader.DecodeTokenAccount(account.Data.GetBinary())
		if err != nil {
			return b.fail(fmt.Errorf("token account %s: %w", atas[i].String(), err))
		}
		if tokenAccount.Amount > 0 {
			if !force {
				return b.fail(fmt.Errorf("%w: %s holds %d base units of %s",
					ErrNonEmptyTokenAccount, atas[i].String(), tokenAccount.Amount, mintKeys[i].String()))
			}
			closeInstructions = append(closeInstructions,
				burnInstruction(atas[i], mintKeys[i], b.payer.PublicKey, tokenAccount.Amount))
		}
		closeInstructions = append(closeInstructions,
			closeAccountInstruction(atas[i], recipient, b.payer.PublicKey))
	}

	b.logger.Debug("Queued token account close",
		zap.Int("accounts", len(mints)),
		zap.Int("instructions", len(closeInstructions)))

	return b.add(closeInstructions...)
}

// Build assembles and signs the transaction. A fresh blockhash is fetched
// at build time; the compute budget instructions go first, limit before
// price.
func (b *Builder) Build(ctx context.Context) (*solana.Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.instructions) == 0 {
		return nil, ErrEmptyTransaction
	}

	blockhash, err := b.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleBlockhash, err)
	}

	instructions := make([]solana.Instruction, 0, len(b.instructions)+2)
	if b.computeUnitLimit > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(b.computeUnitLimit).Build())
	}
	if b.computeUnitPrice > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(b.computeUnitPrice).Build())
	}
	instructions = append(instructions, b.instructions...)

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(b.payer.PublicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	signers := make(map[solana.PublicKey]*solana.PrivateKey, len(b.extraSigners)+1)
	signers[b.payer.PublicKey] = &b.payer.PrivateKey
	for _, extra := range b.extraSigners {
		signers[extra.PublicKey] = &extra.PrivateKey
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return signers[key]
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	b.logger.Debug("Transaction built",
		zap.Int("instructions", len(instructions)),
		zap.String("blockhash", blockhash.String()))

	return tx, nil
}

// fetchPumpFunState loads the token's bonding curve and the protocol global
// account in parallel.
func (b *Builder) fetchPumpFunState(ctx context.Context, mint solana.PublicKey) (*pumpfun.BondingCurve, *pumpfun.GlobalAccount, error) {
	var (
		curve  *pumpfun.BondingCurve
		global *pumpfun.GlobalAccount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, fetched, err := pumpfun.FetchBondingCurve(gctx, b.client, mint)
		if err != nil {
			return err
		}
		curve = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := pumpfun.FetchGlobalAccount(gctx, b.client, pumpfun.GlobalAccountAddress)
		if err != nil {
			return err
		}
		global = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return curve, global, nil
}

// tradeParams assembles instruction parameters for the payer's trade on
// mint, using the fee recipient the global account currently names.
func (b *Builder) tradeParams(mint solana.PublicKey, global *pumpfun.GlobalAccount, amount, solLimit uint64) (pumpfun.TradeInstructionParams, error) {
	accounts, err := pumpfun.NewInstructionAccounts(mint)
	if err != nil {
		return pumpfun.TradeInstructionParams{}, err
	}
	accounts.FeeRecipient = global.FeeRecipient

	userATA, err := b.payer.GetATA(mint)
	if err != nil {
		return pumpfun.TradeInstructionParams{}, err
	}

	return pumpfun.TradeInstructionParams{
		Accounts: accounts,
		User:     b.payer.PublicKey,
		UserATA:  userATA,
		Amount:   amount,
		SolLimit: solLimit,
	}, nil
}

// solToLamports converts a SOL amount to lamports, rejecting zero, negative
// and non-finite values.
func solToLamports(amountSol float64) (uint64, error) {
	if math.IsNaN(amountSol) || math.IsInf(amountSol, 0) || amountSol <= 0 {
		return 0, fmt.Errorf("%w: got %f SOL", ErrInvalidAmount, amountSol)
	}
	return uint64(math.Round(amountSol * float64(solana.LAMPORTS_PER_SOL))), nil
}

// tokensToBaseUnits converts a whole-token amount to 10^-6 base units.
func tokensToBaseUnits(tokenAmount float64) (uint64, error) {
	if math.IsNaN(tokenAmount) || math.IsInf(tokenAmount, 0) || tokenAmount <= 0 {
		return 0, fmt.Errorf("%w: got %f tokens", ErrInvalidAmount, tokenAmount)
	}
	baseUnits := uint64(math.Round(tokenAmount * math.Pow10(pumpfun.TokenDecimals)))
	if baseUnits == 0 {
		return 0, fmt.Errorf("%w: %f tokens rounds to zero base units", ErrInvalidAmount, tokenAmount)
	}
	return baseUnits, nil
}

func burnInstruction(tokenAccount, mint, owner solana.PublicKey, amount uint64) solana.Instruction {
	data := make([]byte, 1, 9)
	data[0] = 8 // Burn
	data = binary.AppendUint64LittleEndian(data, amount)

	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: tokenAccount, IsSigner: false, IsWritable: true},
			{PublicKey: mint, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		data,
	)
}

func closeAccountInstruction(tokenAccount, rentRecipient, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: tokenAccount, IsSigner: false, IsWritable: true},
			{PublicKey: rentRecipient, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		[]byte{9}, // CloseAccount
	)
}
