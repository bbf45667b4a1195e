// internal/cli/cli.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/internal/config"
	"github.com/jong319/easy-solana-go/internal/utils/logger"
	"github.com/jong319/easy-solana-go/pkg/blockchain"
	"github.com/jong319/easy-solana-go/pkg/blockchain/solbc"
	"github.com/jong319/easy-solana-go/pkg/blockchain/solbc/rpc"
	"github.com/jong319/easy-solana-go/pkg/dex/raydium"
	"github.com/jong319/easy-solana-go/pkg/reader"
	"github.com/jong319/easy-solana-go/pkg/transaction"
	"github.com/jong319/easy-solana-go/pkg/wallet"
)

// App wires the toolkit together for the easysol command.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	client     blockchain.Client
	reader     *reader.Reader
	quotes     *raydium.QuoteClient
	shutdownCh chan os.Signal
}

func NewApp(cfg *config.Config, log *logger.Logger) *App {
	client := solbc.NewClientWithCommitment(cfg.RPCURL, commitmentFromString(cfg.Commitment), log.Logger)
	return &App{
		cfg:        cfg,
		log:        log,
		client:     client,
		reader:     reader.NewReader(client, log.Logger),
		quotes:     raydium.NewQuoteClient(log.Logger),
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Run dispatches args[0] as a subcommand. SIGINT and SIGTERM cancel the
// command's context.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return fmt.Errorf("no command given")
	}

	signal.Notify(a.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.shutdownCh)

	cmdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case sig := <-a.shutdownCh:
			a.log.Info("Signal received", zap.String("signal", sig.String()))
			cancel()
		case <-cmdCtx.Done():
		}
	}()

	command, rest := args[0], args[1:]
	defer a.log.TrackPerformance("command " + command)()

	err := a.dispatch(cmdCtx, command, rest)
	if err != nil && rpc.IsRateLimited(err) {
		a.log.Warn("RPC node is throttling requests",
			zap.String("endpoint", a.cfg.RPCURL))
	}
	return err
}

func (a *App) dispatch(ctx context.Context, command string, rest []string) error {
	switch command {
	case "balance":
		return a.runBalance(ctx, rest)
	case "price":
		return a.runPrice(ctx, rest)
	case "transfer":
		return a.runTransfer(ctx, rest)
	case "bump":
		return a.runBump(ctx, rest)
	case "close":
		return a.runClose(ctx, rest)
	case "help", "-h", "--help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) printUsage() {
	fmt.Fprintf(os.Stderr, `easysol - Solana account reading and pump.fun trading toolkit

Usage:
  easysol balance <address>               show SOL balance and token holdings
  easysol price <mint>                    price a pump.fun token (Raydium after graduation)
  easysol transfer <recipient> <sol>      send SOL from the configured wallet
  easysol bump <mint> <max_sol>           buy-and-sell a token to bump its activity
  easysol close [-force] [-recipient addr] <mint> [mint...]
                                          close token accounts and reclaim rent

Configuration is read from the -config file, with EASY_SOLANA_* environment
variables taking precedence.
`)
}

// signingWallet builds the wallet commands that sign transactions use.
func (a *App) signingWallet() (*wallet.Wallet, error) {
	if a.cfg.PrivateKey == "" {
		return nil, fmt.Errorf("no private key configured: set private_key or EASY_SOLANA_PRIVATE_KEY")
	}
	w, err := wallet.NewWallet(a.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	a.log.WithWallet(w.String()).Debug("Signing wallet loaded")
	return w, nil
}

// newBuilder starts a transaction with the configured compute budget.
func (a *App) newBuilder(payer *wallet.Wallet) *transaction.Builder {
	return transaction.NewBuilder(a.client, payer, a.log.Logger).
		SetComputeUnitLimit(a.cfg.ComputeUnitLimit).
		SetComputeUnitPrice(a.cfg.ComputeUnitPrice)
}

func (a *App) newManager() *transaction.Manager {
	txConfig := transaction.DefaultConfig()
	txConfig.Commitment = commitmentFromString(a.cfg.Commitment)
	txConfig.ConfirmationTimeout = a.cfg.ConfirmationTimeout
	return transaction.NewManager(a.client, a.log.Logger, txConfig)
}

func commitmentFromString(commitment string) solanarpc.CommitmentType {
	switch commitment {
	case "processed":
		return solanarpc.CommitmentProcessed
	case "finalized":
		return solanarpc.CommitmentFinalized
	default:
		return solanarpc.CommitmentConfirmed
	}
}
