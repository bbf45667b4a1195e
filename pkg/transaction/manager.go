// pkg/transaction/manager.go
package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// Manager drives the simulate, send and confirm workflow for built
// transactions. Submission happens exactly once; the monitor owns all
// waiting.
type Manager struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client blockchain.Client, logger *zap.Logger, config Config) *Manager {
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   NewMetrics(),
	}
}

// Simulate dry-runs the transaction against current cluster state. A
// program-level failure is not an error here: the result carries Err and the
// execution logs so callers can inspect what went wrong before spending fees.
func (tm *Manager) Simulate(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	result, err := tm.client.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate transaction: %w", err)
	}

	if result.Err != nil {
		tm.logger.Debug("Simulation reported program failure",
			zap.Any("error", result.Err),
			zap.Uint64("units_consumed", result.UnitsConsumed))
	} else {
		tm.logger.Debug("Simulation succeeded",
			zap.Uint64("units_consumed", result.UnitsConsumed))
	}
	return result, nil
}

// ExtractSimulationError pulls the program's own failure message out of
// simulation logs: the log line immediately preceding the "failed" marker.
// Falls back to the raw error value when the logs carry no marker.
func ExtractSimulationError(result *blockchain.SimulationResult) string {
	if result == nil || result.Err == nil {
		return ""
	}
	for i, line := range result.Logs {
		if strings.Contains(line, "failed") && i > 0 {
			return result.Logs[i-1]
		}
	}
	return fmt.Sprintf("%v", result.Err)
}

// SendUnchecked submits without preflight at processed commitment and
// returns as soon as the node accepts the transaction. No confirmation is
// awaited.
func (tm *Manager) SendUnchecked(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	signature, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		tm.metrics.RecordFailure()
		return solana.Signature{}, mapSendError(err)
	}
	tm.logger.Info("Transaction sent without confirmation",
		zap.String("signature", signature.String()))
	return signature, nil
}

// SendAndConfirm validates, submits once and waits until the signature
// reaches the configured commitment.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*Status, error) {
	defer tm.metrics.TrackTransaction(time.Now())

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	valid, err := tm.client.IsBlockhashValid(ctx, tx.Message.RecentBlockhash)
	if err != nil {
		tm.logger.Warn("Blockhash validity check failed", zap.Error(err))
	} else if !valid {
		return nil, fmt.Errorf("%w: %s", ErrStaleBlockhash, tx.Message.RecentBlockhash.String())
	}

	signature, err := tm.submit(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}

	tm.logger.Info("Transaction sent",
		zap.String("signature", signature.String()),
		zap.String("commitment", string(tm.config.Commitment)))

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, err
	}

	return status, nil
}

func (tm *Manager) submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	signature, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       tm.config.SkipPreflight,
		PreflightCommitment: tm.config.PreflightCommitment,
	})
	if err != nil {
		tm.metrics.RecordFailure()
		return solana.Signature{}, mapSendError(err)
	}
	return signature, nil
}

// mapSendError surfaces the stale blockhash sentinel when the node rejects
// the transaction's blockhash.
func mapSendError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "blockhash not found") {
		return fmt.Errorf("%w: %v", ErrStaleBlockhash, err)
	}
	return fmt.Errorf("failed to send transaction: %w", err)
}
