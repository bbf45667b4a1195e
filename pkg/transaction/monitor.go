// pkg/transaction/monitor.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// errNotYetConfirmed marks a poll that found the transaction still pending.
// It is retryable; every other outcome ends the wait.
var errNotYetConfirmed = errors.New("transaction not yet confirmed")

// Monitor polls signature statuses until a submitted transaction reaches
// the commitment requested in Config, backing off between polls.
type Monitor struct {
	client  blockchain.Client
	logger  *zap.Logger
	config  Config
	metrics *Metrics
}

func NewMonitor(client blockchain.Client, logger *zap.Logger, config Config) *Monitor {
	if config.MinConfirmations == 0 {
		config.MinConfirmations = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	if config.ConfirmationTimeout <= 0 {
		config.ConfirmationTimeout = 30 * time.Second
	}
	return &Monitor{
		client:  client,
		logger:  logger.Named("tx-monitor"),
		config:  config,
		metrics: NewMetrics(),
	}
}

// GetTransactionStatus returns the current view of a signature. A signature
// the node has not seen yet is reported as pending, not as an error.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    StatusPending,
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = StatusFinalized
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = StatusConfirmed
	default:
		txStatus.Status = StatusPending
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = StatusFailed
	}

	return txStatus, nil
}

// reached reports whether the observed status satisfies the configured
// commitment. Finalized satisfies every commitment.
func (m *Monitor) reached(status *Status) bool {
	if status.Status == StatusFinalized {
		return true
	}
	if m.config.Commitment == rpc.CommitmentFinalized {
		return false
	}
	if status.Status == StatusConfirmed {
		return true
	}
	return status.Confirmations >= uint64(m.config.MinConfirmations)
}

// AwaitConfirmation polls until the signature reaches the configured
// commitment, fails on chain, or the confirmation window elapses. Polling
// starts at PollInterval and backs off exponentially; transient RPC errors
// are logged and retried within the window.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	operation := func() (*Status, error) {
		status, err := m.GetTransactionStatus(ctx, signature)
		if err != nil {
			m.logger.Warn("Confirmation check failed",
				zap.String("signature", signature.String()),
				zap.Error(err))
			return nil, err
		}

		if status.Status == StatusFailed {
			return nil, backoff.Permanent(&FailedError{
				Signature: signature,
				TxError:   status.Error,
			})
		}

		if m.reached(status) {
			return status, nil
		}

		return nil, errNotYetConfirmed
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = m.config.PollInterval

	status, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxElapsedTime(m.config.ConfirmationTimeout),
	)
	if err != nil {
		var failed *FailedError
		if errors.As(err, &failed) {
			m.metrics.RecordFailure()
			return nil, failed
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		m.logger.Debug("Confirmation window elapsed",
			zap.String("signature", signature.String()),
			zap.Duration("timeout", m.config.ConfirmationTimeout))
		return nil, fmt.Errorf("%w after %s: %s",
			ErrConfirmationTimeout, m.config.ConfirmationTimeout, signature.String())
	}

	m.metrics.RecordSuccess()
	return status, nil
}
