// pkg/transaction/monitor_test.go
package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fastConfig keeps confirmation waits in the millisecond range for tests.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 2 * time.Millisecond
	cfg.ConfirmationTimeout = 250 * time.Millisecond
	return cfg
}

func statusesResult(statuses ...*rpc.SignatureStatusesResult) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{Value: statuses}
}

func uint64Ptr(v uint64) *uint64 { return &v }

func TestGetTransactionStatus(t *testing.T) {
	signature := solana.Signature{1}

	tests := []struct {
		name     string
		response *rpc.GetSignatureStatusesResult
		expected Status
	}{
		{
			name:     "unseen signature is pending",
			response: statusesResult(nil),
			expected: Status{Status: StatusPending},
		},
		{
			name: "processed with confirmations",
			response: statusesResult(&rpc.SignatureStatusesResult{
				Slot:               100,
				Confirmations:      uint64Ptr(2),
				ConfirmationStatus: rpc.ConfirmationStatusProcessed,
			}),
			expected: Status{Status: StatusPending, Confirmations: 2, Slot: 100},
		},
		{
			name: "confirmed",
			response: statusesResult(&rpc.SignatureStatusesResult{
				Slot:               101,
				Confirmations:      uint64Ptr(5),
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
			}),
			expected: Status{Status: StatusConfirmed, Confirmations: 5, Slot: 101},
		},
		{
			name: "finalized",
			response: statusesResult(&rpc.SignatureStatusesResult{
				Slot:               102,
				ConfirmationStatus: rpc.ConfirmationStatusFinalized,
			}),
			expected: Status{Status: StatusFinalized, Slot: 102},
		},
		{
			name: "on-chain failure",
			response: statusesResult(&rpc.SignatureStatusesResult{
				Slot:               103,
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				Err:                map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			}),
			expected: Status{Status: StatusFailed, Slot: 103},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{
				getSignatureStatuses: func(_ context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
					require.Len(t, signatures, 1)
					assert.Equal(t, signature, signatures[0])
					return tt.response, nil
				},
			}
			m := NewMonitor(client, zap.NewNop(), fastConfig())

			status, err := m.GetTransactionStatus(context.Background(), signature)
			require.NoError(t, err)
			assert.Equal(t, signature.String(), status.Signature)
			assert.Equal(t, tt.expected.Status, status.Status)
			assert.Equal(t, tt.expected.Confirmations, status.Confirmations)
			assert.Equal(t, tt.expected.Slot, status.Slot)
			if tt.expected.Status == StatusFailed {
				assert.NotEmpty(t, status.Error)
			}
			assert.False(t, status.Timestamp.IsZero())
		})
	}
}

func TestGetTransactionStatusRPCError(t *testing.T) {
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return nil, errors.New("node unavailable")
		},
	}
	m := NewMonitor(client, zap.NewNop(), fastConfig())

	_, err := m.GetTransactionStatus(context.Background(), solana.Signature{1})
	assert.ErrorContains(t, err, "node unavailable")
}

func TestAwaitConfirmation(t *testing.T) {
	signature := solana.Signature{2}

	var polls int
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			polls++
			if polls < 3 {
				return statusesResult(nil), nil
			}
			return statusesResult(&rpc.SignatureStatusesResult{
				Slot:               200,
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
			}), nil
		},
	}
	m := NewMonitor(client, zap.NewNop(), fastConfig())

	status, err := m.AwaitConfirmation(context.Background(), signature)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status.Status)
	assert.Equal(t, uint64(200), status.Slot)
	assert.GreaterOrEqual(t, polls, 3)
}

func TestAwaitConfirmationFailedOnChain(t *testing.T) {
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return statusesResult(&rpc.SignatureStatusesResult{
				Slot:               201,
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				Err:                "InstructionError",
			}), nil
		},
	}
	m := NewMonitor(client, zap.NewNop(), fastConfig())

	_, err := m.AwaitConfirmation(context.Background(), solana.Signature{3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)

	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "InstructionError", failed.TxError)
	assert.Contains(t, failed.Error(), "failed")
}

func TestAwaitConfirmationTimeout(t *testing.T) {
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return statusesResult(nil), nil
		},
	}
	cfg := fastConfig()
	cfg.ConfirmationTimeout = 30 * time.Millisecond
	m := NewMonitor(client, zap.NewNop(), cfg)

	_, err := m.AwaitConfirmation(context.Background(), solana.Signature{4})
	assert.ErrorIs(t, err, ErrConfirmationTimeout)
}

func TestAwaitConfirmationContextCanceled(t *testing.T) {
	client := &mockClient{
		getSignatureStatuses: func(ctx context.Context, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return nil, ctx.Err()
		},
	}
	m := NewMonitor(client, zap.NewNop(), fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.AwaitConfirmation(ctx, solana.Signature{5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitConfirmationRetriesTransientErrors(t *testing.T) {
	var polls int
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			polls++
			if polls == 1 {
				return nil, errors.New("rate limited")
			}
			return statusesResult(&rpc.SignatureStatusesResult{
				ConfirmationStatus: rpc.ConfirmationStatusFinalized,
			}), nil
		},
	}
	m := NewMonitor(client, zap.NewNop(), fastConfig())

	status, err := m.AwaitConfirmation(context.Background(), solana.Signature{6})
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, status.Status)
	assert.Equal(t, 2, polls)
}

func TestAwaitConfirmationMinConfirmations(t *testing.T) {
	cfg := fastConfig()
	cfg.MinConfirmations = 2

	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			// Node reports vote depth but no commitment label yet.
			return statusesResult(&rpc.SignatureStatusesResult{
				Slot:               300,
				Confirmations:      uint64Ptr(3),
				ConfirmationStatus: rpc.ConfirmationStatusProcessed,
			}), nil
		},
	}
	m := NewMonitor(client, zap.NewNop(), cfg)

	status, err := m.AwaitConfirmation(context.Background(), solana.Signature{7})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), status.Confirmations)
}

func TestAwaitConfirmationHoldsOutForFinalized(t *testing.T) {
	cfg := fastConfig()
	cfg.Commitment = rpc.CommitmentFinalized

	var polls int
	client := &mockClient{
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			polls++
			if polls == 1 {
				return statusesResult(&rpc.SignatureStatusesResult{
					ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				}), nil
			}
			return statusesResult(&rpc.SignatureStatusesResult{
				ConfirmationStatus: rpc.ConfirmationStatusFinalized,
			}), nil
		},
	}
	m := NewMonitor(client, zap.NewNop(), cfg)

	status, err := m.AwaitConfirmation(context.Background(), solana.Signature{8})
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, status.Status)
	assert.Equal(t, 2, polls)
}
