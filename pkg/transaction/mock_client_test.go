// pkg/transaction/mock_client_test.go
package transaction

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/jong319/easy-solana-go/pkg/blockchain"
)

// mockClient satisfies blockchain.Client with per-method function fields.
// Methods without a configured function report an unexpected call.
type mockClient struct {
	getRecentBlockhash      func(ctx context.Context) (solana.Hash, error)
	isBlockhashValid        func(ctx context.Context, hash solana.Hash) (bool, error)
	getAccountInfo          func(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	getMultipleAccounts     func(ctx context.Context, pubkeys ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
	sendTransactionWithOpts func(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error)
	simulateTransaction     func(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error)
	getSignatureStatuses    func(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

func (m *mockClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	if m.getRecentBlockhash == nil {
		return solana.Hash{}, errors.New("unexpected GetRecentBlockhash call")
	}
	return m.getRecentBlockhash(ctx)
}

func (m *mockClient) IsBlockhashValid(ctx context.Context, hash solana.Hash) (bool, error) {
	if m.isBlockhashValid == nil {
		return false, errors.New("unexpected IsBlockhashValid call")
	}
	return m.isBlockhashValid(ctx, hash)
}

func (m *mockClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if m.getAccountInfo == nil {
		return nil, errors.New("unexpected GetAccountInfo call")
	}
	return m.getAccountInfo(ctx, pubkey)
}

func (m *mockClient) GetMultipleAccounts(ctx context.Context, pubkeys ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if m.getMultipleAccounts == nil {
		return nil, errors.New("unexpected GetMultipleAccounts call")
	}
	return m.getMultipleAccounts(ctx, pubkeys...)
}

func (m *mockClient) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 0, errors.New("unexpected GetBalance call")
}

func (m *mockClient) GetTokenAccountBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	return nil, errors.New("unexpected GetTokenAccountBalance call")
}

func (m *mockClient) GetTokenAccountsByOwner(context.Context, solana.PublicKey) (*rpc.GetTokenAccountsResult, error) {
	return nil, errors.New("unexpected GetTokenAccountsByOwner call")
}

func (m *mockClient) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, errors.New("unexpected SendTransaction call")
}

func (m *mockClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	if m.sendTransactionWithOpts == nil {
		return solana.Signature{}, errors.New("unexpected SendTransactionWithOpts call")
	}
	return m.sendTransactionWithOpts(ctx, tx, opts)
}

func (m *mockClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	if m.simulateTransaction == nil {
		return nil, errors.New("unexpected SimulateTransaction call")
	}
	return m.simulateTransaction(ctx, tx)
}

func (m *mockClient) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if m.getSignatureStatuses == nil {
		return nil, errors.New("unexpected GetSignatureStatuses call")
	}
	return m.getSignatureStatuses(ctx, signatures...)
}

func (m *mockClient) WaitForTransactionConfirmation(context.Context, solana.Signature, rpc.CommitmentType) error {
	return errors.New("unexpected WaitForTransactionConfirmation call")
}

var _ blockchain.Client = (*mockClient)(nil)
