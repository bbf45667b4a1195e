// pkg/dex/pumpfun/global_account_test.go
package pumpfun

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jong319/easy-solana-go/internal/utils/binary"
)

func encodeGlobalAccount(account GlobalAccount) []byte {
	data := make([]byte, 8) // anchor discriminator, ignored by the decoder
	if account.Initialized {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = append(data, account.Authority.Bytes()...)
	data = append(data, account.FeeRecipient.Bytes()...)
	data = binary.AppendUint64LittleEndian(data, account.InitialVirtualTokenReserves)
	data = binary.AppendUint64LittleEndian(data, account.InitialVirtualSolReserves)
	data = binary.AppendUint64LittleEndian(data, account.InitialRealTokenReserves)
	data = binary.AppendUint64LittleEndian(data, account.TokenTotalSupply)
	data = binary.AppendUint64LittleEndian(data, account.FeeBasisPoints)
	return data
}

func testGlobalAccount() GlobalAccount {
	return GlobalAccount{
		Initialized:                 true,
		Authority:                   solana.NewWallet().PublicKey(),
		FeeRecipient:                FeeRecipientAddress,
		InitialVirtualTokenReserves: 1_073_000_000_000_000,
		InitialVirtualSolReserves:   30_000_000_000,
		InitialRealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:            1_000_000_000_000_000,
		FeeBasisPoints:              100,
	}
}

func TestDecodeGlobalAccount(t *testing.T) {
	want := testGlobalAccount()

	data := encodeGlobalAccount(want)
	require.Len(t, data, globalAccountDataSize)

	account, err := DecodeGlobalAccount(data)
	require.NoError(t, err)
	assert.Equal(t, want, *account)
}

func TestDecodeGlobalAccountTooShort(t *testing.T) {
	_, err := DecodeGlobalAccount(make([]byte, globalAccountDataSize-1))
	assert.ErrorContains(t, err, "too short")
}

func TestFetchGlobalAccount(t *testing.T) {
	want := testGlobalAccount()

	client := &mockClient{
		getAccountInfo: func(_ context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			assert.Equal(t, GlobalAccountAddress, pubkey)
			return &rpc.GetAccountInfoResult{
				Value: &rpc.Account{
					Owner: ProgramID,
					Data:  rpc.DataBytesOrJSONFromBytes(encodeGlobalAccount(want)),
				},
			}, nil
		},
	}

	account, err := FetchGlobalAccount(context.Background(), client, GlobalAccountAddress)
	require.NoError(t, err)
	assert.Equal(t, want.FeeRecipient, account.FeeRecipient)
	assert.Equal(t, want.FeeBasisPoints, account.FeeBasisPoints)
	assert.True(t, account.Initialized)
}

func TestFetchGlobalAccountWrongOwner(t *testing.T) {
	client := &mockClient{
		getAccountInfo: func(context.Context, solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			return &rpc.GetAccountInfoResult{
				Value: &rpc.Account{
					Owner: solana.SystemProgramID,
					Data:  rpc.DataBytesOrJSONFromBytes(encodeGlobalAccount(testGlobalAccount())),
				},
			}, nil
		},
	}

	_, err := FetchGlobalAccount(context.Background(), client, GlobalAccountAddress)
	assert.ErrorContains(t, err, "incorrect owner")
}

func TestFetchGlobalAccountMissing(t *testing.T) {
	client := &mockClient{
		getAccountInfo: func(context.Context, solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			return &rpc.GetAccountInfoResult{}, nil
		},
	}

	_, err := FetchGlobalAccount(context.Background(), client, GlobalAccountAddress)
	assert.ErrorContains(t, err, "not found")
}
