// pkg/dex/raydium/quote_test.go
package raydium

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMint = "6p6xgHyF7AeE6TZkSmFsko444wqoP15icUSqi2jfGiPN"

func quoteServer(t *testing.T, handler http.HandlerFunc) *QuoteClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewQuoteClientWithEndpoint(server.URL, zap.NewNop())
}

func TestGetSwapQuote(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compute/swap-base-in", r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, WSOLMint, query.Get("inputMint"))
		assert.Equal(t, testMint, query.Get("outputMint"))
		assert.Equal(t, "1000000000", query.Get("amount"))
		assert.Equal(t, "150", query.Get("slippageBps"))
		assert.Equal(t, "V0", query.Get("txVersion"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "11111111-2222-3333-4444-555555555555",
			"success": true,
			"version": "V1",
			"data": {
				"swapType": "BaseIn",
				"inputMint": "` + WSOLMint + `",
				"inputAmount": "1000000000",
				"outputMint": "` + testMint + `",
				"outputAmount": "35714285714",
				"otherAmountThreshold": "35178571428",
				"slippageBps": 150,
				"priceImpactPct": 0.42
			}
		}`))
	})

	quote, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.5)
	require.NoError(t, err)
	assert.Equal(t, WSOLMint, quote.InputMint)
	assert.Equal(t, testMint, quote.OutputMint)
	assert.Equal(t, uint64(1_000_000_000), quote.InAmount)
	assert.Equal(t, uint64(35_714_285_714), quote.OutAmount)
	assert.Equal(t, uint64(35_178_571_428), quote.MinOutAmount)
	assert.Equal(t, 0.42, quote.PriceImpact)
}

func TestGetSwapQuoteDeclined(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "success": false, "version": "V1", "msg": "ROUTE_NOT_FOUND"}`))
	})

	_, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.0)
	assert.ErrorIs(t, err, ErrQuoteFailed)
	assert.ErrorContains(t, err, "ROUTE_NOT_FOUND")
}

func TestGetSwapQuoteEmptyEnvelope(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "success": false, "version": "V1"}`))
	})

	_, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.0)
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestGetSwapQuoteHTTPError(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.0)
	assert.ErrorIs(t, err, ErrQuoteFailed)
	assert.ErrorContains(t, err, "429")
}

func TestGetSwapQuoteMalformedBody(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": `))
	})

	_, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.0)
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestGetSwapQuoteUnparsableAmount(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "x",
			"success": true,
			"version": "V1",
			"data": {
				"inputMint": "` + WSOLMint + `",
				"inputAmount": "not-a-number",
				"outputMint": "` + testMint + `",
				"outputAmount": "1",
				"otherAmountThreshold": "1"
			}
		}`))
	})

	_, err := client.GetSwapQuote(context.Background(), WSOLMint, testMint, 1_000_000_000, 1.0)
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestGetSwapOutput(t *testing.T) {
	client := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		// 2.5 SOL in lamports.
		assert.Equal(t, "2500000000", r.URL.Query().Get("amount"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "x",
			"success": true,
			"version": "V1",
			"data": {
				"inputMint": "` + WSOLMint + `",
				"inputAmount": "2500000000",
				"outputMint": "` + testMint + `",
				"outputAmount": "87500000",
				"otherAmountThreshold": "86625000",
				"slippageBps": 100,
				"priceImpactPct": 0.1
			}
		}`))
	})

	out, err := client.GetSwapOutput(context.Background(), WSOLMint, 9, 2.5, testMint, 6, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 87.5, out)
}

func TestGetSwapOutputInvalidAmount(t *testing.T) {
	client := NewQuoteClient(zap.NewNop())

	_, err := client.GetSwapOutput(context.Background(), WSOLMint, 9, 0, testMint, 6, 1.0)
	assert.ErrorIs(t, err, ErrQuoteFailed)

	_, err = client.GetSwapOutput(context.Background(), WSOLMint, 9, -1, testMint, 6, 1.0)
	assert.ErrorIs(t, err, ErrQuoteFailed)
}
