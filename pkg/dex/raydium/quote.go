// pkg/dex/raydium/quote.go
package raydium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	quoteAPIEndpoint = "https://transaction-v1.raydium.io"
	requestTimeout   = 5 * time.Second
)

// WSOLMint is the wrapped SOL mint, the SOL side of most quotes.
const WSOLMint = "So11111111111111111111111111111111111111112"

var (
	// ErrQuoteFailed is returned when the API is unreachable or rejects the
	// request.
	ErrQuoteFailed = errors.New("raydium quote failed")

	// ErrInvalidQuote is returned when the API answers with an unusable body.
	ErrInvalidQuote = errors.New("invalid raydium quote response")
)

// swapResponse mirrors the compute/swap-base-in response envelope. Msg is
// populated instead of Data when the API declines to quote.
type swapResponse struct {
	ID      string    `json:"id"`
	Success bool      `json:"success"`
	Version string    `json:"version"`
	Msg     string    `json:"msg"`
	Data    *swapData `json:"data"`
}

type swapData struct {
	SwapType             string  `json:"swapType"`
	InputMint            string  `json:"inputMint"`
	InputAmount          string  `json:"inputAmount"`
	OutputMint           string  `json:"outputMint"`
	OutputAmount         string  `json:"outputAmount"`
	OtherAmountThreshold string  `json:"otherAmountThreshold"`
	SlippageBps          int     `json:"slippageBps"`
	PriceImpactPct       float64 `json:"priceImpactPct"`
}

// SwapQuote is a priced swap-base-in route. Amounts are in each mint's base
// units; MinOutAmount is OutAmount after the requested slippage.
type SwapQuote struct {
	InputMint    string
	OutputMint   string
	InAmount     uint64
	OutAmount    uint64
	MinOutAmount uint64
	PriceImpact  float64
}

// QuoteClient prices swaps through Raydium's public trade API. Used once a
// token has graduated off its bonding curve and trades on Raydium instead.
type QuoteClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewQuoteClient(logger *zap.Logger) *QuoteClient {
	return NewQuoteClientWithEndpoint(quoteAPIEndpoint, logger)
}

// NewQuoteClientWithEndpoint points the client at an alternate API host.
func NewQuoteClientWithEndpoint(endpoint string, logger *zap.Logger) *QuoteClient {
	return &QuoteClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger.Named("raydium-quote"),
	}
}

// GetSwapQuote prices a swap of amount base units of inputMint into
// outputMint, tolerating slippagePercent of price movement.
func (c *QuoteClient) GetSwapQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippagePercent float64) (*SwapQuote, error) {
	query := url.Values{}
	query.Set("inputMint", inputMint)
	query.Set("outputMint", outputMint)
	query.Set("amount", strconv.FormatUint(amount, 10))
	query.Set("slippageBps", strconv.Itoa(int(math.Round(slippagePercent*100))))
	query.Set("txVersion", "V0")
	requestURL := fmt.Sprintf("%s/compute/swap-base-in?%s", c.endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrQuoteFailed, resp.StatusCode)
	}

	var response swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}

	if response.Data == nil {
		if response.Msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrQuoteFailed, response.Msg)
		}
		return nil, fmt.Errorf("%w: response carries no swap data", ErrInvalidQuote)
	}

	quote, err := response.Data.toQuote()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Raydium quote",
		zap.String("input_mint", quote.InputMint),
		zap.String("output_mint", quote.OutputMint),
		zap.Uint64("in_amount", quote.InAmount),
		zap.Uint64("out_amount", quote.OutAmount),
		zap.Float64("price_impact_pct", quote.PriceImpact))

	return quote, nil
}

// GetSwapOutput quotes in whole-token units: amount of inputMint at
// inputDecimals swapped into whole units of outputMint at outputDecimals.
func (c *QuoteClient) GetSwapOutput(ctx context.Context, inputMint string, inputDecimals uint8, amount float64, outputMint string, outputDecimals uint8, slippagePercent float64) (float64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount %f", ErrQuoteFailed, amount)
	}
	baseUnits := uint64(math.Round(amount * math.Pow10(int(inputDecimals))))

	quote, err := c.GetSwapQuote(ctx, inputMint, outputMint, baseUnits, slippagePercent)
	if err != nil {
		return 0, err
	}
	return float64(quote.OutAmount) / math.Pow10(int(outputDecimals)), nil
}

func (d *swapData) toQuote() (*SwapQuote, error) {
	inAmount, err := strconv.ParseUint(d.InputAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: input amount %q", ErrInvalidQuote, d.InputAmount)
	}
	outAmount, err := strconv.ParseUint(d.OutputAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: output amount %q", ErrInvalidQuote, d.OutputAmount)
	}
	minOut, err := strconv.ParseUint(d.OtherAmountThreshold, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: min output amount %q", ErrInvalidQuote, d.OtherAmountThreshold)
	}
	return &SwapQuote{
		InputMint:    d.InputMint,
		OutputMint:   d.OutputMint,
		InAmount:     inAmount,
		OutAmount:    outAmount,
		MinOutAmount: minOut,
		PriceImpact:  d.PriceImpactPct,
	}, nil
}
