package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/domain"
)

// DexScreenerBaseURL is the default DexScreener API endpoint.
const DexScreenerBaseURL = "https://api.dexscreener.com"

const dexScreenerChain = "solana"

// DexScreener adapts the DexScreener pairs API. It reports price,
// momentum, volume, liquidity, market cap and pair age; it has no view
// of holder distribution.
type DexScreener struct {
	client  *Client
	baseURL string
	query   string
	now     func() time.Time
}

// NewDexScreener creates the DexScreener adapter. DexScreener allows
// generous anonymous rates; the limiter here stays well under them.
func NewDexScreener(log zerolog.Logger, baseURL string, opts ...ClientOption) *DexScreener {
	if baseURL == "" {
		baseURL = DexScreenerBaseURL
	}
	return &DexScreener{
		client:  NewClient(log.With().Str("source", "dexscreener").Logger(), 4, 8, opts...),
		baseURL: baseURL,
		query:   "SOL",
		now:     time.Now,
	}
}

// Name implements Adapter.
func (d *DexScreener) Name() string { return "dexscreener" }

// dexPair mirrors the subset of the DexScreener pair payload the radar
// consumes. DexScreener reports priceUsd as a string and price change
// in percent.
type dexPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
	} `json:"baseToken"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		H1 *float64 `json:"h1"`
	} `json:"priceChange"`
	Volume struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD *float64 `json:"usd"`
	} `json:"liquidity"`
	FDV           *float64 `json:"fdv"`
	PairCreatedAt int64    `json:"pairCreatedAt"` // ms, 0 when unknown
}

type dexSearchResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// Fetch implements Adapter.
func (d *DexScreener) Fetch(ctx context.Context) ([]domain.TokenObservation, error) {
	url := fmt.Sprintf("%s/latest/dex/search?q=%s", d.baseURL, d.query)

	var resp dexSearchResponse
	if err := d.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener: %w", err)
	}

	now := d.now()
	observedAt := now.UnixMilli()

	observations := make([]domain.TokenObservation, 0, len(resp.Pairs))
	for _, pair := range resp.Pairs {
		if pair.ChainID != dexScreenerChain {
			continue
		}
		obs := domain.TokenObservation{
			Mint:       pair.BaseToken.Address,
			SourceName: d.Name(),
			ObservedAt: observedAt,
		}
		if price, err := strconv.ParseFloat(pair.PriceUSD, 64); err == nil && pair.PriceUSD != "" {
			obs.Attributes.PriceUSD = &price
		}
		if pair.PriceChange.H1 != nil {
			change := *pair.PriceChange.H1 / 100 // percent to fraction
			obs.Attributes.PriceChange1h = &change
		}
		obs.Attributes.Volume24hUSD = pair.Volume.H24
		obs.Attributes.LiquidityUSD = pair.Liquidity.USD
		obs.Attributes.MarketCapUSD = pair.FDV
		if pair.PairCreatedAt > 0 {
			age := float64(observedAt-pair.PairCreatedAt) / 1000
			if age >= 0 {
				obs.Attributes.AgeSeconds = &age
			}
		}
		observations = append(observations, obs)
	}

	return observations, nil
}
