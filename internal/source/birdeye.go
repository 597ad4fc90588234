package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/domain"
)

// BirdeyeBaseURL is the default Birdeye API endpoint.
const BirdeyeBaseURL = "https://public-api.birdeye.so"

// Birdeye adapts the Birdeye trending-token API. It is the only
// configured provider reporting holder concentration, and its free
// tier is tightly rate limited, hence the conservative limiter.
type Birdeye struct {
	client  *Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

// NewBirdeye creates the Birdeye adapter. The API key is required by
// the provider; an empty key still works against stub servers in tests.
func NewBirdeye(log zerolog.Logger, baseURL, apiKey string, opts ...ClientOption) *Birdeye {
	if baseURL == "" {
		baseURL = BirdeyeBaseURL
	}
	return &Birdeye{
		client:  NewClient(log.With().Str("source", "birdeye").Logger(), 1, 2, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		now:     time.Now,
	}
}

// Name implements Adapter.
func (b *Birdeye) Name() string { return "birdeye" }

type birdeyeToken struct {
	Address       string   `json:"address"`
	Price         *float64 `json:"price"`
	PriceChange1h *float64 `json:"priceChange1hPercent"` // percent
	Volume24hUSD  *float64 `json:"volume24hUSD"`
	Liquidity     *float64 `json:"liquidity"`
	MarketCap     *float64 `json:"marketcap"`
	CreatedAt     int64    `json:"createdAt"`     // unix seconds, 0 when unknown
	Top10Holder   *float64 `json:"top10HolderPercent"` // fraction of supply
}

type birdeyeTrendingResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Tokens []birdeyeToken `json:"tokens"`
	} `json:"data"`
}

// Fetch implements Adapter.
func (b *Birdeye) Fetch(ctx context.Context) ([]domain.TokenObservation, error) {
	url := fmt.Sprintf("%s/defi/token_trending?sort_by=rank&sort_type=asc", b.baseURL)
	header := http.Header{
		"X-API-KEY": []string{b.apiKey},
		"x-chain":   []string{"solana"},
	}

	var resp birdeyeTrendingResponse
	if err := b.client.GetJSON(ctx, url, header, &resp); err != nil {
		return nil, fmt.Errorf("birdeye: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("birdeye: API reported failure")
	}

	observedAt := b.now().UnixMilli()

	observations := make([]domain.TokenObservation, 0, len(resp.Data.Tokens))
	for _, token := range resp.Data.Tokens {
		obs := domain.TokenObservation{
			Mint:       token.Address,
			SourceName: b.Name(),
			ObservedAt: observedAt,
		}
		obs.Attributes.PriceUSD = token.Price
		if token.PriceChange1h != nil {
			change := *token.PriceChange1h / 100
			obs.Attributes.PriceChange1h = &change
		}
		obs.Attributes.Volume24hUSD = token.Volume24hUSD
		obs.Attributes.LiquidityUSD = token.Liquidity
		obs.Attributes.MarketCapUSD = token.MarketCap
		if token.CreatedAt > 0 {
			age := float64(observedAt)/1000 - float64(token.CreatedAt)
			if age >= 0 {
				obs.Attributes.AgeSeconds = &age
			}
		}
		obs.Attributes.TopHolderPct = token.Top10Holder
		observations = append(observations, obs)
	}

	return observations, nil
}
