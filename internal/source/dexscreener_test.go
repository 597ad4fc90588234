package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const dexFixture = `{
  "pairs": [
    {
      "chainId": "solana",
      "baseToken": {"address": "So11111111111111111111111111111111111111112"},
      "priceUsd": "1.25",
      "priceChange": {"h1": 25.0},
      "volume": {"h24": 150000},
      "liquidity": {"usd": 42000},
      "fdv": 1250000,
      "pairCreatedAt": 1700000000000
    },
    {
      "chainId": "solana",
      "baseToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
      "priceUsd": "",
      "priceChange": {},
      "volume": {},
      "liquidity": {}
    },
    {
      "chainId": "ethereum",
      "baseToken": {"address": "0xdeadbeef"},
      "priceUsd": "3.0"
    }
  ]
}`

func TestDexScreener_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(dexFixture))
	}))
	defer server.Close()

	adapter := NewDexScreener(zerolog.Nop(), server.URL)

	observations, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 solana observations, got %d", len(observations))
	}

	first := observations[0]
	if first.SourceName != "dexscreener" {
		t.Errorf("SourceName = %q", first.SourceName)
	}
	if first.Attributes.PriceUSD == nil || *first.Attributes.PriceUSD != 1.25 {
		t.Errorf("price = %v, want 1.25", first.Attributes.PriceUSD)
	}
	if first.Attributes.PriceChange1h == nil || *first.Attributes.PriceChange1h != 0.25 {
		t.Errorf("price change = %v, want fraction 0.25", first.Attributes.PriceChange1h)
	}
	if first.Attributes.LiquidityUSD == nil || *first.Attributes.LiquidityUSD != 42000 {
		t.Errorf("liquidity = %v, want 42000", first.Attributes.LiquidityUSD)
	}
	if first.Attributes.AgeSeconds == nil || *first.Attributes.AgeSeconds <= 0 {
		t.Errorf("age = %v, want positive", first.Attributes.AgeSeconds)
	}

	// Provider omitted everything for the second pair: attributes must
	// stay nil, not become zero.
	second := observations[1]
	if second.Attributes.PriceUSD != nil {
		t.Errorf("empty price string parsed to %v, want nil", *second.Attributes.PriceUSD)
	}
	if second.Attributes.Volume24hUSD != nil || second.Attributes.LiquidityUSD != nil {
		t.Error("unreported volume/liquidity must be nil")
	}
	if second.Attributes.AgeSeconds != nil {
		t.Error("missing pairCreatedAt must leave age nil")
	}
}

func TestDexScreener_FetchErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := NewDexScreener(zerolog.Nop(), server.URL, WithRetryDelay(1))
	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestBirdeye_Fetch(t *testing.T) {
	fixture := `{
	  "success": true,
	  "data": {"tokens": [
	    {
	      "address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	      "price": 0.002,
	      "priceChange1hPercent": -10.0,
	      "volume24hUSD": 90000,
	      "liquidity": 15000,
	      "marketcap": 200000,
	      "top10HolderPercent": 0.61
	    }
	  ]}
	}`
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		w.Write([]byte(fixture))
	}))
	defer server.Close()

	adapter := NewBirdeye(zerolog.Nop(), server.URL, "secret")

	observations, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("API key header = %q", gotKey)
	}
	if len(observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(observations))
	}

	obs := observations[0]
	if obs.Attributes.PriceChange1h == nil || *obs.Attributes.PriceChange1h != -0.10 {
		t.Errorf("price change = %v, want -0.10", obs.Attributes.PriceChange1h)
	}
	if obs.Attributes.TopHolderPct == nil || *obs.Attributes.TopHolderPct != 0.61 {
		t.Errorf("top holder = %v, want 0.61", obs.Attributes.TopHolderPct)
	}
	if obs.Attributes.AgeSeconds != nil {
		t.Error("missing createdAt must leave age nil")
	}
}
