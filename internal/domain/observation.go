package domain

// Attributes holds provider-reported numeric facts for a token.
// Every field is optional: providers disagree on coverage, and a nil
// pointer means "not reported", which is distinct from a reported zero.
type Attributes struct {
	PriceUSD      *float64 // last trade price in USD
	PriceChange1h *float64 // 1h price change, fraction (0.25 = +25%)
	Volume24hUSD  *float64 // 24h traded volume in USD
	LiquidityUSD  *float64 // pooled liquidity in USD
	MarketCapUSD  *float64 // fully diluted market cap in USD
	AgeSeconds    *float64 // seconds since token creation
	TopHolderPct  *float64 // top-10 holder concentration, fraction of supply
}

// TokenObservation is one provider's report of a token within one cycle.
// Observations are created fresh each cycle and discarded after merge.
type TokenObservation struct {
	Mint       string // canonical token mint address (base58)
	SourceName string // adapter that produced this observation
	Attributes Attributes
	ObservedAt int64 // Unix timestamp in milliseconds
}

// AttributeName identifies a single merged attribute for per-attribute
// source priority rules.
type AttributeName string

const (
	AttrPriceUSD      AttributeName = "price_usd"
	AttrPriceChange1h AttributeName = "price_change_1h"
	AttrVolume24hUSD  AttributeName = "volume_24h_usd"
	AttrLiquidityUSD  AttributeName = "liquidity_usd"
	AttrMarketCapUSD  AttributeName = "market_cap_usd"
	AttrAgeSeconds    AttributeName = "age_seconds"
	AttrTopHolderPct  AttributeName = "top_holder_pct"
)

// AttributeNames lists all mergeable attributes in a fixed order.
var AttributeNames = []AttributeName{
	AttrPriceUSD,
	AttrPriceChange1h,
	AttrVolume24hUSD,
	AttrLiquidityUSD,
	AttrMarketCapUSD,
	AttrAgeSeconds,
	AttrTopHolderPct,
}

// Get returns a pointer to the named attribute, or nil if unknown.
func (a *Attributes) Get(name AttributeName) *float64 {
	switch name {
	case AttrPriceUSD:
		return a.PriceUSD
	case AttrPriceChange1h:
		return a.PriceChange1h
	case AttrVolume24hUSD:
		return a.Volume24hUSD
	case AttrLiquidityUSD:
		return a.LiquidityUSD
	case AttrMarketCapUSD:
		return a.MarketCapUSD
	case AttrAgeSeconds:
		return a.AgeSeconds
	case AttrTopHolderPct:
		return a.TopHolderPct
	default:
		return nil
	}
}

// Set assigns the named attribute. Unknown names are ignored.
func (a *Attributes) Set(name AttributeName, v *float64) {
	switch name {
	case AttrPriceUSD:
		a.PriceUSD = v
	case AttrPriceChange1h:
		a.PriceChange1h = v
	case AttrVolume24hUSD:
		a.Volume24hUSD = v
	case AttrLiquidityUSD:
		a.LiquidityUSD = v
	case AttrMarketCapUSD:
		a.MarketCapUSD = v
	case AttrAgeSeconds:
		a.AgeSeconds = v
	case AttrTopHolderPct:
		a.TopHolderPct = v
	}
}
