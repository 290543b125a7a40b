package entity

import "time"

// PriceRange bounds extracted from a message. Either side may be open.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SearchIntent is the structured reading of one incoming message.
// Built once per message, never persisted.
type SearchIntent struct {
	Keywords   []string    `json:"keywords"`
	Category   string      `json:"category,omitempty"`
	PriceRange *PriceRange `json:"price_range,omitempty"`
	Confidence float64     `json:"confidence"`
}

// ProductSearchRequest is the normalized parameter set sent upstream.
type ProductSearchRequest struct {
	Keywords   string   `json:"keywords"`
	CategoryID string   `json:"category_id,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	PageNo     int      `json:"page_no"`
	PageSize   int      `json:"page_size"`
	Sort       string   `json:"sort"`
	Currency   string   `json:"currency"`
	Language   string   `json:"language"`
}

// CommissionInfo is present only when the upstream item carries commission data.
type CommissionInfo struct {
	Rate           float64 `json:"rate"`
	HotProductRate float64 `json:"hot_product_rate,omitempty"`
}

// RawProduct is one upstream search result, read-only within the pipeline.
type RawProduct struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	DetailURL     string          `json:"detail_url"`
	ImageURL      string          `json:"image_url"`
	OriginalPrice float64         `json:"original_price"`
	SalePrice     float64         `json:"sale_price"`
	Currency      string          `json:"currency"`
	CategoryID    string          `json:"category_id,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	SellerID      string          `json:"seller_id,omitempty"`
	SellerName    string          `json:"seller_name,omitempty"`
	OrderVolume   int             `json:"order_volume"`
	Rating        float64         `json:"rating"`
	Commission    *CommissionInfo `json:"commission,omitempty"`
}

// AffiliateLink is a tracked redirect for one product URL.
// When generation is unavailable AffiliateURL equals OriginalURL; the
// Generated flag keeps the degraded path inspectable without changing
// the external shape.
type AffiliateLink struct {
	OriginalURL  string `json:"original_url"`
	AffiliateURL string `json:"affiliate_url"`
	ShortURL     string `json:"short_url,omitempty"`
	TrackingID   string `json:"tracking_id"`
	Generated    bool   `json:"-"`
}

type PriceBlock struct {
	Current         float64 `json:"current"`
	Original        float64 `json:"original,omitempty"`
	Currency        string  `json:"currency"`
	DiscountPercent int     `json:"discount_percent,omitempty"`
}

type SellerBlock struct {
	Name   string  `json:"name,omitempty"`
	Rating float64 `json:"rating"`
	Orders int     `json:"orders"`
}

// ProductCard is the chat-displayable unit: a RawProduct merged with its
// AffiliateLink. Rebuilt per search, never stored on its own.
type ProductCard struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	ImageURL       string      `json:"image_url"`
	Price          PriceBlock  `json:"price"`
	Seller         SellerBlock `json:"seller"`
	AffiliateURL   string      `json:"affiliate_url"`
	OriginalURL    string      `json:"original_url"`
	RelevanceScore float64     `json:"relevance_score"`
}

type SearchResponse struct {
	Products     []ProductCard `json:"products"`
	TotalResults int           `json:"total_results"`
	CurrentPage  int           `json:"current_page"`
	TotalPages   int           `json:"total_pages"`
	SearchTimeMS int64         `json:"search_time_ms"`
	Cached       bool          `json:"cached"`
}

// RateLimitResult reports one fixed-window check.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// ProcessResult is the sole outcome shape of the pipeline. Failures
// surface as a user-displayable Error string, never as a Go error.
type ProcessResult struct {
	IsProductSearch bool            `json:"is_product_search"`
	Response        *SearchResponse `json:"response,omitempty"`
	Suggestions     []string        `json:"suggestions,omitempty"`
	Error           string          `json:"error,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CacheStats struct {
	SearchKeys    int `json:"search_keys"`
	AffiliateKeys int `json:"affiliate_keys"`
	RateLimitKeys int `json:"ratelimit_keys"`
}

type PopularSearch struct {
	Term string `json:"term"`
	Hits int64  `json:"hits"`
}

type Stats struct {
	Cache           CacheStats      `json:"cache"`
	PopularSearches []PopularSearch `json:"popular_searches"`
}
