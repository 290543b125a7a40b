package repository

import (
	"context"
	"time"

	"dealseek-core/internal/domain/entity"
)

// ResultCache is the injected handle over the key-value backend. Search
// responses live 1h, affiliate links 24h, rate-limit counters for their
// caller-specified window.
type ResultCache interface {
	GetSearch(ctx context.Context, req *entity.ProductSearchRequest) (*entity.SearchResponse, error)
	SetSearch(ctx context.Context, req *entity.ProductSearchRequest, resp *entity.SearchResponse) error

	GetAffiliateLinks(ctx context.Context, urls []string) (map[string]*entity.AffiliateLink, error)
	SetAffiliateLink(ctx context.Context, link *entity.AffiliateLink) error

	CheckRateLimit(ctx context.Context, service, identifier string, limit int, window time.Duration) (*entity.RateLimitResult, error)

	TrackSearch(ctx context.Context, term string) error
	PopularSearches(ctx context.Context, n int) ([]entity.PopularSearch, error)
	Stats(ctx context.Context) (*entity.CacheStats, error)
}

// ProductAPI is the outbound affiliate Open API surface.
type ProductAPI interface {
	// SearchProducts returns the page of products plus the upstream total
	// record count. Transport and HTTP failures surface as
	// entity.ErrAPIFailure; a malformed or empty envelope is zero results.
	SearchProducts(ctx context.Context, req *entity.ProductSearchRequest) ([]entity.RawProduct, int, error)

	// GenerateAffiliateLinks never fails: every input URL yields a link in
	// input order, degrading to a pass-through link when the upstream call
	// or the URL match comes up empty.
	GenerateAffiliateLinks(ctx context.Context, urls []string) []entity.AffiliateLink

	GetCategories(ctx context.Context) ([]entity.Category, error)
}
