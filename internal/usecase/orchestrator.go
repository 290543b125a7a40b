package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealseek-core/internal/config"
	"dealseek-core/internal/domain/entity"
	"dealseek-core/internal/domain/repository"
)

// categoryIDs maps detected category names onto the provider's top-level
// category ids. An unknown or absent category means no filter.
var categoryIDs = map[string]string{
	"electronics": "44",
	"clothing":    "100003109",
	"home":        "15",
	"beauty":      "66",
	"sports":      "18",
	"toys":        "26",
	"automotive":  "34",
}

// Orchestrator composes the pipeline: intent parsing, rate limiting,
// caching, the upstream client, affiliate enrichment and ranking.
type Orchestrator struct {
	cache repository.ResultCache
	api   repository.ProductAPI
	cfg   *config.Config
}

func NewOrchestrator(cache repository.ResultCache, api repository.ProductAPI, cfg *config.Config) *Orchestrator {
	return &Orchestrator{cache: cache, api: api, cfg: cfg}
}

// ProcessMessage is the sole entry point. It never returns a Go error:
// every failure path terminates in a ProcessResult with at most a
// user-displayable Error string.
func (o *Orchestrator) ProcessMessage(ctx context.Context, message, userID string) *entity.ProcessResult {
	start := time.Now()
	reqID := uuid.NewString()[:8]

	intent := ParseIntent(message)
	if intent.Confidence <= productSearchThreshold {
		return &entity.ProcessResult{
			IsProductSearch: false,
			Suggestions:     BuildSuggestions(intent),
		}
	}

	if o.cfg.DemoMode() {
		log.Printf("[ORCHESTRATOR] %s demo mode: serving from local catalog", reqID)
		return &entity.ProcessResult{
			IsProductSearch: true,
			Response:        o.demoResponse(intent, start),
		}
	}

	if userID == "" {
		userID = "anonymous"
	}

	if result := o.checkRateLimits(ctx, userID); result != nil {
		return result
	}

	resp, err := o.liveSearch(ctx, reqID, intent)
	if err != nil {
		// fall back to the offline catalog; intent already qualified
		log.Printf("[ORCHESTRATOR] %s live search failed, falling back to demo data: %v", reqID, err)
		return &entity.ProcessResult{
			IsProductSearch: true,
			Response:        o.demoResponse(intent, start),
		}
	}

	return &entity.ProcessResult{IsProductSearch: true, Response: resp}
}

// checkRateLimits enforces the per-second and, when configured, the
// per-day search quotas. Returns nil when the request may proceed.
func (o *Orchestrator) checkRateLimits(ctx context.Context, userID string) *entity.ProcessResult {
	limits := []struct {
		service string
		limit   int
		window  time.Duration
	}{
		{"search", o.cfg.SearchPerSecond, time.Second},
		{"search:daily", o.cfg.SearchPerDay, 24 * time.Hour},
	}

	for _, l := range limits {
		if l.limit <= 0 {
			continue
		}
		rl, err := o.cache.CheckRateLimit(ctx, l.service, userID, l.limit, l.window)
		if err != nil {
			// a broken limiter must not take the pipeline down
			log.Printf("[ORCHESTRATOR] rate limit check failed for %s: %v", l.service, err)
			continue
		}
		if !rl.Allowed {
			retry := int(math.Ceil(time.Until(rl.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			return &entity.ProcessResult{
				IsProductSearch: true,
				Error:           fmt.Sprintf("You're searching too fast. Please retry in %d seconds.", retry),
			}
		}
	}
	return nil
}

func (o *Orchestrator) liveSearch(ctx context.Context, reqID string, intent *entity.SearchIntent) (*entity.SearchResponse, error) {
	start := time.Now()
	req := o.buildRequest(intent)

	if cached, err := o.cache.GetSearch(ctx, req); err == nil {
		log.Printf("[ORCHESTRATOR] %s cache hit for %q", reqID, req.Keywords)
		return cached, nil
	}

	products, total, err := o.api.SearchProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	links := o.enrichWithAffiliateLinks(ctx, products)
	cards := buildCards(products, links)

	totalPages := 0
	if total > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}
	resp := &entity.SearchResponse{
		Products:     cards,
		TotalResults: total,
		CurrentPage:  req.PageNo,
		TotalPages:   totalPages,
		SearchTimeMS: time.Since(start).Milliseconds(),
		Cached:       false,
	}

	if err := o.cache.SetSearch(ctx, req, resp); err != nil {
		log.Printf("[ORCHESTRATOR] %s cache write failed: %v", reqID, err)
	}
	if err := o.cache.TrackSearch(ctx, strings.Join(intent.Keywords, " ")); err != nil {
		log.Printf("[ORCHESTRATOR] %s popularity tracking failed: %v", reqID, err)
	}
	return resp, nil
}

func (o *Orchestrator) buildRequest(intent *entity.SearchIntent) *entity.ProductSearchRequest {
	req := &entity.ProductSearchRequest{
		Keywords: strings.Join(intent.Keywords, " "),
		PageNo:   1,
		PageSize: o.cfg.PageSize,
		Currency: o.cfg.Currency,
		Language: o.cfg.Language,
	}
	if id, ok := categoryIDs[intent.Category]; ok {
		req.CategoryID = id
	}
	if intent.PriceRange != nil {
		req.MinPrice = intent.PriceRange.Min
		req.MaxPrice = intent.PriceRange.Max
	}
	return req
}

// enrichWithAffiliateLinks resolves one link per product URL: cached links
// first, then a single batched generation call for the uncached subset.
// Only generated links are written back; pass-throughs are never cached.
func (o *Orchestrator) enrichWithAffiliateLinks(ctx context.Context, products []entity.RawProduct) map[string]entity.AffiliateLink {
	urls := make([]string, 0, len(products))
	for _, p := range products {
		if p.DetailURL != "" {
			urls = append(urls, p.DetailURL)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	resolved := make(map[string]entity.AffiliateLink, len(urls))
	cached, err := o.cache.GetAffiliateLinks(ctx, urls)
	if err != nil {
		log.Printf("[ORCHESTRATOR] affiliate link cache read failed: %v", err)
		cached = nil
	}
	var missing []string
	for _, u := range urls {
		if link, ok := cached[u]; ok {
			resolved[u] = *link
		} else {
			missing = append(missing, u)
		}
	}

	if len(missing) > 0 && o.affiliateCallAllowed(ctx) {
		for _, link := range o.api.GenerateAffiliateLinks(ctx, missing) {
			resolved[link.OriginalURL] = link
			if link.Generated {
				if err := o.cache.SetAffiliateLink(ctx, &link); err != nil {
					log.Printf("[ORCHESTRATOR] affiliate link cache write failed: %v", err)
				}
			}
		}
	}
	return resolved
}

// affiliateCallAllowed gates link generation on the affiliate-service
// quotas. A denial is not an error: missing links fall back to the
// product's own URL downstream. The quota is provider-wide, hence the
// fixed identifier.
func (o *Orchestrator) affiliateCallAllowed(ctx context.Context) bool {
	limits := []struct {
		service string
		limit   int
		window  time.Duration
	}{
		{"affiliate", o.cfg.AffiliatePerSecond, time.Second},
		{"affiliate:daily", o.cfg.AffiliatePerDay, 24 * time.Hour},
	}
	for _, l := range limits {
		if l.limit <= 0 {
			continue
		}
		rl, err := o.cache.CheckRateLimit(ctx, l.service, "global", l.limit, l.window)
		if err != nil {
			log.Printf("[ORCHESTRATOR] affiliate rate limit check failed: %v", err)
			continue
		}
		if !rl.Allowed {
			log.Printf("[ORCHESTRATOR] affiliate quota exhausted, skipping link generation")
			return false
		}
	}
	return true
}

// buildCards merges products with their links and scores relevance.
// Scores are advisory metadata: the upstream ordering is preserved.
func buildCards(products []entity.RawProduct, links map[string]entity.AffiliateLink) []entity.ProductCard {
	cards := make([]entity.ProductCard, 0, len(products))
	for i, p := range products {
		affiliateURL := p.DetailURL
		if link, ok := links[p.DetailURL]; ok {
			affiliateURL = link.AffiliateURL
		}
		cards = append(cards, entity.ProductCard{
			ID:       p.ID,
			Title:    p.Title,
			ImageURL: p.ImageURL,
			Price: entity.PriceBlock{
				Current:         p.SalePrice,
				Original:        p.OriginalPrice,
				Currency:        p.Currency,
				DiscountPercent: discountPercent(p.OriginalPrice, p.SalePrice),
			},
			Seller: entity.SellerBlock{
				Name:   p.SellerName,
				Rating: p.Rating,
				Orders: p.OrderVolume,
			},
			AffiliateURL:   affiliateURL,
			OriginalURL:    p.DetailURL,
			RelevanceScore: relevanceScore(p, i),
		})
	}
	return cards
}

// relevanceScore decays with list position and rewards seller quality and
// commission presence. Deterministic for identical input.
func relevanceScore(p entity.RawProduct, position int) float64 {
	score := 1.0 - 0.05*float64(position)
	switch {
	case p.Rating > 4.5:
		score += 0.1
	case p.Rating > 4.0:
		score += 0.05
	}
	switch {
	case p.OrderVolume > 1000:
		score += 0.1
	case p.OrderVolume > 100:
		score += 0.05
	}
	if p.Commission != nil {
		score += 0.05
	}
	return clamp(score, 0, 1)
}

func discountPercent(original, sale float64) int {
	if original <= 0 || sale >= original {
		return 0
	}
	return int(math.Round((1 - sale/original) * 100))
}

func (o *Orchestrator) demoResponse(intent *entity.SearchIntent, start time.Time) *entity.SearchResponse {
	matches := demoSearch(intent)
	links := make(map[string]entity.AffiliateLink, len(matches))
	for _, p := range matches {
		links[p.DetailURL] = entity.AffiliateLink{
			OriginalURL:  p.DetailURL,
			AffiliateURL: p.DetailURL,
			TrackingID:   o.cfg.TrackingID,
		}
	}
	totalPages := 0
	if len(matches) > 0 {
		totalPages = 1
	}
	return &entity.SearchResponse{
		Products:     buildCards(matches, links),
		TotalResults: len(matches),
		CurrentPage:  1,
		TotalPages:   totalPages,
		SearchTimeMS: time.Since(start).Milliseconds(),
		Cached:       false,
	}
}

// Stats exposes read-only cache introspection plus the most popular
// search terms.
func (o *Orchestrator) Stats(ctx context.Context) (*entity.Stats, error) {
	cacheStats, err := o.cache.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache stats failed: %w", err)
	}
	popular, err := o.cache.PopularSearches(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("popular searches failed: %w", err)
	}
	return &entity.Stats{Cache: *cacheStats, PopularSearches: popular}, nil
}
