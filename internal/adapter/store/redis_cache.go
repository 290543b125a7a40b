package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dealseek-core/internal/domain/entity"
)

const (
	keyPrefix        = "aliexpress:"
	searchPrefix     = keyPrefix + "search:"
	affiliatePrefix  = keyPrefix + "affiliate:"
	rateLimitPrefix  = keyPrefix + "ratelimit:"
	popularSearchKey = keyPrefix + "popular_searches"

	searchTTL    = time.Hour
	affiliateTTL = 24 * time.Hour

	popularSearchLimit = 1000
)

// rateLimitScript checks and advances a fixed-window counter atomically.
// At the limit the counter is left untouched, so it never grows past what
// `limit` allowed calls produce.
var rateLimitScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
  return {0, 0, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, limit - current, redis.call('PTTL', KEYS[1])}
`)

// RedisCache implements repository.ResultCache on go-redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// hashKey digests the cache-key inputs with the same algorithm the request
// signer uses. Collisions are accepted as negligible here.
func hashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func searchKey(req *entity.ProductSearchRequest) string {
	return searchPrefix + hashKey(
		req.Keywords,
		req.CategoryID,
		formatBound(req.MinPrice),
		formatBound(req.MaxPrice),
		fmt.Sprintf("%d", req.PageNo),
	)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func affiliateKey(originalURL string) string {
	return affiliatePrefix + hashKey(originalURL)
}

func (r *RedisCache) GetSearch(ctx context.Context, req *entity.ProductSearchRequest) (*entity.SearchResponse, error) {
	val, err := r.client.Get(ctx, searchKey(req)).Result()
	if err == redis.Nil {
		return nil, entity.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var resp entity.SearchResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, entity.ErrCacheMiss
	}
	return &resp, nil
}

// SetSearch stores the response with cached:true stamped in, so a later
// hit already carries the flag.
func (r *RedisCache) SetSearch(ctx context.Context, req *entity.ProductSearchRequest, resp *entity.SearchResponse) error {
	stamped := *resp
	stamped.Cached = true
	data, err := json.Marshal(&stamped)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, searchKey(req), data, searchTTL).Err()
}

// GetAffiliateLinks bulk-fetches cached links; URLs without a cached link
// are simply absent from the returned map.
func (r *RedisCache) GetAffiliateLinks(ctx context.Context, urls []string) (map[string]*entity.AffiliateLink, error) {
	if len(urls) == 0 {
		return map[string]*entity.AffiliateLink{}, nil
	}

	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = affiliateKey(u)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	links := make(map[string]*entity.AffiliateLink, len(urls))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var link entity.AffiliateLink
		if err := json.Unmarshal([]byte(s), &link); err != nil {
			continue
		}
		link.Generated = true
		links[urls[i]] = &link
	}
	return links, nil
}

func (r *RedisCache) SetAffiliateLink(ctx context.Context, link *entity.AffiliateLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, affiliateKey(link.OriginalURL), data, affiliateTTL).Err()
}

// CheckRateLimit runs one fixed-window check for (service, identifier).
func (r *RedisCache) CheckRateLimit(ctx context.Context, service, identifier string, limit int, window time.Duration) (*entity.RateLimitResult, error) {
	key := rateLimitPrefix + service + ":" + identifier

	res, err := rateLimitScript.Run(ctx, r.client, []string{key}, limit, window.Milliseconds()).Result()
	if err != nil {
		return nil, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return nil, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}
	allowed := toInt64(vals[0]) == 1
	remaining := int(toInt64(vals[1]))
	pttl := toInt64(vals[2])

	resetAfter := window
	if pttl > 0 {
		resetAfter = time.Duration(pttl) * time.Millisecond
	}
	return &entity.RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   time.Now().Add(resetAfter),
	}, nil
}

func toInt64(v interface{}) int64 {
	n, _ := v.(int64)
	return n
}

// TrackSearch bumps the term in the popularity ranking and trims the set
// to the top entries.
func (r *RedisCache) TrackSearch(ctx context.Context, term string) error {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.ZIncrBy(ctx, popularSearchKey, 1, term)
	pipe.ZRemRangeByRank(ctx, popularSearchKey, 0, -(popularSearchLimit + 1))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisCache) PopularSearches(ctx context.Context, n int) ([]entity.PopularSearch, error) {
	if n <= 0 {
		return []entity.PopularSearch{}, nil
	}
	members, err := r.client.ZRevRangeWithScores(ctx, popularSearchKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	searches := make([]entity.PopularSearch, 0, len(members))
	for _, m := range members {
		term, ok := m.Member.(string)
		if !ok {
			continue
		}
		searches = append(searches, entity.PopularSearch{Term: term, Hits: int64(m.Score)})
	}
	return searches, nil
}

// Stats counts live keys per category. SCAN keeps this safe on shared
// instances; key volume here is small.
func (r *RedisCache) Stats(ctx context.Context) (*entity.CacheStats, error) {
	search, err := r.countKeys(ctx, searchPrefix+"*")
	if err != nil {
		return nil, err
	}
	affiliate, err := r.countKeys(ctx, affiliatePrefix+"*")
	if err != nil {
		return nil, err
	}
	rateLimit, err := r.countKeys(ctx, rateLimitPrefix+"*")
	if err != nil {
		return nil, err
	}
	return &entity.CacheStats{
		SearchKeys:    search,
		AffiliateKeys: affiliate,
		RateLimitKeys: rateLimit,
	}, nil
}

func (r *RedisCache) countKeys(ctx context.Context, pattern string) (int, error) {
	var count int
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}
