package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dealseek-core/internal/domain/entity"
)

const (
	methodProductQuery = "aliexpress.affiliate.product.query"
	methodLinkGenerate = "aliexpress.affiliate.link.generate"
	methodCategoryGet  = "aliexpress.affiliate.category.get"

	maxPageSize     = 50
	defaultPageSize = 20
	defaultSort     = "SALE_PRICE_ASC"
	defaultCurrency = "USD"
	defaultLanguage = "EN"
)

// AliExpressClient talks to the affiliate Open API: one endpoint, POST
// form bodies, operation selected by the `method` parameter, every
// request signed per the provider's MD5 scheme.
type AliExpressClient struct {
	httpClient *http.Client
	baseURL    string
	appKey     string
	appSecret  string
	trackingID string
}

func NewAliExpressClient(baseURL, appKey, appSecret, trackingID string, timeout time.Duration) *AliExpressClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AliExpressClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		appKey:     appKey,
		appSecret:  appSecret,
		trackingID: trackingID,
	}
}

// baseParams returns the fixed protocol markers every call carries.
func (c *AliExpressClient) baseParams(method string) map[string]string {
	return map[string]string{
		"method":      method,
		"app_key":     c.appKey,
		"timestamp":   strconv.FormatInt(time.Now().UnixMilli(), 10),
		"format":      "json",
		"v":           "2.0",
		"sign_method": "md5",
	}
}

// call signs the parameter set and POSTs it form-encoded. Unset keys must
// already be absent from params: the signature covers exactly what is sent.
func (c *AliExpressClient) call(ctx context.Context, params map[string]string) ([]byte, error) {
	params["sign"] = Sign(params, c.appSecret)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// rawProductPayload mirrors the upstream JSON for one product. Numeric
// fields arrive as strings and are parsed defensively downstream.
type rawProductPayload struct {
	ProductID              json.Number `json:"product_id"`
	ProductTitle           string      `json:"product_title"`
	ProductDetailURL       string      `json:"product_detail_url"`
	ProductMainImageURL    string      `json:"product_main_image_url"`
	OriginalPrice          string      `json:"original_price"`
	SalePrice              string      `json:"sale_price"`
	SalePriceCurrency      string      `json:"sale_price_currency"`
	FirstLevelCategoryID   json.Number `json:"first_level_category_id"`
	FirstLevelCategoryName string      `json:"first_level_category_name"`
	ShopID                 json.Number `json:"shop_id"`
	ShopName               string      `json:"shop_name"`
	LastestVolume          json.Number `json:"lastest_volume"`
	EvaluateRate           string      `json:"evaluate_rate"`
	CommissionRate         string      `json:"commission_rate"`
	HotProductCommission   string      `json:"hot_product_commission_rate"`
}

type productQueryEnvelope struct {
	Response struct {
		RespResult struct {
			Result struct {
				TotalRecordCount int `json:"total_record_count"`
				Products         struct {
					Product []rawProductPayload `json:"product"`
				} `json:"products"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_product_query_response"`
}

// SearchProducts issues a product query. Transport and HTTP failures wrap
// entity.ErrAPIFailure for the orchestrator to catch; a missing or
// malformed envelope is indistinguishable from "no results".
func (c *AliExpressClient) SearchProducts(ctx context.Context, req *entity.ProductSearchRequest) ([]entity.RawProduct, int, error) {
	params := c.baseParams(methodProductQuery)
	params["keywords"] = req.Keywords
	if req.CategoryID != "" {
		params["category_ids"] = req.CategoryID
	}
	if req.MinPrice != nil {
		params["min_sale_price"] = formatPrice(*req.MinPrice)
	}
	if req.MaxPrice != nil {
		params["max_sale_price"] = formatPrice(*req.MaxPrice)
	}

	pageNo := req.PageNo
	if pageNo < 1 {
		pageNo = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	params["page_no"] = strconv.Itoa(pageNo)
	params["page_size"] = strconv.Itoa(pageSize)

	params["sort"] = valueOr(req.Sort, defaultSort)
	params["target_currency"] = valueOr(req.Currency, defaultCurrency)
	params["target_language"] = valueOr(req.Language, defaultLanguage)

	body, err := c.call(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrAPIFailure, err)
	}

	var envelope productQueryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[ALIEXPRESS] unexpected search envelope, treating as empty: %v", err)
		return []entity.RawProduct{}, 0, nil
	}

	result := envelope.Response.RespResult.Result
	products := make([]entity.RawProduct, 0, len(result.Products.Product))
	for _, p := range result.Products.Product {
		products = append(products, parseRawProduct(p))
	}
	return products, result.TotalRecordCount, nil
}

func parseRawProduct(p rawProductPayload) entity.RawProduct {
	product := entity.RawProduct{
		ID:            p.ProductID.String(),
		Title:         p.ProductTitle,
		DetailURL:     p.ProductDetailURL,
		ImageURL:      p.ProductMainImageURL,
		OriginalPrice: parseFloat(p.OriginalPrice),
		SalePrice:     parseFloat(p.SalePrice),
		Currency:      p.SalePriceCurrency,
		CategoryID:    p.FirstLevelCategoryID.String(),
		CategoryName:  p.FirstLevelCategoryName,
		SellerID:      p.ShopID.String(),
		SellerName:    p.ShopName,
		OrderVolume:   int(parseFloat(p.LastestVolume.String())),
		Rating:        parseRating(p.EvaluateRate),
	}
	if p.CommissionRate != "" {
		product.Commission = &entity.CommissionInfo{
			Rate:           parsePercent(p.CommissionRate),
			HotProductRate: parsePercent(p.HotProductCommission),
		}
	}
	return product
}

type linkGenerateEnvelope struct {
	Response struct {
		RespResult struct {
			Result struct {
				PromotionLinks struct {
					PromotionLink []struct {
						SourceValue   string `json:"source_value"`
						PromotionLink string `json:"promotion_link"`
						ShortLink     string `json:"short_link"`
					} `json:"promotion_link"`
				} `json:"promotion_links"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_link_generate_response"`
}

// GenerateAffiliateLinks converts product URLs into tracked promotion
// links. The result always has one entry per input URL in input order;
// any upstream failure or unmatched URL degrades to a pass-through link
// so callers never observe an error from this operation.
func (c *AliExpressClient) GenerateAffiliateLinks(ctx context.Context, urls []string) []entity.AffiliateLink {
	links := make([]entity.AffiliateLink, 0, len(urls))
	matched := c.fetchPromotionLinks(ctx, urls)
	for _, u := range urls {
		if link, ok := matched[u]; ok {
			links = append(links, link)
			continue
		}
		links = append(links, entity.AffiliateLink{
			OriginalURL:  u,
			AffiliateURL: u,
			TrackingID:   c.trackingID,
			Generated:    false,
		})
	}
	return links
}

func (c *AliExpressClient) fetchPromotionLinks(ctx context.Context, urls []string) map[string]entity.AffiliateLink {
	if len(urls) == 0 {
		return nil
	}

	params := c.baseParams(methodLinkGenerate)
	params["source_values"] = strings.Join(urls, ",")
	params["promotion_link_type"] = "0"
	params["tracking_id"] = c.trackingID

	body, err := c.call(ctx, params)
	if err != nil {
		log.Printf("[ALIEXPRESS] link generation failed, using pass-through links: %v", err)
		return nil
	}

	var envelope linkGenerateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[ALIEXPRESS] unexpected link envelope, using pass-through links: %v", err)
		return nil
	}

	matched := make(map[string]entity.AffiliateLink)
	for _, pl := range envelope.Response.RespResult.Result.PromotionLinks.PromotionLink {
		if pl.SourceValue == "" || pl.PromotionLink == "" {
			continue
		}
		matched[pl.SourceValue] = entity.AffiliateLink{
			OriginalURL:  pl.SourceValue,
			AffiliateURL: pl.PromotionLink,
			ShortURL:     pl.ShortLink,
			TrackingID:   c.trackingID,
			Generated:    true,
		}
	}
	return matched
}

type categoryGetEnvelope struct {
	Response struct {
		RespResult struct {
			Result struct {
				Categories struct {
					Category []struct {
						CategoryID   json.Number `json:"category_id"`
						CategoryName string      `json:"category_name"`
					} `json:"category"`
				} `json:"categories"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_category_get_response"`
}

// GetCategories fetches the provider's top-level category list.
func (c *AliExpressClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	body, err := c.call(ctx, c.baseParams(methodCategoryGet))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrAPIFailure, err)
	}

	var envelope categoryGetEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []entity.Category{}, nil
	}

	raw := envelope.Response.RespResult.Result.Categories.Category
	categories := make([]entity.Category, 0, len(raw))
	for _, cat := range raw {
		categories = append(categories, entity.Category{ID: cat.CategoryID.String(), Name: cat.CategoryName})
	}
	return categories, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// parseFloat tolerates the upstream habit of sending numbers as strings;
// anything unparseable becomes 0.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRating maps the upstream percentage rate ("95.4%") onto the
// five-point scale the ranking thresholds use.
func parseRating(s string) float64 {
	return parsePercent(s) / 20.0
}

func parsePercent(s string) float64 {
	return parseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}
