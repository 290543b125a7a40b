package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealseek-core/internal/domain/entity"
)

func newTestClient(baseURL string) *AliExpressClient {
	return NewAliExpressClient(baseURL, "test_key", "test_secret", "test_pid", 5*time.Second)
}

func floatPtr(v float64) *float64 { return &v }

const searchEnvelope = `{
	"aliexpress_affiliate_product_query_response": {
		"resp_result": {
			"result": {
				"total_record_count": 42,
				"products": {
					"product": [
						{
							"product_id": 1005001234567890,
							"product_title": "Wireless Earbuds Bluetooth 5.3",
							"product_detail_url": "https://www.aliexpress.com/item/1005001234567890.html",
							"product_main_image_url": "https://ae01.alicdn.com/kf/earbuds.jpg",
							"original_price": "29.99",
							"sale_price": "15.99",
							"sale_price_currency": "USD",
							"first_level_category_id": 44,
							"first_level_category_name": "Consumer Electronics",
							"shop_id": 912345,
							"shop_name": "AudioTech Official Store",
							"lastest_volume": 5421,
							"evaluate_rate": "94.0%",
							"commission_rate": "7.0%",
							"hot_product_commission_rate": "9.0%"
						},
						{
							"product_id": 1005009999999999,
							"product_title": "Item With Broken Numbers",
							"product_detail_url": "https://www.aliexpress.com/item/1005009999999999.html",
							"original_price": "",
							"sale_price": "not-a-number",
							"evaluate_rate": "garbage"
						}
					]
				}
			}
		}
	}
}`

func TestSearchProductsParsesEnvelope(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
			return
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(searchEnvelope))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	products, total, err := c.SearchProducts(context.Background(), &entity.ProductSearchRequest{
		Keywords: "wireless earbuds",
		MaxPrice: floatPtr(20),
	})
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}

	if total != 42 {
		t.Errorf("total = %d, want 42", total)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	p := products[0]
	if p.ID != "1005001234567890" {
		t.Errorf("ID = %s", p.ID)
	}
	if p.SalePrice != 15.99 || p.OriginalPrice != 29.99 {
		t.Errorf("prices = %v/%v", p.SalePrice, p.OriginalPrice)
	}
	if p.OrderVolume != 5421 {
		t.Errorf("order volume = %d", p.OrderVolume)
	}
	if p.Rating != 4.7 {
		t.Errorf("rating = %v, want 4.7", p.Rating)
	}
	if p.Commission == nil || p.Commission.Rate != 7.0 {
		t.Errorf("commission = %+v", p.Commission)
	}

	// broken numeric fields default to zero, never fail the parse
	broken := products[1]
	if broken.SalePrice != 0 || broken.OriginalPrice != 0 || broken.Rating != 0 {
		t.Errorf("broken numbers not defaulted: %+v", broken)
	}
	if broken.Commission != nil {
		t.Error("commission should be absent when the upstream omits it")
	}

	t.Run("RequestParameters", func(t *testing.T) {
		if gotForm["method"] != "aliexpress.affiliate.product.query" {
			t.Errorf("method = %s", gotForm["method"])
		}
		if gotForm["sign"] == "" {
			t.Error("request not signed")
		}
		if gotForm["keywords"] != "wireless earbuds" {
			t.Errorf("keywords = %s", gotForm["keywords"])
		}
		if gotForm["max_sale_price"] != "20.00" {
			t.Errorf("max_sale_price = %s", gotForm["max_sale_price"])
		}
		// unset parameters must be dropped before signing
		if _, ok := gotForm["min_sale_price"]; ok {
			t.Error("min_sale_price sent despite being unset")
		}
		if _, ok := gotForm["category_ids"]; ok {
			t.Error("category_ids sent despite being unset")
		}
		if gotForm["page_no"] != "1" || gotForm["page_size"] != "20" {
			t.Errorf("paging = %s/%s", gotForm["page_no"], gotForm["page_size"])
		}
		if gotForm["target_currency"] != "USD" || gotForm["target_language"] != "EN" {
			t.Errorf("locale = %s/%s", gotForm["target_currency"], gotForm["target_language"])
		}
	})
}

func TestSearchProductsPageSizeCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("page_size"); got != "50" {
			t.Errorf("page_size = %s, want 50", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, _, err := c.SearchProducts(context.Background(), &entity.ProductSearchRequest{Keywords: "x", PageSize: 500}); err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
}

func TestSearchProductsMalformedEnvelopeIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error_response":{"code":25,"msg":"Invalid method"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	products, total, err := c.SearchProducts(context.Background(), &entity.ProductSearchRequest{Keywords: "x"})
	if err != nil {
		t.Fatalf("malformed envelope must not fail: %v", err)
	}
	if len(products) != 0 || total != 0 {
		t.Errorf("got %d products, total %d; want empty", len(products), total)
	}
}

func TestSearchProductsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, _, err := c.SearchProducts(context.Background(), &entity.ProductSearchRequest{Keywords: "x"})
	if !errors.Is(err, entity.ErrAPIFailure) {
		t.Errorf("err = %v, want ErrAPIFailure", err)
	}
}

func TestGenerateAffiliateLinksAllFallbackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	urls := []string{
		"https://www.aliexpress.com/item/1.html",
		"https://www.aliexpress.com/item/2.html",
		"https://www.aliexpress.com/item/3.html",
	}
	c := newTestClient(server.URL)
	links := c.GenerateAffiliateLinks(context.Background(), urls)

	if len(links) != len(urls) {
		t.Fatalf("got %d links, want %d", len(links), len(urls))
	}
	for i, link := range links {
		if link.OriginalURL != urls[i] {
			t.Errorf("links[%d] out of order: %s", i, link.OriginalURL)
		}
		if link.AffiliateURL != link.OriginalURL {
			t.Errorf("links[%d] is not a pass-through: %s", i, link.AffiliateURL)
		}
		if link.TrackingID != "test_pid" {
			t.Errorf("links[%d] tracking id = %s", i, link.TrackingID)
		}
		if link.Generated {
			t.Errorf("links[%d] marked generated on a failed call", i)
		}
	}
}

func TestGenerateAffiliateLinksPartialMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"aliexpress_affiliate_link_generate_response": {
				"resp_result": {
					"result": {
						"promotion_links": {
							"promotion_link": [
								{
									"source_value": "https://www.aliexpress.com/item/1.html",
									"promotion_link": "https://s.click.aliexpress.com/e/_abc123"
								}
							]
						}
					}
				}
			}
		}`))
	}))
	defer server.Close()

	urls := []string{
		"https://www.aliexpress.com/item/1.html",
		"https://www.aliexpress.com/item/2.html",
	}
	c := newTestClient(server.URL)
	links := c.GenerateAffiliateLinks(context.Background(), urls)

	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if !links[0].Generated || links[0].AffiliateURL != "https://s.click.aliexpress.com/e/_abc123" {
		t.Errorf("matched link wrong: %+v", links[0])
	}
	if links[1].Generated || links[1].AffiliateURL != urls[1] {
		t.Errorf("unmatched link should be pass-through: %+v", links[1])
	}
}

func TestGetCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("method"); got != "aliexpress.affiliate.category.get" {
			t.Errorf("method = %s", got)
		}
		w.Write([]byte(`{
			"aliexpress_affiliate_category_get_response": {
				"resp_result": {
					"result": {
						"categories": {
							"category": [
								{"category_id": 44, "category_name": "Consumer Electronics"},
								{"category_id": 15, "category_name": "Home & Garden"}
							]
						}
					}
				}
			}
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	categories, err := c.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(categories) != 2 || categories[0].ID != "44" || categories[1].Name != "Home & Garden" {
		t.Errorf("categories = %+v", categories)
	}
}
