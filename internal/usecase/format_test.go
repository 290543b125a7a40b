package usecase

import (
	"strings"
	"testing"

	"dealseek-core/internal/domain/entity"
)

func formatFixture(n int, cached bool) *entity.SearchResponse {
	products := make([]entity.ProductCard, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, entity.ProductCard{
			ID:    "p" + string(rune('0'+i)),
			Title: "Product " + string(rune('A'+i)),
			Price: entity.PriceBlock{Current: 15.99, Original: 29.99, Currency: "USD", DiscountPercent: 47},
			Seller: entity.SellerBlock{
				Name: "Shop", Rating: 4.7, Orders: 5421,
			},
			AffiliateURL: "https://s.click.aliexpress.com/e/_abc",
		})
	}
	return &entity.SearchResponse{
		Products:     products,
		TotalResults: n,
		SearchTimeMS: 432,
		Cached:       cached,
	}
}

func TestFormatProductsForChat(t *testing.T) {
	out := FormatProductsForChat(formatFixture(7, false), "wireless earbuds")

	if !strings.HasPrefix(out, `Found 7 products for "wireless earbuds":`) {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "1. **Product A**") {
		t.Error("first entry missing")
	}
	if !strings.Contains(out, "5. **Product E**") {
		t.Error("fifth entry missing")
	}
	if strings.Contains(out, "6. **Product F**") {
		t.Error("display must cap at five entries")
	}
	if !strings.Contains(out, "...and 2 more results.") {
		t.Error("truncation note missing")
	}
	if !strings.Contains(out, "$15.99 ~~$29.99~~ (-47%)") {
		t.Errorf("discount line missing:\n%s", out)
	}
	if !strings.Contains(out, "Rating: 4.7 | 5421 orders") {
		t.Error("seller line missing")
	}
	if !strings.Contains(out, "[View product](https://s.click.aliexpress.com/e/_abc)") {
		t.Error("markdown link missing")
	}
	if !strings.Contains(out, "Search took 432ms") {
		t.Error("elapsed time missing")
	}
	if strings.Contains(out, "(cached result)") {
		t.Error("uncached response marked cached")
	}
}

func TestFormatProductsForChatCachedSuffix(t *testing.T) {
	out := FormatProductsForChat(formatFixture(2, true), "earbuds")
	if !strings.HasSuffix(out, "Search took 432ms (cached result)") {
		t.Errorf("cached suffix missing:\n%s", out)
	}
	if strings.Contains(out, "more results") {
		t.Error("truncation note present with two results")
	}
}

func TestFormatProductsForChatNoDiscount(t *testing.T) {
	resp := formatFixture(1, false)
	resp.Products[0].Price = entity.PriceBlock{Current: 9.99, Currency: "USD"}
	out := FormatProductsForChat(resp, "earbuds")
	if strings.Contains(out, "~~") {
		t.Error("strike-through shown without a discount")
	}
	if !strings.Contains(out, "$9.99") {
		t.Error("current price missing")
	}
}

func TestFormatProductsForChatEmpty(t *testing.T) {
	out := FormatProductsForChat(&entity.SearchResponse{}, "unobtainium")
	if !strings.Contains(out, `No products found for "unobtainium"`) {
		t.Errorf("empty-result message wrong:\n%s", out)
	}
}

func TestFormatDeterministic(t *testing.T) {
	resp := formatFixture(3, false)
	if FormatProductsForChat(resp, "q") != FormatProductsForChat(resp, "q") {
		t.Error("formatting is not a pure function of its inputs")
	}
}
