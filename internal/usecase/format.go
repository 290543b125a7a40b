package usecase

import (
	"fmt"
	"strings"

	"dealseek-core/internal/domain/entity"
)

// maxDisplayedProducts caps how many entries the chat card shows.
const maxDisplayedProducts = 5

// FormatProductsForChat renders a SearchResponse as markdown-flavored chat
// text. Pure function of its inputs.
func FormatProductsForChat(resp *entity.SearchResponse, originalQuery string) string {
	if resp == nil || len(resp.Products) == 0 {
		return fmt.Sprintf("No products found for %q. Try different keywords.", originalQuery)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d products for %q:\n\n", resp.TotalResults, originalQuery)

	shown := resp.Products
	if len(shown) > maxDisplayedProducts {
		shown = shown[:maxDisplayedProducts]
	}

	for i, p := range shown {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, p.Title)
		if p.Price.DiscountPercent > 0 {
			fmt.Fprintf(&b, "   %s ~~%s~~ (-%d%%)\n",
				formatMoney(p.Price.Current, p.Price.Currency),
				formatMoney(p.Price.Original, p.Price.Currency),
				p.Price.DiscountPercent)
		} else {
			fmt.Fprintf(&b, "   %s\n", formatMoney(p.Price.Current, p.Price.Currency))
		}
		fmt.Fprintf(&b, "   Rating: %.1f | %d orders\n", p.Seller.Rating, p.Seller.Orders)
		fmt.Fprintf(&b, "   [View product](%s)\n\n", p.AffiliateURL)
	}

	if remaining := len(resp.Products) - len(shown); remaining > 0 {
		fmt.Fprintf(&b, "...and %d more results.\n\n", remaining)
	}

	fmt.Fprintf(&b, "Search took %dms", resp.SearchTimeMS)
	if resp.Cached {
		b.WriteString(" (cached result)")
	}
	return b.String()
}

func formatMoney(v float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}
