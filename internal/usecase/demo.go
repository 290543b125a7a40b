package usecase

import (
	"strings"

	"dealseek-core/internal/domain/entity"
)

// demoCatalog backs the offline mode used when no real API credentials
// are configured. Small on purpose; just enough variety to exercise every
// category and the discount/rating formatting paths.
var demoCatalog = []entity.RawProduct{
	{
		ID: "1005001234567890", Title: "TWS Wireless Earbuds Bluetooth 5.3 with Charging Case",
		DetailURL: "https://www.aliexpress.com/item/1005001234567890.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-earbuds.jpg",
		OriginalPrice: 29.99, SalePrice: 15.99, Currency: "USD",
		CategoryID: "44", CategoryName: "Consumer Electronics",
		SellerID: "912345", SellerName: "AudioTech Official Store",
		OrderVolume: 5421, Rating: 4.7,
		Commission: &entity.CommissionInfo{Rate: 7.0},
	},
	{
		ID: "1005009876543210", Title: "Portable Bluetooth Speaker Waterproof Outdoor",
		DetailURL: "https://www.aliexpress.com/item/1005009876543210.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-speaker.jpg",
		OriginalPrice: 45.00, SalePrice: 32.50, Currency: "USD",
		CategoryID: "44", CategoryName: "Consumer Electronics",
		SellerID: "912345", SellerName: "AudioTech Official Store",
		OrderVolume: 1893, Rating: 4.5,
	},
	{
		ID: "1005002468013579", Title: "Fast Charging USB-C Cable 2m Braided Wireless Charger Pad",
		DetailURL: "https://www.aliexpress.com/item/1005002468013579.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-charger.jpg",
		OriginalPrice: 12.99, SalePrice: 6.49, Currency: "USD",
		CategoryID: "44", CategoryName: "Consumer Electronics",
		SellerID: "330981", SellerName: "PowerUp Direct",
		OrderVolume: 12044, Rating: 4.8,
		Commission: &entity.CommissionInfo{Rate: 5.5},
	},
	{
		ID: "1005003692581470", Title: "Oversized Cotton T-Shirt Streetwear Unisex",
		DetailURL: "https://www.aliexpress.com/item/1005003692581470.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-tshirt.jpg",
		OriginalPrice: 18.00, SalePrice: 9.90, Currency: "USD",
		CategoryID: "100003109", CategoryName: "Apparel",
		SellerID: "771204", SellerName: "Urban Threads",
		OrderVolume: 860, Rating: 4.3,
	},
	{
		ID: "1005005813479260", Title: "LED Desk Lamp Dimmable Home Office Reading Light",
		DetailURL: "https://www.aliexpress.com/item/1005005813479260.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-lamp.jpg",
		OriginalPrice: 24.99, SalePrice: 17.25, Currency: "USD",
		CategoryID: "15", CategoryName: "Home & Garden",
		SellerID: "440556", SellerName: "BrightHome Store",
		OrderVolume: 402, Rating: 4.6,
	},
	{
		ID: "1005007148203695", Title: "Yoga Mat Non-Slip Fitness Exercise 6mm",
		DetailURL: "https://www.aliexpress.com/item/1005007148203695.html",
		ImageURL:  "https://ae01.alicdn.com/kf/demo-yogamat.jpg",
		OriginalPrice: 22.50, SalePrice: 13.80, Currency: "USD",
		CategoryID: "18", CategoryName: "Sports & Entertainment",
		SellerID: "605113", SellerName: "FitGear Shop",
		OrderVolume: 2210, Rating: 4.4,
	},
}

// demoSearch filters the fixed catalog by keyword substring match. This is
// the explicit offline path, not a cache layer: nothing is stored and no
// rate limit applies.
func demoSearch(intent *entity.SearchIntent) []entity.RawProduct {
	if len(intent.Keywords) == 0 {
		return nil
	}
	var matches []entity.RawProduct
	for _, p := range demoCatalog {
		title := strings.ToLower(p.Title)
		for _, kw := range intent.Keywords {
			if strings.Contains(title, kw) {
				matches = append(matches, p)
				break
			}
		}
	}
	return matches
}
