package usecase

import (
	"reflect"
	"testing"
)

func TestParseIntentEarbudsUnderTwenty(t *testing.T) {
	intent := ParseIntent("find me wireless earbuds under $20")

	if want := []string{"wireless", "earbuds"}; !reflect.DeepEqual(intent.Keywords, want) {
		t.Errorf("keywords = %v, want %v", intent.Keywords, want)
	}
	if intent.PriceRange == nil || intent.PriceRange.Max == nil {
		t.Fatalf("price range = %+v, want max bound", intent.PriceRange)
	}
	if *intent.PriceRange.Max != 20 {
		t.Errorf("max price = %v, want 20", *intent.PriceRange.Max)
	}
	if intent.PriceRange.Min != nil {
		t.Errorf("min price should be absent, got %v", *intent.PriceRange.Min)
	}
	if intent.Category != "electronics" {
		t.Errorf("category = %q, want electronics", intent.Category)
	}
	// base 0.5 + indicator 0.2 + keywords 0.1 + price 0.1 + category 0.1
	if intent.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", intent.Confidence)
	}
	if !IsProductSearchIntent("find me wireless earbuds under $20") {
		t.Error("message should classify as product search")
	}
}

func TestParseIntentArithmeticQuestion(t *testing.T) {
	intent := ParseIntent("what's 2+2?")

	if len(intent.Keywords) != 0 {
		t.Errorf("keywords = %v, want none", intent.Keywords)
	}
	if intent.PriceRange != nil {
		t.Errorf("price range = %+v, want none", intent.PriceRange)
	}
	if intent.Confidence > 0.3 {
		t.Errorf("confidence = %v, want <= 0.3", intent.Confidence)
	}
	if IsProductSearchIntent("what's 2+2?") {
		t.Error("arithmetic question classified as product search")
	}
}

func TestParseIntentAmbiguousPriceDefaultsToMax(t *testing.T) {
	intent := ParseIntent("bluetooth speakers around $50")

	if intent.PriceRange == nil || intent.PriceRange.Max == nil || *intent.PriceRange.Max != 50 {
		t.Fatalf("price range = %+v, want max 50", intent.PriceRange)
	}
	if intent.PriceRange.Min != nil {
		t.Error("ambiguous context must not set a min bound")
	}
	if intent.Category != "electronics" {
		t.Errorf("category = %q, want electronics", intent.Category)
	}
}

func TestParseIntentPriceContexts(t *testing.T) {
	cases := []struct {
		name    string
		message string
		min     float64
		max     float64
	}{
		{"Under", "phone case under $10", 0, 10},
		{"Below", "phone case below 15", 0, 15},
		{"Above", "headphones above $30", 30, 0},
		{"Over", "headphones over 25", 25, 0},
		{"ExplicitRange", "running shoes $20 to $40", 20, 40},
		{"DashRange", "running shoes 40-20", 20, 40}, // reversed bounds are sorted
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pr := ParseIntent(tc.message).PriceRange
			if pr == nil {
				t.Fatal("no price range extracted")
			}
			if tc.min != 0 {
				if pr.Min == nil || *pr.Min != tc.min {
					t.Errorf("min = %v, want %v", pr.Min, tc.min)
				}
			}
			if tc.max != 0 {
				if pr.Max == nil || *pr.Max != tc.max {
					t.Errorf("max = %v, want %v", pr.Max, tc.max)
				}
			}
		})
	}
}

func TestPriceContextWordsMatchWholeWordsOnly(t *testing.T) {
	cases := []struct {
		name    string
		message string
	}{
		// "thunderbolt" embeds "under", "pullover" embeds "over"; neither
		// is a price context, so the bare number takes the default max bound
		{"EmbeddedUnder", "thunderbolt cable 30"},
		{"EmbeddedOver", "pullover hoodie 30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pr := ParseIntent(tc.message).PriceRange
			if pr == nil || pr.Max == nil || *pr.Max != 30 {
				t.Fatalf("price range = %+v, want max 30", pr)
			}
			if pr.Min != nil {
				t.Errorf("embedded context word set a min bound: %v", *pr.Min)
			}
		})
	}
}

func TestParseIntentNoPrice(t *testing.T) {
	if pr := ParseIntent("looking for a nice summer dress").PriceRange; pr != nil {
		t.Errorf("price range = %+v, want none", pr)
	}
}

func TestDetectCategoryFirstMatchWins(t *testing.T) {
	// "wireless" hits electronics before "shirt" can hit clothing;
	// declaration order decides, not match count
	intent := ParseIntent("wireless shirt gadget")
	if intent.Category != "electronics" {
		t.Errorf("category = %q, want electronics", intent.Category)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	// two keywords and nothing else: 0.5 + 0.1 = 0.6 exactly, which must
	// not qualify as product search
	message := "ceramic mug gift ideas"
	intent := ParseIntent(message)
	if intent.Confidence != 0.6 {
		t.Fatalf("confidence = %v, want exactly 0.6", intent.Confidence)
	}
	if IsProductSearchIntent(message) {
		t.Error("confidence of exactly 0.6 must not classify as product search")
	}
}

func TestBuildSuggestionsStack(t *testing.T) {
	intent := ParseIntent("ok go")
	suggestions := BuildSuggestions(intent)

	// zero keywords, no price, no category: three independent prompts
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions: %v", len(suggestions), suggestions)
	}

	single := ParseIntent("show me headphones")
	got := BuildSuggestions(single)
	var hasBrand bool
	for _, s := range got {
		if s == "Any specific style or brand you prefer?" {
			hasBrand = true
		}
	}
	if !hasBrand {
		t.Errorf("single-keyword intent should suggest style/brand, got %v", got)
	}
}
