package assistant

import (
	"regexp"
	"strings"
)

// Intent labels returned to the client.
const (
	IntentGreeting    = "greeting"
	IntentAddMultiple = "add_multiple_to_cart"
	IntentAddToCart   = "add_to_cart"
	IntentAddCheckout = "add_and_checkout"
	IntentCheckout    = "checkout"
	IntentCartQuery   = "cart_query"
	IntentProductByID = "product_by_id"
	IntentStoreInfo   = "shophub_info"
	IntentSearch      = "product_search"
	IntentHubInfo     = "hub_info"
	IntentUnknown     = "unknown"
)

var (
	greetingRe  = regexp.MustCompile(`\b(hello|hi|hey|good morning|good afternoon|good evening|how are you)\b`)
	addVerbRe   = regexp.MustCompile(`\b(add|put)\b`)
	productIDRe = regexp.MustCompile(`product\s*(?:id|#)?\s*(\d+)`)
	labelIDRe   = regexp.MustCompile(`\bid\s*:?\s*\d+`)
	productsRe  = regexp.MustCompile(`products?\s+(\d+(?:\s*,?\s*(?:and\s+)?\d+)*)`)
	digitsRe    = regexp.MustCompile(`\d+`)
	bareNumRe   = regexp.MustCompile(`\b(\d+)\b`)

	addPhrases      = []string{"add product", "add item", "add this", "add to cart", "put in cart"}
	checkoutWords   = []string{"add", "put", "product"}
	checkoutPhrases = []string{"checkout", "buy now", "purchase", "place order", "pay now"}
	cartPhrases     = []string{"my cart", "show cart", "view cart", "cart contents", "what's in my cart", "what's in my"}
	infoWords       = []string{"shipping", "return", "refund", "policy", "delivery", "warranty", "support", "help"}
	productWords    = []string{
		"product", "item", "buy", "shop", "find", "show", "looking for", "need",
		"want", "price", "cost", "cheap", "expensive", "available",
	}
)

// DetectIntent classifies a message by keyword. Rules are checked in order
// and the first match wins.
func DetectIntent(message string) string {
	msg := strings.ToLower(message)

	switch {
	case greetingRe.MatchString(msg):
		return IntentGreeting
	case strings.Contains(msg, "checkout") && containsAny(msg, checkoutWords):
		return IntentAddCheckout
	case addVerbRe.MatchString(msg) && len(ExtractProductIDs(msg)) > 1:
		return IntentAddMultiple
	case containsAny(msg, addPhrases):
		return IntentAddToCart
	case containsAny(msg, checkoutPhrases):
		return IntentCheckout
	case containsAny(msg, cartPhrases) || strings.TrimSpace(msg) == "cart":
		return IntentCartQuery
	case productIDRe.MatchString(msg) || labelIDRe.MatchString(msg):
		return IntentProductByID
	case containsAny(msg, infoWords):
		return IntentStoreInfo
	case containsAny(msg, productWords):
		return IntentSearch
	default:
		return IntentUnknown
	}
}

// ExtractProductIDs returns the product ids mentioned in message, first
// occurrence order, without duplicates. Numbers following "product" or
// "products" take precedence; otherwise every standalone number counts.
func ExtractProductIDs(message string) []string {
	msg := strings.ToLower(message)

	var ids []string
	if groups := productsRe.FindAllStringSubmatch(msg, -1); len(groups) > 0 {
		for _, g := range groups {
			ids = append(ids, digitsRe.FindAllString(g[1], -1)...)
		}
	} else {
		ids = bareNumRe.FindAllString(msg, -1)
	}

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
