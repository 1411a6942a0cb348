package receipt

import "regexp"

// priceRule locates a price on one receipt line. Group 1 of pattern is the
// price text; the span of group 1 is what gets removed from the description.
type priceRule struct {
	name    string
	pattern *regexp.Regexp
}

// lastPrice returns the span of the last price this rule finds on line.
func (r priceRule) lastPrice(line string) (start, end int, ok bool) {
	matches := r.pattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return 0, 0, false
	}
	m := matches[len(matches)-1]
	return m[2], m[3], true
}

// keywordRule finds an amount that follows a keyword on the same line.
type keywordRule struct {
	name    string
	keyword *regexp.Regexp

	// skip excludes lines that mention the keyword but mean something else,
	// e.g. "Sub Total" for the total rule. May be nil.
	skip *regexp.Regexp
}

// Price rules in priority order. The first rule with any match on a line wins.
var defaultPriceRules = []priceRule{
	{
		name:    "two-decimal",
		pattern: regexp.MustCompile(`(\d+(?:[.,]\d{3})*[.,]\d{2})(?:\D|$)`),
	},
	{
		name:    "one-decimal",
		pattern: regexp.MustCompile(`(\d+(?:[.,]\d{3})*[.,]\d)(?:\D|$)`),
	},
	{
		// The leading non-digit keeps "1250.000" from being read as "250.000".
		name:    "trailing-integer",
		pattern: regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:[.,]\d{3})+|\d+)\s*$`),
	},
	{
		name:    "dollar-prefixed",
		pattern: regexp.MustCompile(`\$\s?(\d+(?:[.,]\d+)*)`),
	},
	{
		name:    "currency-suffixed",
		pattern: regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s?(?:USD|IDR|RP|Rp)\b`),
	},
}

var (
	defaultTotalRules = []keywordRule{
		{
			name:    "total",
			keyword: regexp.MustCompile(`(?i)\btotal\b`),
			skip:    regexp.MustCompile(`(?i)\bsub[\s-]*total\b|\btotal\s+(?:tax|vat|ppn|service|tip|discount|items?|qty)\b`),
		},
	}

	defaultTaxRules = []keywordRule{
		{name: "tax", keyword: regexp.MustCompile(`(?i)\btax(?:es)?\b`)},
		{name: "vat", keyword: regexp.MustCompile(`(?i)\bvat\b`)},
		{name: "ppn", keyword: regexp.MustCompile(`(?i)\bppn\b`)},
	}

	defaultServiceFeeRules = []keywordRule{
		{name: "service", keyword: regexp.MustCompile(`(?i)\bservice\b`)},
		{name: "tip", keyword: regexp.MustCompile(`(?i)\btips?\b`)},
		{name: "gratuity", keyword: regexp.MustCompile(`(?i)\bgratuity\b`)},
	}
)

var (
	// keywordAmountPattern matches an amount after a keyword: decimals,
	// thousands groups, or a bare integer of at least three digits so that
	// counts like "Total Qty 3" are not read as money. The leading group is
	// \d+ so a dropped thousands dot ("1250.000") stays one amount. Matches
	// must also pass standalone.
	keywordAmountPattern = regexp.MustCompile(`(\d+(?:[.,]\d{3})*[.,]\d{1,2}|\d+(?:[.,]\d{3})+|\d{3,})(?:\D|$)`)

	// formattedAmountPattern matches amounts that are clearly money: two
	// decimals or thousands groups. Used for the largest-amount total fallback.
	formattedAmountPattern = regexp.MustCompile(`(\d+(?:[.,]\d{3})*[.,]\d{2}|\d+(?:[.,]\d{3})+)(?:\D|$)`)

	// anyNumberPattern is the fallback pass price pattern.
	anyNumberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

var (
	datePattern = regexp.MustCompile(`\b\d{2}[/.-]\d{2}[/.-](?:\d{4}|\d{2})\b`)
	timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

	merchantExclusions = wordList("receipt", "invoice", "bill", "order", "date", "time", "tel", "phone")

	nonItemWords = wordList(
		"total", "subtotal", "tax", "vat", "ppn", "service", "tip", "gratuity",
		"amount", "change", "cash", "card", "payment", "receipt", "invoice",
		"date", "time", "table", "order", "no", "number", "tel", "phone",
		"address", "thank", "visit", "again", "www", "http",
	)

	extraChargeWords = wordList("delivery", "packaging", "surcharge", "fee", "admin", "ongkir")

	noLetters       = regexp.MustCompile(`^[^\p{L}]+$`)
	currencyTokens  = regexp.MustCompile(`(?i)\b(?:usd|idr|rp)\b\.?|\$`)
	nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// wordList builds a case-insensitive whole-word matcher that also accepts a
// trailing plural "s" ("thanks", "tips").
func wordList(words ...string) *regexp.Regexp {
	pattern := `(?i)\b(?:`
	for i, w := range words {
		if i > 0 {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(pattern + `)s?\b`)
}
