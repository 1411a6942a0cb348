// Package receipt interprets raw OCR text from a photographed receipt.
//
// Parsing never fails: every step degrades to an empty or zero value so the
// caller can always continue with manual correction.
package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
)

const (
	merchantSearchLines = 5
	minMerchantLength   = 4
	minLineLength       = 3
	minDescription      = 2
	maxDescription      = 50
	maxFallbackItems    = 20

	descriptionCutset   = ".,;:-_@#*|"
	defaultReceiptTitle = "Receipt"
)

var (
	maxItemPrice     = decimal.NewFromInt(1_000_000)
	minFallbackPrice = decimal.RequireFromString("0.1")
	maxFallbackPrice = decimal.NewFromInt(100_000)
)

// Stats describes which heuristics produced a ParsedReceipt.
type Stats struct {
	Lines int

	// PriceRules counts accepted primary-pass items by the rule that priced them.
	PriceRules map[string]int

	// FallbackUsed is set when the primary pass found nothing and the
	// any-number pass ran instead.
	FallbackUsed bool

	// TotalFromKeyword is false when the total was the largest amount on the
	// receipt rather than a "total" line.
	TotalFromKeyword bool
}

// Parser holds the ordered rule tables. It is immutable and safe for
// concurrent use.
type Parser struct {
	priceRules      []priceRule
	totalRules      []keywordRule
	taxRules        []keywordRule
	serviceFeeRules []keywordRule
}

// NewParser returns a parser with the built-in rule tables.
func NewParser() *Parser {
	return &Parser{
		priceRules:      defaultPriceRules,
		totalRules:      defaultTotalRules,
		taxRules:        defaultTaxRules,
		serviceFeeRules: defaultServiceFeeRules,
	}
}

var defaultParser = NewParser()

// Parse interprets rawText with the built-in rules.
func Parse(rawText string) models.ParsedReceipt {
	return defaultParser.Parse(rawText)
}

// Parse interprets rawText. It never fails.
func (p *Parser) Parse(rawText string) models.ParsedReceipt {
	r, _ := p.ParseWithStats(rawText)
	return r
}

// ParseWithStats is Parse that also reports which heuristics fired.
func (p *Parser) ParseWithStats(rawText string) (models.ParsedReceipt, Stats) {
	lines := splitLines(rawText)
	stats := Stats{Lines: len(lines), PriceRules: map[string]int{}}

	merchant := extractMerchant(lines)
	title := defaultReceiptTitle
	if merchant != "" {
		title = merchant + " " + defaultReceiptTitle
	}

	items := p.extractLineItems(lines, stats.PriceRules)
	if len(items) == 0 {
		items = extractFallbackItems(lines)
		stats.FallbackUsed = len(lines) > 0
	}

	total, ok := extractKeywordAmount(lines, p.totalRules)
	if ok {
		stats.TotalFromKeyword = true
	} else {
		total = largestFormattedAmount(lines)
	}
	tax, _ := extractKeywordAmount(lines, p.taxRules)
	serviceFee, _ := extractKeywordAmount(lines, p.serviceFeeRules)

	return models.ParsedReceipt{
		Merchant:    merchant,
		Title:       title,
		LineItems:   items,
		Tax:         tax,
		ServiceFee:  serviceFee,
		TotalAmount: total,
		RawText:     rawText,
	}, stats
}

func splitLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func extractMerchant(lines []string) string {
	for i, line := range lines {
		if i >= merchantSearchLines {
			break
		}
		if utf8.RuneCountInString(line) < minMerchantLength {
			continue
		}
		if datePattern.MatchString(line) || timePattern.MatchString(line) {
			continue
		}
		if merchantExclusions.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

// extractLineItems is the primary pass: one price rule per line, in priority
// order, de-duplicated by description.
func (p *Parser) extractLineItems(lines []string, ruleHits map[string]int) []models.ParsedLineItem {
	items := []models.ParsedLineItem{}
	seen := make(map[string]bool)

	for _, line := range lines {
		if utf8.RuneCountInString(line) < minLineLength {
			continue
		}

		for _, rule := range p.priceRules {
			start, end, ok := rule.lastPrice(line)
			if !ok {
				continue
			}

			// The first rule that matches decides the line, even if the
			// resulting item is rejected.
			price, _ := money.ParseAmount(line[start:end])
			if price.Sign() > 0 && price.LessThan(maxItemPrice) {
				desc := cleanDescription(line[:start] + " " + line[end:])
				key := strings.ToLower(desc)
				if isItemDescription(desc) && !seen[key] {
					seen[key] = true
					ruleHits[rule.name]++
					items = append(items, newLineItem(desc, price))
				}
			}
			break
		}
	}
	return items
}

// extractFallbackItems takes the last number on each line as its price.
func extractFallbackItems(lines []string) []models.ParsedLineItem {
	items := []models.ParsedLineItem{}
	for _, line := range lines {
		if len(items) >= maxFallbackItems {
			break
		}
		if utf8.RuneCountInString(line) < minLineLength {
			continue
		}

		matches := anyNumberPattern.FindAllStringIndex(line, -1)
		if len(matches) == 0 {
			continue
		}
		m := matches[len(matches)-1]

		price, ok := money.ParseAmount(line[m[0]:m[1]])
		if !ok || !price.GreaterThan(minFallbackPrice) || !price.LessThan(maxFallbackPrice) {
			continue
		}

		desc := nonAlphanumeric.ReplaceAllString(line[:m[0]]+" "+line[m[1]:], " ")
		desc = strings.TrimSpace(whitespace.ReplaceAllString(desc, " "))
		if !isItemDescription(desc) {
			continue
		}
		items = append(items, newLineItem(desc, price))
	}
	return items
}

func newLineItem(desc string, price decimal.Decimal) models.ParsedLineItem {
	return models.ParsedLineItem{
		Description:   desc,
		Price:         price,
		IsExtraCharge: extraChargeWords.MatchString(desc),
	}
}

func cleanDescription(s string) string {
	s = currencyTokens.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Trim(strings.TrimSpace(s), descriptionCutset+" ")
}

// isItemDescription rejects totals, payment lines, headers and other text
// that is obviously not a purchased item.
func isItemDescription(desc string) bool {
	n := utf8.RuneCountInString(desc)
	if n < minDescription || n > maxDescription {
		return false
	}
	// Digits-only text, dates and phone numbers carry no letters.
	if noLetters.MatchString(desc) {
		return false
	}
	return !nonItemWords.MatchString(desc)
}

// extractKeywordAmount applies rules in order and returns the amount from the
// first line that matches the highest-priority keyword.
func extractKeywordAmount(lines []string, rules []keywordRule) (decimal.Decimal, bool) {
	for _, rule := range rules {
		for _, line := range lines {
			if rule.skip != nil && rule.skip.MatchString(line) {
				continue
			}
			loc := rule.keyword.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if amount, ok := lastAmount(line[loc[1]:], keywordAmountPattern); ok {
				return amount, true
			}
		}
	}
	return decimal.Zero, false
}

// lastAmount returns the last non-zero amount in s that is not a percentage.
// A zero carries no information, so the caller moves on to the next line.
func lastAmount(s string, pattern *regexp.Regexp) (decimal.Decimal, bool) {
	var (
		found  decimal.Decimal
		hasAny bool
	)
	for _, m := range pattern.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[2], m[3]
		if !standalone(s, start) || strings.HasPrefix(strings.TrimLeft(s[end:], " "), "%") {
			continue
		}
		if amount, ok := money.ParseAmount(s[start:end]); ok && !amount.IsZero() {
			found, hasAny = amount, true
		}
	}
	return found, hasAny
}

// standalone reports whether the number at s[start] is not the tail of a
// longer number such as the "000" of "1250.000".
func standalone(s string, start int) bool {
	if start == 0 {
		return true
	}
	prev := s[start-1]
	if isDigit(prev) {
		return false
	}
	return !((prev == '.' || prev == ',') && start >= 2 && isDigit(s[start-2]))
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func largestFormattedAmount(lines []string) decimal.Decimal {
	largest := decimal.Zero
	for _, line := range lines {
		for _, m := range formattedAmountPattern.FindAllStringSubmatchIndex(line, -1) {
			if !standalone(line, m[2]) {
				continue
			}
			if amount, ok := money.ParseAmount(line[m[2]:m[3]]); ok && amount.GreaterThan(largest) {
				largest = amount
			}
		}
	}
	return largest
}
