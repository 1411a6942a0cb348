// Command parse-receipt parses OCR text of a receipt and prints the result as
// JSON. With --people it also splits the receipt, using --assign to hand out
// items and dividing equally when nothing is assigned.
//
//	parse-receipt --people Alice,Bob --assign 1=Alice --assign 2=Alice:1,Bob:1 receipt.txt
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/calculator"
	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
	"github.com/mmynk/splitvault/internal/receipt"
)

type lineItem struct {
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	IsExtraCharge bool            `json:"isExtraCharge,omitempty"`
}

type share struct {
	Participant string          `json:"participant"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	Total       decimal.Decimal `json:"total"`
	Formatted   string          `json:"formatted"`
}

type output struct {
	Merchant    string          `json:"merchant,omitempty"`
	Title       string          `json:"title"`
	LineItems   []lineItem      `json:"lineItems"`
	Tax         decimal.Decimal `json:"tax"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	TotalAmount decimal.Decimal `json:"totalAmount"`

	Shares           []share  `json:"shares,omitempty"`
	EqualSplit       bool     `json:"equalSplit,omitempty"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := ff.NewFlagSet("parse-receipt")
	var (
		currency = fs.StringLong("currency", money.IDR.Code, "Currency used to format shares")
		tax      = fs.StringLong("tax", "0", "Tax percent applied to each share")
		fee      = fs.StringLong("service-fee", "0", "Service fee percent applied to each share")
		people   = fs.StringLong("people", "", "Comma-separated participant names; enables splitting")
		assign   = fs.StringListLong("assign", "Item assignment N=Name[:qty],... (repeatable, N is 1-based)")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("SPLITVAULT")); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintln(stdout, ffhelp.Flags(fs))
			return nil
		}
		return fmt.Errorf("%w\n%s", err, ffhelp.Flags(fs))
	}

	text, err := readInput(fs.GetArgs(), stdin)
	if err != nil {
		return err
	}

	parsed := receipt.NewParser().Parse(text)
	out := output{
		Merchant:    parsed.Merchant,
		Title:       parsed.Title,
		LineItems:   make([]lineItem, len(parsed.LineItems)),
		Tax:         parsed.Tax,
		ServiceFee:  parsed.ServiceFee,
		TotalAmount: parsed.TotalAmount,
	}
	for i, li := range parsed.LineItems {
		out.LineItems[i] = lineItem{Description: li.Description, Price: li.Price, IsExtraCharge: li.IsExtraCharge}
	}

	if *people != "" {
		if err := split(&out, parsed.SplitItems(), *people, *assign, *currency, *tax, *fee); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 1 {
		return "", errors.New("expected at most one receipt file")
	}
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("receipt text is empty")
	}
	return string(data), nil
}

func split(out *output, items []models.SplitItem, people string, assignments []string, currencyCode, taxFlag, feeFlag string) error {
	cur, err := money.LookupCurrency(currencyCode)
	if err != nil {
		return err
	}
	tax, err := percent("tax", taxFlag)
	if err != nil {
		return err
	}
	fee, err := percent("service-fee", feeFlag)
	if err != nil {
		return err
	}

	var participants []models.SplitParticipant
	known := map[string]bool{}
	for _, name := range strings.Split(people, ",") {
		name = strings.TrimSpace(name)
		if name == "" || known[name] {
			continue
		}
		known[name] = true
		participants = append(participants, models.SplitParticipant{Name: name})
	}

	for _, a := range assignments {
		if err := applyAssignment(items, known, a); err != nil {
			return err
		}
	}

	breakdown := calculator.CalculateBreakdown(items, participants, tax, fee)
	for _, s := range breakdown {
		out.Shares = append(out.Shares, share{
			Participant: s.Participant,
			Subtotal:    money.Round2(s.Subtotal),
			Tax:         money.Round2(s.Tax),
			ServiceFee:  money.Round2(s.ServiceFee),
			Total:       s.Total,
			Formatted:   cur.Format(s.Total),
		})
		out.EqualSplit = s.EqualSplit
	}
	out.ValidationErrors = calculator.ValidateAssignments(items)
	return nil
}

func percent(name, value string) (money.Percentage, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if err != nil || d.IsNegative() {
		return money.Percentage{}, fmt.Errorf("invalid --%s %q", name, value)
	}
	return money.PercentFromDecimal(d), nil
}

// applyAssignment applies one "N=Name[:qty],..." flag value.
func applyAssignment(items []models.SplitItem, known map[string]bool, arg string) error {
	index, names, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("invalid --assign %q: want N=Name[:qty],...", arg)
	}
	n, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil || n < 1 || n > len(items) {
		return fmt.Errorf("invalid --assign %q: item number must be 1-%d", arg, len(items))
	}

	for _, part := range strings.Split(names, ",") {
		name, qty, hasQty := strings.Cut(strings.TrimSpace(part), ":")
		quantity := 1
		if hasQty {
			if quantity, err = strconv.Atoi(qty); err != nil || quantity < 0 {
				return fmt.Errorf("invalid --assign %q: bad quantity %q", arg, qty)
			}
		}
		if !known[name] {
			return fmt.Errorf("invalid --assign %q: %q is not in --people", arg, name)
		}
		items[n-1].Assign(name, quantity)
	}
	return nil
}
