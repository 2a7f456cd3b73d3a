package fxsource

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// TableLayout locates the rate table on a bank's FX page.
type TableLayout struct {
	RowSelector string // e.g. "table.fx-rates tbody tr"
	CodeColumn  int    // cell holding the currency code
	RateColumn  int    // cell holding units of the quote currency per unit
}

// DefaultTableLayout matches a plain two-column code/rate table.
func DefaultTableLayout() TableLayout {
	return TableLayout{RowSelector: "table tbody tr", CodeColumn: 0, RateColumn: 1}
}

// HTMLTableSource scrapes a published rate table that quotes every currency
// against one home currency. Other pairs are crossed through it.
type HTMLTableSource struct {
	client *http.Client
	url    string
	quote  string
	layout TableLayout
}

func NewHTMLTableSource(client *http.Client, url, quoteCurrency string, layout TableLayout) *HTMLTableSource {
	return &HTMLTableSource{
		client: client,
		url:    url,
		quote:  strings.ToUpper(quoteCurrency),
		layout: layout,
	}
}

func (s *HTMLTableSource) Name() string { return "html-table" }

func (s *HTMLTableSource) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	doc, err := fetchPage(ctx, s.client, s.url)
	if err != nil {
		return decimal.Zero, err
	}

	table, err := s.parseTable(doc)
	if err != nil {
		return decimal.Zero, err
	}
	return crossRate(table, s.quote, from, to)
}

var codePattern = regexp.MustCompile(`\b[A-Z]{3}\b`)

// parseTable maps currency code to units of the quote currency per unit.
func (s *HTMLTableSource) parseTable(doc *goquery.Document) (map[string]decimal.Decimal, error) {
	table := map[string]decimal.Decimal{s.quote: decimal.NewFromInt(1)}

	doc.Find(s.layout.RowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= s.layout.CodeColumn || cells.Length() <= s.layout.RateColumn {
			return
		}
		code := codePattern.FindString(strings.ToUpper(cells.Eq(s.layout.CodeColumn).Text()))
		if code == "" {
			return
		}
		rate, err := ParseRateText(cells.Eq(s.layout.RateColumn).Text())
		if err != nil || !rate.IsPositive() {
			return
		}
		table[code] = rate
	})

	if len(table) == 1 {
		return nil, fmt.Errorf("%w: no rate rows matched %q", ErrParsingFailed, s.layout.RowSelector)
	}
	return table, nil
}

// crossRate converts per-quote prices into a from->to rate.
func crossRate(table map[string]decimal.Decimal, quote, from, to string) (decimal.Decimal, error) {
	fromPrice, ok := table[from]
	if !ok {
		return decimal.Zero, ErrPairNotQuoted
	}
	toPrice, ok := table[to]
	if !ok {
		return decimal.Zero, ErrPairNotQuoted
	}
	if to == quote {
		return fromPrice, nil
	}
	return fromPrice.DivRound(toPrice, 10), nil
}

var numberPattern = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)

// ParseRateText parses a published rate such as "1,345.6700" or " 0.7412 ".
func ParseRateText(s string) (decimal.Decimal, error) {
	match := numberPattern.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero, fmt.Errorf("%w: no number in %q", ErrParsingFailed, s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return d, nil
}
