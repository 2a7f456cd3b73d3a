package fxsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// APISource reads rates from an exchangerate-api style endpoint:
// GET <baseURL><FROM> returns {"base":"USD","rates":{"SGD":1.35,...}}.
type APISource struct {
	client  *http.Client
	baseURL string
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func NewAPISource(client *http.Client, baseURL string) *APISource {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &APISource{client: client, baseURL: baseURL}
}

func (s *APISource) Name() string { return "exchangerate-api" }

// Rate returns units of to per one unit of from.
func (s *APISource) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+from)
	if err != nil {
		return decimal.Zero, err
	}

	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if resp.Base != "" && !strings.EqualFold(resp.Base, from) {
		return decimal.Zero, fmt.Errorf("%w: base %s, asked for %s", ErrInvalidResponse, resp.Base, from)
	}

	rate, ok := resp.Rates[to]
	if !ok {
		return decimal.Zero, ErrPairNotQuoted
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s", ErrInvalidResponse, rate)
	}
	return rate, nil
}
