package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/pos-pricing/pkg/httpclient"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// FeedResponse is the payload of the exchange rate provider's latest endpoint
type FeedResponse struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type,omitempty"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
}

// FeedClient pulls anchor-relative quotes from the exchange rate provider
type FeedClient struct {
	client *httpclient.Client
	apiKey string
	now    func() time.Time
}

// NewFeedClient creates a feed client over an already configured HTTP client
func NewFeedClient(client *httpclient.Client, apiKey string) *FeedClient {
	return &FeedClient{client: client, apiKey: apiKey, now: time.Now}
}

// Latest fetches the current quotes for anchor. Codes outside the supported
// universe are dropped; missing ones are left for the expansion job to skip.
func (f *FeedClient) Latest(ctx context.Context, anchor Code) (*Quotes, error) {
	var resp FeedResponse
	path := fmt.Sprintf("/%s/latest/%s", f.apiKey, anchor)
	if err := f.client.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	if resp.Result != "success" {
		return nil, fmt.Errorf("%w: provider returned %q (%s)", ErrFeedUnavailable, resp.Result, resp.ErrorType)
	}
	if resp.BaseCode != "" && Code(resp.BaseCode) != anchor {
		return nil, fmt.Errorf("%w: quotes are based on %s, expected %s", ErrFeedUnavailable, resp.BaseCode, anchor)
	}

	quotes := &Quotes{
		Anchor:    anchor,
		Rates:     make(map[Code]float64, len(Supported)),
		FetchedAt: f.now().UTC(),
	}
	if resp.TimeLastUpdateUnix > 0 {
		quotes.FetchedAt = time.Unix(resp.TimeLastUpdateUnix, 0).UTC()
	}

	for raw, rate := range resp.ConversionRates {
		code := Code(raw)
		if code.Valid() {
			quotes.Rates[code] = rate
		}
	}

	logger.WithContext(ctx).Debug("fetched exchange rate feed",
		zap.String("anchor", string(anchor)),
		zap.Int("quotes", len(quotes.Rates)),
		zap.Time("fetched_at", quotes.FetchedAt),
	)

	return quotes, nil
}
