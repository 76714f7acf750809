package fetcher

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"contactrelay/pkg/metrics"
)

// Page loads the items from URL into the container matched by Selector.
type Page struct {
	Client   *Client
	URL      string
	Selector string
	// AnnounceURL is only logged; no request is made to it.
	AnnounceURL string
	Logger      *zap.Logger
}

// Load fetches once and renders. Failures are logged and returned; on
// failure the document is left untouched. There is no retry.
func (p *Page) Load(ctx context.Context, doc *goquery.Document) (int, error) {
	if p.AnnounceURL != "" {
		p.Logger.Info("Fetching data from", zap.String("url", p.AnnounceURL))
	}

	selector := p.Selector
	if selector == "" {
		selector = DefaultSelector
	}

	items, err := p.Client.FetchItems(ctx, p.URL)
	if err != nil {
		p.Logger.Error("error fetching data", zap.String("url", p.URL), zap.Error(err))
		return 0, err
	}

	n, err := Render(doc, selector, items)
	if err != nil {
		p.Logger.Error("error fetching data", zap.String("url", p.URL), zap.Error(err))
		return 0, err
	}

	metrics.AddFetchedItems(n)
	return n, nil
}
