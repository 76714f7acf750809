package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultSelector = "#data"

// DefaultPage is used when no page template is given.
const DefaultPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Data</title></head>
<body>
<div id="data"></div>
</body>
</html>
`

var ErrContainerNotFound = errors.New("container not found")

// ParsePage parses an HTML page template.
func ParsePage(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// Render appends one <p> per item to the first element matching selector.
// The paragraph text is the item's JSON serialization. Nothing is appended
// when the container is missing.
func Render(doc *goquery.Document, selector string, items []json.RawMessage) (int, error) {
	container := doc.Find(selector).First()
	if container.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrContainerNotFound, selector)
	}

	for _, item := range items {
		p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		p.AppendChild(&html.Node{Type: html.TextNode, Data: string(item)})
		container.AppendNodes(p)
	}
	return len(items), nil
}
