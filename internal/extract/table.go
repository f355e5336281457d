package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cleared-dev/bankcap/internal/model"
)

// Cell positions within a bank row.
const (
	cellName      = 1 // second <td>: flag link, then bank link
	cellMarketCap = 2
	nameAnchor    = 1 // second <a> inside the name cell
)

// TableStats counts what ParseTable saw.
type TableStats struct {
	Rows    int // <tr> elements in the first <tbody>
	Skipped int // rows with cells but no resolvable bank name
}

// ParseTable reads bank records from the first <tbody> of an HTML document.
func ParseTable(r io.Reader) ([]model.BankRecord, error) {
	records, _, err := parseTable(r)
	return records, err
}

func parseTable(r io.Reader) ([]model.BankRecord, TableStats, error) {
	var stats TableStats

	doc, err := html.Parse(r)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: parsing HTML: %w", model.ErrParse, err)
	}

	tbody := findFirst(doc, atom.Tbody)
	if tbody == nil {
		return nil, stats, fmt.Errorf("%w: no <tbody> in document", model.ErrParse)
	}

	var records []model.BankRecord
	for _, tr := range findAll(tbody, atom.Tr) {
		stats.Rows++
		cells := findAll(tr, atom.Td)
		if len(cells) == 0 {
			continue
		}

		name, ok := bankName(cells)
		if !ok {
			stats.Skipped++
			continue
		}

		if len(cells) <= cellMarketCap {
			return nil, stats, fmt.Errorf("%w: row %d (%s): no market cap cell", model.ErrFormat, stats.Rows, name)
		}
		usd, err := parseMarketCap(firstChildText(cells[cellMarketCap]))
		if err != nil {
			return nil, stats, fmt.Errorf("row %d (%s): %w", stats.Rows, name, err)
		}

		records = append(records, model.BankRecord{Name: name, MarketCapUSD: usd})
	}
	return records, stats, nil
}

// bankName returns the text of the second link in the second cell, with
// surrounding whitespace trimmed. Rows whose name trims to empty are skipped.
func bankName(cells []*html.Node) (string, bool) {
	if len(cells) <= cellName {
		return "", false
	}
	anchors := findAll(cells[cellName], atom.A)
	if len(anchors) <= nameAnchor {
		return "", false
	}
	name := strings.TrimSpace(firstChildText(anchors[nameAnchor]))
	return name, name != ""
}

// parseMarketCap parses a cell like "432.92\n".
func parseMarketCap(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: market cap %q is not numeric", model.ErrFormat, raw)
	}
	return d, nil
}

// firstChildText returns the text of n's first child node.
func firstChildText(n *html.Node) string {
	c := n.FirstChild
	if c == nil {
		return ""
	}
	if c.Type == html.TextNode {
		return c.Data
	}
	return textContent(c)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns descendants of n (not n itself) with the given tag, in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		out = append(out, findAll(c, a)...)
	}
	return out
}
