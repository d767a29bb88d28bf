package html

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adrianliechti/narrator/pkg/scraper"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ scraper.Provider = &Client{}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// DefaultSelectors are the class lists of known article containers, tried in order.
var DefaultSelectors = []string{
	"body markup",
	"content-area primary",
	"InlineReactSelectionWrapper-root",
}

type Client struct {
	client *http.Client

	userAgent string
	selectors []string
}

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithSelectors(selectors ...string) Option {
	return func(c *Client) {
		c.selectors = selectors
	}
}

func New(options ...Option) (*Client, error) {
	c := &Client{
		client: http.DefaultClient,

		userAgent: DefaultUserAgent,
		selectors: DefaultSelectors,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Scrape(ctx context.Context, url string, options *scraper.ScrapeOptions) (*scraper.Document, error) {
	if options == nil {
		options = new(scraper.ScrapeOptions)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, convertError(resp)
	}

	root, err := html.Parse(resp.Body)

	if err != nil {
		return nil, err
	}

	return Extract(root, c.selectors), nil
}

// Extract reads the title and the article text of a parsed page.
func Extract(root *html.Node, selectors []string) *scraper.Document {
	doc := &scraper.Document{}

	if n := findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil {
		doc.Title = strings.TrimSpace(textContent(n))
	}

	container := findContainer(root, selectors)

	if container == nil {
		return doc
	}

	var lines []string

	collectBlocks(container, &lines)

	doc.Text = strings.Join(lines, "\n")

	return doc
}

func findContainer(root *html.Node, selectors []string) *html.Node {
	for _, selector := range selectors {
		classes := strings.Fields(selector)

		if len(classes) == 0 {
			continue
		}

		if n := findFirst(root, func(n *html.Node) bool { return hasClasses(n, classes) }); n != nil {
			return n
		}
	}

	if n := findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Article }); n != nil {
		return n
	}

	return findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li:
		return true
	}

	return false
}

func collectBlocks(n *html.Node, lines *[]string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}

		if child.DataAtom == atom.Script || child.DataAtom == atom.Style || child.DataAtom == atom.Noscript {
			continue
		}

		if isBlock(child) {
			if text := strings.Join(strings.Fields(textContent(child)), " "); text != "" {
				*lines = append(*lines, text)
			}

			continue
		}

		collectBlocks(child, lines)
	}
}

func hasClasses(n *html.Node, classes []string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}

		have := strings.Fields(attr.Val)

		for _, class := range classes {
			found := false

			for _, h := range have {
				if h == class {
					found = true
					break
				}
			}

			if !found {
				return false
			}
		}

		return true
	}

	return false
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if result := findFirst(child, match); result != nil {
			return result
		}
	}

	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(n)

	return sb.String()
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if len(data) == 0 {
		return errors.New(http.StatusText(resp.StatusCode))
	}

	return fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode), strings.TrimSpace(string(data)))
}
