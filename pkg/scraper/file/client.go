package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/narrator/pkg/scraper"
	"github.com/adrianliechti/narrator/pkg/text"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

var _ scraper.Provider = &Client{}

// Client loads documents from the local file system. Markdown files are
// reduced to their prose, one block per line.
type Client struct {
}

type Option func(*Client)

func New(options ...Option) (*Client, error) {
	c := &Client{}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Scrape(ctx context.Context, path string, options *scraper.ScrapeOptions) (*scraper.Document, error) {
	path = strings.TrimPrefix(path, "file://")

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return parseMarkdown(data, title), nil

	case ".txt", "":
		content := string(data)

		if text.IsMarkdown(content) {
			return parseMarkdown(data, title), nil
		}

		return &scraper.Document{
			Title: title,
			Text:  content,
		}, nil
	}

	return nil, scraper.ErrUnsupported
}

func parseMarkdown(source []byte, title string) *scraper.Document {
	doc := goldmark.DefaultParser().Parse(gtext.NewReader(source))

	var lines []string
	var heading string

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock:
			var buf bytes.Buffer
			inlineText(&buf, n, source)

			line := strings.Join(strings.Fields(buf.String()), " ")

			if line != "" {
				lines = append(lines, line)
			}

			if h, ok := n.(*ast.Heading); ok && h.Level == 1 && heading == "" {
				heading = line
			}

			return ast.WalkSkipChildren, nil

		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindThematicBreak:
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	if heading != "" {
		title = heading
	}

	return &scraper.Document{
		Title: title,
		Text:  strings.Join(lines, "\n"),
	}
}

func inlineText(buf *bytes.Buffer, n ast.Node, source []byte) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))

			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}

		case *ast.String:
			buf.Write(c.Value)

		case *ast.RawHTML:
			continue

		default:
			inlineText(buf, child, source)
		}
	}
}
