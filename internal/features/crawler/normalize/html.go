// Package normalize turns raw feed and API fields into clean plain text,
// UTC timestamps and bounded summaries.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements get a separating space so adjacent paragraphs don't run together
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Td: true,
	atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// CleanHTML strips markup from raw and returns its visible text with all
// runs of whitespace collapsed to single spaces. Script, style and noscript
// bodies are dropped entirely, as are invalid UTF-8 bytes. Input without
// markup passes through with only whitespace normalisation.
func CleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CollapseWhitespace(strings.ToValidUTF8(raw, ""))
	}

	doc.Find("script, style, noscript, template").Remove()

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}

		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if block {
			buf.WriteByte(' ')
		}
	}
	for _, n := range doc.Nodes {
		extractText(n)
	}

	return CollapseWhitespace(strings.ToValidUTF8(buf.String(), ""))
}

// CollapseWhitespace replaces every whitespace run with one space and trims the ends
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
