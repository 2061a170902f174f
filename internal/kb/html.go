package kb

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads a benefit page: the first h1/h2 is the topic, <p> blocks
// before the first <table> form the description, and <h3> marker headings
// introduce the phone and more-information lists.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	elems := elements(root)
	doc := newDocument()

	tableIdx := -1
	var desc []string
	for i, n := range elems {
		switch n.DataAtom {
		case atom.H1, atom.H2:
			if doc.Topic == "" {
				doc.Topic = clean(textContent(n))
			}
		case atom.P:
			if tableIdx < 0 {
				if txt := clean(textContent(n)); txt != "" {
					desc = append(desc, txt)
				}
			}
		case atom.Table:
			if tableIdx < 0 {
				tableIdx = i
				parseHTMLTable(doc, n)
			}
		case atom.H3:
			sec := classifySection(clean(textContent(n)))
			if sec == sectionNone {
				continue
			}
			ul := nextElement(elems[i+1:], atom.Ul)
			if ul == nil {
				continue
			}
			for _, li := range descendants(ul, atom.Li) {
				item := clean(textContent(li))
				if sec == sectionPhones {
					doc.addPhone(item)
					continue
				}
				if a := nextElement(elements(li), atom.A); a != nil {
					doc.addURL(item, attr(a, "href"))
				}
			}
		}
	}
	doc.Description = strings.Join(desc, " ")
	if err := doc.validate(tableIdx >= 0); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseHTMLTable(doc *Document, table *html.Node) {
	rows := descendants(table, atom.Tr)
	if len(rows) > 0 {
		rows = rows[1:]
	}
	for _, tr := range rows {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				cells = append(cells, clean(joinText(c, " ")))
			}
		}
		doc.addRow(cells)
	}
}

// elements lists every element node under n in document order.
func elements(n *html.Node) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return out
}

func descendants(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for _, e := range elements(n) {
		if e != n && e.DataAtom == a {
			out = append(out, e)
		}
	}
	return out
}

func nextElement(elems []*html.Node, a atom.Atom) *html.Node {
	for _, e := range elems {
		if e.DataAtom == a {
			return e
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	return joinText(n, "")
}

// joinText concatenates the text nodes under n, writing sep after each one.
func joinText(n *html.Node, sep string) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(sep)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
