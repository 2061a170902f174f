package kb

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown reads the markdown form of a benefit page. The layout mirrors
// the HTML pages: a level 1 or 2 heading, paragraphs, a GFM table, and level
// 3 marker headings each followed by a bullet list.
func ParseMarkdown(src []byte) (*Document, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)
	source := reader.Source()

	doc := newDocument()
	hasTable := false
	pending := sectionNone
	var desc []string

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := clean(extractText(n, source))
			if n.Level <= 2 {
				if doc.Topic == "" {
					doc.Topic = heading
				}
				continue
			}
			pending = classifySection(heading)
		case *ast.Paragraph:
			if !hasTable {
				if txt := clean(extractText(n, source)); txt != "" {
					desc = append(desc, txt)
				}
			}
		case *east.Table:
			if hasTable {
				continue
			}
			hasTable = true
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				if _, ok := row.(*east.TableRow); !ok {
					continue
				}
				var cells []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cells = append(cells, clean(extractText(cell, source)))
				}
				doc.addRow(cells)
			}
		case *ast.List:
			if pending == sectionNone {
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				txt := clean(extractText(item, source))
				if pending == sectionPhones {
					doc.addPhone(txt)
				} else {
					doc.addURL(txt, firstLink(item, source))
				}
			}
			pending = sectionNone
		}
	}
	doc.Description = strings.Join(desc, " ")
	if err := doc.validate(hasTable); err != nil {
		return nil, err
	}
	return doc, nil
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.URL(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func firstLink(n ast.Node, source []byte) string {
	var href string
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch l := node.(type) {
		case *ast.Link:
			href = string(l.Destination)
			return ast.WalkStop, nil
		case *ast.AutoLink:
			href = string(l.URL(source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return href
}
