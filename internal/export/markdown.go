package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// StripMarkdown renders markdown as plain text: heading, emphasis and code
// markers are dropped, bullets become "•" and ordered items keep their number.
func StripMarkdown(markdown string) string {
	source := []byte(markdown)
	doc := markdownEngine.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		return stripNode(&b, n, source, entering), nil
	})

	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out)
}

func stripNode(b *strings.Builder, n ast.Node, source []byte, entering bool) ast.WalkStatus {
	switch node := n.(type) {
	case *ast.Text:
		if entering {
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		}
	case *ast.String:
		if entering {
			b.Write(node.Value)
		}
	case *ast.AutoLink:
		if entering {
			b.Write(node.URL(source))
		}
		return ast.WalkSkipChildren
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			b.WriteByte('\n')
		}
		return ast.WalkSkipChildren
	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren
	case *ast.ListItem:
		if entering {
			b.WriteString(strings.Repeat("  ", listDepth(node)-1))
			b.WriteString(itemMarker(node))
		} else if !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	case *ast.List:
		if !entering && node.Parent() != nil && node.Parent().Kind() == ast.KindDocument {
			b.WriteByte('\n')
		}
	case *ast.TextBlock:
		if !entering {
			b.WriteByte('\n')
		}
	case *ast.Paragraph:
		if !entering {
			if _, inItem := node.Parent().(*ast.ListItem); inItem {
				b.WriteByte('\n')
			} else {
				b.WriteString("\n\n")
			}
		}
	case *ast.Heading:
		if !entering {
			b.WriteString("\n\n")
		}
	case *ast.ThematicBreak:
		if entering {
			b.WriteString("\n")
		}
	case *east.TableCell:
		if !entering && node.NextSibling() != nil {
			b.WriteString("\t")
		}
	case *east.TableHeader, *east.TableRow:
		if !entering {
			b.WriteByte('\n')
		}
	case *east.Table:
		if !entering {
			b.WriteByte('\n')
		}
	}
	return ast.WalkContinue
}

func listDepth(n ast.Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == ast.KindList {
			depth++
		}
	}
	return depth
}

func itemMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	index := list.Start
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		index++
	}
	return fmt.Sprintf("%d. ", index)
}
