package extractor

import (
	"os"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles markdown files. It parses the document into a
// goldmark AST and walks it, so formatting syntax never leaks into the
// extracted text.
type MarkdownExtractor struct {
	markdown goldmark.Markdown
}

// NewMarkdownExtractor creates a MarkdownExtractor.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{markdown: goldmark.New()}
}

func (e *MarkdownExtractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

func (e *MarkdownExtractor) ExtractText(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	doc := e.markdown.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.Text:
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(source))
				}
			case *ast.AutoLink:
				sb.Write(node.URL(source))
			}
			return ast.WalkContinue, nil
		}
		// Blank line between blocks keeps paragraphs readable.
		if _, isBlock := n.(*ast.Document); !isBlock && n.Type() == ast.TypeBlock {
			sb.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(sb.String()), nil
}

func (e *MarkdownExtractor) ExtractMetadata(path string) (map[string]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := e.markdown.Parser().Parse(text.NewReader(source))

	var headings, codeBlocks, links, images, listItems int
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			headings++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			codeBlocks++
		case *ast.Link, *ast.AutoLink:
			links++
		case *ast.Image:
			images++
		case *ast.ListItem:
			listItems++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"file_type":        "markdown",
		"heading_count":    strconv.Itoa(headings),
		"code_block_count": strconv.Itoa(codeBlocks),
		"link_count":       strconv.Itoa(links),
		"image_count":      strconv.Itoa(images),
		"list_item_count":  strconv.Itoa(listItems),
	}, nil
}
