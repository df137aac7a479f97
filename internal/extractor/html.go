package extractor

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML files. Script and style contents are dropped;
// the remaining text nodes are whitespace-collapsed and joined.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor { return &HTMLExtractor{} }

func (e *HTMLExtractor) Extensions() []string {
	return []string{".html", ".htm"}
}

func (e *HTMLExtractor) ExtractText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return "", err
	}

	var chunks []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				chunks = append(chunks, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	return strings.Join(chunks, " "), nil
}

func (e *HTMLExtractor) ExtractMetadata(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{"file_type": "html"}

	var links, images, headings int
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					meta["title"] = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && !strings.HasPrefix(attr.Val, "#") {
						links++
						break
					}
				}
			case "img":
				images++
			case "h1", "h2", "h3", "h4", "h5", "h6":
				headings++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	meta["link_count"] = strconv.Itoa(links)
	meta["image_count"] = strconv.Itoa(images)
	meta["heading_count"] = strconv.Itoa(headings)
	return meta, nil
}
