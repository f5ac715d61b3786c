package embdr

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Target is where embedded fragment is put. SetContent replaces target's
// content with given HTML fragment.
type Target interface {
	SetContent(html string)
}

// TargetFunc is an adapter to allow use of ordinary functions as Target
type TargetFunc func(html string)

// SetContent calls f(html)
func (f TargetFunc) SetContent(html string) { f(html) }

// Page is a parsed HTML document which elements can be used as embed
// targets. Page is safe for concurrent use.
type Page struct {
	mu  sync.Mutex
	doc *html.Node
}

// ParsePage parses HTML document read from r. contentType is used to detect
// document charset, document is converted to utf8 if needed.
func ParsePage(r io.Reader, contentType string) (*Page, error) {
	body, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc}, nil
}

// Element returns Target for element with given id attribute, or nil if
// page has no such element.
func (p *Page) Element(id string) Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := elementByID(p.doc, id)
	if n == nil {
		return nil
	}
	return &element{page: p, node: n}
}

// InnerHTML returns rendered content of element with given id
func (p *Page) InnerHTML(id string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := elementByID(p.doc, id)
	if n == nil {
		return "", false
	}
	var b bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", false
		}
	}
	return b.String(), true
}

// Render writes the whole document to w
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.doc)
}

func (p *Page) String() string {
	var b strings.Builder
	if err := p.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

type element struct {
	page *Page
	node *html.Node
}

func (e *element) SetContent(s string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return
	}
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
}

// elementByID returns first element node with given id attribute
func elementByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := elementByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
