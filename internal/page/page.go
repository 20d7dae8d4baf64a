// Package page holds the HTML document the adder writes its results into.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultTitle is used for documents created from scratch.
const DefaultTitle = "wasmadd"

// skeleton is parsed for new documents. No whitespace follows </body>,
// since the parser would move it into the body.
const skeleton = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title></title></head><body></body></html>`

// Document is a parsed HTML page whose body only ever grows. Everything
// outside the appended paragraphs is kept as parsed.
type Document struct {
	mu   sync.Mutex
	root *html.Node
	body *html.Node
}

// New returns an empty document titled title.
func New(title string) *Document {
	if title == "" {
		title = DefaultTitle
	}
	doc, err := parse(strings.NewReader(skeleton))
	if err != nil {
		panic(err)
	}
	if t := findElement(doc.root, atom.Title); t != nil {
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	}
	return doc
}

// Load parses the page at path. A missing file yields New(title); an
// existing page is kept as is, including an implied body.
func Load(path, title string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(title), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page '%s': %w", path, err)
	}

	doc, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page '%s': %w", path, err)
	}
	return doc, nil
}

func parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	// The parser always synthesizes html, head and body.
	body := findElement(root, atom.Body)
	if body == nil {
		return nil, errors.New("document has no body")
	}
	return &Document{root: root, body: body}, nil
}

// AppendParagraph appends a <p> element holding text to the body and
// returns its markup. text is inserted as a text node, never as markup.
func (d *Document) AppendParagraph(text string) string {
	p := &html.Node{Type: html.ElementNode, DataAtom: atom.P, Data: "p"}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.body.AppendChild(p)
	return render(p)
}

// Body returns the markup inside the body element.
func (d *Document) Body() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&b, c)
	}
	return b.String()
}

// Render returns the complete HTML document.
func (d *Document) Render() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return render(d.root)
}

// Save writes the rendered document to path.
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, []byte(d.Render()), 0644); err != nil {
		return fmt.Errorf("failed to write page '%s': %w", path, err)
	}
	return nil
}

func render(n *html.Node) string {
	var b strings.Builder
	// Rendering into a strings.Builder cannot fail.
	html.Render(&b, n)
	return b.String()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
