package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parser represents an HTML parser
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   n.Attr,
		Parent: parent,
	}

	var lastChild *Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lastChild = node.link(lastChild, convertNode(c, node))
	}
	node.LastChild = lastChild

	return node
}

// link appends child after prev and returns child.
func (n *Node) link(prev, child *Node) *Node {
	if n.FirstChild == nil {
		n.FirstChild = child
	}
	if prev != nil {
		prev.NextSibling = child
		child.PrevSibling = prev
	}
	return child
}

// Clone returns a deep copy of the subtree rooted at n. The copy has no
// parent or siblings, so mutating or releasing it never touches the source.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return cloneNode(n, nil)
}

func cloneNode(n *Node, parent *Node) *Node {
	attrs := make([]html.Attribute, len(n.Attr))
	copy(attrs, n.Attr)

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   attrs,
		Parent: parent,
	}

	var last *Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		last = node.link(last, cloneNode(c, node))
	}
	node.LastChild = last
	return node
}

// Release unlinks every node of the subtree so it can no longer be walked.
func (n *Node) Release() {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		c.Release()
		c = next
	}
	n.Parent, n.FirstChild, n.LastChild = nil, nil, nil
	n.PrevSibling, n.NextSibling = nil, nil
}

// AttrValue returns the value of the named attribute
func (n *Node) AttrValue(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// IsElement reports whether n is an element with the given tag
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

// Find returns the first node in document order for which match is true
func (n *Node) Find(match func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the element with the given id attribute
func (d *Document) FindByID(id string) *Node {
	return d.Root.Find(func(n *Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := n.AttrValue("id")
		return ok && v == id
	})
}

// FindTag returns the first element with the given tag name
func (d *Document) FindTag(tag string) *Node {
	return d.Root.Find(func(n *Node) bool { return n.IsElement(tag) })
}

// Detached builds a standalone document around a clone of root. Stylesheets
// found in the source document head are cloned along with it so the copy
// renders the same way.
func (d *Document) Detached(root *Node) *Document {
	doc := &Node{Type: html.DocumentNode}
	htmlEl := &Node{Type: html.ElementNode, Data: "html", Parent: doc}
	head := &Node{Type: html.ElementNode, Data: "head", Parent: htmlEl}
	body := &Node{Type: html.ElementNode, Data: "body", Parent: htmlEl}
	doc.FirstChild, doc.LastChild = htmlEl, htmlEl
	htmlEl.link(htmlEl.link(nil, head), body)
	htmlEl.LastChild = body

	var last *Node
	if d != nil {
		d.Root.Find(func(n *Node) bool {
			if n.IsElement("style") || n.IsElement("link") {
				c := cloneNode(n, head)
				last = head.link(last, c)
			}
			return false
		})
	}
	head.LastChild = last

	if root != nil {
		if root.IsElement("body") {
			var lastChild *Node
			for c := root.FirstChild; c != nil; c = c.NextSibling {
				lastChild = body.link(lastChild, cloneNode(c, body))
			}
			body.LastChild = lastChild
			body.Attr = append([]html.Attribute(nil), root.Attr...)
		} else {
			c := cloneNode(root, body)
			body.FirstChild, body.LastChild = c, c
		}
	}
	return &Document{Root: doc}
}

// Release unlinks the whole document tree
func (d *Document) Release() {
	if d == nil || d.Root == nil {
		return
	}
	d.Root.Release()
	d.Root = nil
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	err := html.Render(&buf, toXNode(d.Root))
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toXNode converts a subtree back into x/net/html nodes
func toXNode(n *Node) *html.Node {
	if n == nil {
		return nil
	}
	node := &html.Node{Type: n.Type, Data: n.Data, Attr: n.Attr}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(toXNode(c))
	}
	return node
}

// TextContent concatenates all text nodes below n
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}
