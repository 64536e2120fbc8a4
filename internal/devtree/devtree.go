// Package devtree reads and writes model trees as HTML-like markup. It is
// used for fixtures, debugging output and convergence checks.
//
// Elements are written as tags. Text with attributes is wrapped in a
// <text> tag, plain text is written as is:
//
//	<paragraph>fo<text bold="true">o</text></paragraph>
//
// Attribute values that are valid JSON are decoded, anything else is kept as
// a string. Tag names are lower-cased by the HTML tokenizer.
package devtree

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/vctree/model"
)

// TextTag wraps text that carries attributes.
const TextTag = "text"

// Parse parses markup into a list of nodes.
func Parse(markup string) ([]model.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	var nodes []model.Node
	for _, n := range parsed {
		converted, err := convert(n)
		if err != nil {
			return nil, err
		}
		if converted != nil {
			nodes = append(nodes, converted)
		}
	}
	// Merge adjacent text the way the model does.
	return model.NewElement("", nil, nodes...).Children, nil
}

func convert(n *html.Node) (model.Node, error) {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil, nil
		}
		return model.NewText(n.Data, nil), nil
	case html.ElementNode:
		attrs := convertAttributes(n.Attr)
		if n.Data == TextTag {
			var data strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.TextNode {
					return nil, fmt.Errorf("<%s> may only contain text", TextTag)
				}
				data.WriteString(c.Data)
			}
			if data.Len() == 0 {
				return nil, nil
			}
			return model.NewText(data.String(), attrs), nil
		}
		var children []model.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			child, err := convert(c)
			if err != nil {
				return nil, err
			}
			if child != nil {
				children = append(children, child)
			}
		}
		return model.NewElement(n.Data, attrs, children...), nil
	case html.CommentNode:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported markup node type %d", n.Type)
}

func convertAttributes(attrs []html.Attribute) model.Attributes {
	if len(attrs) == 0 {
		return nil
	}
	out := make(model.Attributes, len(attrs))
	for _, a := range attrs {
		var v any
		if err := json.Unmarshal([]byte(a.Val), &v); err != nil {
			v = a.Val
		}
		out[a.Key] = v
	}
	return out
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(markup string) []model.Node {
	nodes, err := Parse(markup)
	if err != nil {
		panic(fmt.Sprintf("devtree: parse %q: %v", markup, err))
	}
	return nodes
}

// Load appends the nodes in markup to the end of root.
func Load(doc *model.Document, root, markup string) error {
	nodes, err := Parse(markup)
	if err != nil {
		return err
	}
	element := doc.Root(root)
	if element == nil {
		return fmt.Errorf("%w: %q", model.ErrRootDoesNotExist, root)
	}
	return doc.Insert(model.NewPosition(root, element.MaxOffset()), nodes)
}

// NewDocument creates a document with a "main" root holding markup.
func NewDocument(markup string) (*model.Document, error) {
	doc := model.NewDocument(model.DefaultRootName)
	if err := Load(doc, model.DefaultRootName, markup); err != nil {
		return nil, err
	}
	return doc, nil
}

// MustDocument is like NewDocument but panics on error. Intended for tests.
func MustDocument(markup string) *model.Document {
	doc, err := NewDocument(markup)
	if err != nil {
		panic(fmt.Sprintf("devtree: document %q: %v", markup, err))
	}
	return doc
}

// Stringify renders nodes as markup. Attributes are sorted by key.
func Stringify(nodes []model.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		h, err := toHTML(n)
		if err != nil {
			return "", err
		}
		if err := html.Render(&buf, h); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// StringifyRoot renders the content of a root.
func StringifyRoot(doc *model.Document, root string) string {
	element := doc.Root(root)
	if element == nil {
		return ""
	}
	s, err := Stringify(element.Children)
	if err != nil {
		return fmt.Sprintf("<!-- %v -->", err)
	}
	return s
}

func toHTML(n model.Node) (*html.Node, error) {
	attrs, err := toHTMLAttributes(n.Attributes())
	if err != nil {
		return nil, err
	}
	switch v := n.(type) {
	case *model.Text:
		text := &html.Node{Type: html.TextNode, Data: v.Data}
		if len(attrs) == 0 {
			return text, nil
		}
		wrapper := &html.Node{Type: html.ElementNode, Data: TextTag, Attr: attrs}
		wrapper.AppendChild(text)
		return wrapper, nil
	case *model.Element:
		el := &html.Node{Type: html.ElementNode, Data: v.Name, Attr: attrs}
		for _, c := range v.Children {
			child, err := toHTML(c)
			if err != nil {
				return nil, err
			}
			el.AppendChild(child)
		}
		return el, nil
	}
	return nil, fmt.Errorf("unknown node type %T", n)
}

func toHTMLAttributes(attrs model.Attributes) ([]html.Attribute, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]html.Attribute, 0, len(keys))
	for _, k := range keys {
		val, err := attributeString(attrs[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out = append(out, html.Attribute{Key: k, Val: val})
	}
	return out, nil
}

func attributeString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Hash fingerprints the content roots of doc, their attributes included.
// Documents with equal content have equal hashes; the graveyard is ignored.
func Hash(doc *model.Document) string {
	h := sha256.New()
	for _, name := range doc.ContentRootNames() {
		root := doc.Root(name)
		attrs, _ := toHTMLAttributes(root.Attrs)
		fmt.Fprintf(h, "%s%v\n%s\n", name, attrs, StringifyRoot(doc, name))
	}
	return hex.EncodeToString(h.Sum(nil))
}
