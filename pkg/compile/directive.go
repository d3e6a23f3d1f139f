package compile

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind is a binding kind. The set is closed: every Kind has an updater.
type Kind int

const (
	// KindText replaces text content.
	KindText Kind = iota + 1

	// KindHTML replaces inner HTML.
	KindHTML
)

// String returns the directive name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	default:
		return "unknown"
	}
}

// directivePrefix marks directive attributes.
const directivePrefix = "z-"

// directives maps attribute suffixes to kinds. Resolved once per attribute
// at compile time.
var directives = map[string]Kind{
	"text": KindText,
	"html": KindHTML,
}

// updater writes a value into a node.
type updater func(n *html.Node, value any) error

var updaters = map[Kind]updater{
	KindText: textUpdater,
	KindHTML: htmlUpdater,
}

// directiveName returns the directive name of a z-* attribute.
func directiveName(attrKey string) (string, bool) {
	return strings.CutPrefix(attrKey, directivePrefix)
}

func textUpdater(n *html.Node, value any) error {
	text := Format(value)
	if n.Type == html.TextNode {
		n.Data = text
		return nil
	}
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return nil
}

func htmlUpdater(n *html.Node, value any) error {
	nodes, err := html.ParseFragment(strings.NewReader(Format(value)), n)
	if err != nil {
		return err
	}
	removeChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
