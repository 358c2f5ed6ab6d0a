package utils

import (
	"fmt"
	"io"
	"strings"

	"flightboard-scraper/internal/domain/entity"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BoardDocument is a parsed board page
type BoardDocument struct {
	root *html.Node
}

// ParseBoardDocument parses the board page markup
func ParseBoardDocument(r io.Reader) (*BoardDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board markup: %w", err)
	}
	return &BoardDocument{root: root}, nil
}

// TableRows returns the arrival and departure rows of the table with the given id.
// A missing table yields nil.
func (d *BoardDocument) TableRows(tableID string) []entity.BoardRow {
	table := findNode(d.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "id") == tableID
	})
	if table == nil {
		return nil
	}

	var rows []entity.BoardRow
	walk(table, func(n *html.Node) {
		if n.DataAtom != atom.Tr {
			return
		}
		if hasClass(n, classArrival) || hasClass(n, classDeparture) {
			rows = append(rows, htmlRow{node: n})
		}
	})
	return rows
}

// htmlRow adapts an html.Node to entity.BoardRow
type htmlRow struct {
	node *html.Node
}

func (r htmlRow) Find(tag, class string) (entity.BoardRow, bool) {
	n := findNode(r.node, matcher(tag, class))
	if n == nil {
		return nil, false
	}
	return htmlRow{node: n}, true
}

func (r htmlRow) FindAll(tag, class string) []entity.BoardRow {
	match := matcher(tag, class)
	var found []entity.BoardRow
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) {
			if match(n) {
				found = append(found, htmlRow{node: n})
			}
		})
	}
	return found
}

func (r htmlRow) HasClass(class string) bool {
	return hasClass(r.node, class)
}

// Text returns the node's text content with whitespace runs collapsed
func (r htmlRow) Text() string {
	var b strings.Builder
	walk(r.node, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func matcher(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != tag {
			return false
		}
		return class == "" || hasClass(n, class)
	}
}

// findNode returns the first descendant of n (n excluded) in document order matching fn
func findNode(n *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			return c
		}
		if found := findNode(c, fn); found != nil {
			return found
		}
	}
	return nil
}

// walk visits n and its descendants in document order
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
