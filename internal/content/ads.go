package content

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	AdContainerClass = "in-article-ad"
	AdIndexAttr      = "data-ad-index"
	MaxInArticleAds  = 5
)

// AdPlacement configures the in-article ad units for one render.
type AdPlacement struct {
	Enabled bool
	Client  string
	// Slots holds the slot IDs for containers 0..4; blank entries stay empty.
	Slots []string
}

// InsertAdContainers puts an ad container right before every heading (any
// level) from the second through the sixth, indexed 0..4. An index that already has a
// container in the tree is skipped, so repeated calls never duplicate.
// It returns the number of containers inserted.
func InsertAdContainers(root *html.Node) int {
	existing := map[int]bool{}
	for _, c := range adContainers(root) {
		if idx, ok := adIndex(c); ok {
			existing[idx] = true
		}
	}

	var headings []*html.Node
	walk(root, func(n *html.Node) {
		if isHeading(n) {
			headings = append(headings, n)
		}
	})

	inserted := 0
	for i, h := range headings {
		if i == 0 {
			continue
		}
		idx := i - 1
		if idx >= MaxInArticleAds {
			break
		}
		if existing[idx] || h.Parent == nil {
			continue
		}
		h.Parent.InsertBefore(element("div", "class", AdContainerClass, AdIndexAttr, strconv.Itoa(idx)), h)
		existing[idx] = true
		inserted++
	}
	return inserted
}

// FillAdContainers places a responsive ad unit in each empty container whose
// slot is configured and returns how many were filled.
func FillAdContainers(root *html.Node, client string, slots []string) int {
	if client == "" {
		return 0
	}

	filled := 0
	for _, c := range adContainers(root) {
		idx, ok := adIndex(c)
		if !ok || idx >= len(slots) || slots[idx] == "" || c.FirstChild != nil {
			continue
		}
		c.AppendChild(adUnit(client, slots[idx]))
		filled++
	}
	return filled
}

// CountAdContainers reports the containers currently in the tree.
func CountAdContainers(root *html.Node) int {
	return len(adContainers(root))
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func adContainers(root *html.Node) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Div {
			return
		}
		if _, ok := adIndex(n); ok {
			found = append(found, n)
		}
	})
	return found
}

func adIndex(n *html.Node) (int, bool) {
	for _, a := range n.Attr {
		if a.Key == AdIndexAttr {
			idx, err := strconv.Atoi(a.Val)
			if err != nil {
				return 0, false
			}
			return idx, true
		}
	}
	return 0, false
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// RenderHTML runs the whole pipeline: document to tree, ad containers, ad
// units, serialization.
func (r Renderer) RenderHTML(doc *Node, placement AdPlacement) (string, error) {
	root, err := r.Render(doc)
	if err != nil {
		return "", err
	}
	if placement.Enabled {
		InsertAdContainers(root)
		FillAdContainers(root, placement.Client, placement.Slots)
	}
	return InnerHTML(root)
}
