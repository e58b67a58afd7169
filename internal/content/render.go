package content

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer turns editor documents into an HTML tree.
type Renderer struct {
	// AdClient is the AdSense publisher id ("ca-pub-...") used by adEmbed nodes.
	AdClient string
}

// Render builds the document under a detached <div> root.
func (r Renderer) Render(doc *Node) (*html.Node, error) {
	if doc == nil || doc.Type != "doc" {
		return nil, ErrInvalidDocument
	}

	root := element("div", "class", "article-content")
	headingIndex := 0
	for _, child := range doc.Content {
		if err := r.renderNode(root, child, &headingIndex); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (r Renderer) renderChildren(parent *html.Node, n Node, headingIndex *int) error {
	for _, child := range n.Content {
		if err := r.renderNode(parent, child, headingIndex); err != nil {
			return err
		}
	}
	return nil
}

func (r Renderer) renderNode(parent *html.Node, n Node, headingIndex *int) error {
	switch n.Type {
	case "text":
		parent.AppendChild(renderText(n))
		return nil

	case "paragraph":
		return r.wrap(parent, element("p"), n, headingIndex)

	case "heading":
		level := n.attrInt("level", 2)
		if level < 1 || level > 6 {
			level = 2
		}
		*headingIndex++
		h := element(fmt.Sprintf("h%d", level), "id", fmt.Sprintf("section-%d", *headingIndex))
		return r.wrap(parent, h, n, headingIndex)

	case "bulletList":
		return r.wrap(parent, element("ul"), n, headingIndex)

	case "orderedList":
		ol := element("ol")
		if start := n.attrInt("start", 1); start != 1 {
			ol.Attr = append(ol.Attr, html.Attribute{Key: "start", Val: fmt.Sprint(start)})
		}
		return r.wrap(parent, ol, n, headingIndex)

	case "listItem":
		return r.wrap(parent, element("li"), n, headingIndex)

	case "blockquote":
		return r.wrap(parent, element("blockquote"), n, headingIndex)

	case "codeBlock":
		pre := element("pre")
		code := element("code")
		if lang := n.attrString("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		code.AppendChild(textNode(plainText(n)))
		pre.AppendChild(code)
		parent.AppendChild(pre)
		return nil

	case "horizontalRule":
		parent.AppendChild(element("hr"))
		return nil

	case "hardBreak":
		parent.AppendChild(element("br"))
		return nil

	case "image":
		src := safeURL(n.attrString("src"))
		if src == "" {
			return nil
		}
		img := element("img", "src", src, "alt", n.attrString("alt"), "loading", "lazy")
		if title := n.attrString("title"); title != "" {
			img.Attr = append(img.Attr, html.Attribute{Key: "title", Val: title})
		}
		parent.AppendChild(img)
		return nil

	case "table":
		table := element("table")
		tbody := element("tbody")
		table.AppendChild(tbody)
		parent.AppendChild(table)
		return r.renderChildren(tbody, n, headingIndex)

	case "tableRow":
		return r.wrap(parent, element("tr"), n, headingIndex)

	case "tableHeader":
		return r.wrap(parent, element("th"), n, headingIndex)

	case "tableCell":
		return r.wrap(parent, element("td"), n, headingIndex)

	case "ctaButton":
		parent.AppendChild(renderCTA(n))
		return nil

	case "pointBox":
		box := element("div", "class", "point-box")
		if title := n.attrString("title"); title != "" {
			p := element("p", "class", "point-box-title")
			p.AppendChild(textNode(title))
			box.AppendChild(p)
		}
		return r.wrap(parent, box, n, headingIndex)

	case "affiliateEmbed", "htmlEmbed":
		return renderRawEmbed(parent, n)

	case "adEmbed":
		slot := n.attrString("slot")
		if slot == "" || r.AdClient == "" {
			return nil
		}
		box := element("div", "class", "ad-embed")
		box.AppendChild(adUnit(r.AdClient, slot))
		parent.AppendChild(box)
		return nil

	case "youtube":
		id := youtubeID(n.attrString("src"))
		if id == "" {
			id = n.attrString("videoId")
		}
		if id == "" {
			return nil
		}
		box := element("div", "class", "youtube-embed")
		box.AppendChild(element("iframe",
			"src", "https://www.youtube.com/embed/"+url.PathEscape(id),
			"title", "YouTube video player",
			"frameborder", "0",
			"allow", "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture",
			"allowfullscreen", "",
			"loading", "lazy",
		))
		parent.AppendChild(box)
		return nil

	case "instagram":
		link := safeURL(n.attrString("url"))
		if link == "" {
			return nil
		}
		quote := element("blockquote",
			"class", "instagram-media",
			"data-instgrm-permalink", link,
			"data-instgrm-version", "14",
		)
		a := element("a", "href", link, "target", "_blank", "rel", "noopener noreferrer")
		a.AppendChild(textNode(link))
		quote.AppendChild(a)
		parent.AppendChild(quote)
		return nil

	default:
		// unknown nodes keep their children so text is never lost
		return r.renderChildren(parent, n, headingIndex)
	}
}

func (r Renderer) wrap(parent, el *html.Node, n Node, headingIndex *int) error {
	parent.AppendChild(el)
	return r.renderChildren(el, n, headingIndex)
}

func renderText(n Node) *html.Node {
	current := textNode(n.Text)
	for i := len(n.Marks) - 1; i >= 0; i-- {
		var wrapper *html.Node
		m := n.Marks[i]
		switch m.Type {
		case "bold":
			wrapper = element("strong")
		case "italic":
			wrapper = element("em")
		case "underline":
			wrapper = element("u")
		case "strike":
			wrapper = element("s")
		case "code":
			wrapper = element("code")
		case "highlight":
			wrapper = element("mark")
		case "superscript":
			wrapper = element("sup")
		case "subscript":
			wrapper = element("sub")
		case "link":
			href := safeURL(m.attrString("href"))
			if href == "" {
				continue
			}
			wrapper = element("a", "href", href)
			if m.attrString("target") == "_blank" {
				wrapper.Attr = append(wrapper.Attr,
					html.Attribute{Key: "target", Val: "_blank"},
					html.Attribute{Key: "rel", Val: "noopener noreferrer"},
				)
			}
		default:
			continue
		}
		wrapper.AppendChild(current)
		current = wrapper
	}
	return current
}

func renderCTA(n Node) *html.Node {
	color := n.attrString("color")
	if color == "" {
		color = "primary"
	}
	classes := []string{"cta-button", "cta-" + color}
	if anim := n.attrString("animation"); anim != "" && anim != "none" {
		classes = append(classes, "cta-anim-"+anim)
	}

	wrapper := element("div", "class", "cta-button-wrapper")
	a := element("a",
		"class", strings.Join(classes, " "),
		"href", safeURL(n.attrString("href")),
		"target", "_blank",
		"rel", "noopener noreferrer sponsored",
	)
	text := n.attrString("text")
	if text == "" {
		text = plainText(n)
	}
	a.AppendChild(textNode(text))
	wrapper.AppendChild(a)
	return wrapper
}

func renderRawEmbed(parent *html.Node, n Node) error {
	raw := n.attrString("html")
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	box := element("div", "class", "embed-"+n.Type)
	nodes, err := html.ParseFragment(strings.NewReader(raw), element("div"))
	if err != nil {
		return fmt.Errorf("parse %s: %w", n.Type, err)
	}
	for _, child := range nodes {
		box.AppendChild(child)
	}
	parent.AppendChild(box)
	return nil
}

func adUnit(client, slot string) *html.Node {
	return element("ins",
		"class", "adsbygoogle",
		"style", "display:block",
		"data-ad-client", client,
		"data-ad-slot", slot,
		"data-ad-format", "auto",
		"data-full-width-responsive", "true",
	)
}

func youtubeID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	switch {
	case host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
			}
		}
	}
	return ""
}

func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return raw
	default:
		return ""
	}
}

// element builds a detached element; attrs are key/value pairs.
func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
