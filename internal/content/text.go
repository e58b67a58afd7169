package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var blockTypes = map[string]bool{
	"paragraph": true, "heading": true, "listItem": true, "blockquote": true,
	"codeBlock": true, "tableCell": true, "tableHeader": true, "pointBox": true,
}

func plainText(n Node) string {
	var b strings.Builder
	collectText(&b, n)
	return strings.TrimSpace(b.String())
}

func collectText(b *strings.Builder, n Node) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
		return
	case "hardBreak":
		b.WriteString("\n")
		return
	}
	for _, child := range n.Content {
		collectText(b, child)
	}
	if blockTypes[n.Type] {
		b.WriteString("\n")
	}
}

// PlainText returns the visible text of the document, one block per line.
func PlainText(doc *Node) string {
	if doc == nil {
		return ""
	}
	return plainText(*doc)
}

// Excerpt returns at most limit runes of the document's text on one line.
func Excerpt(doc *Node, limit int) string {
	text := strings.Join(strings.Fields(PlainText(doc)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

// ReadingTime estimates minutes to read at 200 words (or 500 characters for
// unspaced scripts) per minute, never less than one.
func ReadingTime(doc *Node) int {
	text := PlainText(doc)
	words := len(strings.Fields(text))
	chars := utf8.RuneCountInString(strings.Join(strings.Fields(text), ""))

	minutes := (words + 199) / 200
	if byChars := (chars + 499) / 500; byChars > minutes && words*8 < chars {
		minutes = byChars
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Heading is a table-of-contents entry. ID matches the rendered anchor.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

func Headings(doc *Node) []Heading {
	if doc == nil {
		return nil
	}
	var out []Heading
	index := 0
	var visit func(n Node)
	visit = func(n Node) {
		if n.Type == "heading" {
			index++
			level := n.attrInt("level", 2)
			if level < 1 || level > 6 {
				level = 2
			}
			out = append(out, Heading{Level: level, Text: plainText(n), ID: fmt.Sprintf("section-%d", index)})
			return
		}
		for _, child := range n.Content {
			visit(child)
		}
	}
	visit(*doc)
	return out
}

// Images lists image sources in document order.
func Images(doc *Node) []string {
	if doc == nil {
		return nil
	}
	var out []string
	doc.Walk(func(n Node) {
		if n.Type == "image" {
			if src := safeURL(n.attrString("src")); src != "" {
				out = append(out, src)
			}
		}
	})
	return out
}
