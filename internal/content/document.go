package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Node is one node of the editor's JSON document. The root node has type "doc".
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

var ErrInvalidDocument = errors.New("invalid document")

// Parse decodes raw editor JSON. An empty payload yields an empty document.
func Parse(data []byte) (*Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return &Node{Type: "doc"}, nil
	}

	var doc Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Type != "doc" {
		return nil, fmt.Errorf("%w: root type %q", ErrInvalidDocument, doc.Type)
	}
	return &doc, nil
}

func (n Node) attrString(key string) string {
	switch v := n.Attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (n Node) attrInt(key string, def int) int {
	switch v := n.Attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (m Mark) attrString(key string) string {
	if v, ok := m.Attrs[key].(string); ok {
		return v
	}
	return ""
}

// Walk visits n and every descendant depth-first.
func (n Node) Walk(fn func(Node)) {
	fn(n)
	for _, child := range n.Content {
		child.Walk(fn)
	}
}
