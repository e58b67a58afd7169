package pagination

import (
	"encoding/json"
	"strconv"
)

// MaxTokens is the widest page strip shown before pages collapse into ellipses.
const MaxTokens = 7

const ellipsis = "ellipsis"

// Token is one entry of a page strip: a page number or an ellipsis marker.
type Token struct {
	Page     int
	Ellipsis bool
}

func Number(page int) Token { return Token{Page: page} }

func Gap() Token { return Token{Ellipsis: true} }

func (t Token) String() string {
	if t.Ellipsis {
		return ellipsis
	}
	return strconv.Itoa(t.Page)
}

func (t Token) MarshalJSON() ([]byte, error) {
	if t.Ellipsis {
		return json.Marshal(ellipsis)
	}
	return json.Marshal(t.Page)
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Gap()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Number(n)
	return nil
}

// PageNumbers returns the page strip for currentPage out of totalPages.
// Up to seven pages are listed in full. Past that, page 1 and the last page
// are always present with a window around currentPage and single ellipses in
// the gaps. Out-of-range input never panics.
func PageNumbers(currentPage, totalPages int) []Token {
	if totalPages <= 0 {
		return []Token{}
	}

	if totalPages <= MaxTokens {
		return pageRange(1, totalPages)
	}

	switch {
	case currentPage <= 4:
		tokens := pageRange(1, 5)
		return append(tokens, Gap(), Number(totalPages))
	case currentPage >= totalPages-3:
		tokens := []Token{Number(1), Gap()}
		return append(tokens, pageRange(totalPages-4, totalPages)...)
	default:
		return []Token{
			Number(1),
			Gap(),
			Number(currentPage - 1),
			Number(currentPage),
			Number(currentPage + 1),
			Gap(),
			Number(totalPages),
		}
	}
}

func pageRange(from, to int) []Token {
	tokens := make([]Token, 0, to-from+1)
	for p := from; p <= to; p++ {
		tokens = append(tokens, Number(p))
	}
	return tokens
}

// Page describes one page of a list endpoint.
type Page struct {
	Current    int     `json:"current"`
	Size       int     `json:"size"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
	Pages      []Token `json:"pages"`
}

func NewPage(current, size int, total int64) Page {
	totalPages := TotalPages(total, size)
	return Page{
		Current:    current,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Pages:      PageNumbers(current, totalPages),
	}
}

func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func Offset(page, size int) int {
	if page <= 1 || size <= 0 {
		return 0
	}
	return (page - 1) * size
}
