package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePostRequest(t *testing.T) {
	assert.NoError(t, Validate(PostRequest{Title: "Hello", Status: "draft"}))

	err := Validate(PostRequest{Status: "archived"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "title failed required")
		assert.Contains(t, err.Error(), "status failed oneof")
	}
}

func TestValidateAdRequest(t *testing.T) {
	assert.NoError(t, Validate(AdRequest{Name: "Top", Location: "article-top", SlotID: "1234567890"}))
	assert.Error(t, Validate(AdRequest{Name: "Top", Location: "footer", SlotID: "1234567890"}))
	assert.Error(t, Validate(AdRequest{Name: "Top", Location: "sidebar", SlotID: "abc"}))
}

func TestValidateAdSettingsRequest(t *testing.T) {
	assert.NoError(t, Validate(AdSettingsRequest{ClientID: "ca-pub-123", InArticle1: "42"}))
	assert.Error(t, Validate(AdSettingsRequest{ClientID: "pub-123"}))
}

func TestValidateCategoryRequest(t *testing.T) {
	assert.NoError(t, Validate(CategoryRequest{Name: "Go", Color: "#00ADD8"}))
	assert.Error(t, Validate(CategoryRequest{Name: "Go", Color: "blue"}))
}
