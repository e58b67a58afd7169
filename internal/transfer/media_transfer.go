package transfer

import (
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/pkg/pagination"
)

type MediaList struct {
	Assets     []*models.MediaAsset `json:"assets"`
	Pagination pagination.Page      `json:"pagination"`
}
