package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Color       string    `db:"color" json:"color"`
	Description string    `db:"description" json:"description"`
	Order       int       `db:"order" json:"order"`
	PostCount   int64     `db:"-" json:"post_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
