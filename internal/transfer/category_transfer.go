package transfer

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"max=500"`
	Order       int    `json:"order" validate:"gte=0"`
}
