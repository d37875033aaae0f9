package category

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Query struct {
	Name   string
	Limit  int
	Offset int
}

// CategoryRequest payload of creation and update.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Name string `json:"name" binding:"required" example:"Peripherals"`
}
