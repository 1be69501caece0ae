package dto

import "time"

// NewsQADTO is the public shape of a quiz question. Category is the taxonomy
// id of the root category.
type NewsQADTO struct {
	ID          string            `json:"id"`
	Category    int64             `json:"category"`
	Question    string            `json:"question"`
	Answer      string            `json:"answer"`
	Description string            `json:"description"`
	Options     map[string]string `json:"options"`
	Paragraph   string            `json:"paragraph,omitempty"`
	URI         *string           `json:"uri,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CreateNewsQARequest struct {
	Category    int64             `json:"category" binding:"required"`
	Question    string            `json:"question" binding:"required"`
	Answer      string            `json:"answer" binding:"required"`
	Description string            `json:"description"`
	Options     map[string]string `json:"options" binding:"required"`
	Paragraph   string            `json:"paragraph"`
	URI         *string           `json:"uri"`
}

// UpdateNewsQARequest replaces only the fields that are present.
type UpdateNewsQARequest struct {
	Category    *int64            `json:"category"`
	Question    *string           `json:"question"`
	Answer      *string           `json:"answer"`
	Description *string           `json:"description"`
	Options     map[string]string `json:"options"`
	Paragraph   *string           `json:"paragraph"`
}

type UpdateNewsResponseDTO struct {
	Message string `json:"message"`
	Stats   any    `json:"stats,omitempty"`
}
