package dto

import "github.com/google/uuid"

// CreateColumnRequest accepts the legacy "title" key as an alias of "name".
type CreateColumnRequest struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Position *int   `json:"position"`
}

func (r *CreateColumnRequest) ColumnName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Title
}

type UpdateColumnRequest struct {
	Name     *string `json:"name"`
	Title    *string `json:"title"`
	Color    *string `json:"color"`
	Position *int    `json:"position"`
}

func (r *UpdateColumnRequest) ColumnName() *string {
	if r.Name != nil {
		return r.Name
	}
	return r.Title
}

// ReorderColumnsRequest lists every column of the board in its new order.
type ReorderColumnsRequest struct {
	ColumnIDs []uuid.UUID `json:"column_ids"`
}
