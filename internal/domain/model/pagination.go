package model

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PaginationQuery drives every list endpoint. Page is 1-based.
type PaginationQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string

	// Resource-specific filters, zero means unset.
	ChallengeID uint
	UserID      uint
}

type PaginationResult[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}
