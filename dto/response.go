package dto

// ErrorResponseDTO는 공통 에러 응답 형식이다.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}

// MessageResponseDTO는 단순 메시지 응답 형식이다.
type MessageResponseDTO struct {
	Message string `json:"message"`
}

// Pagination is a generic pagination envelope for list results.
// Total is the number of items matching the filters; Page is 1-based.
type Pagination[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
