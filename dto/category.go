package dto

type CategoryDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	URI            string `json:"uri"`
	ParentCategory *int64 `json:"parent_category"`
}

type UserDetailDTO struct {
	User       string  `json:"user"`
	Categories []int64 `json:"categories"`
}

type UpdateCategoriesRequest struct {
	Categories []int64 `json:"categories"`
}
