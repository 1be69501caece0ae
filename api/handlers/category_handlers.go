package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"news-quiz/services"
)

// ListCategoriesHandler godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        search  query    string  false  "Name filter"
// @Success      200     {array}  dto.CategoryDTO
// @Router       /categories [get]
func ListCategoriesHandler(svc *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.List(c.Request.Context(), c.Query("search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

// GetCategoryHandler godoc
// @Summary      Get category by id
// @Tags         categories
// @Produce      json
// @Param        id   path      int  true  "Category id"
// @Success      200  {object}  dto.CategoryDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /categories/{id} [get]
func GetCategoryHandler(svc *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// CategoryQuestionsHandler godoc
// @Summary      Questions of a category
// @Tags         categories
// @Produce      json
// @Param        id   path      int  true  "Category id"
// @Success      200  {array}   dto.NewsQADTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /categories/{id}/questions [get]
func CategoryQuestionsHandler(svc *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Questions(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// UserCategoriesHandler godoc
// @Summary      Caller's preferred categories
// @Tags         categories
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Success      200  {array}  dto.CategoryDTO
// @Router       /categories/user_categories [get]
func UserCategoriesHandler(svc *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.UserCategories(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}
