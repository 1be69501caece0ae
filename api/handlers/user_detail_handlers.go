package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"news-quiz/dto"
	"news-quiz/services"
)

// GetUserDetailHandler godoc
// @Summary      Get caller preferences
// @Tags         user-details
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Success      200  {object}  dto.UserDetailDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /user-details [get]
func GetUserDetailHandler(svc *services.UserDetailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// CreateUserDetailHandler godoc
// @Summary      Create caller preferences
// @Tags         user-details
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Success      201  {object}  dto.UserDetailDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /user-details [post]
func CreateUserDetailHandler(svc *services.UserDetailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Create(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// UpdateCategoriesHandler godoc
// @Summary      Replace preferred categories
// @Description  201 when the preference document was created by this call.
// @Tags         user-details
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Param        body  body      dto.UpdateCategoriesRequest  true  "Category ids"
// @Success      200   {object}  dto.UserDetailDTO
// @Success      201   {object}  dto.UserDetailDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Router       /user-details/update_categories [post]
func UpdateCategoriesHandler(svc *services.UserDetailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdateCategoriesRequest
		if !bindJSON(c, &req) {
			return
		}
		u, created, err := svc.UpdateCategories(c.Request.Context(), userID(c), req.Categories)
		if err != nil {
			respondError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, u)
	}
}
