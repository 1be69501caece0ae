package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"news-quiz/dto"
	"news-quiz/services"
)

// HeaderUserID carries the caller's identity, set by the fronting gateway.
const HeaderUserID = "X-User-Id"

func userID(c *gin.Context) string {
	return c.GetHeader(HeaderUserID)
}

func queryInt64(c *gin.Context, key string) int64 {
	v, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return v
}

// ListNewsQAHandler godoc
// @Summary      List questions
// @Description  Paginated questions. Without a category the caller's preferred categories apply.
// @Tags         newsqa
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Param        page       query   int     false  "Page number (1-based)"
// @Param        page_size  query   int     false  "Page size (<=100)"
// @Param        category   query   int     false  "Category id"
// @Param        search     query   string  false  "Question text filter"
// @Param        ordering   query   string  false  "Sort key"  Enums(created_at, -created_at, updated_at, -updated_at)
// @Success      200  {object}  dto.Pagination[dto.NewsQADTO]
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /newsqa [get]
func ListNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListNewsQAInput
		in.UserID = userID(c)
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Category = queryInt64(c, "category")
		in.Search = c.Query("search")
		in.Ordering = c.DefaultQuery("ordering", "-created_at")

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetNewsQAHandler godoc
// @Summary      Get question by id
// @Tags         newsqa
// @Produce      json
// @Param        id   path      string  true  "ObjectID"
// @Success      200  {object}  dto.NewsQADTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /newsqa/{id} [get]
func GetNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		qa, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, qa)
	}
}

// CreateNewsQAHandler godoc
// @Summary      Create question
// @Tags         newsqa
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateNewsQARequest  true  "Question"
// @Success      201   {object}  dto.NewsQADTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO
// @Router       /newsqa [post]
func CreateNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateNewsQARequest
		if !bindJSON(c, &req) {
			return
		}
		qa, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, qa)
	}
}

// UpdateNewsQAHandler godoc
// @Summary      Update question
// @Description  Only the fields present in the body change.
// @Tags         newsqa
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ObjectID"
// @Param        body  body      dto.UpdateNewsQARequest  true  "Fields to change"
// @Success      200   {object}  dto.NewsQADTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Router       /newsqa/{id} [put]
func UpdateNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdateNewsQARequest
		if !bindJSON(c, &req) {
			return
		}
		qa, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, qa)
	}
}

// DeleteNewsQAHandler godoc
// @Summary      Delete question
// @Description  Soft delete. The question disappears from every read.
// @Tags         newsqa
// @Param        X-User-Id  header  string  false  "Caller id"
// @Param        id   path  string  true  "ObjectID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /newsqa/{id} [delete]
func DeleteNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RandomNewsQAHandler godoc
// @Summary      Random question
// @Tags         newsqa
// @Produce      json
// @Param        category  query     int  false  "Category id"
// @Success      200       {object}  dto.NewsQADTO
// @Failure      404       {object}  dto.ErrorResponseDTO
// @Router       /newsqa/random [get]
func RandomNewsQAHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		qa, err := svc.Random(c.Request.Context(), queryInt64(c, "category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, qa)
	}
}

// ByCategoryHandler godoc
// @Summary      Questions grouped by category
// @Description  Up to 5 questions per category name, limited to the caller's preferences when set.
// @Tags         newsqa
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Success      200  {object}  map[string][]dto.NewsQADTO
// @Router       /newsqa/by_category [get]
func ByCategoryHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		grouped, err := svc.ByCategory(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, grouped)
	}
}

type allByCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// AllByCategoryHandler godoc
// @Summary      All questions of a category
// @Tags         newsqa
// @Accept       json
// @Produce      json
// @Param        body  body      object{category=string}  true  "Category name"
// @Success      200   {array}   dto.NewsQADTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Router       /newsqa/all_by_category [post]
func AllByCategoryHandler(svc *services.NewsQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req allByCategoryRequest
		if !bindJSON(c, &req) {
			return
		}
		items, err := svc.AllByCategoryName(c.Request.Context(), req.Category)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// UpdateNewsHandler godoc
// @Summary      Run an ingestion pass
// @Description  Runs one pass in process (200) or queues it on kafka (202).
// @Tags         newsqa
// @Produce      json
// @Param        X-User-Id  header  string  false  "Caller id"
// @Success      200  {object}  dto.UpdateNewsResponseDTO
// @Success      202  {object}  dto.UpdateNewsResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /newsqa/update_news [post]
// @Router       /newsqa/update_news [get]
func UpdateNewsHandler(svc *services.UpdateNewsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestedBy := userID(c)
		if requestedBy == "" {
			requestedBy = "api"
		}
		stats, queued, err := svc.UpdateNews(c.Request.Context(), requestedBy)
		if err != nil {
			respondError(c, err)
			return
		}
		if queued {
			c.JSON(http.StatusAccepted, dto.UpdateNewsResponseDTO{Message: "News update queued"})
			return
		}
		c.JSON(http.StatusOK, dto.UpdateNewsResponseDTO{Message: "News updated successfully", Stats: stats})
	}
}
