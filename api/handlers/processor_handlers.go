package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-quiz/dto"
	"news-quiz/processor"
)

const serviceVersion = "1.0.0"

// TextProcessor is implemented by processor.Service.
type TextProcessor interface {
	Process(ctx context.Context, text string, task processor.Task) (*processor.Result, error)
	ProcessAll(ctx context.Context, text string) (*processor.AllResults, error)
}

// TaskHandler serves one task endpoint. The reply is the task's JSON shape
// or {error, raw_output} when the model output was unusable.
func TaskHandler(p TextProcessor, task processor.Task) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TextRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := p.Process(c.Request.Context(), req.Text, task)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// CategorizeHandler godoc
// @Summary      Categorize news text
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TextRequest  true  "News text"
// @Success      200   {object}  processor.Categorization
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /categorize [post]
func CategorizeHandler(p TextProcessor) gin.HandlerFunc {
	return TaskHandler(p, processor.TaskCategorize)
}

// QuizHandler godoc
// @Summary      Generate a quiz question
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TextRequest  true  "News text"
// @Success      200   {object}  processor.Quiz
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /quiz [post]
func QuizHandler(p TextProcessor) gin.HandlerFunc {
	return TaskHandler(p, processor.TaskQuiz)
}

// SummarizeHandler godoc
// @Summary      Summarize news text
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TextRequest  true  "News text"
// @Success      200   {object}  processor.Summary
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /summarize [post]
func SummarizeHandler(p TextProcessor) gin.HandlerFunc {
	return TaskHandler(p, processor.TaskSummarize)
}

// ProcessAllHandler godoc
// @Summary      Run every task
// @Description  Categorize, quiz and summarize the text. Each task result is independent.
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TextRequest  true  "News text"
// @Success      200   {object}  object{categorization=object,quiz=object,summary=object}
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /process [post]
func ProcessAllHandler(p TextProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TextRequest
		if !bindJSON(c, &req) {
			return
		}
		all, err := p.ProcessAll(c.Request.Context(), req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

// ProcessTaskHandler godoc
// @Summary      Run one task
// @Description  Same as the per-task routes with the task taken from the path.
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        task  path      string           true  "Task"  Enums(categorize, quiz, summarize)
// @Param        body  body      dto.TextRequest  true  "News text"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /process/{task} [post]
func ProcessTaskHandler(p TextProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := processor.ParseTask(c.Param("task"))
		if err != nil {
			respondError(c, err)
			return
		}
		TaskHandler(p, task)(c)
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthDTO
// @Router       /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthDTO{Status: "healthy", Version: serviceVersion})
}

