package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"news-quiz/api/handlers"
	"news-quiz/api/middleware"
	_ "news-quiz/docs"
	"news-quiz/services"
)

// swag instance names, see the go:generate lines in cmd/api and cmd/processor.
const (
	processorDocs = "processor"
	backendDocs   = "backend"
)

// NewProcessor builds the text processor service router.
func NewProcessor(p handlers.TextProcessor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(processorDocs)))
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	r.GET("/health", handlers.HealthHandler)
	r.POST("/categorize", handlers.CategorizeHandler(p))
	r.POST("/quiz", handlers.QuizHandler(p))
	r.POST("/summarize", handlers.SummarizeHandler(p))
	r.POST("/process", handlers.ProcessAllHandler(p))
	r.POST("/process/:task", handlers.ProcessTaskHandler(p))

	return r
}

// Backend groups the services behind the quiz backend router.
type Backend struct {
	NewsQA      *services.NewsQAService
	Categories  *services.CategoryService
	UserDetails *services.UserDetailService
	UpdateNews  *services.UpdateNewsService
	// Health reports dependency status; nil means always healthy.
	Health         gin.HandlerFunc
	AllowedOrigins []string
}

// NewBackend builds the quiz backend router under /api/v1.
func NewBackend(b Backend) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.CORS(b.AllowedOrigins))

	health := b.Health
	if health == nil {
		health = handlers.HealthHandler
	}
	r.GET("/health", health)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(backendDocs)))

	api := r.Group("/api/v1")
	{
		qa := api.Group("/newsqa")
		qa.GET("", handlers.ListNewsQAHandler(b.NewsQA))
		qa.POST("", handlers.CreateNewsQAHandler(b.NewsQA))
		qa.GET("/random", handlers.RandomNewsQAHandler(b.NewsQA))
		qa.GET("/by_category", handlers.ByCategoryHandler(b.NewsQA))
		qa.POST("/all_by_category", handlers.AllByCategoryHandler(b.NewsQA))
		qa.POST("/update_news", handlers.UpdateNewsHandler(b.UpdateNews))
		qa.GET("/update_news", handlers.UpdateNewsHandler(b.UpdateNews))
		qa.GET("/:id", handlers.GetNewsQAHandler(b.NewsQA))
		qa.PUT("/:id", handlers.UpdateNewsQAHandler(b.NewsQA))
		qa.DELETE("/:id", handlers.DeleteNewsQAHandler(b.NewsQA))

		cats := api.Group("/categories")
		cats.GET("", handlers.ListCategoriesHandler(b.Categories))
		cats.GET("/user_categories", handlers.UserCategoriesHandler(b.Categories))
		cats.GET("/:id", handlers.GetCategoryHandler(b.Categories))
		cats.GET("/:id/questions", handlers.CategoryQuestionsHandler(b.Categories))

		users := api.Group("/user-details")
		users.GET("", handlers.GetUserDetailHandler(b.UserDetails))
		users.POST("", handlers.CreateUserDetailHandler(b.UserDetails))
		users.POST("/update_categories", handlers.UpdateCategoriesHandler(b.UserDetails))
	}

	return r
}
