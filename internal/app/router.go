package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerQuizRoutes(authGroup, c)
	}
}

func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	admin := middleware.RoleMiddleware(model.RoleAdmin)
	learner := middleware.RoleMiddleware(model.RoleLearner)

	quiz := group.Group("/quiz")
	{
		// 通用：按角色返回不同视图
		quiz.GET("", c.quiz.ListQuizzes)
		quiz.GET("/:id", c.quiz.GetQuiz)

		// 管理员
		quiz.POST("", admin, c.quiz.CreateQuiz)
		quiz.PUT("/:id", admin, c.quiz.UpdateQuiz)
		quiz.PUT("/:id/completo", admin, c.quiz.UpdateQuizComplete)
		quiz.DELETE("/:id", admin, c.quiz.DeleteQuiz)
		quiz.GET("/:id/respostas", admin, c.grade.QuizResponses)
		quiz.GET("/notas-curso/:cursoId", admin, c.grade.CourseGrades)

		// 学员
		quiz.POST("/:id/iniciar", learner, c.attempt.StartAttempt)
		quiz.POST("/:id/submeter", learner, c.attempt.SubmitAttempt)
		quiz.GET("/:id/resultado", learner, c.attempt.GetResult)
	}
}
