package app

import (
	"elearn_backend/docs"
	"elearn_backend/internal/config"
	"elearn_backend/internal/middleware"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

// registerStudentRoutes 登录即可访问的接口
func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	group.GET("/courses", c.course.ListCourses)
	group.GET("/courses/:courseId", c.course.GetCourse)

	group.GET("/quizzes/:quizId", c.quiz.GetQuiz)

	// 答题流程
	group.POST("/quizzes/:quizId/attempts", c.attempt.StartAttempt)
	group.PATCH("/quizzes/:quizId/attempts/:attemptId/responses", c.attempt.RecordResponses)
	group.POST("/quizzes/:quizId/attempts/:attemptId/submit", c.attempt.SubmitAttempt)
	group.GET("/quizzes/:quizId/attempts", c.attempt.ListAttempts)
}

// registerInstructorRoutes 教师（及管理员）接口
func (a *App) registerInstructorRoutes(group *gin.RouterGroup, c *controllers) {
	instructor := group.Group("/")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.POST("/courses", c.course.CreateCourse)

		instructor.POST("/quizzes", c.quiz.CreateQuiz)
		instructor.POST("/quizzes/:quizId/questions", c.quiz.AddQuestion)
		instructor.PATCH("/quizzes/:quizId/publish", c.quiz.PublishQuiz)
		instructor.PUT("/quizzes/:quizId", c.quiz.UpdateQuiz)
		instructor.GET("/quizzes/:quizId/statistics", c.quiz.GetStatistics)
	}
}
