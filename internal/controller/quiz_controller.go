package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service      *service.QuizService
	StatsService *service.StatsService
}

func NewQuizController(svc *service.QuizService, statsSvc *service.StatsService) *QuizController {
	return &QuizController{Service: svc, StatsService: statsSvc}
}

// @Summary 创建测验
// @Tags 测验模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateQuizReq true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuiz(user, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// @Summary 向测验添加题目
// @Tags 测验模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param body body service.AddQuestionReq true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AddQuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.AddQuestion(ctx.Param("quizId"), user, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// @Summary 发布测验
// @Tags 测验模块
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/publish [patch]
func (c *QuizController) PublishQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.Service.PublishQuiz(ctx.Param("quizId"), user)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// @Summary 更新测验
// @Tags 测验模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param body body service.UpdateQuizReq true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.UpdateQuiz(ctx.Param("quizId"), user, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// @Summary 获取测验详情
// @Description 非创建者拿到的题目视图不含正确答案和解析
// @Tags 测验模块
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.GetQuiz(ctx.Param("quizId"), user)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary 获取测验统计
// @Tags 测验模块
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/statistics [get]
func (c *QuizController) GetStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.GetStatistics(ctx.Request.Context(), ctx.Param("quizId"), user)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
