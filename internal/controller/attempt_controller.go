package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

type ResponsesBody struct {
	Responses []service.ResponseReq `json:"responses"`
}

// @Summary 开始测验尝试
// @Description 返回本次尝试的出题序列（已脱敏）和答题时长
// @Tags 答题模块
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.StartAttempt(ctx.Param("quizId"), user.UserID, time.Now())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 暂存作答
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param attemptId path string true "尝试ID"
// @Param body body ResponsesBody true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts/{attemptId}/responses [patch]
func (c *AttemptController) RecordResponses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body ResponsesBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.RecordResponses(ctx.Param("quizId"), ctx.Param("attemptId"), user.UserID, body.Responses); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"saved": len(body.Responses)})
}

// @Summary 提交测验
// @Description 判分并落库终态；限时测验超时提交会被标记为 EXPIRED
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param attemptId path string true "尝试ID"
// @Param body body ResponsesBody true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts/{attemptId}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body ResponsesBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitAttempt(ctx.Param("quizId"), ctx.Param("attemptId"), user.UserID, body.Responses, time.Now())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取尝试列表
// @Description 测验创建者可见全部尝试，学生只能看到自己的
// @Tags 答题模块
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = util.DefaultPage
	}
	if limit < 1 {
		limit = util.DefaultLimit
	}

	result, err := c.Service.ListAttempts(ctx.Param("quizId"), user, page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
