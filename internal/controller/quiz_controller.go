package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	AttemptService *service.AttemptService
}

func NewQuizController(quizService *service.QuizService, attemptService *service.AttemptService) *QuizController {
	return &QuizController{QuizService: quizService, AttemptService: attemptService}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "id inválido")
	}
	return id, ok
}

func isStaff(user *util.Claims) bool {
	return user.Role == model.RoleAdmin || user.Role == model.RoleTrainer
}

// @Summary 列出课程测验
// @Description 管理端返回题目数与完成数；学员端返回 estado 及本人作答，并为已过期测验补零分记录
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id_curso query int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /quiz [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := util.ParseID(ctx.Query("id_curso"))
	if !ok {
		util.BadRequest(ctx, "id_curso é obrigatório")
		return
	}

	if isStaff(user) {
		rows, err := c.QuizService.ListQuizzes(ctx.Request.Context(), courseID)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, "quizzes obtidos com sucesso", rows)
		return
	}

	views, err := c.AttemptService.ListForLearner(ctx.Request.Context(), courseID, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "quizzes obtidos com sucesso", views)
}

// @Summary 获取测验
// @Description 学员调用时返回答题视图，正确答案仅在完成后返回；管理端加 formato=quiz 预览答题视图，无需选课
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param formato query string false "quiz"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if !isStaff(user) || ctx.Query("formato") == "quiz" {
		var payload *service.LearnerQuizPayload
		var err error
		if isStaff(user) {
			payload, err = c.AttemptService.PreviewLearnerQuiz(ctx.Request.Context(), id)
		} else {
			payload, err = c.AttemptService.GetLearnerQuiz(ctx.Request.Context(), id, user.UserID)
		}
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, "quiz obtido com sucesso", payload)
		return
	}

	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "quiz obtido com sucesso", quiz)
}

// @Summary 创建测验
// @Description 测验、题目、选项在同一事务中写入，仅限自主学习课程
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizRequest true "测验"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "corpo do pedido inválido: "+err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "quiz criado com sucesso", quiz)
}

// @Summary 更新测验基本信息
// @Description 只更新标量字段，题目保持不变
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body service.QuizRequest true "测验"
// @Success 200 {object} util.Response
// @Router /quiz/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	c.update(ctx, false)
}

// @Summary 完整更新测验
// @Description 提供 perguntas 时整体替换题目与选项
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body service.QuizRequest true "测验"
// @Success 200 {object} util.Response
// @Router /quiz/{id}/completo [put]
func (c *QuizController) UpdateQuizComplete(ctx *gin.Context) {
	c.update(ctx, true)
}

func (c *QuizController) update(ctx *gin.Context, complete bool) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "corpo do pedido inválido: "+err.Error())
		return
	}
	if !complete {
		req.Questions = nil
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "quiz atualizado com sucesso", quiz)
}

// @Summary 删除测验
// @Description 级联删除题目、选项、作答及明细
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "quiz eliminado com sucesso", nil)
}
