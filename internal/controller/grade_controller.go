package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	Service *service.GradeService
}

func NewGradeController(svc *service.GradeService) *GradeController {
	return &GradeController{Service: svc}
}

// @Summary 课程成绩汇总
// @Description 每位学员的测验成绩与平均分，按姓名排序
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Param cursoId path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz/notas-curso/{cursoId} [get]
func (c *GradeController) CourseGrades(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "cursoId")
	if !ok {
		return
	}
	grades, err := c.Service.GradesForCourse(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "notas obtidas com sucesso", grades)
}

// @Summary 测验作答列表
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz/{id}/respostas [get]
func (c *GradeController) QuizResponses(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	rows, err := c.Service.ResponsesForQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, "respostas obtidas com sucesso", rows)
}
