package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/service"
)

type QuestionController struct {
	questionSvc   service.QuestionService
	disciplineSvc service.DisciplineService
}

func NewQuestionController(questionSvc service.QuestionService, disciplineSvc service.DisciplineService) *QuestionController {
	return &QuestionController{questionSvc: questionSvc, disciplineSvc: disciplineSvc}
}

func (ctrl *QuestionController) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		questions := apiV1.Group("/questions")
		questions.POST("", ctrl.Create)
		questions.GET("", ctrl.GetAll)
		questions.GET("/:id", ctrl.GetOne)
		questions.PUT("/:id", ctrl.Update)
		questions.DELETE("/:id", ctrl.Delete)

		apiV1.GET("/disciplines", ctrl.GetDisciplines)
	}
}

// Create godoc
// @Summary Create a question
// @Description Create an objective or subjective question. Discipline entries are ids or free-text names, created per creator on demand.
// @Tags questions
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param question body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or question shape"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questions [post]
func (ctrl *QuestionController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionCreateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.questionSvc.Create(userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAll godoc
// @Summary List the acting user's questions
// @Tags questions
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questions [get]
func (ctrl *QuestionController) GetAll(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	resp, err := ctrl.questionSvc.FindAll(userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetOne godoc
// @Summary Get a question by ID
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /questions/{id} [get]
func (ctrl *QuestionController) GetOne(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := ctrl.questionSvc.FindOne(id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a question
// @Description Nil fields stay untouched; non-nil alternative, model-answer and discipline sets fully replace the current ones.
// @Tags questions
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Question ID"
// @Param question body dto.QuestionUpdateDTO true "Fields to update"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the question's creator"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /questions/{id} [put]
func (ctrl *QuestionController) Update(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.QuestionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionUpdateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.questionSvc.Update(userID, id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a question
// @Description Removes the question everywhere it is referenced and recomputes affected bank rankings.
// @Tags questions
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Not the question's creator"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /questions/{id} [delete]
func (ctrl *QuestionController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := ctrl.questionSvc.Delete(userID, id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetDisciplines godoc
// @Summary List the acting user's disciplines
// @Tags questions
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Success 200 {array} dto.DisciplineDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /disciplines [get]
func (ctrl *QuestionController) GetDisciplines(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	resp, err := ctrl.disciplineSvc.FindAllByCreator(userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
