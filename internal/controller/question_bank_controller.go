package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/service"
)

type QuestionBankController struct {
	bankSvc service.QuestionBankService
}

func NewQuestionBankController(bankSvc service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{bankSvc: bankSvc}
}

func (ctrl *QuestionBankController) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		banks := apiV1.Group("/question-banks")
		banks.POST("", ctrl.Create)
		banks.GET("", ctrl.GetAll)
		banks.GET("/:id", ctrl.GetOne)
		banks.PUT("/:id", ctrl.Update)
		banks.DELETE("/:id", ctrl.Delete)
		banks.POST("/:id/questions", ctrl.AddQuestions)
		banks.DELETE("/:id/questions", ctrl.RemoveQuestions)
	}
}

// Create godoc
// @Summary Create a question bank
// @Description Create a bank with optional initial members. The discipline ranking is computed from the members in request order.
// @Tags question-banks
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param bank body dto.QuestionBankCreateDTO true "Bank data"
// @Success 201 {object} dto.QuestionBankResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body"
// @Failure 404 {object} dto.ErrorResponse "Unknown question id"
// @Router /question-banks [post]
func (ctrl *QuestionBankController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.QuestionBankCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionBankCreateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.bankSvc.Create(userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAll godoc
// @Summary List the acting user's question banks
// @Tags question-banks
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Success 200 {array} dto.QuestionBankResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /question-banks [get]
func (ctrl *QuestionBankController) GetAll(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	resp, err := ctrl.bankSvc.FindAll(userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetOne godoc
// @Summary Get a question bank with members and discipline ranking
// @Tags question-banks
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Bank ID"
// @Success 200 {object} dto.QuestionBankResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the bank's creator"
// @Failure 404 {object} dto.ErrorResponse "Bank not found"
// @Router /question-banks/{id} [get]
func (ctrl *QuestionBankController) GetOne(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := ctrl.bankSvc.FindOne(userID, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a question bank
// @Description Nil fields stay untouched; a non-nil question list replaces the membership and rebuilds the ranking.
// @Tags question-banks
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Bank ID"
// @Param bank body dto.QuestionBankUpdateDTO true "Fields to update"
// @Success 200 {object} dto.QuestionBankResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the bank's creator"
// @Failure 404 {object} dto.ErrorResponse "Bank not found"
// @Router /question-banks/{id} [put]
func (ctrl *QuestionBankController) Update(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.QuestionBankUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionBankUpdateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.bankSvc.Update(userID, id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a question bank
// @Description Removes the bank and its links; member questions stay untouched.
// @Tags question-banks
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Bank ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Not the bank's creator"
// @Failure 404 {object} dto.ErrorResponse "Bank not found"
// @Router /question-banks/{id} [delete]
func (ctrl *QuestionBankController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := ctrl.bankSvc.Delete(userID, id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddQuestions godoc
// @Summary Add questions to a bank
// @Description Idempotent: already-member ids are skipped. The discipline ranking is recomputed afterwards.
// @Tags question-banks
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Bank ID"
// @Param questions body dto.BankQuestionsDTO true "Question ids to add"
// @Success 200 {object} dto.QuestionBankResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Bank or question not found"
// @Router /question-banks/{id}/questions [post]
func (ctrl *QuestionBankController) AddQuestions(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.BankQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.bankSvc.AddQuestions(userID, id, req.Questions)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RemoveQuestions godoc
// @Summary Remove questions from a bank
// @Tags question-banks
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Bank ID"
// @Param questions body dto.BankQuestionsDTO true "Question ids to remove"
// @Success 200 {object} dto.QuestionBankResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Bank not found"
// @Router /question-banks/{id}/questions [delete]
func (ctrl *QuestionBankController) RemoveQuestions(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.BankQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.bankSvc.RemoveQuestions(userID, id, req.Questions)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
