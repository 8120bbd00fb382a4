package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/service"
)

type ExamController struct {
	examSvc     service.ExamService
	accessSvc   service.ExamAccessService
	responseSvc service.ExamResponseService
}

func NewExamController(
	examSvc service.ExamService,
	accessSvc service.ExamAccessService,
	responseSvc service.ExamResponseService,
) *ExamController {
	return &ExamController{
		examSvc:     examSvc,
		accessSvc:   accessSvc,
		responseSvc: responseSvc,
	}
}

func (ctrl *ExamController) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		exams := apiV1.Group("/exams")
		exams.POST("", ctrl.Create)
		exams.GET("", ctrl.GetAll)
		exams.GET("/:id", ctrl.GetOne)
		exams.PUT("/:id", ctrl.Update)
		exams.DELETE("/:id", ctrl.Delete)
		exams.POST("/:id/questions", ctrl.AddQuestions)
		exams.DELETE("/:id/questions", ctrl.RemoveQuestions)
		exams.POST("/:id/banks", ctrl.AddBanks)
		exams.DELETE("/:id/banks", ctrl.RemoveBanks)
		exams.POST("/:id/manual-questions", ctrl.CreateManualQuestion)
		exams.POST("/:id/access", ctrl.GrantAccess)
		exams.GET("/:id/access", ctrl.GetAccess)
		exams.GET("/:id/responses", ctrl.GetResponses)
		exams.GET("/:id/responses/my", ctrl.GetMyResponses)
	}
}

// Create godoc
// @Summary Create an exam
// @Description Create an exam from direct questions and question banks. Direct ids already reachable through a requested bank are skipped.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param exam body dto.ExamCreateDTO true "Exam data"
// @Success 201 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body"
// @Failure 404 {object} dto.ErrorResponse "Unknown question or bank id"
// @Router /exams [post]
func (ctrl *ExamController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind ExamCreateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.Create(userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAll godoc
// @Summary List the acting user's exams
// @Tags exams
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Success 200 {array} dto.ExamResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (ctrl *ExamController) GetAll(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	resp, err := ctrl.examSvc.FindAll(userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetOne godoc
// @Summary Get an exam with its effective question set
// @Tags exams
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the exam's creator"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id} [get]
func (ctrl *ExamController) GetOne(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := ctrl.examSvc.FindOne(userID, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update an exam
// @Description Update metadata and visibility. generate_access_code mints a new code, clear_access_code drops it. A non-nil question list replaces the direct set.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param exam body dto.ExamUpdateDTO true "Fields to update"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not the exam's creator"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id} [put]
func (ctrl *ExamController) Update(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind ExamUpdateDTO")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.Update(userID, id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete an exam
// @Description Removes the exam, its links, grants and stored responses.
// @Tags exams
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Not the exam's creator"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id} [delete]
func (ctrl *ExamController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := ctrl.examSvc.Delete(userID, id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddQuestions godoc
// @Summary Direct-link questions to an exam
// @Description Ids already supplied by a linked bank or already direct-linked are skipped.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param questions body dto.ExamQuestionsDTO true "Question ids to add"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Exam or question not found"
// @Router /exams/{id}/questions [post]
func (ctrl *ExamController) AddQuestions(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.AddQuestions(userID, id, req.Questions)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RemoveQuestions godoc
// @Summary Remove direct question links from an exam
// @Description Only direct links are removed; questions still reachable through a linked bank stay effective.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param questions body dto.ExamQuestionsDTO true "Question ids to remove"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/questions [delete]
func (ctrl *ExamController) RemoveQuestions(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.RemoveQuestions(userID, id, req.Questions)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AddBanks godoc
// @Summary Link question banks to an exam
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param banks body dto.ExamBanksDTO true "Bank ids to link"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Exam or bank not found"
// @Router /exams/{id}/banks [post]
func (ctrl *ExamController) AddBanks(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamBanksDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.AddBanks(userID, id, req.QuestionBanks)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RemoveBanks godoc
// @Summary Unlink question banks from an exam
// @Description Directly linked questions stay on the exam even when their bank is unlinked.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param banks body dto.ExamBanksDTO true "Bank ids to unlink"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/banks [delete]
func (ctrl *ExamController) RemoveBanks(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamBanksDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.RemoveBanks(userID, id, req.QuestionBanks)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateManualQuestion godoc
// @Summary Create a question directly inside an exam
// @Description Creates the question and direct-links it in one transaction.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param question body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or question shape"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/manual-questions [post]
func (ctrl *ExamController) CreateManualQuestion(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionCreateDTO for manual question")
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.examSvc.CreateManualQuestion(userID, id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GrantAccess godoc
// @Summary Redeem an access code for a private exam
// @Description A matching code records a permanent grant. A wrong code leaves no trace.
// @Tags exams
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Param access body dto.GrantAccessDTO true "Access code"
// @Success 200 {object} dto.AccessStatusDTO
// @Failure 403 {object} dto.ErrorResponse "Invalid access code"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/access [post]
func (ctrl *ExamController) GrantAccess(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.GrantAccessDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, err := ctrl.accessSvc.GrantAccess(userID, id, req.AccessCode)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAccess godoc
// @Summary Check whether the acting user may respond to an exam
// @Tags exams
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.AccessStatusDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/access [get]
func (ctrl *ExamController) GetAccess(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	hasAccess, err := ctrl.accessSvc.HasAccess(userID, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.AccessStatusDTO{HasAccess: hasAccess})
}

// GetResponses godoc
// @Summary List all responses to an exam
// @Description Restricted to the exam's creator.
// @Tags exams
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Success 200 {array} dto.ExamResponseDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Not the exam's creator"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/responses [get]
func (ctrl *ExamController) GetResponses(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := ctrl.responseSvc.ResponsesForCreator(userID, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetMyResponses godoc
// @Summary List the acting user's own responses to an exam
// @Tags exams
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param id path int true "Exam ID"
// @Success 200 {array} dto.ExamResponseDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{id}/responses/my [get]
func (ctrl *ExamController) GetMyResponses(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := ctrl.responseSvc.MyResponses(userID, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
