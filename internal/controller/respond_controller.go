package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/service"
)

// RespondController is the respondent-facing surface. Exams are
// addressed by a single identifier: the numeric id of a public exam or
// an access code.
type RespondController struct {
	accessSvc   service.ExamAccessService
	responseSvc service.ExamResponseService
}

func NewRespondController(accessSvc service.ExamAccessService, responseSvc service.ExamResponseService) *RespondController {
	return &RespondController{accessSvc: accessSvc, responseSvc: responseSvc}
}

func (ctrl *RespondController) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		respond := apiV1.Group("/respond")
		respond.GET("/:identifier", ctrl.GetExam)
		respond.POST("/:identifier", ctrl.Submit)
	}
}

// GetExam godoc
// @Summary Get an exam for responding
// @Description Resolve a public exam id or access code and return the exam without any answer key. Resolving by code records a grant.
// @Tags respond
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param identifier path string true "Public exam ID or access code"
// @Success 200 {object} dto.ExamForResponseDTO
// @Failure 404 {object} dto.ErrorResponse "No exam matches the identifier"
// @Router /respond/{identifier} [get]
func (ctrl *RespondController) GetExam(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	identifier := ctx.Param("identifier")

	resp, err := ctrl.accessSvc.GetExamForResponse(userID, identifier)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Submit godoc
// @Summary Submit answers to an exam
// @Description Validates every answer against the exam's effective question set and stores the submission. An access code in the body or as the identifier grants access inline.
// @Tags respond
// @Accept json
// @Produce json
// @Param user_id query int true "Acting user ID"
// @Param identifier path string true "Public exam ID or access code"
// @Param submission body dto.ExamSubmitDTO true "Answers"
// @Success 201 {object} dto.ExamResponseDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Answer does not match the question set or type"
// @Failure 403 {object} dto.ErrorResponse "No access to this exam"
// @Failure 404 {object} dto.ErrorResponse "No exam matches the identifier"
// @Router /respond/{identifier} [post]
func (ctrl *RespondController) Submit(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	identifier := ctx.Param("identifier")

	var req dto.ExamSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind ExamSubmitDTO")
		writeBindError(ctx, err)
		return
	}

	exam, err := ctrl.accessSvc.ResolveExam(identifier)
	if err != nil {
		writeError(ctx, err)
		return
	}
	// A code used as the identifier doubles as the inline access code.
	if req.AccessCode == nil {
		if _, idErr := strconv.ParseUint(identifier, 10, 32); idErr != nil {
			req.AccessCode = &identifier
		}
	}

	resp, err := ctrl.responseSvc.Respond(userID, exam.ID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
