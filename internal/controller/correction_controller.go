package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sistira/sistira/internal/service"
)

type CorrectionController struct {
	correctionSvc service.CorrectionService
}

func NewCorrectionController(correctionSvc service.CorrectionService) *CorrectionController {
	return &CorrectionController{correctionSvc: correctionSvc}
}

func (ctrl *CorrectionController) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		correction := apiV1.Group("/correction")
		correction.POST("/answers/:answer_id/grade", ctrl.GradeAnswer)
		correction.GET("/health", ctrl.Health)
	}
}

// GradeAnswer godoc
// @Summary Grade a subjective answer
// @Description Runs the answer through the grading model and persists score and feedback. Unusable model output aborts without persisting anything.
// @Tags correction
// @Produce json
// @Param answer_id path int true "Answer ID"
// @Success 200 {object} dto.GradeResultDTO
// @Failure 400 {object} dto.ErrorResponse "Answer is not subjective"
// @Failure 404 {object} dto.ErrorResponse "Answer not found"
// @Failure 500 {object} dto.ErrorResponse "Unusable model output"
// @Failure 502 {object} dto.ErrorResponse "Grading model unavailable"
// @Router /correction/answers/{answer_id}/grade [post]
func (ctrl *CorrectionController) GradeAnswer(ctx *gin.Context) {
	answerID, ok := parseIDParam(ctx, "answer_id")
	if !ok {
		return
	}

	resp, err := ctrl.correctionSvc.GradeAnswer(ctx.Request.Context(), answerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Health godoc
// @Summary Check the grading model connection
// @Description Sends a fixed diagnostic prompt and reports whether a completion came back.
// @Tags correction
// @Produce json
// @Success 200 {object} dto.CorrectionHealthDTO
// @Router /correction/health [get]
func (ctrl *CorrectionController) Health(ctx *gin.Context) {
	resp := ctrl.correctionSvc.TestConnection(ctx.Request.Context())
	status := http.StatusOK
	if !resp.OK {
		status = http.StatusBadGateway
	}
	ctx.JSON(status, resp)
}
