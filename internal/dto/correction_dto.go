package dto

type GradeResultDTO struct {
	AnswerID uint    `json:"answer_id"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// CorrectionHealthDTO carries the raw model text of the diagnostic call.
type CorrectionHealthDTO struct {
	OK       bool   `json:"ok"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}
