package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
)

const gradingTimeout = 30 * time.Second

// CorrectionService grades subjective answers with a text model and
// persists the resulting score and feedback on the answer row.
type CorrectionService interface {
	GradeAnswer(ctx context.Context, answerID uint) (*dto.GradeResultDTO, error)
	TestConnection(ctx context.Context) *dto.CorrectionHealthDTO
}

type correctionService struct {
	responseRepo repository.ExamResponseRepository
	generator    TextGenerator
}

func NewCorrectionService(responseRepo repository.ExamResponseRepository, generator TextGenerator) CorrectionService {
	return &correctionService{responseRepo: responseRepo, generator: generator}
}

type gradePayload struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// GradeAnswer asks the model for a score in [0, 1] and a short
// feedback text. The model output must be a JSON object; anything the
// engine cannot parse aborts the call without touching the stored
// answer.
func (s *correctionService) GradeAnswer(ctx context.Context, answerID uint) (*dto.GradeResultDTO, error) {
	answer, err := s.responseRepo.FindAnswerByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("answer not found")
		}
		return nil, err
	}
	if answer.Question.QuestionType != model.QuestionTypeSubjective || answer.SubjectiveText == nil {
		return nil, apperr.Validation("only subjective answers can be graded")
	}

	prompt := buildGradingPrompt(&answer.Question, *answer.SubjectiveText)

	ctx, cancel := context.WithTimeout(ctx, gradingTimeout)
	defer cancel()

	raw, err := s.complete(ctx, prompt, GenerateOptions{Temperature: 0, MaxOutputTokens: 200})
	if err != nil {
		return nil, apperr.ExternalService("grading model unavailable", err)
	}

	payload, err := parseGradePayload(raw)
	if err != nil {
		log.Error().Err(err).Uint("answerID", answerID).Str("raw", raw).Msg("Unparseable grading output")
		return nil, err
	}

	answer.Score = &payload.Score
	answer.Feedback = &payload.Feedback
	if err := s.responseRepo.UpdateAnswer(answer); err != nil {
		log.Error().Err(err).Uint("answerID", answerID).Msg("Failed to persist grade")
		return nil, err
	}

	return &dto.GradeResultDTO{
		AnswerID: answerID,
		Score:    payload.Score,
		Feedback: payload.Feedback,
	}, nil
}

// complete retries once, only when the first call fails in transport.
func (s *correctionService) complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	raw, err := s.generator.Complete(ctx, prompt, opts)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	log.Warn().Err(err).Msg("Completion failed, retrying once")
	return s.generator.Complete(ctx, prompt, opts)
}

func buildGradingPrompt(question *model.Question, studentAnswer string) string {
	var b strings.Builder
	b.WriteString("Você é um corretor de provas. Avalie a resposta do aluno para a questão abaixo.\n\n")
	b.WriteString("Questão: ")
	b.WriteString(question.Text)
	b.WriteString("\n\n")

	if question.UseModelAnswers && len(question.ModelAnswers) > 0 {
		b.WriteString("Use as respostas de referência como régua de qualidade:\n")
		for _, ma := range question.ModelAnswers {
			switch ma.Type {
			case model.ModelAnswerWrong:
				b.WriteString("Exemplo de resposta ERRADA (nota próxima de 0): ")
			case model.ModelAnswerMedian:
				b.WriteString("Exemplo de resposta MEDIANA (nota próxima de 0.5): ")
			case model.ModelAnswerCorrect:
				b.WriteString("Exemplo de resposta CORRETA (nota próxima de 1): ")
			default:
				continue
			}
			b.WriteString(ma.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Resposta do aluno: ")
	b.WriteString(studentAnswer)
	b.WriteString("\n\n")
	b.WriteString("Responda APENAS com um objeto JSON no formato {\"score\": <número entre 0 e 1>, \"feedback\": \"<comentário curto em português>\"}.")
	return b.String()
}

// parseGradePayload strips optional markdown code fences and decodes
// the grade JSON. Any malformed or out-of-range output is rejected as
// unparseable.
func parseGradePayload(raw string) (*gradePayload, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload gradePayload
	decoder := json.NewDecoder(strings.NewReader(text))
	if err := decoder.Decode(&payload); err != nil {
		return nil, apperr.UnparseableModelOutput("model output is not valid JSON", err)
	}
	if payload.Score < 0 || payload.Score > 1 {
		return nil, apperr.UnparseableModelOutput(fmt.Sprintf("score %v is outside [0, 1]", payload.Score), nil)
	}
	return &payload, nil
}

// TestConnection runs a fixed diagnostic prompt through the generator
// and reports whether a non-empty completion came back.
func (s *correctionService) TestConnection(ctx context.Context) *dto.CorrectionHealthDTO {
	ctx, cancel := context.WithTimeout(ctx, gradingTimeout)
	defer cancel()

	prompt := "Liste três tags semânticas do HTML5 e explique em uma frase o papel de cada uma."
	raw, err := s.generator.Complete(ctx, prompt, GenerateOptions{Temperature: 0, MaxOutputTokens: 2000})
	if err != nil {
		return &dto.CorrectionHealthDTO{OK: false, Error: err.Error()}
	}
	return &dto.CorrectionHealthDTO{OK: true, Response: raw}
}
