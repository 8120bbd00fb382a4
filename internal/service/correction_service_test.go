package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
)

// scriptedGenerator plays back one scripted result per call.
type scriptedGenerator struct {
	results []scriptedResult
	calls   int
	prompts []string
}

type scriptedResult struct {
	text string
	err  error
}

func (g *scriptedGenerator) Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.calls >= len(g.results) {
		return "", errors.New("no scripted result left")
	}
	result := g.results[g.calls]
	g.calls++
	return result.text, result.err
}

func subjectiveAnswerID(t *testing.T, env *testEnv) uint {
	t.Helper()
	q, err := env.questionSvc.Create(1, dto.QuestionCreateDTO{
		Text:            "Explain the greenhouse effect.",
		QuestionType:    model.QuestionTypeSubjective,
		UseModelAnswers: true,
		ModelAnswers: []dto.ModelAnswerCreateDTO{
			{Type: model.ModelAnswerWrong, Content: "The planet heats because of the sun only."},
			{Type: model.ModelAnswerCorrect, Content: "Gases trap infrared radiation in the atmosphere."},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:     "Climate",
		IsPublic:  true,
		Questions: []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	resp, err := env.responseSvc.Respond(2, exam.ID, dto.ExamSubmitDTO{
		Answers: []dto.SubmitAnswerDTO{{QuestionID: q.ID, SubjectiveText: strPtr("Gases hold heat near the surface.")}},
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	return resp.Answers[0].ID
}

func TestGradeAnswerPersistsScoreAndFeedback(t *testing.T) {
	env := newTestEnv(t)
	answerID := subjectiveAnswerID(t, env)

	gen := &scriptedGenerator{results: []scriptedResult{
		{text: `{"score": 0.7, "feedback": "Bom, mas incompleto."}`},
	}}
	svc := NewCorrectionService(env.responseRepo, gen)

	result, err := svc.GradeAnswer(context.Background(), answerID)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 0.7 || result.Feedback != "Bom, mas incompleto." {
		t.Errorf("unexpected result %+v", result)
	}

	var answer model.ExamAnswer
	if err := env.db.First(&answer, answerID).Error; err != nil {
		t.Fatalf("load answer: %v", err)
	}
	if answer.Score == nil || *answer.Score != 0.7 {
		t.Errorf("score not persisted: %+v", answer.Score)
	}
	if answer.Feedback == nil || *answer.Feedback != "Bom, mas incompleto." {
		t.Errorf("feedback not persisted: %+v", answer.Feedback)
	}

	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "Gases hold heat near the surface.") {
		t.Errorf("prompt must carry the student answer")
	}
	if !strings.Contains(prompt, "ERRADA") || !strings.Contains(prompt, "CORRETA") {
		t.Errorf("prompt must carry the reference tiers")
	}
}

func TestGradeAnswerStripsCodeFences(t *testing.T) {
	env := newTestEnv(t)
	answerID := subjectiveAnswerID(t, env)

	gen := &scriptedGenerator{results: []scriptedResult{
		{text: "```json\n{\"score\": 1, \"feedback\": \"Perfeito.\"}\n```"},
	}}
	svc := NewCorrectionService(env.responseRepo, gen)

	result, err := svc.GradeAnswer(context.Background(), answerID)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 1 || result.Feedback != "Perfeito." {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestGradeAnswerRejectsUnparseableOutput(t *testing.T) {
	env := newTestEnv(t)
	answerID := subjectiveAnswerID(t, env)

	cases := []struct {
		name string
		text string
	}{
		{"prose instead of JSON", "The answer deserves a 7 out of 10."},
		{"score out of range", `{"score": 1.5, "feedback": "ok"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &scriptedGenerator{results: []scriptedResult{{text: tc.text}}}
			svc := NewCorrectionService(env.responseRepo, gen)

			_, err := svc.GradeAnswer(context.Background(), answerID)
			if !apperr.IsKind(err, apperr.KindUnparseableModelOutput) {
				t.Fatalf("got %v, want unparseable model output", err)
			}

			var answer model.ExamAnswer
			if err := env.db.First(&answer, answerID).Error; err != nil {
				t.Fatalf("load answer: %v", err)
			}
			if answer.Score != nil || answer.Feedback != nil {
				t.Errorf("unusable output must not persist anything")
			}
		})
	}
}

func TestGradeAnswerRetriesTransportErrorOnce(t *testing.T) {
	env := newTestEnv(t)
	answerID := subjectiveAnswerID(t, env)

	gen := &scriptedGenerator{results: []scriptedResult{
		{err: errors.New("connection reset")},
		{text: `{"score": 0.5, "feedback": "Mediano."}`},
	}}
	svc := NewCorrectionService(env.responseRepo, gen)

	result, err := svc.GradeAnswer(context.Background(), answerID)
	if err != nil {
		t.Fatalf("grade after retry: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("expected exactly one retry, got %d calls", gen.calls)
	}
	if result.Score != 0.5 {
		t.Errorf("unexpected score %v", result.Score)
	}
}

func TestGradeAnswerFailsAfterSecondTransportError(t *testing.T) {
	env := newTestEnv(t)
	answerID := subjectiveAnswerID(t, env)

	gen := &scriptedGenerator{results: []scriptedResult{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
	}}
	svc := NewCorrectionService(env.responseRepo, gen)

	_, err := svc.GradeAnswer(context.Background(), answerID)
	if !apperr.IsKind(err, apperr.KindExternalService) {
		t.Errorf("got %v, want external service error", err)
	}
	if gen.calls != 2 {
		t.Errorf("expected exactly two calls, got %d", gen.calls)
	}
}

func TestGradeAnswerOnlySubjective(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeObjective)
	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:     "Quiz",
		IsPublic:  true,
		Questions: []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	resp, err := env.responseSvc.Respond(2, exam.ID, dto.ExamSubmitDTO{
		Answers: []dto.SubmitAnswerDTO{{QuestionID: q.ID, AlternativeID: uintPtr(q.Alternatives[0].ID)}},
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	gen := &scriptedGenerator{}
	svc := NewCorrectionService(env.responseRepo, gen)

	_, err = svc.GradeAnswer(context.Background(), resp.Answers[0].ID)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("got %v, want validation error", err)
	}
	if gen.calls != 0 {
		t.Errorf("objective answers must never reach the model")
	}

	if _, err := svc.GradeAnswer(context.Background(), 9999); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing answer: got %v, want not found", err)
	}
}

func TestConnectionHealth(t *testing.T) {
	env := newTestEnv(t)

	gen := &scriptedGenerator{results: []scriptedResult{
		{text: "As tags <header>, <nav> e <article> estruturam o documento."},
	}}
	svc := NewCorrectionService(env.responseRepo, gen)

	health := svc.TestConnection(context.Background())
	if !health.OK || health.Response == "" {
		t.Errorf("expected healthy result, got %+v", health)
	}
	if !strings.Contains(gen.prompts[0], "HTML5") {
		t.Errorf("health check must use the fixed diagnostic prompt")
	}

	failing := &scriptedGenerator{results: []scriptedResult{{err: errors.New("quota exceeded")}}}
	svc = NewCorrectionService(env.responseRepo, failing)
	health = svc.TestConnection(context.Background())
	if health.OK || health.Error == "" {
		t.Errorf("expected failing result, got %+v", health)
	}
}
