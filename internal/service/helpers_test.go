package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A single connection keeps every session on the same in-memory db.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Discipline{},
		&model.Question{},
		&model.Alternative{},
		&model.ModelAnswer{},
		&model.QuestionDiscipline{},
		&model.QuestionBank{},
		&model.QuestionBankQuestion{},
		&model.QuestionBankDiscipline{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamQuestionBank{},
		&model.ExamAccess{},
		&model.ExamResponse{},
		&model.ExamAnswer{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db            *gorm.DB
	disciplineSvc DisciplineService
	questionSvc   QuestionService
	bankSvc       QuestionBankService
	examSvc       ExamService
	accessSvc     ExamAccessService
	responseSvc   ExamResponseService
	responseRepo  repository.ExamResponseRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	disciplineRepo := repository.NewDisciplineRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	bankRepo := repository.NewQuestionBankRepository(db)
	examRepo := repository.NewExamRepository(db)
	accessRepo := repository.NewExamAccessRepository(db)
	responseRepo := repository.NewExamResponseRepository(db)

	disciplineSvc := NewDisciplineService(disciplineRepo)
	aggregator := NewBankAggregator()
	questionSvc := NewQuestionService(questionRepo, disciplineSvc, aggregator, db)
	bankSvc := NewQuestionBankService(bankRepo, questionRepo, aggregator, db)
	examSvc := NewExamService(examRepo, bankRepo, questionRepo, disciplineSvc, db)
	accessSvc := NewExamAccessService(examRepo, accessRepo, examSvc)
	responseSvc := NewExamResponseService(responseRepo, examRepo, accessRepo, examSvc, accessSvc, db)

	return &testEnv{
		db:            db,
		disciplineSvc: disciplineSvc,
		questionSvc:   questionSvc,
		bankSvc:       bankSvc,
		examSvc:       examSvc,
		accessSvc:     accessSvc,
		responseSvc:   responseSvc,
		responseRepo:  responseRepo,
	}
}

func (e *testEnv) createQuestion(t *testing.T, creatorID uint, questionType string, disciplines ...string) *dto.QuestionResponseDTO {
	t.Helper()
	req := dto.QuestionCreateDTO{
		Text:         "What is the capital of France?",
		QuestionType: questionType,
		Disciplines:  disciplines,
	}
	if questionType == model.QuestionTypeObjective {
		req.Alternatives = []dto.AlternativeCreateDTO{
			{Content: "Paris", Correct: true},
			{Content: "Lyon", Correct: false},
		}
	}
	resp, err := e.questionSvc.Create(creatorID, req)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return resp
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
