package service

import (
	"strconv"
	"testing"

	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
)

func TestResolveCreatesAndReusesByName(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.disciplineSvc.Resolve(1, []string{"Mathematics"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one id, got %v", first)
	}

	second, err := env.disciplineSvc.Resolve(1, []string{"Mathematics"})
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if second[0] != first[0] {
		t.Errorf("same name resolved to a new row: %d vs %d", second[0], first[0])
	}

	var count int64
	env.db.Model(&model.Discipline{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single discipline row, got %d", count)
	}
}

func TestResolveScopesNamesPerCreator(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.disciplineSvc.Resolve(1, []string{"History"})
	if err != nil {
		t.Fatalf("resolve for creator 1: %v", err)
	}
	b, err := env.disciplineSvc.Resolve(2, []string{"History"})
	if err != nil {
		t.Fatalf("resolve for creator 2: %v", err)
	}
	if a[0] == b[0] {
		t.Errorf("same name for different creators must create distinct rows")
	}
}

func TestResolveNumericTokens(t *testing.T) {
	env := newTestEnv(t)

	ids, err := env.disciplineSvc.Resolve(1, []string{"Physics"})
	if err != nil {
		t.Fatalf("seed discipline: %v", err)
	}

	resolved, err := env.disciplineSvc.Resolve(1, []string{strconv.Itoa(int(ids[0]))})
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if resolved[0] != ids[0] {
		t.Errorf("numeric token should resolve to the existing row, got %d", resolved[0])
	}

	// A numeric token with no matching row falls back to name semantics.
	named, err := env.disciplineSvc.Resolve(1, []string{"99999"})
	if err != nil {
		t.Fatalf("resolve orphan numeric token: %v", err)
	}
	var created model.Discipline
	if err := env.db.First(&created, named[0]).Error; err != nil {
		t.Fatalf("load created discipline: %v", err)
	}
	if created.Name != "99999" {
		t.Errorf("expected discipline named 99999, got %q", created.Name)
	}
}

func TestResolveDedupsPreservingOrder(t *testing.T) {
	env := newTestEnv(t)

	ids, err := env.disciplineSvc.Resolve(1, []string{"Math", "Art", "Math", " ", "Art"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}

	var math, art model.Discipline
	env.db.Where("name = ?", "Math").First(&math)
	env.db.Where("name = ?", "Art").First(&art)
	if ids[0] != math.ID || ids[1] != art.ID {
		t.Errorf("expected [Math Art] order, got %v", ids)
	}
}

func TestSweepOrphansReclaimsUnreferencedDisciplines(t *testing.T) {
	env := newTestEnv(t)

	question := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Chemistry")

	disciplines := []string{"Biology"}
	if _, err := env.questionSvc.Update(1, question.ID, dto.QuestionUpdateDTO{
		Disciplines: &disciplines,
	}); err != nil {
		t.Fatalf("update question disciplines: %v", err)
	}

	var count int64
	env.db.Model(&model.Discipline{}).Where("name = ?", "Chemistry").Count(&count)
	if count != 0 {
		t.Errorf("Chemistry lost its last reference and should be reclaimed")
	}
	env.db.Model(&model.Discipline{}).Where("name = ?", "Biology").Count(&count)
	if count != 1 {
		t.Errorf("Biology is still referenced and must survive the sweep")
	}
}
