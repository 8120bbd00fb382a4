package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
)

// DisciplineService resolves free-text discipline tokens to canonical
// rows and reclaims disciplines no question references anymore.
type DisciplineService interface {
	Resolve(userID uint, tokens []string) ([]uint, error)
	FindAllByCreator(userID uint) ([]dto.DisciplineDTO, error)
	SweepOrphans()
}

type disciplineService struct {
	repo repository.DisciplineRepository
}

func NewDisciplineService(repo repository.DisciplineRepository) DisciplineService {
	return &disciplineService{repo: repo}
}

// Resolve maps each token to a discipline id. A numeric token naming an
// existing discipline is used as-is; anything else is treated as a name
// scoped to the creator, created on first use. The result is
// deduplicated and keeps token order.
func (s *disciplineService) Resolve(userID uint, tokens []string) ([]uint, error) {
	seen := make(map[uint]bool)
	var ids []uint

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, err := s.resolveToken(userID, token)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *disciplineService) resolveToken(userID uint, token string) (uint, error) {
	if raw, err := strconv.ParseUint(token, 10, 32); err == nil {
		discipline, err := s.repo.FindByID(uint(raw))
		if err == nil {
			return discipline.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		// Numeric token without a matching row falls through as a name.
	}

	discipline, err := s.repo.FindByNameAndCreator(token, userID)
	if err == nil {
		return discipline.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	created := model.Discipline{Name: token, CreatorID: userID}
	if err := s.repo.Create(&created); err != nil {
		return 0, err
	}
	log.Info().Uint("disciplineID", created.ID).Str("name", token).Uint("creatorID", userID).Msg("Discipline created on demand")
	return created.ID, nil
}

func (s *disciplineService) FindAllByCreator(userID uint) ([]dto.DisciplineDTO, error) {
	disciplines, err := s.repo.FindAllByCreator(userID)
	if err != nil {
		return nil, err
	}
	var resp []dto.DisciplineDTO
	copier.Copy(&resp, &disciplines)
	return resp, nil
}

// SweepOrphans deletes every discipline with zero linked questions.
// It is non-critical: failures are logged and never abort the mutation
// that triggered the sweep.
func (s *disciplineService) SweepOrphans() {
	deleted, err := s.repo.DeleteOrphans()
	if err != nil {
		log.Error().Err(err).Msg("Orphan discipline sweep failed")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Orphan disciplines reclaimed")
	}
}
