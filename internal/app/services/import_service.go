package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/importer"
	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/repositories"
	"github.com/dmorales/becas-core/internal/app/selection"
)

// ImportService defines the interface for roster import operations
type ImportService interface {
	ImportRoster(ctx context.Context, periodID int64, roster io.Reader) (*dto.ImportSummary, error)
}

// importServiceImpl implements ImportService
type importServiceImpl struct {
	parser          *importer.Parser
	engine          *selection.Engine
	periodRepo      *repositories.PeriodRepository
	studentRepo     *repositories.StudentRepository
	scholarshipRepo *repositories.ScholarshipRepository
	logger          zerolog.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	parser *importer.Parser,
	engine *selection.Engine,
	periodRepo *repositories.PeriodRepository,
	studentRepo *repositories.StudentRepository,
	scholarshipRepo *repositories.ScholarshipRepository,
	logger zerolog.Logger,
) ImportService {
	return &importServiceImpl{
		parser:          parser,
		engine:          engine,
		periodRepo:      periodRepo,
		studentRepo:     studentRepo,
		scholarshipRepo: scholarshipRepo,
		logger:          logger,
	}
}

// ImportRoster runs the full import pipeline for one period: parse the
// roster, rank every career cohort, and upsert one student plus one
// scholarship record per valid row. Re-running the import for the same
// period converges on the same records instead of duplicating them.
func (s *importServiceImpl) ImportRoster(ctx context.Context, periodID int64, roster io.Reader) (*dto.ImportSummary, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(roster)
	if err != nil {
		return nil, err
	}

	decisions, err := s.engine.Select(ctx, parsed.Rows)
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}

	summary := &dto.ImportSummary{
		PeriodID:      period.ID,
		TotalRows:     len(parsed.Rows) + len(parsed.Discarded),
		DiscardedRows: len(parsed.Discarded),
		Discarded:     parsed.Discarded,
	}

	// Decisions come back in input order, so decisions[i] belongs to
	// parsed.Rows[i].
	for i, row := range parsed.Rows {
		d := decisions[i]

		studentID, err := s.studentRepo.Upsert(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("importing student %s: %w", row.NationalID, err)
		}

		status := models.StatusExcluded
		if d.IsSelected {
			status = models.StatusSelected
			summary.Selected++
		} else {
			summary.Excluded++
		}

		if _, err := s.scholarshipRepo.UpsertFromDecision(
			ctx, studentID, period.ID, d.Career, d.AverageGrade, status, d.RejectionReason,
		); err != nil {
			return nil, fmt.Errorf("recording decision for student %s: %w", row.NationalID, err)
		}
		summary.ImportedRows++
	}

	summary.Cohorts = buildCohortSummaries(parsed.Rows, decisions)

	s.logger.Info().
		Int64("periodId", period.ID).
		Int("imported", summary.ImportedRows).
		Int("discarded", summary.DiscardedRows).
		Int("selected", summary.Selected).
		Msg("Roster import completed")
	return summary, nil
}

// buildCohortSummaries aggregates per-career results for the import report.
func buildCohortSummaries(rows []models.StudentRecord, decisions []models.SelectionDecision) []dto.CohortSummary {
	byCareer := make(map[string]*dto.CohortSummary)
	for i, row := range rows {
		c, ok := byCareer[row.Career]
		if !ok {
			c = &dto.CohortSummary{Career: row.Career}
			byCareer[row.Career] = c
		}
		if row.IsRegular() {
			c.Regular++
		}
		if decisions[i].IsSelected {
			c.Selected++
		}
		if c.CutoffGrade == nil && !math.IsInf(decisions[i].CutoffGradeUsed, 1) {
			cutoff := decisions[i].CutoffGradeUsed
			c.CutoffGrade = &cutoff
		}
	}

	cohorts := make([]dto.CohortSummary, 0, len(byCareer))
	for _, c := range byCareer {
		cohorts = append(cohorts, *c)
	}
	sort.Slice(cohorts, func(a, b int) bool { return cohorts[a].Career < cohorts[b].Career })
	return cohorts
}
