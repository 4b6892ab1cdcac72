// Package selection implements the per-cohort ranking that decides which
// imported students are awarded a scholarship. The engine is pure: it holds
// no state, touches no storage, and re-running it on identical input yields
// identical output.
package selection

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dmorales/becas-core/internal/app/models"
)

// CutoffRate is the fraction of each cohort's regular students that nominally
// qualifies for the award. Ties at the boundary are always included, so the
// actual selected count can exceed ceil(rate * |regular|).
const CutoffRate = 0.10

// CutoffNone is the sentinel cutoff recorded for cohorts with no regular
// students; nothing can reach it, so such cohorts award no one.
var CutoffNone = math.Inf(1)

// Engine computes selection decisions from a validated roster.
type Engine struct {
	rate float64
}

// NewEngine creates an engine using the standard cutoff rate.
func NewEngine() *Engine {
	return &Engine{rate: CutoffRate}
}

// Select produces exactly one decision per input row, in input order.
// Ranking is computed independently per career cohort; cohorts never affect
// each other, which also makes the fan-out below safe.
func (e *Engine) Select(ctx context.Context, rows []models.StudentRecord) ([]models.SelectionDecision, error) {
	decisions := make([]models.SelectionDecision, len(rows))

	cohorts := make(map[string][]int)
	for i, row := range rows {
		cohorts[row.Career] = append(cohorts[row.Career], i)
	}

	// Each cohort writes only to its own row indices, so no locking is
	// needed around the shared decisions slice.
	g, ctx := errgroup.WithContext(ctx)
	for _, indices := range cohorts {
		indices := indices
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			e.decideCohort(rows, indices, decisions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return decisions, nil
}

// decideCohort applies the ranking rules to one career cohort and writes the
// resulting decisions into out at the cohort's original row indices.
func (e *Engine) decideCohort(rows []models.StudentRecord, indices []int, out []models.SelectionDecision) {
	var regular []int
	for _, i := range indices {
		if rows[i].IsRegular() {
			regular = append(regular, i)
		}
	}

	// Sort the regular partition by grade, highest first. The key is the
	// grade alone: equal grades may land in any order without changing the
	// outcome, because selection is decided by comparing against the cutoff
	// grade rather than by position.
	sort.Slice(regular, func(a, b int) bool {
		return rows[regular[a]].AverageGrade > rows[regular[b]].AverageGrade
	})

	cutoff := CutoffNone
	if len(regular) > 0 {
		cutoffCount := int(math.Ceil(float64(len(regular)) * e.rate))
		cutoff = rows[regular[cutoffCount-1]].AverageGrade
	}

	for _, i := range indices {
		d := models.SelectionDecision{
			NationalID:      rows[i].NationalID,
			Career:          rows[i].Career,
			AverageGrade:    rows[i].AverageGrade,
			CutoffGradeUsed: cutoff,
		}
		switch {
		case !rows[i].IsRegular():
			d.RejectionReason = reasonPtr(models.RejectionNotRegular)
		case rows[i].AverageGrade >= cutoff:
			d.IsSelected = true
		default:
			d.RejectionReason = reasonPtr(models.RejectionBelowCutoff)
		}
		out[i] = d
	}
}

func reasonPtr(r models.RejectionReason) *models.RejectionReason {
	return &r
}
