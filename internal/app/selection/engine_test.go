package selection

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/becas-core/internal/app/models"
)

func record(nationalID, career string, grade float64, condition models.AcademicCondition) models.StudentRecord {
	return models.StudentRecord{
		NationalID:        nationalID,
		FirstName:         "Test",
		LastName:          "Student",
		UniversityEmail:   nationalID + "@uni.edu",
		Faculty:           "Engineering",
		Career:            career,
		Semester:          4,
		AverageGrade:      grade,
		AcademicCondition: condition,
	}
}

func TestSelectTopTenPercent(t *testing.T) {
	// 20 regular students, distinct grades: exactly ceil(0.10*20)=2 selected.
	var rows []models.StudentRecord
	grade := 9.0
	for i := 0; i < 20; i++ {
		rows = append(rows, record(string(rune('a'+i))+"0000000", "Systems", grade, models.ConditionRegular))
		grade -= 0.2
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, decisions, 20)

	selected := 0
	for _, d := range decisions {
		if d.IsSelected {
			selected++
		}
	}
	assert.Equal(t, 2, selected)

	// The two highest grades won.
	assert.True(t, decisions[0].IsSelected)
	assert.True(t, decisions[1].IsSelected)
	assert.False(t, decisions[2].IsSelected)
	require.NotNil(t, decisions[2].RejectionReason)
	assert.Equal(t, models.RejectionBelowCutoff, *decisions[2].RejectionReason)
}

func TestSelectIncludesBoundaryTies(t *testing.T) {
	// 10 regular students: cutoffCount = 1, but three share the top grade.
	// All three must be selected.
	rows := []models.StudentRecord{
		record("10000001", "Law", 9.5, models.ConditionRegular),
		record("10000002", "Law", 9.5, models.ConditionRegular),
		record("10000003", "Law", 9.5, models.ConditionRegular),
	}
	for i := 4; i <= 10; i++ {
		rows = append(rows, record("1000000"+string(rune('0'+i%10)), "Law", 7.0, models.ConditionRegular))
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)

	selected := 0
	for _, d := range decisions {
		if d.IsSelected {
			selected++
		}
	}
	assert.Equal(t, 3, selected, "every student at the cutoff grade is selected")
}

func TestSelectExcludesNonRegular(t *testing.T) {
	rows := []models.StudentRecord{
		record("20000001", "Medicine", 10.0, models.ConditionFree),
		record("20000002", "Medicine", 6.0, models.ConditionRegular),
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)

	// The non-regular student is never selected even with the top grade.
	assert.False(t, decisions[0].IsSelected)
	require.NotNil(t, decisions[0].RejectionReason)
	assert.Equal(t, models.RejectionNotRegular, *decisions[0].RejectionReason)

	// The only regular student forms the whole ranking and is selected.
	assert.True(t, decisions[1].IsSelected)
	assert.Nil(t, decisions[1].RejectionReason)
}

func TestSelectEmptyRegularCohort(t *testing.T) {
	rows := []models.StudentRecord{
		record("30000001", "History", 9.0, models.ConditionFree),
		record("30000002", "History", 8.0, models.ConditionLeave),
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)

	for _, d := range decisions {
		assert.False(t, d.IsSelected)
		assert.True(t, math.IsInf(d.CutoffGradeUsed, 1), "empty cohorts carry the sentinel cutoff")
	}
}

func TestSelectCohortsAreIndependent(t *testing.T) {
	// The weakest Systems student outgrades the best Law student, yet each
	// cohort selects from its own ranking only.
	rows := []models.StudentRecord{
		record("40000001", "Systems", 9.0, models.ConditionRegular),
		record("40000002", "Systems", 8.5, models.ConditionRegular),
		record("40000003", "Law", 7.0, models.ConditionRegular),
		record("40000004", "Law", 6.5, models.ConditionRegular),
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)

	assert.True(t, decisions[0].IsSelected)
	assert.False(t, decisions[1].IsSelected)
	assert.True(t, decisions[2].IsSelected)
	assert.False(t, decisions[3].IsSelected)

	assert.Equal(t, 9.0, decisions[0].CutoffGradeUsed)
	assert.Equal(t, 7.0, decisions[2].CutoffGradeUsed)
}

func TestSelectIsDeterministic(t *testing.T) {
	var rows []models.StudentRecord
	for i := 0; i < 50; i++ {
		career := "Systems"
		if i%3 == 0 {
			career = "Law"
		}
		condition := models.ConditionRegular
		if i%7 == 0 {
			condition = models.ConditionFree
		}
		rows = append(rows, record("5"+string(rune('0'+i%10))+"00000"+string(rune('0'+i/10)), career, 5.0+float64(i%9)*0.5, condition))
	}

	engine := NewEngine()
	first, err := engine.Select(context.Background(), rows)
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := engine.Select(context.Background(), rows)
		require.NoError(t, err)
		assert.Equal(t, first, again, "identical input must produce identical decisions")
	}
}

func TestSelectPreservesInputOrder(t *testing.T) {
	rows := []models.StudentRecord{
		record("60000001", "Law", 5.0, models.ConditionRegular),
		record("60000002", "Systems", 9.0, models.ConditionRegular),
		record("60000003", "Law", 8.0, models.ConditionRegular),
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, decisions, 3)

	for i, d := range decisions {
		assert.Equal(t, rows[i].NationalID, d.NationalID)
		assert.Equal(t, rows[i].Career, d.Career)
	}
}

func TestSelectCountMatchesCeilRule(t *testing.T) {
	// With all-distinct grades the selected count is exactly ceil(0.10 * n)
	// for every cohort size.
	for n := 1; n <= 40; n++ {
		var rows []models.StudentRecord
		for i := 0; i < n; i++ {
			id := "9" + string(rune('0'+n/10)) + string(rune('0'+n%10)) + "00" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "0"
			rows = append(rows, record(id, "Systems", 10.0-float64(i)*0.1, models.ConditionRegular))
		}

		decisions, err := NewEngine().Select(context.Background(), rows)
		require.NoError(t, err)

		selected := 0
		for _, d := range decisions {
			if d.IsSelected {
				selected++
			}
		}
		want := int(math.Ceil(float64(n) * CutoffRate))
		assert.Equal(t, want, selected, "cohort size %d", n)
	}
}

func TestSelectMinimumOneSelectedPerCohort(t *testing.T) {
	// Even a cohort of one regular student awards someone: ceil(0.1*1) = 1.
	rows := []models.StudentRecord{
		record("70000001", "Philosophy", 2.0, models.ConditionRegular),
	}

	decisions, err := NewEngine().Select(context.Background(), rows)
	require.NoError(t, err)
	assert.True(t, decisions[0].IsSelected)
	assert.Equal(t, 2.0, decisions[0].CutoffGradeUsed)
}
