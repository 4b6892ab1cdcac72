package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

const canonicalHeader = "national_id,first_name,last_name,university_email,faculty,career,semester,average_grade,academic_condition"

func TestParseCanonicalHeader(t *testing.T) {
	roster := canonicalHeader + "\n" +
		"30123456,Lucía,Fernández,lfernandez@uni.edu,Engineering,Systems Engineering,6,8.45,REGULAR\n" +
		"30123457,Juan,Pérez,jperez@uni.edu,Law,Law,3,7.2,FREE\n"

	result, err := NewParser("uni.edu").Parse(strings.NewReader(roster))
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.Discarded)

	first := result.Rows[0]
	assert.Equal(t, "30123456", first.NationalID)
	assert.Equal(t, "lfernandez@uni.edu", first.UniversityEmail)
	assert.Equal(t, 6, first.Semester)
	assert.Equal(t, 8.45, first.AverageGrade)
	assert.Equal(t, models.ConditionRegular, first.AcademicCondition)

	assert.Equal(t, models.ConditionFree, result.Rows[1].AcademicCondition)
}

func TestParseSpanishHeaderAliases(t *testing.T) {
	roster := "DNI,Nombre,Apellido,Correo,Facultad,Carrera,Semestre,Promedio,Condicion\n" +
		"30123456,Lucía,Fernández,lfernandez@uni.edu,Ingeniería,Sistemas,6,\"8,45\",regular\n"

	result, err := NewParser("@uni.edu").Parse(strings.NewReader(roster))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, "30123456", row.NationalID)
	assert.Equal(t, "Lucía", row.FirstName)
	// Comma decimals from legacy exports parse as dots.
	assert.Equal(t, 8.45, row.AverageGrade)
	// Condition is upper-cased on the way in.
	assert.Equal(t, models.ConditionRegular, row.AcademicCondition)
}

func TestParseMissingColumns(t *testing.T) {
	roster := "national_id,first_name,last_name\n30123456,Lucía,Fernández\n"

	_, err := NewParser("uni.edu").Parse(strings.NewReader(roster))
	require.ErrorIs(t, err, apperrors.ErrMissingColumns)
	assert.Contains(t, err.Error(), "university_email")
	assert.Contains(t, err.Error(), "average_grade")
}

func TestParseEmptyRoster(t *testing.T) {
	_, err := NewParser("uni.edu").Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyRoster)

	// A header with no data rows is equally empty.
	_, err = NewParser("uni.edu").Parse(strings.NewReader(canonicalHeader + "\n"))
	assert.ErrorIs(t, err, apperrors.ErrEmptyRoster)
}

func TestParseDiscardsBadRowsWithoutFailing(t *testing.T) {
	roster := canonicalHeader + "\n" +
		"30000001,Ana,García,agarcia@uni.edu,Engineering,Systems,4,8.0,REGULAR\n" +
		"30000002,Luis,Romero,lromero@gmail.com,Engineering,Systems,4,7.5,REGULAR\n" +
		"30000003,Eva,Suárez,esuarez@uni.edu,Engineering,Systems,zero,7.5,REGULAR\n" +
		"30000004,Marta,Díaz,mdiaz@uni.edu,Engineering,Systems,4,not-a-grade,REGULAR\n" +
		",Pedro,López,plopez@uni.edu,Engineering,Systems,4,6.0,REGULAR\n"

	result, err := NewParser("uni.edu").Parse(strings.NewReader(roster))
	require.NoError(t, err)

	require.Len(t, result.Rows, 1, "only the clean row survives")
	assert.Equal(t, "30000001", result.Rows[0].NationalID)

	require.Len(t, result.Discarded, 4)
	lines := make(map[int]string, len(result.Discarded))
	for _, d := range result.Discarded {
		lines[d.Line] = d.Reason
	}
	assert.Contains(t, lines[3], "not on the institutional domain")
	assert.Contains(t, lines[4], "invalid semester")
	assert.Contains(t, lines[5], "invalid average grade")
	assert.Contains(t, lines[6], "missing national_id")
}

func TestParseNegativeGradeIsDiscarded(t *testing.T) {
	roster := canonicalHeader + "\n" +
		"30000001,Ana,García,agarcia@uni.edu,Engineering,Systems,4,-1.0,REGULAR\n"

	result, err := NewParser("uni.edu").Parse(strings.NewReader(roster))
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	require.Len(t, result.Discarded, 1)
	assert.Contains(t, result.Discarded[0].Reason, "invalid average grade")
}

func TestParseEmailDomainMatchIsExact(t *testing.T) {
	// Subdomains and lookalike domains must not pass.
	roster := canonicalHeader + "\n" +
		"30000001,Ana,García,agarcia@mail.uni.edu,Engineering,Systems,4,8.0,REGULAR\n" +
		"30000002,Eva,Suárez,esuarez@notuni.edu,Engineering,Systems,4,8.0,REGULAR\n" +
		"30000003,Luis,Romero,LROMERO@UNI.EDU,Engineering,Systems,4,8.0,REGULAR\n"

	result, err := NewParser("uni.edu").Parse(strings.NewReader(roster))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	// Emails are lower-cased before the domain check.
	assert.Equal(t, "lromero@uni.edu", result.Rows[0].UniversityEmail)
	assert.Len(t, result.Discarded, 2)
}
