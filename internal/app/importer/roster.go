// Package importer parses tabular scholarship rosters into validated student
// records. Malformed rows are never fatal to a batch: they are dropped,
// counted and reported back to the caller, so the selection engine only ever
// sees clean numeric data.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

// Column names expected in the roster header, after normalization.
const (
	colNationalID      = "national_id"
	colFirstName       = "first_name"
	colLastName        = "last_name"
	colUniversityEmail = "university_email"
	colFaculty         = "faculty"
	colCareer          = "career"
	colSemester        = "semester"
	colAverageGrade    = "average_grade"
	colCondition       = "academic_condition"
)

var requiredColumns = []string{
	colNationalID, colFirstName, colLastName, colUniversityEmail,
	colFaculty, colCareer, colSemester, colAverageGrade, colCondition,
}

// headerAliases maps legacy export headers (the registrar's spreadsheets are
// in Spanish) to canonical column names.
var headerAliases = map[string]string{
	"dni":           colNationalID,
	"documento":     colNationalID,
	"nombre":        colFirstName,
	"apellido":      colLastName,
	"email":         colUniversityEmail,
	"correo":        colUniversityEmail,
	"facultad":      colFaculty,
	"carrera":       colCareer,
	"semestre":      colSemester,
	"promedio":      colAverageGrade,
	"condicion":     colCondition,
	"grade":         colAverageGrade,
	"average":       colAverageGrade,
	"condition":     colCondition,
	"student_email": colUniversityEmail,
	"student_id":    colNationalID,
}

// DiscardedRow records one dropped roster row and why it was dropped.
type DiscardedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing a roster file.
type ParseResult struct {
	Rows      []models.StudentRecord `json:"-"`
	Discarded []DiscardedRow         `json:"discarded"`
}

// Parser reads CSV rosters. Rows whose university email does not belong to
// emailDomain are discarded before they can reach ranking.
type Parser struct {
	emailDomain string
}

// NewParser creates a roster parser bound to the institutional email domain.
func NewParser(emailDomain string) *Parser {
	return &Parser{emailDomain: strings.ToLower(strings.TrimPrefix(emailDomain, "@"))}
}

// Parse reads the whole roster. It fails only on structural problems (missing
// header columns, unreadable CSV); individual bad rows are collected in the
// result's Discarded list instead.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ErrEmptyRoster
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Discarded = append(result.Discarded, DiscardedRow{Line: line, Reason: "unparseable row"})
			continue
		}

		row, reason := p.buildRow(columns, fields)
		if reason != "" {
			result.Discarded = append(result.Discarded, DiscardedRow{Line: line, Reason: reason})
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 && len(result.Discarded) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}
	return result, nil
}

// mapHeader resolves each required column to its index in the header.
func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		normalized := normalizeHeader(name)
		if canonical, ok := headerAliases[normalized]; ok {
			normalized = canonical
		}
		columns[normalized] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return columns, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return strings.Trim(name, "\uFEFF") // strip BOM on the first column
}

// buildRow validates one data row. It returns a non-empty reason when the row
// must be discarded.
func (p *Parser) buildRow(columns map[string]int, fields []string) (models.StudentRecord, string) {
	get := func(col string) string {
		i := columns[col]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	row := models.StudentRecord{
		NationalID:      get(colNationalID),
		FirstName:       get(colFirstName),
		LastName:        get(colLastName),
		UniversityEmail: strings.ToLower(get(colUniversityEmail)),
		Faculty:         get(colFaculty),
		Career:          get(colCareer),
	}

	for col, value := range map[string]string{
		colNationalID:      row.NationalID,
		colFirstName:       row.FirstName,
		colLastName:        row.LastName,
		colUniversityEmail: row.UniversityEmail,
		colCareer:          row.Career,
	} {
		if value == "" {
			return row, fmt.Sprintf("missing %s", col)
		}
	}

	if !p.isInstitutionalEmail(row.UniversityEmail) {
		return row, fmt.Sprintf("email %q is not on the institutional domain", row.UniversityEmail)
	}

	semester, err := strconv.Atoi(get(colSemester))
	if err != nil || semester < 1 {
		return row, fmt.Sprintf("invalid semester %q", get(colSemester))
	}
	row.Semester = semester

	grade, err := strconv.ParseFloat(strings.ReplaceAll(get(colAverageGrade), ",", "."), 64)
	if err != nil || grade < 0 {
		return row, fmt.Sprintf("invalid average grade %q", get(colAverageGrade))
	}
	row.AverageGrade = grade

	row.AcademicCondition = models.AcademicCondition(strings.ToUpper(get(colCondition)))
	if row.AcademicCondition == "" {
		return row, "missing academic_condition"
	}

	return row, ""
}

func (p *Parser) isInstitutionalEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 1 {
		return false
	}
	return email[at+1:] == p.emailDomain
}
