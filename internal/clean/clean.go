// Package clean normalizes raw source tables into a canonical Dataset.
//
// Cleaning deduplicates on canonical keys (first occurrence wins), drops
// rows whose identifying keys are missing, coerces ids to canonical
// strings and trims role and skill names. Input tables are never modified.
package clean

import (
	"fmt"

	"github.com/blackwell-systems/jobskills/internal/dataset"
)

// SchemaError reports a required column that is absent from a source table.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing required column %q", e.Table, e.Column)
}

// RequiredColumns lists, per source table, the columns the pipeline reads.
var RequiredColumns = map[string][]string{
	dataset.JobsTable: {
		dataset.ColJobID,
		dataset.ColJobTitle,
		dataset.ColJobTitleShort,
		dataset.ColPostedDate,
		dataset.ColCountry,
		dataset.ColScheduleType,
		dataset.ColSalaryYearAvg,
	},
	dataset.SkillsTable: {
		dataset.ColSkillID,
		dataset.ColSkillName,
		dataset.ColSkillType,
	},
	dataset.LinksTable: {
		dataset.ColJobID,
		dataset.ColSkillID,
	},
}

// Clean validates all three tables and returns the cleaned Dataset. A
// missing required column in any table fails the whole call.
func Clean(raw *dataset.Raw) (*dataset.Dataset, error) {
	if raw == nil {
		raw = &dataset.Raw{}
	}

	jobCols, err := columnIndex(raw.Jobs, dataset.JobsTable)
	if err != nil {
		return nil, err
	}
	skillCols, err := columnIndex(raw.Skills, dataset.SkillsTable)
	if err != nil {
		return nil, err
	}
	linkCols, err := columnIndex(raw.Links, dataset.LinksTable)
	if err != nil {
		return nil, err
	}

	return &dataset.Dataset{
		Jobs:   cleanJobs(raw.Jobs, jobCols),
		Skills: cleanSkills(raw.Skills, skillCols),
		Links:  cleanLinks(raw.Links, linkCols),
	}, nil
}

// columnIndex resolves every required column of table to its position.
func columnIndex(t *dataset.Table, table string) (map[string]int, error) {
	idx := make(map[string]int, len(RequiredColumns[table]))
	for _, col := range RequiredColumns[table] {
		i := t.Index(col)
		if i < 0 {
			return nil, &SchemaError{Table: table, Column: col}
		}
		idx[col] = i
	}
	return idx, nil
}

// cell returns row[i], treating short rows as missing values.
func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func cleanJobs(t *dataset.Table, cols map[string]int) []dataset.JobPosting {
	seen := make(map[string]struct{}, t.Len())
	jobs := make([]dataset.JobPosting, 0, t.Len())

	for _, row := range t.Rows {
		id, ok := canonicalID(cell(row, cols[dataset.ColJobID]))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		// the first row claims the id even when it is dropped below
		seen[id] = struct{}{}
		role := cell(row, cols[dataset.ColJobTitleShort])
		if role == nil {
			continue
		}

		jobs = append(jobs, dataset.JobPosting{
			JobID:         id,
			JobTitle:      text(cell(row, cols[dataset.ColJobTitle])),
			JobTitleShort: trimmed(role),
			PostedAt:      timestamp(cell(row, cols[dataset.ColPostedDate])),
			Country:       text(cell(row, cols[dataset.ColCountry])),
			ScheduleType:  text(cell(row, cols[dataset.ColScheduleType])),
			SalaryYearAvg: number(cell(row, cols[dataset.ColSalaryYearAvg])),
		})
	}

	return jobs
}

func cleanSkills(t *dataset.Table, cols map[string]int) []dataset.Skill {
	seen := make(map[string]struct{}, t.Len())
	skills := make([]dataset.Skill, 0, t.Len())

	for _, row := range t.Rows {
		id, ok := canonicalID(cell(row, cols[dataset.ColSkillID]))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		name := cell(row, cols[dataset.ColSkillName])
		if name == nil {
			continue
		}

		skills = append(skills, dataset.Skill{
			SkillID: id,
			Name:    trimmed(name),
			Type:    text(cell(row, cols[dataset.ColSkillType])),
		})
	}

	return skills
}

func cleanLinks(t *dataset.Table, cols map[string]int) []dataset.JobSkillLink {
	type pair struct{ job, skill string }
	seen := make(map[pair]struct{}, t.Len())
	links := make([]dataset.JobSkillLink, 0, t.Len())

	for _, row := range t.Rows {
		jobID, ok := canonicalID(cell(row, cols[dataset.ColJobID]))
		if !ok {
			continue
		}
		skillID, ok := canonicalID(cell(row, cols[dataset.ColSkillID]))
		if !ok {
			continue
		}
		key := pair{jobID, skillID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		links = append(links, dataset.JobSkillLink{JobID: jobID, SkillID: skillID})
	}

	return links
}
