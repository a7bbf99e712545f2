// Package dataset defines the raw and cleaned record sets consumed by the
// summarization pipeline, and the providers that load them.
//
// A Provider delivers a complete snapshot of three untyped tables (job
// postings, skills, job-skill links). The clean package turns that snapshot
// into a typed Dataset; nothing downstream ever sees a raw Table.
package dataset

import (
	"context"
	"time"
)

// Source table names, matching the files and tables of the upstream dataset.
const (
	JobsTable   = "job_postings_fact"
	SkillsTable = "skills_dim"
	LinksTable  = "skills_job_dim"
)

// Column names used by the pipeline.
const (
	ColJobID         = "job_id"
	ColJobTitle      = "job_title"
	ColJobTitleShort = "job_title_short"
	ColPostedDate    = "job_posted_date"
	ColCountry       = "job_country"
	ColScheduleType  = "job_schedule_type"
	ColSalaryYearAvg = "salary_year_avg"
	ColSkillID       = "skill_id"
	ColSkillName     = "skills"
	ColSkillType     = "type"
)

// Table is an untyped record set as delivered by a Provider. A nil cell
// means the value is missing.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Index returns the position of col in the table header, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Raw is a complete snapshot of the three source tables.
type Raw struct {
	Jobs   *Table
	Skills *Table
	Links  *Table
}

// Provider loads a Raw snapshot from durable storage.
type Provider interface {
	Load(ctx context.Context) (*Raw, error)
}

// JobPosting is one cleaned row of job_postings_fact.
type JobPosting struct {
	JobID         string
	JobTitle      string
	JobTitleShort string
	PostedAt      time.Time // zero if the source value was missing or unparseable
	Country       string
	ScheduleType  string
	SalaryYearAvg *float64
}

// Skill is one cleaned row of skills_dim.
type Skill struct {
	SkillID string
	Name    string
	Type    string
}

// JobSkillLink associates a posting with a required skill.
type JobSkillLink struct {
	JobID   string
	SkillID string
}

// Dataset is the cleaned, canonical form of a Raw snapshot.
type Dataset struct {
	Jobs   []JobPosting
	Skills []Skill
	Links  []JobSkillLink
}
