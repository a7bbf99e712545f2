package store

import (
	"fmt"
	"strings"
)

// Relation names.
const (
	RelTopSkills  = "job_title_skill_count"
	RelSalary     = "salary_summary"
	RelDemand     = "demand_skill_trend"
	RelCountries  = "job_country_summary"
	RelTopRoles   = "top_job_title_summary"
	RelSkillTypes = "skill_type_distribution_summary"
	RelHeadline   = "job_summary_stats"
)

// Column is one typed column of a relation.
type Column struct {
	Name string
	Type string // SQLite storage class: TEXT, INTEGER or REAL
}

// Relation describes the fixed schema of a materialized summary.
type Relation struct {
	Name    string
	Columns []Column
	Indexes []string // columns to index after each rebuild
}

// Relations is the registry of every materialized summary, in build order.
var Relations = []Relation{
	{
		Name: RelTopSkills,
		Columns: []Column{
			{"job_title_short", "TEXT"},
			{"skills", "TEXT"},
			{"job_title", "TEXT"},
			{"type", "TEXT"},
			{"count", "INTEGER"},
		},
		Indexes: []string{"job_title_short", "type"},
	},
	{
		Name: RelSalary,
		Columns: []Column{
			{"job_title_short", "TEXT"},
			{"month", "INTEGER"},
			{"count", "INTEGER"},
			{"avg_salary", "REAL"},
			{"max_salary", "REAL"},
			{"min_salary", "REAL"},
		},
		Indexes: []string{"month"},
	},
	{
		Name: RelDemand,
		Columns: []Column{
			{"job_posted_date", "TEXT"},
			{"job_title_short", "TEXT"},
			{"job_schedule_type", "TEXT"},
			{"skills", "TEXT"},
			{"job_title", "TEXT"},
		},
		Indexes: []string{"job_title_short", "job_schedule_type"},
	},
	{
		Name: RelCountries,
		Columns: []Column{
			{"country", "TEXT"},
			{"job_count", "INTEGER"},
		},
	},
	{
		Name: RelTopRoles,
		Columns: []Column{
			{"job_title_short", "TEXT"},
			{"count", "INTEGER"},
		},
	},
	{
		Name: RelSkillTypes,
		Columns: []Column{
			{"skill_type", "TEXT"},
			{"job_title_count", "INTEGER"},
		},
	},
	{
		Name: RelHeadline,
		Columns: []Column{
			{"total_jobs", "INTEGER"},
			{"avg_salary", "REAL"},
		},
	},
}

// Lookup returns the registered relation with the given name.
func Lookup(name string) (Relation, bool) {
	for _, r := range Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// RelationNames returns every registered relation name in build order.
func RelationNames() []string {
	names := make([]string, len(Relations))
	for i, r := range Relations {
		names[i] = r.Name
	}
	return names
}

// ColumnNames returns the relation's column names in schema order.
func (r Relation) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the relation defines col.
func (r Relation) HasColumn(col string) bool {
	for _, c := range r.Columns {
		if c.Name == col {
			return true
		}
	}
	return false
}

func createTableSQL(table string, r Relation) string {
	defs := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		defs[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

func insertSQL(table string, r Relation) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(r.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(r.ColumnNames(), ", "), marks)
}

const metadataSchema = `
CREATE TABLE IF NOT EXISTS materializations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    relation TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_materializations_relation ON materializations(relation);
`
