package aggregate

import "time"

// SkillCount is one TopSkillsByRole group: how many links share the same
// role, skill, free-text title and skill type.
type SkillCount struct {
	JobTitleShort string
	Skill         string
	JobTitle      string
	Type          string
	Count         int
}

// SalaryMonth summarizes the salaries posted for a role in one month.
type SalaryMonth struct {
	JobTitleShort string
	Month         int // 1-12
	Count         int
	AvgSalary     float64
	MaxSalary     float64
	MinSalary     float64
}

// DemandRow is one flattened link/posting/skill join tuple.
type DemandRow struct {
	PostedAt      time.Time
	JobTitleShort string
	ScheduleType  string
	Skill         string
	JobTitle      string
}

// CountryCount is the number of postings for a country.
type CountryCount struct {
	Country  string
	JobCount int
}

// RoleCount is the number of distinct postings for a role.
type RoleCount struct {
	JobTitleShort string
	Count         int
}

// SkillTypeCount is the number of distinct job titles requiring a skill type.
type SkillTypeCount struct {
	SkillType     string
	JobTitleCount int
}

// Headline holds the dataset-wide totals shown on the introduction page.
type Headline struct {
	TotalJobs int
	AvgSalary *float64 // nil when no posting carries a salary
}

// IntroStats bundles the introduction page summaries.
type IntroStats struct {
	TopRoles   []RoleCount
	SkillTypes []SkillTypeCount
	Countries  []CountryCount
	Headline   Headline
}

// Summaries is every derived relation computed from one Dataset.
type Summaries struct {
	TopSkills []SkillCount
	Salary    []SalaryMonth
	Demand    []DemandRow
	Countries []CountryCount
	Intro     IntroStats
}
