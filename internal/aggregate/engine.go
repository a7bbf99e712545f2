// Package aggregate computes the derived summary relations from a cleaned
// Dataset.
//
// Every function is a pure, deterministic transformation: joins are inner
// joins on the canonical ids (dangling links are dropped), groups are emitted
// in order of first appearance, and empty inputs yield empty relations.
package aggregate

import (
	"math"
	"sort"

	"github.com/blackwell-systems/jobskills/internal/dataset"
)

// TopRoleLimit is the number of roles kept in IntroStats.TopRoles.
const TopRoleLimit = 5

// InvalidCountries are placeholder locations excluded from CountrySummary.
// Matching is exact and case-sensitive; the empty string also stands in for
// a missing country.
var InvalidCountries = map[string]struct{}{
	"Remote":    {},
	"Worldwide": {},
	"Europe":    {},
	"Asia":      {},
	"Africa":    {},
	"":          {},
}

// IsValidCountry reports whether country belongs in CountrySummary.
func IsValidCountry(country string) bool {
	_, invalid := InvalidCountries[country]
	return !invalid
}

// Build computes every summary from ds.
func Build(ds *dataset.Dataset) *Summaries {
	idx := newIndex(ds)
	countries := CountrySummary(ds)
	return &Summaries{
		TopSkills: topSkillsByRole(ds, idx),
		Salary:    SalarySummary(ds),
		Demand:    demandSkillTrend(ds, idx),
		Countries: countries,
		Intro: IntroStats{
			TopRoles:   TopRoles(ds, TopRoleLimit),
			SkillTypes: skillTypeDistribution(ds, idx),
			Countries:  countries,
			Headline:   HeadlineStats(ds),
		},
	}
}

// index resolves join keys to records.
type index struct {
	jobs   map[string]*dataset.JobPosting
	skills map[string]*dataset.Skill
}

func newIndex(ds *dataset.Dataset) *index {
	idx := &index{
		jobs:   make(map[string]*dataset.JobPosting, len(ds.Jobs)),
		skills: make(map[string]*dataset.Skill, len(ds.Skills)),
	}
	for i := range ds.Jobs {
		if _, ok := idx.jobs[ds.Jobs[i].JobID]; !ok {
			idx.jobs[ds.Jobs[i].JobID] = &ds.Jobs[i]
		}
	}
	for i := range ds.Skills {
		if _, ok := idx.skills[ds.Skills[i].SkillID]; !ok {
			idx.skills[ds.Skills[i].SkillID] = &ds.Skills[i]
		}
	}
	return idx
}

// join calls fn for every link whose posting and skill both exist.
func (idx *index) join(links []dataset.JobSkillLink, fn func(*dataset.JobPosting, *dataset.Skill)) {
	for _, l := range links {
		job, ok := idx.jobs[l.JobID]
		if !ok {
			continue
		}
		skill, ok := idx.skills[l.SkillID]
		if !ok {
			continue
		}
		fn(job, skill)
	}
}

// TopSkillsByRole counts join rows per (role, skill, title, type).
func TopSkillsByRole(ds *dataset.Dataset) []SkillCount {
	return topSkillsByRole(ds, newIndex(ds))
}

func topSkillsByRole(ds *dataset.Dataset, idx *index) []SkillCount {
	type key struct{ role, skill, title, typ string }
	pos := make(map[key]int)
	var out []SkillCount

	idx.join(ds.Links, func(job *dataset.JobPosting, skill *dataset.Skill) {
		k := key{job.JobTitleShort, skill.Name, job.JobTitle, skill.Type}
		if i, ok := pos[k]; ok {
			out[i].Count++
			return
		}
		pos[k] = len(out)
		out = append(out, SkillCount{
			JobTitleShort: k.role,
			Skill:         k.skill,
			JobTitle:      k.title,
			Type:          k.typ,
			Count:         1,
		})
	})

	return out
}

// SalarySummary groups salaried postings by (role, month). Postings with no
// salary or no posted date contribute nothing.
func SalarySummary(ds *dataset.Dataset) []SalaryMonth {
	type key struct {
		role  string
		month int
	}
	type acc struct {
		count         int
		sum, max, min float64
	}
	pos := make(map[key]int)
	var keys []key
	var accs []acc

	for _, job := range ds.Jobs {
		if job.SalaryYearAvg == nil || job.PostedAt.IsZero() {
			continue
		}
		salary := *job.SalaryYearAvg
		k := key{job.JobTitleShort, int(job.PostedAt.Month())}
		i, ok := pos[k]
		if !ok {
			i = len(keys)
			pos[k] = i
			keys = append(keys, k)
			accs = append(accs, acc{max: salary, min: salary})
		}
		a := &accs[i]
		a.count++
		a.sum += salary
		a.max = math.Max(a.max, salary)
		a.min = math.Min(a.min, salary)
	}

	out := make([]SalaryMonth, len(keys))
	for i, k := range keys {
		a := accs[i]
		out[i] = SalaryMonth{
			JobTitleShort: k.role,
			Month:         k.month,
			Count:         a.count,
			AvgSalary:     a.sum / float64(a.count),
			MaxSalary:     a.max,
			MinSalary:     a.min,
		}
	}
	return out
}

// DemandSkillTrend projects every link/posting/skill join tuple.
func DemandSkillTrend(ds *dataset.Dataset) []DemandRow {
	return demandSkillTrend(ds, newIndex(ds))
}

func demandSkillTrend(ds *dataset.Dataset, idx *index) []DemandRow {
	var out []DemandRow
	idx.join(ds.Links, func(job *dataset.JobPosting, skill *dataset.Skill) {
		out = append(out, DemandRow{
			PostedAt:      job.PostedAt,
			JobTitleShort: job.JobTitleShort,
			ScheduleType:  job.ScheduleType,
			Skill:         skill.Name,
			JobTitle:      job.JobTitle,
		})
	})
	return out
}

// CountrySummary counts postings per valid country.
func CountrySummary(ds *dataset.Dataset) []CountryCount {
	pos := make(map[string]int)
	var out []CountryCount

	for _, job := range ds.Jobs {
		if !IsValidCountry(job.Country) {
			continue
		}
		if i, ok := pos[job.Country]; ok {
			out[i].JobCount++
			continue
		}
		pos[job.Country] = len(out)
		out = append(out, CountryCount{Country: job.Country, JobCount: 1})
	}
	return out
}

// TopRoles returns the limit roles with the most distinct postings,
// ties kept in order of first appearance.
func TopRoles(ds *dataset.Dataset, limit int) []RoleCount {
	pos := make(map[string]int)
	var out []RoleCount
	seen := make(map[string]map[string]struct{})

	for _, job := range ds.Jobs {
		ids, ok := seen[job.JobTitleShort]
		if !ok {
			ids = make(map[string]struct{})
			seen[job.JobTitleShort] = ids
			pos[job.JobTitleShort] = len(out)
			out = append(out, RoleCount{JobTitleShort: job.JobTitleShort})
		}
		if _, dup := ids[job.JobID]; dup {
			continue
		}
		ids[job.JobID] = struct{}{}
		out[pos[job.JobTitleShort]].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SkillTypeDistribution counts distinct non-empty job titles per skill type.
func SkillTypeDistribution(ds *dataset.Dataset) []SkillTypeCount {
	return skillTypeDistribution(ds, newIndex(ds))
}

func skillTypeDistribution(ds *dataset.Dataset, idx *index) []SkillTypeCount {
	pos := make(map[string]int)
	titles := make(map[string]map[string]struct{})
	var out []SkillTypeCount

	idx.join(ds.Links, func(job *dataset.JobPosting, skill *dataset.Skill) {
		if skill.Type == "" {
			return
		}
		set, ok := titles[skill.Type]
		if !ok {
			set = make(map[string]struct{})
			titles[skill.Type] = set
			pos[skill.Type] = len(out)
			out = append(out, SkillTypeCount{SkillType: skill.Type})
		}
		if job.JobTitle == "" {
			return
		}
		if _, dup := set[job.JobTitle]; dup {
			return
		}
		set[job.JobTitle] = struct{}{}
		out[pos[skill.Type]].JobTitleCount++
	})

	return out
}

// HeadlineStats returns the total posting count and the mean salary over
// postings that carry one, rounded to cents. TotalJobs counts every
// posting, salaried or not.
func HeadlineStats(ds *dataset.Dataset) Headline {
	h := Headline{TotalJobs: len(ds.Jobs)}

	var sum float64
	var n int
	for _, job := range ds.Jobs {
		if job.SalaryYearAvg == nil {
			continue
		}
		sum += *job.SalaryYearAvg
		n++
	}
	if n > 0 {
		avg := Round2(sum / float64(n))
		h.AvgSalary = &avg
	}
	return h
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
