package materialize

import (
	"time"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// DateLayout is the text form of demand_skill_trend.job_posted_date.
const DateLayout = "2006-01-02 15:04:05"

// Encode flattens summaries into positional rows keyed by relation name,
// in each relation's schema column order.
func Encode(s *aggregate.Summaries) map[string][][]any {
	out := make(map[string][][]any, len(store.Relations))

	topSkills := make([][]any, 0, len(s.TopSkills))
	for _, r := range s.TopSkills {
		topSkills = append(topSkills, []any{r.JobTitleShort, r.Skill, r.JobTitle, r.Type, r.Count})
	}
	out[store.RelTopSkills] = topSkills

	salary := make([][]any, 0, len(s.Salary))
	for _, r := range s.Salary {
		salary = append(salary, []any{r.JobTitleShort, r.Month, r.Count, r.AvgSalary, r.MaxSalary, r.MinSalary})
	}
	out[store.RelSalary] = salary

	demand := make([][]any, 0, len(s.Demand))
	for _, r := range s.Demand {
		demand = append(demand, []any{formatDate(r.PostedAt), r.JobTitleShort, r.ScheduleType, r.Skill, r.JobTitle})
	}
	out[store.RelDemand] = demand

	countries := make([][]any, 0, len(s.Countries))
	for _, r := range s.Countries {
		countries = append(countries, []any{r.Country, r.JobCount})
	}
	out[store.RelCountries] = countries

	roles := make([][]any, 0, len(s.Intro.TopRoles))
	for _, r := range s.Intro.TopRoles {
		roles = append(roles, []any{r.JobTitleShort, r.Count})
	}
	out[store.RelTopRoles] = roles

	types := make([][]any, 0, len(s.Intro.SkillTypes))
	for _, r := range s.Intro.SkillTypes {
		types = append(types, []any{r.SkillType, r.JobTitleCount})
	}
	out[store.RelSkillTypes] = types

	var avg any
	if s.Intro.Headline.AvgSalary != nil {
		avg = *s.Intro.Headline.AvgSalary
	}
	out[store.RelHeadline] = [][]any{{s.Intro.Headline.TotalJobs, avg}}

	return out
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(DateLayout)
}
