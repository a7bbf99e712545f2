package query

import (
	"context"
	"sort"
	"time"

	"github.com/blackwell-systems/jobskills/internal/store"
)

// DefaultTrendSkills is the number of skills charted by DemandTrend.
const DefaultTrendSkills = 5

// DemandParams selects the demand trend series.
type DemandParams struct {
	Role         Optional[string]
	ScheduleType Optional[string]

	// TopSkills is the number of skills kept; zero or negative means
	// DefaultTrendSkills.
	TopSkills int
}

// TrendPoint is the number of distinct job titles requiring Skill among
// postings made on Date.
type TrendPoint struct {
	Date      time.Time
	Skill     string
	JobTitles int
}

// DemandTrend picks the skills required by the most distinct job titles in
// the filtered subset and returns their daily series sorted by date, then
// skill. Rows without a usable posted date are left out of the series.
func (s *Service) DemandTrend(ctx context.Context, p DemandParams) ([]TrendPoint, error) {
	filters := store.Filters{}
	if role, ok := p.Role.Get(); ok {
		filters["job_title_short"] = role
	}
	if sched, ok := p.ScheduleType.Get(); ok {
		filters["job_schedule_type"] = sched
	}

	rows, err := s.read(ctx, store.RelDemand, filters)
	if err != nil {
		return nil, err
	}
	return trendSeries(rows, p.TopSkills), nil
}

func trendSeries(rows []store.Row, limit int) []TrendPoint {
	if limit <= 0 {
		limit = DefaultTrendSkills
	}

	// rank skills by distinct titles
	titles := make(map[string]map[string]struct{})
	for _, row := range rows {
		skill := asString(row, "skills")
		if skill == "" {
			continue
		}
		set, ok := titles[skill]
		if !ok {
			set = make(map[string]struct{})
			titles[skill] = set
		}
		if title := asString(row, "job_title"); title != "" {
			set[title] = struct{}{}
		}
	}
	skills := make([]string, 0, len(titles))
	for skill := range titles {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		ni, nj := len(titles[skills[i]]), len(titles[skills[j]])
		if ni != nj {
			return ni > nj
		}
		return skills[i] < skills[j]
	})
	if len(skills) > limit {
		skills = skills[:limit]
	}
	keep := make(map[string]bool, len(skills))
	for _, skill := range skills {
		keep[skill] = true
	}

	type point struct {
		day   time.Time
		skill string
	}
	series := make(map[point]map[string]struct{})
	for _, row := range rows {
		skill := asString(row, "skills")
		if !keep[skill] {
			continue
		}
		day, ok := postedDay(row, "job_posted_date")
		if !ok {
			continue
		}
		k := point{day, skill}
		set, ok := series[k]
		if !ok {
			set = make(map[string]struct{})
			series[k] = set
		}
		if title := asString(row, "job_title"); title != "" {
			set[title] = struct{}{}
		}
	}

	out := make([]TrendPoint, 0, len(series))
	for k, set := range series {
		out = append(out, TrendPoint{Date: k.day, Skill: k.skill, JobTitles: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}
