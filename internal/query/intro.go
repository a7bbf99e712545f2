package query

import (
	"context"
	"sort"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// Countries returns the per-country posting counts as materialized.
func (s *Service) Countries(ctx context.Context) ([]aggregate.CountryCount, error) {
	rows, err := s.read(ctx, store.RelCountries, nil)
	if err != nil {
		return nil, err
	}
	out := make([]aggregate.CountryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, aggregate.CountryCount{
			Country:  asString(row, "country"),
			JobCount: asInt(row, "job_count"),
		})
	}
	return out, nil
}

// TopCountries returns up to n countries with the most postings.
func TopCountries(countries []aggregate.CountryCount, n int) []aggregate.CountryCount {
	out := make([]aggregate.CountryCount, len(countries))
	copy(out, countries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JobCount > out[j].JobCount
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Intro returns the introduction page summaries.
func (s *Service) Intro(ctx context.Context) (*aggregate.IntroStats, error) {
	stats := &aggregate.IntroStats{
		TopRoles:   []aggregate.RoleCount{},
		SkillTypes: []aggregate.SkillTypeCount{},
	}

	roles, err := s.read(ctx, store.RelTopRoles, nil)
	if err != nil {
		return nil, err
	}
	for _, row := range roles {
		stats.TopRoles = append(stats.TopRoles, aggregate.RoleCount{
			JobTitleShort: asString(row, "job_title_short"),
			Count:         asInt(row, "count"),
		})
	}

	types, err := s.read(ctx, store.RelSkillTypes, nil)
	if err != nil {
		return nil, err
	}
	for _, row := range types {
		stats.SkillTypes = append(stats.SkillTypes, aggregate.SkillTypeCount{
			SkillType:     asString(row, "skill_type"),
			JobTitleCount: asInt(row, "job_title_count"),
		})
	}

	if stats.Countries, err = s.Countries(ctx); err != nil {
		return nil, err
	}

	headline, err := s.read(ctx, store.RelHeadline, nil)
	if err != nil {
		return nil, err
	}
	if len(headline) > 0 {
		stats.Headline = aggregate.Headline{
			TotalJobs: asInt(headline[0], "total_jobs"),
			AvgSalary: asFloatPtr(headline[0], "avg_salary"),
		}
	}
	return stats, nil
}
