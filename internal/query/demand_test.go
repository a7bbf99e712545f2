package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/jobskills/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func demandFixture(t *testing.T) *Service {
	t.Helper()
	s := newTestStore(t)
	put(t, s, store.RelDemand, [][]any{
		{"2023-05-02 10:00:00", "Data Analyst", "Full-time", "sql", "A"},
		{"2023-05-02 15:00:00", "Data Analyst", "Full-time", "sql", "B"},
		{"2023-05-02 16:00:00", "Data Analyst", "Full-time", "sql", "B"},
		{"2023-05-01 09:00:00", "Data Analyst", "Contractor", "python", "A"},
		{"2023-05-03 09:00:00", "Data Analyst", "Full-time", "excel", "C"},
		{"2023-05-03 09:00:00", "Data Engineer", "Full-time", "aws", "D"},
		{nil, "Data Analyst", "Full-time", "sql", "E"},
	})
	return newTestService(t, s)
}

func TestDemandTrend(t *testing.T) {
	svc := demandFixture(t)

	got, err := svc.DemandTrend(context.Background(), DemandParams{Role: Exactly("Data Analyst")})
	require.NoError(t, err)

	assert.Equal(t, []TrendPoint{
		{Date: day(2023, 5, 1), Skill: "python", JobTitles: 1},
		{Date: day(2023, 5, 2), Skill: "sql", JobTitles: 2},
		{Date: day(2023, 5, 3), Skill: "excel", JobTitles: 1},
	}, got)
}

func TestDemandTrend_ScheduleType(t *testing.T) {
	svc := demandFixture(t)

	got, err := svc.DemandTrend(context.Background(), DemandParams{
		Role:         Exactly("Data Analyst"),
		ScheduleType: Exactly("Contractor"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "python", got[0].Skill)
}

func TestDemandTrend_TopSkillsLimit(t *testing.T) {
	svc := demandFixture(t)

	// sql has 3 distinct titles (A, B, E); the rest have one each
	got, err := svc.DemandTrend(context.Background(), DemandParams{TopSkills: 2})
	require.NoError(t, err)

	skills := map[string]bool{}
	for _, p := range got {
		skills[p.Skill] = true
	}
	assert.Equal(t, map[string]bool{"sql": true, "aws": true}, skills)
}

func TestDemandTrend_Empty(t *testing.T) {
	svc := demandFixture(t)

	got, err := svc.DemandTrend(context.Background(), DemandParams{Role: Exactly("Astronaut")})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTrendSeries_SortedByDateThenSkill(t *testing.T) {
	var rows []store.Row
	for i := 0; i < 30; i++ {
		rows = append(rows, store.Row{
			"job_posted_date": fmt.Sprintf("2023-01-%02d 12:00:00", 1+i%9),
			"skills":          fmt.Sprintf("s%d", i%6),
			"job_title":       fmt.Sprintf("t%d", i),
		})
	}

	got := trendSeries(rows, 0)
	skills := map[string]bool{}
	for i, p := range got {
		skills[p.Skill] = true
		if i == 0 {
			continue
		}
		prev := got[i-1]
		if prev.Date.Equal(p.Date) {
			assert.Less(t, prev.Skill, p.Skill)
		} else {
			assert.True(t, prev.Date.Before(p.Date))
		}
	}
	assert.Len(t, skills, DefaultTrendSkills)
}

func TestPostedDay(t *testing.T) {
	d, ok := postedDay(store.Row{"d": "2023-05-02 10:11:12"}, "d")
	require.True(t, ok)
	assert.Equal(t, day(2023, 5, 2), d)

	d, ok = postedDay(store.Row{"d": "2023-05-02"}, "d")
	require.True(t, ok)
	assert.Equal(t, day(2023, 5, 2), d)

	_, ok = postedDay(store.Row{"d": "yesterday"}, "d")
	assert.False(t, ok)
	_, ok = postedDay(store.Row{}, "d")
	assert.False(t, ok)
}
