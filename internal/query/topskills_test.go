package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/store"
)

func skillFixture(t *testing.T) *Service {
	t.Helper()
	s := newTestStore(t)
	put(t, s, store.RelTopSkills, [][]any{
		{"Data Analyst", "sql", "A", "programming", 1},
		{"Data Analyst", "sql", "B", "programming", 2},
		{"Data Analyst", "python", "A", "programming", 1},
		{"Data Analyst", "excel", "C", "analyst_tools", 1},
		{"Data Engineer", "aws", "D", "cloud", 1},
	})
	return newTestService(t, s)
}

func skillNames(shares []SkillShare) []string {
	names := make([]string, len(shares))
	for i, sh := range shares {
		names[i] = sh.Skill
	}
	return names
}

func TestTopSkills_Role(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{Role: Exactly("Data Analyst")})
	require.NoError(t, err)

	assert.Equal(t, []SkillShare{
		{Skill: "excel", JobTitles: 1, Percent: 33.33},
		{Skill: "python", JobTitles: 1, Percent: 33.33},
		{Skill: "sql", JobTitles: 2, Percent: 66.67},
	}, got)
}

func TestTopSkills_RoleAndType(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{
		Role:      Exactly("Data Analyst"),
		SkillType: Exactly("programming"),
	})
	require.NoError(t, err)

	// percent is relative to the filtered subset, not the whole role
	assert.Equal(t, []SkillShare{
		{Skill: "python", JobTitles: 1, Percent: 50},
		{Skill: "sql", JobTitles: 2, Percent: 100},
	}, got)
}

func TestTopSkills_NoFilters(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"aws", "excel", "python", "sql"}, skillNames(got))
	assert.Equal(t, 50.0, got[3].Percent)
}

func TestTopSkills_TopN(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{Role: Exactly("Data Analyst"), TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"excel", "sql"}, skillNames(got))
}

func TestTopSkills_ZeroTotal(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{Role: Exactly("Astronaut")})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopSkills_MinPercent(t *testing.T) {
	svc := skillFixture(t)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{
		Role:       Exactly("Data Analyst"),
		MinPercent: Exactly(50.0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sql"}, skillNames(got))

	got, err = svc.TopSkills(context.Background(), TopSkillsParams{
		Role:       Exactly("Data Analyst"),
		MinPercent: Exactly(0.0),
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestTopSkills_OneInTenThousandExcluded(t *testing.T) {
	s := newTestStore(t)
	rows := make([][]any, 0, 10001)
	for i := 0; i < 10000; i++ {
		rows = append(rows, []any{"X", "common", fmt.Sprintf("title-%05d", i), "programming", 1})
	}
	rows = append(rows, []any{"X", "rare", "title-00000", "programming", 1})
	put(t, s, store.RelTopSkills, rows)
	svc := newTestService(t, s)

	got, err := svc.TopSkills(context.Background(), TopSkillsParams{
		Role:       Exactly("X"),
		MinPercent: Exactly(0.05),
	})
	require.NoError(t, err)
	assert.Equal(t, []SkillShare{{Skill: "common", JobTitles: 10000, Percent: 100}}, got)
}

func TestRankSkills_PercentBoundsAndOrder(t *testing.T) {
	var rows []store.Row
	for i := 0; i < 40; i++ {
		for j := 0; j <= i%7; j++ {
			rows = append(rows, store.Row{
				"skills":    fmt.Sprintf("skill-%02d", i),
				"job_title": fmt.Sprintf("title-%d", (i*j)%23),
			})
		}
	}

	got := rankSkills(rows, TopSkillsParams{MinPercent: Exactly(0.0)})
	require.Len(t, got, DefaultTopN)
	for i, sh := range got {
		assert.GreaterOrEqual(t, sh.Percent, 0.0)
		assert.LessOrEqual(t, sh.Percent, 100.0)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Percent, sh.Percent, "ascending by percent")
		}
	}
}

func TestRankSkills_IgnoresEmptyValues(t *testing.T) {
	rows := []store.Row{
		{"skills": "sql", "job_title": "A"},
		{"skills": "sql", "job_title": nil},
		{"skills": nil, "job_title": "B"},
	}
	got := rankSkills(rows, TopSkillsParams{})
	require.Len(t, got, 1)
	// B counts toward the total even though its skill is missing
	assert.Equal(t, SkillShare{Skill: "sql", JobTitles: 1, Percent: 50}, got[0])
}

func TestSkillTypeShares(t *testing.T) {
	got := SkillTypeShares([]aggregate.SkillTypeCount{
		{SkillType: "programming", JobTitleCount: 2},
		{SkillType: "cloud", JobTitleCount: 1},
		{SkillType: "mystery", JobTitleCount: 0},
	})
	require.Len(t, got, 3)
	assert.Equal(t, SkillTypeShare{SkillType: "programming", Label: "Languages", JobTitles: 2, Percent: 66.67}, got[0])
	assert.Equal(t, "Cloud", got[1].Label)
	assert.Equal(t, 33.33, got[1].Percent)
	assert.Equal(t, "mystery", got[2].Label)

	assert.Empty(t, SkillTypeShares(nil))
}

func TestSkillTypeLabel(t *testing.T) {
	assert.Equal(t, "Tools", SkillTypeLabel("analyst_tools"))
	assert.Equal(t, "Frameworks", SkillTypeLabel("webframeworks"))
	assert.Equal(t, "unknown", SkillTypeLabel("unknown"))
}
