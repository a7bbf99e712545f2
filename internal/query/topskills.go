package query

import (
	"context"
	"sort"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// Defaults for TopSkillsParams.
const (
	DefaultTopN       = 20
	DefaultMinPercent = 0.05
)

// TopSkillsParams selects the skills ranked by TopSkills.
type TopSkillsParams struct {
	Role      Optional[string]
	SkillType Optional[string]

	// TopN caps the result; zero or negative means DefaultTopN.
	TopN int

	// MinPercent drops skills below this share; unset means
	// DefaultMinPercent.
	MinPercent Optional[float64]
}

// SkillShare is the share of distinct job titles that require a skill.
type SkillShare struct {
	Skill     string
	JobTitles int
	Percent   float64 // 0-100, 2 decimals
}

// TopSkills ranks skills by the number of distinct job titles requiring
// them within the filtered subset. Percentages are relative to the distinct
// titles of that same subset. The top N are returned ascending by percent.
func (s *Service) TopSkills(ctx context.Context, p TopSkillsParams) ([]SkillShare, error) {
	filters := store.Filters{}
	if role, ok := p.Role.Get(); ok {
		filters["job_title_short"] = role
	}
	if typ, ok := p.SkillType.Get(); ok {
		filters["type"] = typ
	}

	rows, err := s.read(ctx, store.RelTopSkills, filters)
	if err != nil {
		return nil, err
	}
	return rankSkills(rows, p), nil
}

func rankSkills(rows []store.Row, p TopSkillsParams) []SkillShare {
	topN := p.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	minPercent := p.MinPercent.Or(DefaultMinPercent)

	allTitles := make(map[string]struct{})
	perSkill := make(map[string]map[string]struct{})
	var order []string

	for _, row := range rows {
		title := asString(row, "job_title")
		if title != "" {
			allTitles[title] = struct{}{}
		}
		skill := asString(row, "skills")
		if skill == "" {
			continue
		}
		titles, ok := perSkill[skill]
		if !ok {
			titles = make(map[string]struct{})
			perSkill[skill] = titles
			order = append(order, skill)
		}
		if title != "" {
			titles[title] = struct{}{}
		}
	}

	total := len(allTitles)
	if total == 0 {
		return []SkillShare{}
	}

	ranked := make([]SkillShare, 0, len(order))
	for _, skill := range order {
		n := len(perSkill[skill])
		ranked = append(ranked, SkillShare{
			Skill:     skill,
			JobTitles: n,
			Percent:   aggregate.Round2(float64(n) / float64(total) * 100),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].JobTitles != ranked[j].JobTitles {
			return ranked[i].JobTitles > ranked[j].JobTitles
		}
		return ranked[i].Skill < ranked[j].Skill
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	out := ranked[:0]
	for _, sh := range ranked {
		if sh.Percent >= minPercent {
			out = append(out, sh)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent < out[j].Percent
	})
	return out
}

// SkillTypeLabels maps skill types to their display names.
var SkillTypeLabels = map[string]string{
	"programming":   "Languages",
	"databases":     "Databases",
	"analyst_tools": "Tools",
	"webframeworks": "Frameworks",
	"cloud":         "Cloud",
	"os":            "OS",
	"sync":          "Sync",
	"async":         "Async",
	"other":         "Other",
}

// SkillTypeLabel returns the display name of a skill type, or the type
// itself when it has none.
func SkillTypeLabel(skillType string) string {
	if label, ok := SkillTypeLabels[skillType]; ok {
		return label
	}
	return skillType
}

// SkillTypeShare is a skill type's share of the distribution.
type SkillTypeShare struct {
	SkillType string
	Label     string
	JobTitles int
	Percent   float64
}

// SkillTypeShares converts a skill-type distribution into percentages of
// its total, preserving input order. A zero total yields no shares.
func SkillTypeShares(dist []aggregate.SkillTypeCount) []SkillTypeShare {
	total := 0
	for _, d := range dist {
		total += d.JobTitleCount
	}
	if total == 0 {
		return []SkillTypeShare{}
	}

	out := make([]SkillTypeShare, 0, len(dist))
	for _, d := range dist {
		out = append(out, SkillTypeShare{
			SkillType: d.SkillType,
			Label:     SkillTypeLabel(d.SkillType),
			JobTitles: d.JobTitleCount,
			Percent:   aggregate.Round2(float64(d.JobTitleCount) / float64(total) * 100),
		})
	}
	return out
}
