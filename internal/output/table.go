// Package output provides terminal output utilities for jobskills.
//
// This package includes:
//   - Table renderers for skill shares, salaries, demand trends, countries and run status
//   - Progress bars and spinners for materialization
//
// Renderers return strings so callers decide where they go. ANSI colors are
// emitted only when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/query"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
	colorCyan  = "\033[36m"
)

// barWidth is the width of a full (100%) bar in the skill chart.
const barWidth = 30

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

func rule(n int) string {
	return strings.Repeat("─", n) + "\n"
}

// RenderSkillTable renders skill shares as a horizontal bar chart in the
// order given.
func RenderSkillTable(shares []query.SkillShare) string {
	if len(shares) == 0 {
		return "No skills found for the selected filters.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-8s %-10s %s\n", "Skill", "Share", "Titles", ""))
	sb.WriteString(rule(70))
	for _, s := range shares {
		sb.WriteString(fmt.Sprintf("%-20s %-8s %-10s %s\n",
			truncate(s.Skill, 20),
			fmt.Sprintf("%.1f%%", s.Percent),
			humanize.Comma(int64(s.JobTitles)),
			colorize(colorCyan, bar(s.Percent))))
	}
	return sb.String()
}

// bar draws a bar proportional to percent (0-100).
func bar(percent float64) string {
	n := int(math.Round(percent / 100 * barWidth))
	if n < 1 && percent > 0 {
		n = 1
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n)
}

// RenderSalaryTable renders salary rows. Rows with Month 0 are shown as
// "all".
func RenderSalaryTable(rows []query.SalaryRow) string {
	if len(rows) == 0 {
		return "No salary data found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-6s %-8s %-12s %-12s %-12s\n",
		"Role", "Month", "Jobs", "Avg", "Max", "Min"))
	sb.WriteString(rule(82))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-28s %-6s %-8s %-12s %-12s %-12s\n",
			truncate(r.JobTitleShort, 28),
			formatMonth(r.Month),
			humanize.Comma(int64(r.Count)),
			FormatSalary(r.AvgSalary),
			FormatSalary(r.MaxSalary),
			FormatSalary(r.MinSalary)))
	}
	return sb.String()
}

// RenderSalaryStats renders the headline figures under a salary table.
func RenderSalaryStats(st query.SalaryStats) string {
	return fmt.Sprintf("Total jobs: %s · Avg salary: %s · Highest salary: %s · Roles: %d\n",
		humanize.Comma(int64(st.TotalJobs)),
		FormatSalary(st.AvgSalary),
		FormatSalary(st.MaxSalary),
		st.Roles)
}

// FormatSalary renders a yearly salary in whole dollars.
func FormatSalary(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "—"
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func formatMonth(m int) string {
	if m < 1 || m > 12 {
		return "all"
	}
	return time.Month(m).String()[:3]
}

// RenderTrendTable renders a demand trend as one row per date with a
// column per skill.
func RenderTrendTable(points []query.TrendPoint) string {
	if len(points) == 0 {
		return "No demand data found for the selected filters.\n"
	}

	var skills []string
	seen := make(map[string]bool)
	for _, p := range points {
		if !seen[p.Skill] {
			seen[p.Skill] = true
			skills = append(skills, p.Skill)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s", "Date"))
	for _, s := range skills {
		sb.WriteString(fmt.Sprintf(" %-12s", truncate(s, 12)))
	}
	sb.WriteString("\n")
	sb.WriteString(rule(12 + 13*len(skills)))

	var (
		current time.Time
		counts  map[string]int
	)
	flush := func() {
		if counts == nil {
			return
		}
		sb.WriteString(current.Format("2006-01-02"))
		sb.WriteString("  ")
		for _, s := range skills {
			cell := colorize(colorGray, "·")
			if n, ok := counts[s]; ok {
				cell = humanize.Comma(int64(n))
			}
			sb.WriteString(fmt.Sprintf(" %-12s", cell))
		}
		sb.WriteString("\n")
	}
	for _, p := range points {
		if counts == nil || !p.Date.Equal(current) {
			flush()
			current = p.Date
			counts = make(map[string]int)
		}
		counts[p.Skill] = p.JobTitles
	}
	flush()
	return sb.String()
}

// RenderCountryTable renders per-country posting counts.
func RenderCountryTable(countries []aggregate.CountryCount) string {
	if len(countries) == 0 {
		return "No country data found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-32s %s\n", "Country", "Jobs"))
	sb.WriteString(rule(44))
	for _, c := range countries {
		sb.WriteString(fmt.Sprintf("%-32s %s\n", truncate(c.Country, 32), humanize.Comma(int64(c.JobCount))))
	}
	return sb.String()
}

// RenderIntro renders the introduction summary: headline figures, top
// roles, skill type shares and the top countries.
func RenderIntro(stats *aggregate.IntroStats, shares []query.SkillTypeShare, topCountries []aggregate.CountryCount) string {
	var sb strings.Builder

	avg := "—"
	if stats.Headline.AvgSalary != nil {
		avg = FormatSalary(*stats.Headline.AvgSalary)
	}
	sb.WriteString(fmt.Sprintf("Total jobs: %s · Avg salary: %s · Locations: %d\n\n",
		humanize.Comma(int64(stats.Headline.TotalJobs)), avg, len(stats.Countries)))

	sb.WriteString("Top roles\n")
	if len(stats.TopRoles) == 0 {
		sb.WriteString("  (none)\n")
	}
	for i, r := range stats.TopRoles {
		sb.WriteString(fmt.Sprintf("  %d. %-28s %s\n", i+1, truncate(r.JobTitleShort, 28), humanize.Comma(int64(r.Count))))
	}

	sb.WriteString("\nSkill types\n")
	if len(shares) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, s := range shares {
		sb.WriteString(fmt.Sprintf("  %-12s %6.2f%%  %s\n", s.Label, s.Percent, colorize(colorCyan, bar(s.Percent))))
	}

	sb.WriteString("\nTop countries\n")
	if len(topCountries) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, c := range topCountries {
		sb.WriteString(fmt.Sprintf("  %-28s %s\n", truncate(c.Country, 28), humanize.Comma(int64(c.JobCount))))
	}
	return sb.String()
}

// RelationStatus describes one relation for the status table.
type RelationStatus struct {
	Relation       string
	Materialized   bool
	Rows           int
	RunID          string
	MaterializedAt time.Time
}

// RenderStatusTable renders materialization status per relation.
func RenderStatusTable(statuses []RelationStatus) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-34s %-10s %-10s %-10s %s\n", "Relation", "State", "Rows", "Run", "Updated"))
	sb.WriteString(rule(86))
	for _, s := range statuses {
		state := colorize(colorRed, "missing")
		rows, run, updated := "—", "—", "—"
		if s.Materialized {
			state = colorize(colorGreen, "ready")
			rows = humanize.Comma(int64(s.Rows))
		}
		if s.RunID != "" {
			run = truncateID(s.RunID)
		}
		if !s.MaterializedAt.IsZero() {
			updated = humanize.Time(s.MaterializedAt)
		}
		sb.WriteString(fmt.Sprintf("%-34s %-10s %-10s %-10s %s\n", s.Relation, state, rows, run, updated))
	}
	return sb.String()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
