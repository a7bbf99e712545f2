package query

import (
	"context"
	"math"
	"sort"

	"github.com/blackwell-systems/jobskills/internal/store"
)

// SalaryRow is one role's salary summary. Month is 1-12, or 0 for a row
// re-aggregated across months.
type SalaryRow struct {
	JobTitleShort string
	Month         int
	Count         int
	AvgSalary     float64
	MaxSalary     float64
	MinSalary     float64
}

// Salary returns the per-role, per-month salary summaries, optionally
// restricted to one month.
func (s *Service) Salary(ctx context.Context, month Optional[int]) ([]SalaryRow, error) {
	var filters store.Filters
	if m, ok := month.Get(); ok {
		filters = store.Filters{"month": m}
	}

	rows, err := s.read(ctx, store.RelSalary, filters)
	if err != nil {
		return nil, err
	}

	out := make([]SalaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, SalaryRow{
			JobTitleShort: asString(row, "job_title_short"),
			Month:         asInt(row, "month"),
			Count:         asInt(row, "count"),
			AvgSalary:     asFloat(row, "avg_salary"),
			MaxSalary:     asFloat(row, "max_salary"),
			MinSalary:     asFloat(row, "min_salary"),
		})
	}
	return out, nil
}

// AcrossMonths collapses monthly rows into one row per role: counts are
// summed, maxima and minima taken, and AvgSalary is the unweighted mean of
// the monthly averages. Rows with a zero count are ignored. Roles keep
// their order of first appearance.
func AcrossMonths(rows []SalaryRow) []SalaryRow {
	type acc struct {
		row    SalaryRow
		sumAvg float64
		months int
	}
	pos := make(map[string]int)
	var accs []*acc

	for _, r := range rows {
		if r.Count <= 0 {
			continue
		}
		i, ok := pos[r.JobTitleShort]
		if !ok {
			i = len(accs)
			pos[r.JobTitleShort] = i
			accs = append(accs, &acc{row: SalaryRow{
				JobTitleShort: r.JobTitleShort,
				MaxSalary:     math.Inf(-1),
				MinSalary:     math.Inf(1),
			}})
		}
		a := accs[i]
		a.row.Count += r.Count
		a.sumAvg += r.AvgSalary
		a.months++
		a.row.MaxSalary = math.Max(a.row.MaxSalary, r.MaxSalary)
		a.row.MinSalary = math.Min(a.row.MinSalary, r.MinSalary)
	}

	out := make([]SalaryRow, 0, len(accs))
	for _, a := range accs {
		a.row.AvgSalary = a.sumAvg / float64(a.months)
		out = append(out, a.row)
	}
	return out
}

// TopPaying returns up to n rows ordered by average salary, highest first.
func TopPaying(rows []SalaryRow, n int) []SalaryRow {
	out := make([]SalaryRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgSalary > out[j].AvgSalary
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SalaryStats are the headline figures of a set of salary rows.
type SalaryStats struct {
	TotalJobs int
	AvgSalary float64 // mean of the rows' averages
	MaxSalary float64
	Roles     int
}

// Totals computes SalaryStats over rows.
func Totals(rows []SalaryRow) SalaryStats {
	var st SalaryStats
	if len(rows) == 0 {
		return st
	}
	roles := make(map[string]struct{})
	sum := 0.0
	st.MaxSalary = math.Inf(-1)
	for _, r := range rows {
		st.TotalJobs += r.Count
		sum += r.AvgSalary
		st.MaxSalary = math.Max(st.MaxSalary, r.MaxSalary)
		roles[r.JobTitleShort] = struct{}{}
	}
	st.AvgSalary = sum / float64(len(rows))
	st.Roles = len(roles)
	return st
}
