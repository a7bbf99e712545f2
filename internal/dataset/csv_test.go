package dataset

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := "job_id,job_title_short,salary_year_avg\n" +
		"1,Data Analyst,100000\n" +
		"2, Data Engineer ,\n" +
		"3\n"

	tbl, err := ReadCSV(strings.NewReader(data), JobsTable)
	require.NoError(t, err)

	assert.Equal(t, JobsTable, tbl.Name)
	assert.Equal(t, []string{"job_id", "job_title_short", "salary_year_avg"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())

	assert.Equal(t, []any{"1", "Data Analyst", "100000"}, tbl.Rows[0])
	assert.Equal(t, []any{"2", " Data Engineer ", nil}, tbl.Rows[1], "empty cell should be nil, text untouched")
	assert.Equal(t, []any{"3", nil, nil}, tbl.Rows[2], "short row should pad with nil")
}

func TestReadCSV_StripsBOMFromHeader(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\ufeffskill_id,skills\n1,sql\n"), SkillsTable)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Index(ColSkillID))
}

func TestReadCSV_Empty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(""), LinksTable)
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns)
	assert.Equal(t, 0, tbl.Len())
}

func TestTableIndex(t *testing.T) {
	tbl := &Table{Columns: []string{"a", "b"}}
	assert.Equal(t, 1, tbl.Index("b"))
	assert.Equal(t, -1, tbl.Index("c"))

	var nilTable *Table
	assert.Equal(t, -1, nilTable.Index("a"))
	assert.Equal(t, 0, nilTable.Len())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVProvider_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "job_postings_fact.csv", "job_id,job_title_short\n1,Data Analyst\n")
	writeFile(t, dir, "skills_dim.csv", "skill_id,skills,type\n10,sql,programming\n")
	writeFile(t, dir, "skills_job_dim.csv", "job_id,skill_id\n1,10\n")

	raw, err := NewCSVProvider(dir).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, raw.Jobs.Len())
	assert.Equal(t, 1, raw.Skills.Len())
	assert.Equal(t, 1, raw.Links.Len())
	assert.Equal(t, SkillsTable, raw.Skills.Name)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "job_postings_fact.csv", "job_id\n1\n")

	_, err := NewCSVProvider(dir).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
