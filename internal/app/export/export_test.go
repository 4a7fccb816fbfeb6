package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// fixedVoteRepo serves a canned vote log; days come back in the order given,
// mirroring the store's most-recent-first contract.
type fixedVoteRepo struct {
	byDay map[string][]domain.Vote
	days  []string
}

func (r *fixedVoteRepo) Append(context.Context, domain.Vote) error { return nil }

func (r *fixedVoteRepo) ListByDay(_ context.Context, day string) ([]domain.Vote, error) {
	return r.byDay[day], nil
}

func (r *fixedVoteRepo) ListAll(context.Context) ([]domain.Vote, error) { return nil, nil }

func (r *fixedVoteRepo) DistinctDays(context.Context) ([]string, error) { return r.days, nil }

func (r *fixedVoteRepo) Clear(context.Context) error { return nil }

func testRepo() *fixedVoteRepo {
	return &fixedVoteRepo{
		days: []string{"2024-01-11", "2024-01-10"},
		byDay: map[string][]domain.Vote{
			"2024-01-10": {
				{ID: "01A", Name: "Anna", Role: domain.RoleStudent, Rating: 3, Adjustments: []string{"Gut so"}, Day: "2024-01-10"},
				{ID: "01B", Name: "Bernd", Role: domain.RoleTeacher, Rating: 0, Adjustments: []string{"Weniger salzig", "Schärfer"}, Day: "2024-01-10"},
			},
			"2024-01-11": {
				{ID: "01C", Name: "Clara", Role: domain.RoleGuest, Rating: 2, Day: "2024-01-11"},
			},
		},
	}
}

func TestParseFormat_WhenKnown_ShouldReturnFormat(t *testing.T) {
	for _, raw := range []string{"json", "csv", "xlsx"} {
		format, err := ParseFormat(raw)
		require.NoError(t, err)
		assert.Equal(t, Format(raw), format)
	}
}

func TestParseFormat_WhenUnknown_ShouldReturnUnsupported(t *testing.T) {
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportDay_WhenDayMissing_ShouldReturnError(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	_, err := service.ExportDay(context.Background(), "", FormatJSON)
	assert.ErrorIs(t, err, ErrDayRequired)
}

func TestExportDay_WhenJSON_ShouldCarryVotesAndSummary(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportDay(context.Background(), "2024-01-10", FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "votes_2024-01-10.json", file.Name)
	assert.Equal(t, "application/json; charset=utf-8", file.ContentType)

	var payload struct {
		Day   string `json:"day"`
		Votes []struct {
			Name        string `json:"name"`
			Rating      string `json:"rating"`
			Adjustments string `json:"adjustments"`
		} `json:"votes"`
		Summary []struct {
			Label      string `json:"label"`
			Count      int64  `json:"count"`
			Percentage string `json:"percentage"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(file.Data, &payload))

	assert.Equal(t, "2024-01-10", payload.Day)
	require.Len(t, payload.Votes, 2)
	assert.Equal(t, "Anna", payload.Votes[0].Name)
	assert.Equal(t, "😍 (3)", payload.Votes[0].Rating)
	assert.Equal(t, "Weniger salzig, Schärfer", payload.Votes[1].Adjustments)

	// Four buckets plus the total line.
	require.Len(t, payload.Summary, 5)
	assert.Equal(t, "😡 (0)", payload.Summary[0].Label)
	assert.Equal(t, int64(1), payload.Summary[0].Count)
	assert.Equal(t, "50%", payload.Summary[0].Percentage)
	assert.Equal(t, "Total", payload.Summary[4].Label)
	assert.Equal(t, int64(2), payload.Summary[4].Count)
	assert.Equal(t, "100%", payload.Summary[4].Percentage)
}

func TestExportDay_WhenJSONAndNoVotes_ShouldEmitEmptyListNotNull(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportDay(context.Background(), "2024-02-01", FormatJSON)
	require.NoError(t, err)

	assert.Contains(t, string(file.Data), `"votes": []`)
}

func TestExportDay_WhenCSV_ShouldWriteHeaderVotesBlankAndSummary(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportDay(context.Background(), "2024-01-10", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "votes_2024-01-10.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimRight(string(file.Data), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 9)

	assert.Equal(t, "Name,Rolle,Bewertung,Anpassungen,Datum", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Anna,student,"))
	assert.Contains(t, lines[2], `"Weniger salzig, Schärfer"`)
	assert.Equal(t, "", lines[3], "votes and summary are separated by a blank row")
	assert.Equal(t, "Total,2,100%", lines[len(lines)-1])

	// A single-day export carries no day marker rows.
	assert.NotContains(t, string(file.Data), "===")
}

func TestExportAll_WhenCSV_ShouldMarkEachDaySection(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportAll(context.Background(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "votes_full_export.csv", file.Name)

	content := string(file.Data)
	first := strings.Index(content, "=== 2024-01-11 ===")
	second := strings.Index(content, "=== 2024-01-10 ===")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "days keep the store's most-recent-first order")

	assert.Equal(t, 2, strings.Count(content, "Name,Rolle,Bewertung,Anpassungen,Datum"))
}

func TestExportAll_WhenJSON_ShouldKeyByDay(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportAll(context.Background(), FormatJSON)
	require.NoError(t, err)

	var payload map[string]struct {
		Day   string            `json:"day"`
		Votes []json.RawMessage `json:"votes"`
	}
	require.NoError(t, json.Unmarshal(file.Data, &payload))

	require.Len(t, payload, 2)
	assert.Len(t, payload["2024-01-10"].Votes, 2)
	assert.Len(t, payload["2024-01-11"].Votes, 1)
}

func TestExportDay_WhenXLSX_ShouldBuildSheetNamedAfterDay(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportDay(context.Background(), "2024-01-10", FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, "votes_2024-01-10.xlsx", file.Name)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer workbook.Close()

	require.Equal(t, []string{"2024-01-10"}, workbook.GetSheetList())

	header, err := workbook.GetCellValue("2024-01-10", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", header)

	name, err := workbook.GetCellValue("2024-01-10", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Anna", name)

	// Rows: header (1), two votes (2-3), blank (4), evaluation label (5),
	// summary buckets (6-9), total (10).
	label, err := workbook.GetCellValue("2024-01-10", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Auswertung", label)

	total, err := workbook.GetCellValue("2024-01-10", "A10")
	require.NoError(t, err)
	assert.Equal(t, "Total", total)
}

func TestExportAll_WhenXLSX_ShouldBuildOneSheetPerDay(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	file, err := service.ExportAll(context.Background(), FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, "votes_full_export.xlsx", file.Name)

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"2024-01-11", "2024-01-10"}, workbook.GetSheetList())
}

func TestExportDay_WhenFormatUnknown_ShouldFail(t *testing.T) {
	service := NewService(testRepo(), time.Second)

	_, err := service.ExportDay(context.Background(), "2024-01-10", Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
