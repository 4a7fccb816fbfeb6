package export

import (
	"fmt"
	"strings"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// headerRow labels the vote columns. The app's audience is German, so the
// exported files are too.
var headerRow = []string{"Name", "Rolle", "Bewertung", "Anpassungen", "Datum"}

// evaluationLabel titles the summary block on spreadsheet exports.
const evaluationLabel = "Auswertung"

// voteRow is the per-record projection shared by every format.
type voteRow struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Rating      string `json:"rating"`
	Adjustments string `json:"adjustments"`
	Day         string `json:"day"`
}

// summaryRow is one line of the aggregate block: a bucket each, then the
// total line which always reads 100% regardless of rounding artifacts.
type summaryRow struct {
	Label      string `json:"label"`
	Count      int64  `json:"count"`
	Percentage string `json:"percentage"`
}

func projectRows(votes []domain.Vote) []voteRow {
	rows := make([]voteRow, len(votes))
	for i, vote := range votes {
		label := fmt.Sprintf("%d", int(vote.Rating))
		if vote.Rating.Valid() {
			label = vote.Rating.Label()
		}
		rows[i] = voteRow{
			Name:        vote.Name,
			Role:        string(vote.Role),
			Rating:      label,
			Adjustments: strings.Join(vote.Adjustments, ", "),
			Day:         vote.Day,
		}
	}
	return rows
}

func summaryRows(summary domain.DaySummary) []summaryRow {
	rows := make([]summaryRow, 0, len(domain.Ratings())+1)
	for _, r := range domain.Ratings() {
		rows = append(rows, summaryRow{
			Label:      r.Label(),
			Count:      summary.Counts[r],
			Percentage: fmt.Sprintf("%d%%", summary.Percentages[r]),
		})
	}
	rows = append(rows, summaryRow{
		Label:      "Total",
		Count:      summary.Total,
		Percentage: "100%",
	})
	return rows
}

func (r voteRow) cells() []string {
	return []string{r.Name, r.Role, r.Rating, r.Adjustments, r.Day}
}

func (r summaryRow) cells() []string {
	return []string{r.Label, fmt.Sprintf("%d", r.Count), r.Percentage}
}
