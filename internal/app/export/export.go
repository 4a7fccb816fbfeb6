// Package export renders vote logs and their aggregates into downloadable
// files. All three formats share one row projection; only the rendering
// differs.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MichelFaust/MCW-Food-Voting/internal/app/rating"
	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/metrics"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export type")
	ErrDayRequired       = errors.New("date is required")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps the ?type= query value onto a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// File is a fully rendered export, ready to be served as a download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// daySection is one day's worth of export content, shared by all renderers.
type daySection struct {
	Day     string
	Votes   []voteRow
	Summary []summaryRow
}

type Service struct {
	votes        domain.VoteRepository
	storeTimeout time.Duration
}

func NewService(votes domain.VoteRepository, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Service{votes: votes, storeTimeout: storeTimeout}
}

// ExportDay renders a single day.
func (s *Service) ExportDay(ctx context.Context, day string, format Format) (File, error) {
	if day == "" {
		return File{}, ErrDayRequired
	}

	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	votes, err := s.votes.ListByDay(opCtx, day)
	if err != nil {
		return File{}, err
	}

	section := buildSection(day, votes)
	name := fmt.Sprintf("votes_%s.%s", day, format)
	return s.render(name, format, []daySection{section}, false)
}

// ExportAll renders every day, most recent first.
func (s *Service) ExportAll(ctx context.Context, format Format) (File, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	days, err := s.votes.DistinctDays(opCtx)
	if err != nil {
		return File{}, err
	}

	sections := make([]daySection, 0, len(days))
	for _, day := range days {
		votes, err := s.votes.ListByDay(opCtx, day)
		if err != nil {
			return File{}, err
		}
		sections = append(sections, buildSection(day, votes))
	}

	name := fmt.Sprintf("votes_full_export.%s", format)
	return s.render(name, format, sections, true)
}

func (s *Service) render(name string, format Format, sections []daySection, all bool) (File, error) {
	start := time.Now()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = renderJSON(sections, all)
	case FormatCSV:
		data, err = renderCSV(sections, all)
	case FormatXLSX:
		data, err = renderXLSX(sections)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return File{}, err
	}

	metrics.ObserveExportDuration(time.Since(start).Seconds())
	return File{Name: name, ContentType: format.ContentType(), Data: data}, nil
}

func buildSection(day string, votes []domain.Vote) daySection {
	summary := rating.Aggregate(day, votes)
	return daySection{
		Day:     day,
		Votes:   projectRows(votes),
		Summary: summaryRows(summary),
	}
}
