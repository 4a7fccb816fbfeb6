package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MichelFaust/MCW-Food-Voting/internal/app/export"
	"github.com/MichelFaust/MCW-Food-Voting/internal/app/rating"
	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/ratelimit"
)

// MockRatingService implements RatingService for handler tests.
type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) SubmitVote(ctx context.Context, req rating.SubmitRequest) (domain.Vote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Vote), args.Error(1)
}

func (m *MockRatingService) Votes(ctx context.Context, day string) ([]domain.Vote, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]domain.Vote), args.Error(1)
}

func (m *MockRatingService) Results(ctx context.Context, day string) (domain.DaySummary, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(domain.DaySummary), args.Error(1)
}

func (m *MockRatingService) LiveResults(ctx context.Context) (domain.DaySummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DaySummary), args.Error(1)
}

func (m *MockRatingService) VoteDates(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRatingService) ClearVotes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingService) VotedNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRatingService) ResetVotedNames(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingService) Guests(ctx context.Context) ([]domain.Guest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Guest), args.Error(1)
}

func (m *MockRatingService) AddGuest(ctx context.Context, name string) (domain.Guest, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Guest), args.Error(1)
}

func (m *MockRatingService) ResetGuests(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingService) Dish(ctx context.Context) (domain.Dish, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Dish), args.Error(1)
}

func (m *MockRatingService) SetDish(ctx context.Context, dish domain.Dish) error {
	args := m.Called(ctx, dish)
	return args.Error(0)
}

// MockExportService implements ExportService for handler tests.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportDay(ctx context.Context, day string, format export.Format) (export.File, error) {
	args := m.Called(ctx, day, format)
	return args.Get(0).(export.File), args.Error(1)
}

func (m *MockExportService) ExportAll(ctx context.Context, format export.Format) (export.File, error) {
	args := m.Called(ctx, format)
	return args.Get(0).(export.File), args.Error(1)
}

func setupAPI(t *testing.T, adminToken string) (*API, *MockRatingService, *MockExportService) {
	ratings := new(MockRatingService)
	exports := new(MockExportService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{}))
	api := New(ratings, exports, logger, adminToken)

	t.Cleanup(func() {
		ratings.AssertExpectations(t)
		exports.AssertExpectations(t)
	})

	return api, ratings, exports
}

// === POST /api/vote ===

func TestHandleVote_WhenValid_ShouldReturn200WithID(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	payload := `{"name":"Anna","role":"student","rating":3,"adjustments":["Gut so"]}`
	ratings.On("SubmitVote", mock.Anything, mock.MatchedBy(func(req rating.SubmitRequest) bool {
		return req.Name == "Anna" && req.Role == domain.RoleStudent && req.Rating == 3
	})).Return(domain.Vote{ID: "01HXXXXXXXXXXXXXXXXXXXXX"}, nil)

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "01HXXXXXXXXXXXXXXXXXXXXX", response["id"])
}

func TestHandleVote_WhenPayloadMalformed_ShouldReturn400(t *testing.T) {
	api, _, _ := setupAPI(t, "")

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(`{"name":broken}`)))
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload\n", w.Body.String())
}

func TestHandleVote_WhenDuplicate_ShouldReturn409(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("SubmitVote", mock.Anything, mock.Anything).Return(domain.Vote{}, domain.ErrDuplicateVote)

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(`{"name":"Anna","role":"student","rating":2}`)))
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response, "error")
}

func TestHandleVote_WhenRatingInvalid_ShouldReturn400(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("SubmitVote", mock.Anything, mock.Anything).Return(domain.Vote{}, rating.ErrInvalidRating)

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(`{"name":"Anna","role":"student","rating":9}`)))
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleVote_WhenRateLimited_ShouldReturn429(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("SubmitVote", mock.Anything, mock.Anything).Return(domain.Vote{}, ratelimit.ErrRateLimitExceeded)

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(`{"name":"Anna","role":"student","rating":2}`)))
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandleVote_WhenXForwardedForPresent_ShouldUseItAsClientIP(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("SubmitVote", mock.Anything, mock.MatchedBy(func(req rating.SubmitRequest) bool {
		return req.ClientIP == "192.168.1.100"
	})).Return(domain.Vote{ID: "01H"}, nil)

	req := httptest.NewRequest("POST", "/api/vote", bytes.NewReader([]byte(`{"name":"Anna","role":"student","rating":2}`)))
	req.Header.Set("X-Forwarded-For", "192.168.1.100")
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleVote_WhenMethodNotPost_ShouldReturn405(t *testing.T) {
	api, _, _ := setupAPI(t, "")

	req := httptest.NewRequest("GET", "/api/vote", nil)
	w := httptest.NewRecorder()

	api.handleVote(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// === GET /api/results ===

func TestHandleResults_WhenSummaryExists_ShouldKeyBucketsBySmiley(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	summary := domain.DaySummary{
		Day:         "2024-01-10",
		Total:       4,
		Counts:      map[domain.Rating]int64{0: 1, 1: 0, 2: 2, 3: 1},
		Percentages: map[domain.Rating]int{0: 25, 1: 0, 2: 50, 3: 25},
	}
	ratings.On("Results", mock.Anything, "2024-01-10").Return(summary, nil)

	req := httptest.NewRequest("GET", "/api/results?date=2024-01-10", nil)
	w := httptest.NewRecorder()

	api.handleResults(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Date        string             `json:"date"`
		Total       int64              `json:"total"`
		Ratings     map[string]int64   `json:"ratings"`
		Percentages map[string]float64 `json:"percentages"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "2024-01-10", response.Date)
	assert.Equal(t, int64(4), response.Total)
	assert.Equal(t, int64(2), response.Ratings["😊"])
	assert.Equal(t, float64(50), response.Percentages["😊"])
	assert.Equal(t, int64(1), response.Ratings["😡"])
}

func TestHandleResults_WhenDayMissing_ShouldReturn400(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("Results", mock.Anything, "").Return(domain.DaySummary{}, rating.ErrDayRequired)

	req := httptest.NewRequest("GET", "/api/results", nil)
	w := httptest.NewRecorder()

	api.handleResults(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLiveResults_ShouldReturnSummary(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	summary := domain.DaySummary{
		Day:         "2024-01-10",
		Total:       1,
		Counts:      map[domain.Rating]int64{0: 0, 1: 0, 2: 0, 3: 1},
		Percentages: map[domain.Rating]int{0: 0, 1: 0, 2: 0, 3: 100},
	}
	ratings.On("LiveResults", mock.Anything).Return(summary, nil)

	req := httptest.NewRequest("GET", "/api/results/live", nil)
	w := httptest.NewRecorder()

	api.handleLiveResults(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(1), response["total"])
}

// === GET/DELETE /api/votes ===

func TestHandleVotes_WhenGet_ShouldReturnVoteListWithDateField(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	votes := []domain.Vote{
		{ID: "01A", Name: "Anna", Role: domain.RoleStudent, Rating: 3, Day: "2024-01-10"},
	}
	ratings.On("Votes", mock.Anything, "2024-01-10").Return(votes, nil)

	req := httptest.NewRequest("GET", "/api/votes?date=2024-01-10", nil)
	w := httptest.NewRecorder()

	api.handleVotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, "Anna", response[0]["name"])
	assert.Equal(t, "2024-01-10", response[0]["date"])
	assert.Equal(t, []any{}, response[0]["adjustments"], "nil adjustments serialize as an empty list")
}

func TestHandleVotes_WhenDeleteWithoutToken_ShouldReturn401(t *testing.T) {
	api, _, _ := setupAPI(t, "secret")

	req := httptest.NewRequest("DELETE", "/api/votes", nil)
	w := httptest.NewRecorder()

	api.handleVotes(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleVotes_WhenDeleteWithToken_ShouldClear(t *testing.T) {
	api, ratings, _ := setupAPI(t, "secret")

	ratings.On("ClearVotes", mock.Anything).Return(nil)

	req := httptest.NewRequest("DELETE", "/api/votes", nil)
	req.Header.Set("X-Admin-Token", "secret")
	w := httptest.NewRecorder()

	api.handleVotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// === GET /api/vote-dates ===

func TestHandleVoteDates_WhenEmpty_ShouldReturnEmptyListNotNull(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("VoteDates", mock.Anything).Return([]string(nil), nil)

	req := httptest.NewRequest("GET", "/api/vote-dates", nil)
	w := httptest.NewRecorder()

	api.handleVoteDates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

// === GET /api/export ===

func TestHandleExportDay_WhenTypeUnknown_ShouldReturn400(t *testing.T) {
	api, _, _ := setupAPI(t, "")

	req := httptest.NewRequest("GET", "/api/export?date=2024-01-10&type=pdf", nil)
	w := httptest.NewRecorder()

	api.handleExportDay(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExportDay_WhenOK_ShouldServeAttachment(t *testing.T) {
	api, _, exports := setupAPI(t, "")

	file := export.File{
		Name:        "votes_2024-01-10.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("Name,Rolle\n"),
	}
	exports.On("ExportDay", mock.Anything, "2024-01-10", export.FormatCSV).Return(file, nil)

	req := httptest.NewRequest("GET", "/api/export?date=2024-01-10&type=csv", nil)
	w := httptest.NewRecorder()

	api.handleExportDay(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="votes_2024-01-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name,Rolle\n", w.Body.String())
}

func TestHandleExportDay_WhenDayMissing_ShouldReturn400(t *testing.T) {
	api, _, exports := setupAPI(t, "")

	exports.On("ExportDay", mock.Anything, "", export.FormatJSON).Return(export.File{}, export.ErrDayRequired)

	req := httptest.NewRequest("GET", "/api/export?type=json", nil)
	w := httptest.NewRecorder()

	api.handleExportDay(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExportAll_WhenOK_ShouldServeAttachment(t *testing.T) {
	api, _, exports := setupAPI(t, "")

	file := export.File{
		Name:        "votes_full_export.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte{0x50, 0x4b},
	}
	exports.On("ExportAll", mock.Anything, export.FormatXLSX).Return(file, nil)

	req := httptest.NewRequest("GET", "/api/export-all?type=xlsx", nil)
	w := httptest.NewRecorder()

	api.handleExportAll(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="votes_full_export.xlsx"`, w.Header().Get("Content-Disposition"))
}

// === /api/voted-names, /api/guests, /api/food ===

func TestHandleVotedNames_WhenGet_ShouldReturnNames(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("VotedNames", mock.Anything).Return([]string{"Anna"}, nil)

	req := httptest.NewRequest("GET", "/api/voted-names", nil)
	w := httptest.NewRecorder()

	api.handleVotedNames(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Anna"]`, w.Body.String())
}

func TestHandleVotedNames_WhenDeleteWithToken_ShouldReset(t *testing.T) {
	api, ratings, _ := setupAPI(t, "secret")

	ratings.On("ResetVotedNames", mock.Anything).Return(nil)

	req := httptest.NewRequest("DELETE", "/api/voted-names", nil)
	req.Header.Set("X-Admin-Token", "secret")
	w := httptest.NewRecorder()

	api.handleVotedNames(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleGuests_WhenPost_ShouldAdd(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("AddGuest", mock.Anything, "Oma Inge").Return(domain.Guest{ID: "01G", Name: "Oma Inge"}, nil)

	req := httptest.NewRequest("POST", "/api/guests", bytes.NewReader([]byte(`{"name":"Oma Inge"}`)))
	w := httptest.NewRecorder()

	api.handleGuests(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, true, response["success"])
}

func TestHandleGuests_WhenGet_ShouldReturnNamesOnly(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("Guests", mock.Anything).Return([]domain.Guest{{ID: "01G", Name: "Oma Inge"}}, nil)

	req := httptest.NewRequest("GET", "/api/guests", nil)
	w := httptest.NewRecorder()

	api.handleGuests(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Oma Inge"]`, w.Body.String())
}

func TestHandleFood_WhenPostWithoutToken_ShouldReturn401(t *testing.T) {
	api, _, _ := setupAPI(t, "secret")

	req := httptest.NewRequest("POST", "/api/food", bytes.NewReader([]byte(`{"name":"Pizza"}`)))
	w := httptest.NewRecorder()

	api.handleFood(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleFood_WhenGet_ShouldReturnDish(t *testing.T) {
	api, ratings, _ := setupAPI(t, "")

	ratings.On("Dish", mock.Anything).Return(domain.Dish{Name: "Käsespätzle", Image: "/img/x.jpg"}, nil)

	req := httptest.NewRequest("GET", "/api/food", nil)
	w := httptest.NewRecorder()

	api.handleFood(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Käsespätzle","image":"/img/x.jpg"}`, w.Body.String())
}

func TestHandleHealthz_ShouldReturnOK(t *testing.T) {
	api, _, _ := setupAPI(t, "")

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	api.handleHealthz(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
