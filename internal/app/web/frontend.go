// Package web renders the server-side pages: role chooser, name grid, vote
// form, results and the token-gated admin panel.
package web

import (
	"crypto/subtle"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/MichelFaust/MCW-Food-Voting/internal/app/rating"
	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// studentNames and teacherNames are the fixed rosters shown on the name grid.
// Guests come from the roster the admin maintains.
var studentNames = []string{
	"Amalia", "Amelie", "Analena", "Aylin", "Benedikt", "Ben", "Caroline", "Dylan",
	"Elena", "Elli", "Emily", "Emilian", "Emilio", "Emma", "Enya", "Frida",
	"Florian", "Frederik", "Hanna", "Henry", "Ilse", "Jannes", "Jannis", "Jill",
	"Jovan", "Julian", "Justus", "Kayla", "Kacper", "Lars", "Leo", "Leonard",
	"Linus", "Ludwig", "Luise", "Luna", "Luna Fay", "Malik", "Marlene", "Marie",
	"Marius", "Mats", "Maximilian", "Mia", "Mia O.", "Michel", "Mike", "Nilay",
	"Pauline", "Phil", "Richard", "Sasha", "Sofia", "Sonja", "Tim", "Valerian",
}

var teacherNames = []string{
	"Alex", "Anasthasia", "Aide", "Barbara", "Benedikt", "Büsra", "Colin",
	"Daniela", "Elif", "Sibylle", "Sybille", "Raj",
}

// Frontend serves the HTML pages on the same mux as the API.
type Frontend struct {
	templates  *template.Template
	service    *rating.Service
	adminToken string
}

func New(service *rating.Service, adminToken string) (*Frontend, error) {
	if service == nil {
		return nil, fmt.Errorf("web: rating service is required")
	}
	tmpl, err := template.ParseFS(templateFS,
		"templates/layout.gohtml",
		"templates/home.gohtml",
		"templates/voting.gohtml",
		"templates/vote.gohtml",
		"templates/results.gohtml",
		"templates/admin.gohtml",
	)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"head", "foot", "home_body", "voting_body", "vote_body", "results_body", "admin_body"} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("web: template %s not found", name)
		}
	}

	return &Frontend{templates: tmpl, service: service, adminToken: adminToken}, nil
}

func (f *Frontend) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", f.handleHome)
	mux.HandleFunc("/voting", f.handleVoting)
	mux.HandleFunc("/vote", f.handleVote)
	mux.HandleFunc("/results", f.handleResults)
	mux.HandleFunc("/admin", f.handleAdmin)
}

type page struct {
	Title string
	Data  any
}

// renderPage executes one body template; every body wraps itself in the
// shared head/foot defined in layout.gohtml.
func (f *Frontend) renderPage(w http.ResponseWriter, title, body string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := f.templates.ExecuteTemplate(w, body, page{Title: title, Data: data}); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (f *Frontend) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	f.renderPage(w, "Essensbewertung", "home_body", map[string]any{
		"Thanks": r.URL.Query().Get("thanks") == "1",
	})
}

type nameEntry struct {
	Name  string
	Voted bool
}

func (f *Frontend) handleVoting(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if !role.Valid() {
		role = domain.RoleStudent
	}

	var names []string
	switch role {
	case domain.RoleTeacher:
		names = teacherNames
	case domain.RoleGuest:
		guests, err := f.service.Guests(r.Context())
		if err != nil {
			http.Error(w, "guest roster unavailable", http.StatusInternalServerError)
			return
		}
		for _, g := range guests {
			names = append(names, g.Name)
		}
	default:
		names = studentNames
	}

	voted, err := f.service.VotedNames(r.Context())
	if err != nil {
		http.Error(w, "voted names unavailable", http.StatusInternalServerError)
		return
	}
	votedSet := make(map[string]struct{}, len(voted))
	for _, n := range voted {
		votedSet[n] = struct{}{}
	}

	entries := make([]nameEntry, len(names))
	for i, n := range names {
		_, done := votedSet[n]
		entries[i] = nameEntry{Name: n, Voted: done}
	}

	f.renderPage(w, "Wähle deinen Namen", "voting_body", map[string]any{
		"Role":  role,
		"Names": entries,
	})
}

type smileyOption struct {
	Value  int
	Smiley string
}

func (f *Frontend) handleVote(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f.renderVoteForm(w, r, "")
	case http.MethodPost:
		f.submitVoteForm(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *Frontend) renderVoteForm(w http.ResponseWriter, r *http.Request, errMsg string) {
	dish, err := f.service.Dish(r.Context())
	if err != nil {
		http.Error(w, "dish unavailable", http.StatusInternalServerError)
		return
	}
	if dish.Name == "" {
		dish.Name = "Aktuelles Gericht"
	}

	options := make([]smileyOption, 0, len(domain.Ratings()))
	for _, rt := range domain.Ratings() {
		options = append(options, smileyOption{Value: int(rt), Smiley: rt.Smiley()})
	}

	f.renderPage(w, "Bewerten", "vote_body", map[string]any{
		"Name":        r.FormValue("name"),
		"Role":        r.FormValue("role"),
		"Dish":        dish,
		"Smileys":     options,
		"Adjustments": domain.Adjustments,
		"Error":       errMsg,
	})
}

func (f *Frontend) submitVoteForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var ratingValue domain.Rating = -1
	if raw := r.PostFormValue("rating"); raw != "" {
		var parsed int
		if _, err := fmt.Sscanf(raw, "%d", &parsed); err == nil {
			ratingValue = domain.Rating(parsed)
		}
	}

	_, err := f.service.SubmitVote(r.Context(), rating.SubmitRequest{
		Name:        r.PostFormValue("name"),
		Role:        domain.Role(r.PostFormValue("role")),
		Rating:      ratingValue,
		Adjustments: r.PostForm["adjustments"],
		ClientIP:    r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateVote):
			f.renderVoteForm(w, r, "Für diesen Namen wurde heute schon abgestimmt.")
		case errors.Is(err, rating.ErrInvalidRating):
			f.renderVoteForm(w, r, "Bitte wähle eine Bewertung!")
		default:
			f.renderVoteForm(w, r, "Fehler beim Speichern deiner Bewertung.")
		}
		return
	}

	http.Redirect(w, r, "/?thanks=1", http.StatusSeeOther)
}

type summaryLine struct {
	Smiley     string
	Count      int64
	Percentage int
}

func (f *Frontend) handleResults(w http.ResponseWriter, r *http.Request) {
	days, err := f.service.VoteDates(r.Context())
	if err != nil {
		http.Error(w, "vote dates unavailable", http.StatusInternalServerError)
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" && len(days) > 0 {
		day = days[0]
	}

	var (
		summary domain.DaySummary
		lines   []summaryLine
	)
	if day != "" {
		summary, err = f.service.Results(r.Context(), day)
		if err != nil {
			http.Error(w, "results unavailable", http.StatusInternalServerError)
			return
		}
		for _, rt := range domain.Ratings() {
			lines = append(lines, summaryLine{
				Smiley:     rt.Smiley(),
				Count:      summary.Counts[rt],
				Percentage: summary.Percentages[rt],
			})
		}
	}

	f.renderPage(w, "Ergebnisse", "results_body", map[string]any{
		"Days":    days,
		"Day":     day,
		"Total":   summary.Total,
		"Lines":   lines,
		"HasData": day != "",
	})
}

func (f *Frontend) handleAdmin(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	if !f.tokenValid(token) {
		f.renderPage(w, "Admin", "admin_body", map[string]any{"Authenticated": false})
		return
	}

	if r.Method == http.MethodPost {
		f.handleAdminAction(w, r, token)
		return
	}

	dish, err := f.service.Dish(r.Context())
	if err != nil {
		http.Error(w, "dish unavailable", http.StatusInternalServerError)
		return
	}
	guests, err := f.service.Guests(r.Context())
	if err != nil {
		http.Error(w, "guest roster unavailable", http.StatusInternalServerError)
		return
	}
	guestNames := make([]string, len(guests))
	for i, g := range guests {
		guestNames[i] = g.Name
	}

	f.renderPage(w, "Admin", "admin_body", map[string]any{
		"Authenticated": true,
		"Token":         token,
		"Dish":          dish,
		"Guests":        guestNames,
		"Notice":        r.URL.Query().Get("notice"),
	})
}

func (f *Frontend) handleAdminAction(w http.ResponseWriter, r *http.Request, token string) {
	var (
		err    error
		notice string
	)

	switch r.PostFormValue("action") {
	case "set-dish":
		err = f.service.SetDish(r.Context(), domain.Dish{
			Name:  r.PostFormValue("name"),
			Image: r.PostFormValue("image"),
		})
		notice = "Gericht gespeichert"
	case "add-guest":
		_, err = f.service.AddGuest(r.Context(), r.PostFormValue("name"))
		notice = "Gast hinzugefügt"
	case "reset-voted-names":
		err = f.service.ResetVotedNames(r.Context())
		notice = "Namen zurückgesetzt"
	case "reset-guests":
		err = f.service.ResetGuests(r.Context())
		notice = "Gäste zurückgesetzt"
	case "clear-votes":
		err = f.service.ClearVotes(r.Context())
		notice = "Alle Bewertungen gelöscht"
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, "action failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin?token="+url.QueryEscape(token)+"&notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

func (f *Frontend) tokenValid(token string) bool {
	if f.adminToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(f.adminToken)) == 1
}
