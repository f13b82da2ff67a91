package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MovieCatalog/pkg/kit"
)

// Codes reported in the pirateCode field of the search API. The key and the
// values are kept for compatibility with existing API consumers.
const (
	codeFound         = "TREASURE_FOUND"
	codeNotFound      = "NO_TREASURE_FOUND"
	codeInvalidParams = "INVALID_SEARCH_PARAMS"
	codeSearchError   = "SEARCH_ERROR"
)

const (
	msgWelcome       = "Welcome to the movie catalog. Use the search form to find specific movies."
	msgNoMatches     = "No movies matched those search criteria. Try different terms."
	msgInvalidParams = "Provide at least one search parameter: name, id or genre."
	msgSearchError   = "Something went wrong during the search. Try again later."
)

var errBadID = errors.New("id must be an integer")

type Server struct {
	Catalog *Catalog
	LoadErr error
	Views   *Views
	Log     *zap.Logger
	Metrics *Metrics

	// SearchLimiter throttles the JSON search API per client IP. Nil disables it.
	SearchLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { kit.WriteStatus(w, http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/movies", http.StatusFound)
	})
	r.Get("/genres", s.genres)

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", s.moviesPage)
		r.With(s.searchLimit).Get("/search", s.searchAPI)
		r.Get("/{id}", s.get)
		r.Get("/{id}/details", s.detailsPage)
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) searchLimit(next http.Handler) http.Handler {
	if s.SearchLimiter == nil {
		return next
	}
	return s.SearchLimiter.Middleware(next)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.LoadErr != nil {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog degraded",
			map[string]any{"cause": s.LoadErr.Error()})
		return
	}
	kit.WriteStatus(w, http.StatusOK)
}

func (s *Server) genres(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Genres())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id", map[string]any{"id": raw})
		return
	}

	m, ok := s.Catalog.ByID(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
		return
	}
	kit.WriteJSON(w, http.StatusOK, m)
}

// searchQuery keeps the raw query values so they can be echoed back; nil
// means the parameter was not sent.
type searchQuery struct {
	Name  *string `json:"name"`
	ID    *int64  `json:"id"`
	Genre *string `json:"genre"`
}

func parseSearchQuery(r *http.Request) (searchQuery, error) {
	q := r.URL.Query()

	var sq searchQuery
	if q.Has("name") {
		v := q.Get("name")
		sq.Name = &v
	}
	if q.Has("genre") {
		v := q.Get("genre")
		sq.Genre = &v
	}
	if raw := strings.TrimSpace(q.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return sq, fmt.Errorf("%w: %q", errBadID, raw)
		}
		sq.ID = &id
	}
	return sq, nil
}

func (q searchQuery) criteria() Criteria {
	var c Criteria
	if q.Name != nil {
		c.Name = *q.Name
	}
	if q.ID != nil {
		c.ID = *q.ID
	}
	if q.Genre != nil {
		c.Genre = *q.Genre
	}
	return c
}

type searchResult struct {
	Success  bool        `json:"success"`
	Movies   []Movie     `json:"movies"`
	Count    int         `json:"count"`
	Message  string      `json:"message"`
	Code     string      `json:"pirateCode"`
	Criteria searchQuery `json:"searchCriteria"`
}

type searchFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"pirateCode"`
}

func (s *Server) searchAPI(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log().Error("search failed", zap.Any("panic", rec), zap.String("query", r.URL.RawQuery))
			s.Metrics.ObserveSearch("api", outcomeError)
			kit.WriteJSON(w, http.StatusInternalServerError, searchFailure{
				Message: msgSearchError,
				Code:    codeSearchError,
			})
		}
	}()

	q, err := parseSearchQuery(r)
	if err != nil || !q.criteria().Valid() {
		s.Metrics.ObserveSearch("api", outcomeInvalid)
		kit.WriteJSON(w, http.StatusBadRequest, searchFailure{
			Message: msgInvalidParams,
			Code:    codeInvalidParams,
		})
		return
	}

	movies := s.Catalog.Search(q.criteria())

	res := searchResult{
		Success:  true,
		Movies:   movies,
		Count:    len(movies),
		Message:  foundMessage(len(movies)),
		Code:     codeFound,
		Criteria: q,
	}
	outcome := outcomeFound
	if len(movies) == 0 {
		res.Message = msgNoMatches
		res.Code = codeNotFound
		outcome = outcomeEmpty
	}

	s.Metrics.ObserveSearch("api", outcome)
	kit.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) moviesPage(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		s.Metrics.ObserveSearch("page", outcomeInvalid)
		s.renderError(w, r, http.StatusBadRequest, "Invalid Search", "The movie id must be a whole number.")
		return
	}

	page := moviesPage{
		Title:  "Movies",
		Genres: s.Catalog.Genres(),
	}

	c := q.criteria()
	if c.Valid() {
		page.Movies = s.Catalog.Search(c)
		page.SearchPerformed = true
		page.SearchName = c.Name
		page.SearchGenre = c.Genre
		if q.ID != nil {
			page.SearchID = strconv.FormatInt(*q.ID, 10)
		}
		page.Message = foundMessage(len(page.Movies))
		outcome := outcomeFound
		if len(page.Movies) == 0 {
			page.Message = msgNoMatches
			outcome = outcomeEmpty
		}
		s.Metrics.ObserveSearch("page", outcome)
	} else {
		page.Movies = s.Catalog.All()
		page.Message = msgWelcome
		s.Metrics.ObserveSearch("page", outcomeBrowse)
	}

	s.render(w, r, http.StatusOK, pageMovies, page)
}

func (s *Server) detailsPage(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	m, ok := s.Catalog.ByID(id)
	if err != nil || !ok {
		s.log().Warn("movie not found", zap.String("id", raw))
		s.renderError(w, r, http.StatusNotFound, "Movie Not Found",
			fmt.Sprintf("Movie with ID %s was not found.", raw))
		return
	}

	s.render(w, r, http.StatusOK, pageDetails, detailsPage{Title: m.Title, Movie: m})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, title, msg string) {
	s.render(w, r, status, pageError, errorPage{Title: title, Message: msg})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.Views.Render(w, status, page, data); err != nil {
		s.log().Error("render page failed", zap.String("page", page), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func foundMessage(n int) string {
	if n == 1 {
		return "Found 1 movie matching your search."
	}
	return fmt.Sprintf("Found %d movies matching your search.", n)
}
