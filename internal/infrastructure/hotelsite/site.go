package hotelsite

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	// Members seeds the store; nil uses DefaultMembers.
	Members []Member
	// AccessLog receives one JSON line per request; nil discards them.
	AccessLog io.Writer
}

// Site reproduces the DOM contract of the hotel reservation application.
type Site struct {
	store  *MemoryStore
	pages  map[string]*template.Template
	router *chi.Mux
}

func New(opts Options) (*Site, error) {
	members := opts.Members
	if members == nil {
		members = DefaultMembers
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Site{
		store: NewMemoryStore(members),
		pages: pages,
	}
	s.router = s.routes(accessLogger(opts.AccessLog))
	return s, nil
}

func accessLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = io.Discard
	}
	return zerolog.New(w).With().Timestamp().Str("service", "hotelsite").Logger()
}

func (s *Site) routes(log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(httplog.RequestLogger(log))

	pages := func(r chi.Router) {
		r.Get("/", s.Index)
		r.Get("/index.html", s.Index)
		r.Get("/signup.html", s.SignUpForm)
		r.Post("/signup.html", s.SignUp)
		r.Get("/login.html", s.LoginForm)
		r.Post("/login.html", s.Login)
		r.Post("/logout", s.Logout)
		r.Get("/mypage.html", s.MyPage)
		r.Post("/api/delete", s.DeleteAccount)
		r.Get("/plans.html", s.Plans)
		r.Get("/reserve.html", s.ReserveForm)
		r.Get("/api/bill", s.Bill)
		r.Post("/confirm.html", s.Confirm)
	}

	r.Group(pages)
	r.Route("/ja", pages)
	return r
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func parsePages() (map[string]*template.Template, error) {
	names := []string{"index", "signup", "login", "mypage", "plans", "reserve", "confirm"}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Site) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}
