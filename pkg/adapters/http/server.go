package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/render/html"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultCookie names the cookie carrying the session id.
const DefaultCookie = "arbor_session"

// maxBody caps the size of a request body.
const maxBody = 1 << 20

// updateFunc commits State for one scope: a session or a loaded instance.
type updateFunc func(ctx context.Context, fn func(context.Context, domain.State) (domain.State, error)) error

// scope is what a request resolves to before dispatch.
type scope struct {
	base       string
	title      string
	dispatcher *runtime.Dispatcher
	update     updateFunc
	headless   bool
}

// Server serves the root app under per-browser sessions and every loaded
// instance under /apps/{app_id}.
type Server struct {
	dispatcher *runtime.Dispatcher
	sessions   *session.Manager
	registry   *registry.Registry
	renderer   ports.Renderer

	instanceOpts []runtime.DispatcherOption
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	cookie       string
	title        string
	headless     bool
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry serves the instances of reg under /apps/{app_id}.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithRenderer replaces the default html renderer.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithInstanceOptions configures the dispatchers built for loaded instances.
func WithInstanceOptions(opts ...runtime.DispatcherOption) Option {
	return func(s *Server) {
		s.instanceOpts = append(s.instanceOpts, opts...)
	}
}

// WithGatherer exposes g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCookie sets the session cookie name.
func WithCookie(name string) Option {
	return func(s *Server) {
		s.cookie = name
	}
}

// WithTitle sets the document title of the root app.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithHeadless renders the completion control on the root app's page.
func WithHeadless(headless bool) Option {
	return func(s *Server) {
		s.headless = headless
	}
}

// NewServer creates a server for the root dispatcher. Sessions hold the root
// app's State.
func NewServer(d *runtime.Dispatcher, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		dispatcher: d,
		sessions:   sessions,
		logger:     logging.NewNop(),
		cookie:     DefaultCookie,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		r, err := html.New()
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.routes(r, s.rootScope)
	if s.registry != nil {
		r.Route("/apps/{app_id}", func(r chi.Router) {
			s.routes(r, s.instanceScope)
		})
	}
	return r
}

func (s *Server) routes(r chi.Router, resolve func(http.ResponseWriter, *http.Request) (*scope, error)) {
	h := func(kind domain.RequestKind, param string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sc, err := resolve(w, r)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			req := domain.Request{Kind: kind}
			if param != "" {
				req.Target = chi.URLParam(r, param)
			}
			if kind != domain.RequestLoad {
				r.Body = http.MaxBytesReader(w, r.Body, maxBody)
				if err := r.ParseForm(); err != nil {
					http.Error(w, fmt.Sprintf("invalid form: %v", err), http.StatusBadRequest)
					return
				}
				req.Params = r.Form
			}
			s.dispatch(w, r, sc, req)
		}
	}

	r.Get("/static/arbor.js", static("application/javascript", html.ClientJS()))
	r.Get("/static/arbor.css", static("text/css", html.ClientCSS()))
	r.Get("/", h(domain.RequestLoad, ""))
	r.Post("/update", h(domain.RequestUpdate, ""))
	r.Post("/action/{button_id}", h(domain.RequestAction, "button_id"))
	r.Post("/event/{key}", h(domain.RequestEvent, "key"))
	r.Post("/form/{form_name}", h(domain.RequestFormSubmit, "form_name"))
	r.Post("/toggle/{key}", h(domain.RequestGroupToggle, "key"))
	r.Post("/tab/{key}", h(domain.RequestTabSwitch, "key"))
	r.Post("/submit", h(domain.RequestSubmit, ""))
	r.Post("/toast/dismiss/{toast_id}", h(domain.RequestToastDismiss, "toast_id"))
	r.Post("/theme/{theme_name}", h(domain.RequestThemeSwitch, "theme_name"))
}

// rootScope binds the request to the browser's session, issuing a cookie on
// first contact.
func (s *Server) rootScope(w http.ResponseWriter, r *http.Request) (*scope, error) {
	id := ""
	if c, err := r.Cookie(s.cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return &scope{
		title:      s.title,
		dispatcher: s.dispatcher,
		headless:   s.headless,
		update: func(ctx context.Context, fn func(context.Context, domain.State) (domain.State, error)) error {
			return s.sessions.Update(ctx, id, fn)
		},
	}, nil
}

func (s *Server) instanceScope(_ http.ResponseWriter, r *http.Request) (*scope, error) {
	inst, err := s.registry.Get(chi.URLParam(r, "app_id"))
	if err != nil {
		return nil, err
	}
	return &scope{
		base:       "/apps/" + inst.ID,
		title:      inst.Name,
		dispatcher: runtime.NewDispatcher(runtime.NewEngine(inst.Block), s.instanceOpts...),
		update:     inst.Update,
	}, nil
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, sc *scope, req domain.Request) {
	ctx := r.Context()
	var res *runtime.Result
	err := sc.update(ctx, func(ctx context.Context, state domain.State) (domain.State, error) {
		out, err := sc.dispatcher.Dispatch(ctx, state, req)
		if err != nil {
			return nil, err
		}
		res = out
		if out.Diff == nil {
			return nil, nil
		}
		return out.State, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := ports.View{Tree: res.Tree, State: res.State, Base: sc.base, Title: sc.title, Headless: sc.headless}
	var body string
	switch {
	case res.Err != nil:
		body, err = s.renderer.Diagnostic(ctx, res.Err)
	case res.Scope == runtime.ScopeNone:
		w.WriteHeader(http.StatusNoContent)
		return
	case res.Scope == runtime.ScopeText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(res.Text))
		return
	case res.Scope == runtime.ScopePage:
		body, err = s.renderer.Page(ctx, view)
	case res.Scope == runtime.ScopeTerminal:
		body, err = s.renderer.Terminal(ctx, res.Submitted)
	default:
		body, err = s.renderer.Fragment(ctx, view)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "render failed", "kind", req.Kind, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// fail maps dispatch errors to responses. Callback failures raised while
// rebuilding still produce a 200 diagnostic so the client can splice it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var cbErr *domain.CallbackError
	switch {
	case errors.Is(err, domain.ErrAppNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, runtime.ErrInputTooLarge), errors.Is(err, runtime.ErrInvalidUTF8), errors.Is(err, domain.ErrUnknownTheme):
		s.logger.WarnContext(ctx, "input rejected", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrStateTooLarge):
		s.logger.WarnContext(ctx, "state rejected", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.As(err, &cbErr):
		s.diagnostic(w, r, http.StatusOK, err)
		return
	case errors.Is(err, domain.ErrStructure):
		s.logger.ErrorContext(ctx, "structural error", "path", r.URL.Path, "err", err)
		s.diagnostic(w, r, http.StatusInternalServerError, err)
		return
	}
	s.logger.ErrorContext(ctx, "request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) diagnostic(w http.ResponseWriter, r *http.Request, status int, err error) {
	body, rerr := s.renderer.Diagnostic(r.Context(), err)
	if rerr != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, body)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func static(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}
