package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/gitrepo"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/netclass"
	"inkwell-cli/internal/report"
	"inkwell-cli/internal/review"
	"inkwell-cli/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps save payloads at 10 MiB.
const maxBodyBytes = 10 << 20

type ServerConfig struct {
	Addr string
	Dir  string

	// AutoPublish commits the data files a while after the last save and
	// pushes when an upstream exists.
	AutoPublish         bool
	AutoPublishDebounce time.Duration

	// Publisher defaults to git against Dir.
	Publisher review.Publisher
	Journal   history.Recorder
	Registry  *prometheus.Registry
	Logger    *log.Logger
}

type Server struct {
	cfg     ServerConfig
	gw      *gateway.Disk
	dirty   *store.Dirty
	flow    *review.Workflow
	journal history.Recorder
	reg     *prometheus.Registry
	metrics *metrics
	auto    *gitrepo.AutoPublisher
	log     *log.Logger
	page    *template.Template
	now     func() time.Time
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}

	gw, err := gateway.NewDisk(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := gw.Ensure(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		gw:      gw,
		dirty:   store.NewDirty(),
		journal: cfg.Journal,
		reg:     cfg.Registry,
		log:     cfg.Logger,
		page:    template.Must(template.New("index").Parse(indexHTML)),
		now:     time.Now,
	}
	if s.journal == nil {
		s.journal = history.Nop
	}
	if s.log == nil {
		s.log = log.New(os.Stderr, "inkwell: ", log.LstdFlags)
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	s.metrics, err = newMetrics(s.reg, s.dirty)
	if err != nil {
		return nil, err
	}

	pub := cfg.Publisher
	if pub == nil {
		pub = review.LocalPublisher{Dir: cfg.Dir, Paths: gateway.Files()}
	}
	s.flow = review.NewWorkflow(pub, s.dirty)

	if cfg.AutoPublish {
		s.auto = gitrepo.NewAutoPublisher(gitrepo.AutoPublisherOpts{
			Dir:      cfg.Dir,
			Paths:    gateway.Files(),
			Debounce: cfg.AutoPublishDebounce,
			Push:     true,
			OnResult: s.onAutoPublish,
		})
	}
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Dirty exposes the unpublished-changes flag.
func (s *Server) Dirty() *store.Dirty { return s.dirty }

// Prime sets the dirty flag from the working tree, so a restart with
// unpublished edits still offers a review.
func (s *Server) Prime(ctx context.Context) {
	d, err := s.flow.Review(ctx)
	if err != nil {
		s.log.Printf("prime dirty state: %v", err)
		return
	}
	if d.HasChanges {
		s.dirty.Mark()
	}
}

// Close stops background publishing.
func (s *Server) Close() {
	if s.auto != nil {
		s.auto.Stop()
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("POST /api/save-json", s.handleSaveJSON)
	mux.HandleFunc("GET /api/git/diff", s.handleDiff)
	mux.HandleFunc("POST /api/git/push", s.localOnly(s.handlePush))
	mux.HandleFunc("POST /api/git/pull", s.localOnly(s.handlePull))
	mux.HandleFunc("GET /api/is-local", s.handleIsLocal)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /api/", s.handleAPINotFound)
	mux.HandleFunc("POST /api/", s.handleAPINotFound)
	mux.HandleFunc("GET /", s.handleIndex)
	return s.metrics.instrument(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	c, err := s.gw.LoadAll(r.Context())
	if err != nil {
		s.log.Printf("load data: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type saveReq struct {
	Filename string          `json:"filename"`
	Data     json.RawMessage `json:"data"`
}

func (s *Server) handleSaveJSON(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Filename) == "" || len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "Missing filename or data")
		return
	}
	if err := gateway.ValidateName(req.Filename); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	err := s.gw.SaveCollection(r.Context(), req.Filename, req.Data)
	s.metrics.observeSave(req.Filename, err)
	s.record(r.Context(), history.Event{Kind: history.KindSave, Resource: req.Filename, OK: err == nil, Detail: errString(err)})
	switch {
	case errors.Is(err, gateway.ErrInvalidData):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Printf("save %s: %v", req.Filename, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.dirty.Mark()
	if s.auto != nil {
		s.auto.Notify()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	d, err := s.flow.Review(ctx)
	if err != nil {
		s.log.Printf("diff: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	res, err := s.flow.Publish(ctx)
	s.finishSync(w, r, history.KindPublish, res, err)
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	res, err := s.flow.Pull(ctx)
	s.finishSync(w, r, history.KindPull, res, err)
}

func (s *Server) finishSync(w http.ResponseWriter, r *http.Request, kind history.Kind, res review.SyncResult, err error) {
	s.metrics.observeGit(string(kind), err)
	ev := history.Event{Kind: kind, OK: err == nil, Detail: res.Message}
	if err != nil {
		var pe *review.PublishError
		if errors.As(err, &pe) {
			ev.Detail = pe.Details()
		}
		if res.Error == "" {
			res.Error = err.Error()
		}
		res.Success = false
		s.log.Printf("%s: %v", kind, err)
	}
	s.record(r.Context(), ev)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIsLocal(w http.ResponseWriter, r *http.Request) {
	isLocal, ip := netclass.FromRequest(r)
	writeJSON(w, http.StatusOK, map[string]any{"isLocal": isLocal, "clientIp": ip})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dirty":         s.dirty.Dirty(),
		"schemaVersion": gateway.SchemaVersion,
	})
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

type indexVM struct {
	Dirty  bool
	Report template.HTML
	Error  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	vm := indexVM{Dirty: s.dirty.Dirty()}
	if c, err := s.gw.LoadAll(r.Context()); err != nil {
		vm.Error = "Failed to load data"
	} else {
		vm.Report = renderMarkdownHTML(report.Markdown(c))
	}
	var b strings.Builder
	if err := s.page.Execute(&b, vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, b.String())
}

// localOnly hides push/pull from clients outside the local network. The
// check mirrors the UI's hidden button; it is not an authentication layer.
func (s *Server) localOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, ip := netclass.FromRequest(r); !ok {
			s.log.Printf("refusing %s from %s", r.URL.Path, ip)
			writeJSON(w, http.StatusForbidden, review.SyncResult{
				Success: false,
				Error:   "Publishing is only available from the local network",
			})
			return
		}
		next(w, r)
	}
}

func (s *Server) onAutoPublish(res gitrepo.AutoResult) {
	ctx := context.Background()
	ev := history.Event{Kind: history.KindPublish, OK: res.Err == nil, Detail: "auto"}
	if res.Err != nil {
		ev.Detail = "auto: " + res.Err.Error()
		s.log.Printf("auto publish: %v", res.Err)
	}
	s.metrics.observeGit("auto", res.Err)
	s.record(ctx, ev)
	if res.Pushed {
		s.dirty.Clear()
	}
}

func (s *Server) record(ctx context.Context, ev history.Event) {
	if err := s.journal.Record(ctx, ev); err != nil {
		s.log.Printf("history: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
