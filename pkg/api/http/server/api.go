package server

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/internal/utils"
	"github.com/RaythaHQ/raytha-sub006/pkg/api"
	"github.com/RaythaHQ/raytha-sub006/pkg/api/http/common"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

type Server struct {
	opts *api.Options
	svc  api.API
	log  *zap.Logger
}

func NewServer(opts *api.Options, log *zap.Logger) *Server {
	if opts == nil {
		opts = &api.Options{}
	}
	opts.SetDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{opts: opts, log: log.Named("api")}
}

// Handler returns the routes for svc.
func (s *Server) Handler(svc api.API) http.Handler {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_JOBS, s.Jobs).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc(common.API_JOB, s.Job).Methods(http.MethodGet)
	router.HandleFunc(common.API_EVENTS, s.Events).Methods(http.MethodPost)

	if s.opts.Debug {
		s.log.Debug("debug enabled, adding per-request logging middleware")
		router.Use(s.loggingMiddleware)
	}
	return router
}

func (s *Server) ServeForever(ctx context.Context, svc api.API) error {
	httpserver := &http.Server{
		Handler:      s.Handler(svc),
		Addr:         s.opts.Addr,
		WriteTimeout: s.opts.WriteTimeout,
		ReadTimeout:  s.opts.ReadTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", httpserver.Addr))
		errs <- httpserver.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownWait)
	defer cancel()
	err := httpserver.Shutdown(sctx)
	if lerr := <-errs; !stderrs.Is(lerr, http.ErrServerClosed) {
		return lerr
	}
	return err
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getJobs(w, r)
	case http.MethodPost:
		s.createJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	req := &structs.EnqueueRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	resp, err := s.svc.Enqueue(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusCreated, resp)
}

func (s *Server) getJobs(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Jobs(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Debug("listed jobs", zap.String("url", r.URL.String()), zap.Int("items", len(items)))

	s.writeJson(w, http.StatusOK, items)
}

func (s *Server) Job(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !utils.IsValidID(id) {
		http.Error(w, "bad job id", http.StatusBadRequest)
		return
	}

	job, err := s.svc.Job(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, job)
}

func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	evt := &structs.Event{}
	err := unmarshalJson(w, r, evt)
	if err != nil {
		return
	}

	resp, err := s.svc.Dispatch(r.Context(), evt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusAccepted, resp)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := mapError(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("method", r.Method), zap.String("url", r.URL.String()), zap.Error(err))
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) writeJson(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}
