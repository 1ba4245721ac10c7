package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	bugsv1 "github.com/openshift/newbugs/pkg/apis/bugs/v1"
	"github.com/openshift/newbugs/pkg/bugzilla"
)

const shutdownTimeout = 10 * time.Second

// ClientFactory builds a Bugzilla client for one account.
type ClientFactory func(account string) (*bugzilla.Client, error)

// Server exposes new-bug lookups over a small JSON API.
type Server struct {
	listenAddr string
	newClient  ClientFactory
	linker     *bugzilla.Client
	handler    http.Handler
	httpServer *http.Server
}

// New builds the server. HTTP metrics are registered on registerer, which must not be shared with
// another Server.
func New(listenAddr string, newClient ClientFactory, registerer prometheus.Registerer) (*Server, error) {
	linker, err := newClient("")
	if err != nil {
		return nil, err
	}

	s := &Server{
		listenAddr: listenAddr,
		newClient:  newClient,
		linker:     linker,
	}

	mdlw := middleware.New(middleware.Config{
		Recorder: metrics.NewRecorder(metrics.Config{Registry: registerer}),
	})

	router := mux.NewRouter()
	route := func(path string, handler http.HandlerFunc) {
		router.Handle(path, std.Handler(path, mdlw, handler)).Methods(http.MethodGet)
	}
	route("/api/health", s.jsonHealth)
	route("/api/bugs/new", s.jsonNewBugs)
	route("/api/bugs/{id}/link", s.jsonBugLink)
	s.handler = router

	return s, nil
}

// Handler returns the routed API handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens until ctx is cancelled and then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Serving bug API on %s", s.listenAddr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server exited")
	case <-ctx.Done():
	}

	log.Info("shutting down bug API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shut down cleanly")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) jsonHealth(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(http.StatusOK, w, map[string]string{"status": "ok"})
}

func (s *Server) jsonNewBugs(w http.ResponseWriter, req *http.Request) {
	account := req.URL.Query().Get("account")
	if account == "" {
		RespondWithJSON(http.StatusBadRequest, w, map[string]interface{}{"code": http.StatusBadRequest, "message": "account is required"})
		return
	}

	client, err := s.newClient(account)
	if err != nil {
		log.WithError(err).Error("could not build bugzilla client")
		RespondWithJSON(http.StatusInternalServerError, w, map[string]interface{}{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}

	seq, err := client.GetNewBugs(req.Context())
	if err != nil {
		status := http.StatusInternalServerError
		var apiErr *bugzilla.APIError
		if errors.As(err, &apiErr) {
			status = http.StatusBadGateway
		}
		log.WithError(err).WithField("account", account).Warn("could not fetch new bugs")
		RespondWithJSON(status, w, map[string]interface{}{"code": status, "message": err.Error()})
		return
	}

	list := bugsv1.BugList{Bugs: []bugsv1.Bug{}}
	for bug := range seq {
		list.Bugs = append(list.Bugs, bug)
	}
	RespondWithJSON(http.StatusOK, w, list)
}

func (s *Server) jsonBugLink(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	RespondWithJSON(http.StatusOK, w, map[string]string{
		"id":   id,
		"link": s.linker.BugLink(id),
	})
}

// RespondWithJSON writes data as the JSON response body with the given status code.
func RespondWithJSON(statusCode int, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("could not write json response")
	}
}
