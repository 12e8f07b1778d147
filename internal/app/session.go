// Package app wires the persistence layer, the preference controller and
// the issue list binding into one session scoped to a project.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/issueview/internal/config"
	"github.com/zjrosen/issueview/internal/controller"
	"github.com/zjrosen/issueview/internal/infrastructure/cached"
	"github.com/zjrosen/issueview/internal/infrastructure/sqlite"
	"github.com/zjrosen/issueview/internal/issuelist"
	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/tracing"
	"github.com/zjrosen/issueview/internal/watcher"
)

// Session owns the database and the active project scope. Switching
// projects discards the old scope entirely; nothing carries over.
type Session struct {
	cfg     config.Config
	tracer  trace.Tracer
	db      *sqlite.DB
	source  *sqlite.IssueRepository
	gateway *cached.Gateway

	mu     sync.Mutex
	scope  *scope
	closed bool
}

// scope is everything bound to one project.
type scope struct {
	project     issues.ProjectSummary
	binding     *issuelist.Binding
	controller  *controller.Controller
	stopWatcher context.CancelFunc
}

// Open opens the database and attaches to cfg.Project, or to no project
// when it is empty. A nil tracer records nothing.
func Open(ctx context.Context, cfg config.Config, tracer trace.Tracer) (*Session, error) {
	if tracer == nil {
		tracer = tracing.NoopTracer()
	}

	db, err := sqlite.NewDB(cfg.ResolvedDBPath())
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		tracer:  tracer,
		db:      db,
		source:  db.IssueRepository(),
		gateway: cached.NewInMemoryGateway(db.PreferenceRepository(cfg.User), cfg.Preferences.CacheTTL),
	}

	if _, err := s.SwitchProject(ctx, cfg.Project); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SwitchProject tears down the current scope and attaches to the project
// with the given id or identifier. An empty id detaches from any project.
func (s *Session) SwitchProject(ctx context.Context, idOrIdentifier string) (issues.ProjectSummary, error) {
	var project issues.ProjectSummary
	if idOrIdentifier != "" {
		var err error
		project, err = s.source.Project(ctx, idOrIdentifier)
		if err != nil {
			return issues.ProjectSummary{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return issues.ProjectSummary{}, fmt.Errorf("session closed")
	}

	if s.scope != nil {
		s.scope.close()
		s.scope = nil
	}

	sc, err := s.newScope(ctx, project)
	if err != nil {
		return issues.ProjectSummary{}, err
	}
	s.scope = sc

	log.Info(log.CatApp, "project scope attached",
		"project", project.ID, "user", s.cfg.User, "session", sc.controller.SessionID())
	return project, nil
}

func (s *Session) newScope(ctx context.Context, project issues.ProjectSummary) (*scope, error) {
	binding := issuelist.New(s.source, issuelist.Options{
		Timeout: s.cfg.FetchTimeout,
		Tracer:  s.tracer,
	})
	ctrl := controller.New(s.gateway, binding, controller.Options{
		ProjectID: project.ID,
		Policy:    s.cfg.Preferences.Policy(),
		Debounce:  s.cfg.Preferences.PersistDebounce,
		Timeout:   s.cfg.Preferences.PersistTimeout,
		Tracer:    s.tracer,
	})
	sc := &scope{project: project, binding: binding, controller: ctrl}

	if s.cfg.AutoRefresh && project.ID != "" {
		if err := s.watch(sc); err != nil {
			sc.close()
			return nil, err
		}
	}

	ctrl.Attach(ctx)
	return sc, nil
}

// watch refetches the issue list and forgets the cached preference whenever
// another process writes the database.
func (s *Session) watch(sc *scope) error {
	w, err := watcher.New(watcher.DefaultConfig(s.db.Path()))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	projectID := sc.project.ID
	err = w.Run(ctx, func() {
		log.Debug(log.CatWatcher, "database changed", "project", projectID)
		s.gateway.Invalidate(ctx, projectID)
		sc.binding.Refresh()
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start watcher: %w", err)
	}
	sc.stopWatcher = cancel
	return nil
}

// close stops the watcher, drains pending saves and waits for in-flight
// fetches.
func (sc *scope) close() {
	if sc.stopWatcher != nil {
		sc.stopWatcher()
	}
	sc.controller.Close()
	sc.binding.Close()
}

// Controller returns the preference controller of the active scope, or
// nil after Close.
func (s *Session) Controller() *controller.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope == nil {
		return nil
	}
	return s.scope.controller
}

// Binding returns the issue list binding of the active scope.
func (s *Session) Binding() *issuelist.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope == nil {
		return nil
	}
	return s.scope.binding
}

// Project returns the active project. Its ID is empty when none is
// selected.
func (s *Session) Project() issues.ProjectSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope == nil {
		return issues.ProjectSummary{}
	}
	return s.scope.project
}

// Projects lists every project in the database.
func (s *Session) Projects(ctx context.Context) ([]issues.ProjectSummary, error) {
	return s.source.Projects(ctx)
}

// Remembered loads the remembered preference of any project for the
// session's user without attaching to it.
func (s *Session) Remembered(ctx context.Context, projectID string) (preference.Remembered, error) {
	return s.gateway.Load(ctx, projectID)
}

// Source returns the issue source.
func (s *Session) Source() issues.Source {
	return s.source
}

// DBPath returns the path of the open database.
func (s *Session) DBPath() string {
	return s.db.Path()
}

// Close drains persistence for the active scope and closes the database.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sc := s.scope
	s.scope = nil
	s.mu.Unlock()

	if sc != nil {
		sc.close()
	}
	return s.db.Close()
}
