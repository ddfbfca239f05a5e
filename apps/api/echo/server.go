package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/core/curriculum"
	"github.com/okapitech/ratiba/core/document"
	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
)

type (
	ServerDeps struct {
		Logger         core.Logger
		ProviderSvc    provider.ServiceInterface
		ScheduleSvc    *schedule.Service
		CurriculumSvc  *curriculum.Service
		LessonSvc      *lesson.Service
		Orchestrator   *lesson.Orchestrator
		AttendanceSvc  *attendance.Service
		DocumentSvc    *document.Service
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerProviderAPI(v1, jwt, s.deps.ProviderSvc)
	registerScheduleAPI(v1, jwt, s.deps.ScheduleSvc, s.deps.ProviderSvc, s.deps.AttendanceSvc)
	registerCurriculumAPI(v1, jwt, s.deps.CurriculumSvc)
	registerLessonAPI(v1, jwt, s.deps.LessonSvc, s.deps.Orchestrator)
	registerDocumentAPI(v1, jwt, s.deps.DocumentSvc)
}

func (s *Server) Start() {
	addr := fmt.Sprintf("%s:%d", core.Conf.Server.Host, core.Conf.Server.Port)
	if err := s.app.Start(addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

// Errors surfaces fatal server errors to the main goroutine.
func (s *Server) Errors() <-chan error { return s.errs }

// ShutdownSignal delivers SIGINT/SIGTERM, or the internal signal raised when
// an integrity error is caught by the error handler.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s API!", core.Conf.AppName))
}
