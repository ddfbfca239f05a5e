package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	sqlxlib "github.com/jmoiron/sqlx"
	echoapi "github.com/okapitech/ratiba/apps/api/echo"
	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/core/curriculum"
	"github.com/okapitech/ratiba/core/document"
	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
	digestsvc "github.com/okapitech/ratiba/services/digest"
	emailsvc "github.com/okapitech/ratiba/services/email"
	sendgridsvc "github.com/okapitech/ratiba/services/email/sendgrid"
	"github.com/okapitech/ratiba/services/genai"
	logsvc "github.com/okapitech/ratiba/services/logger"
	"github.com/okapitech/ratiba/storage/database"
	sqlxrepos "github.com/okapitech/ratiba/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	dbx := sqlxlib.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridsvc.NewService(conf.SendgridApiKey, conf.AppName, conf.DefaultFromEmail.Address, logger)
	}

	provSvc := provider.NewService(sqlxrepos.NewProviderRepository(dbx))
	schedSvc := schedule.NewService(sqlxrepos.NewSessionRepository(dbx), provSvc, mailSvc, logger)
	currSvc := curriculum.NewService(sqlxrepos.NewCurriculumRepository(dbx), logger)
	lessonSvc := lesson.NewService(sqlxrepos.NewLessonRepository(dbx), logger)
	orch := lesson.NewOrchestrator(genai.NewClient(conf, logger), lessonSvc, logger)
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(dbx), logger)
	docSvc := document.NewService(sqlxrepos.NewDocumentRepository(dbx), logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Weekly Digest Cron

	if conf.DigestCronEnabled {
		digest := digestsvc.NewService(schedSvc, provSvc, mailSvc, logger)
		if err = digest.Start(); err != nil {
			logger.Fatal(fmt.Sprintf("starting digest cron: %v", err), err)
		}
		defer digest.Stop()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Logger:        logger,
			ProviderSvc:   provSvc,
			ScheduleSvc:   schedSvc,
			CurriculumSvc: currSvc,
			LessonSvc:     lessonSvc,
			Orchestrator:  orch,
			AttendanceSvc: attSvc,
			DocumentSvc:   docSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
