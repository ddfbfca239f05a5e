// Package digest emails every active provider a summary of their upcoming
// week, early Monday morning.
package digest

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
)

// schedule spec: Mondays at 06:00.
const cronSpec = "0 6 * * 1"

var weekdayNames = [schedule.WeekDays]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type Service struct {
	schedSvc *schedule.Service
	provSvc  provider.ServiceInterface
	mailSvc  core.EmailService
	logger   core.Logger

	cron *cron.Cron
}

func NewService(schedSvc *schedule.Service, provSvc provider.ServiceInterface, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		schedSvc: schedSvc,
		provSvc:  provSvc,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Start registers the weekly job and launches the scheduler.
func (svc *Service) Start() error {
	svc.cron = cron.New()
	if _, err := svc.cron.AddFunc(cronSpec, func() { svc.Run(context.Background(), time.Now()) }); err != nil {
		return err
	}
	svc.cron.Start()
	svc.logger.Info("digest: weekly digest scheduled")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (svc *Service) Stop() {
	if svc.cron != nil {
		<-svc.cron.Stop().Done()
	}
}

// Run builds and sends the digest for the week containing ref. Per-provider
// failures are logged and skipped; one bad calendar never blocks the rest.
func (svc *Service) Run(ctx context.Context, ref time.Time) {
	provs, err := svc.provSvc.QueryAll(ctx)
	if err != nil {
		svc.logger.Error("digest: querying providers", err)
		return
	}

	dates := schedule.WeekDates(ref, 0)
	start, end := dates[0], dates[schedule.WeekDays-1]

	var sent int
	for _, prov := range provs {
		if prov.IsActive != nil && !*prov.IsActive {
			continue
		}
		view, err := svc.schedSvc.QueryWeek(ctx, prov, start, end, schedule.ViewMySessions, nil)
		if err != nil {
			svc.logger.Error("digest: querying week", err, prov)
			continue
		}
		if len(view.Sessions) == 0 {
			continue
		}

		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: prov.Name, Address: prov.Email}},
			Subject: fmt.Sprintf("Your week of %s", start.Format("Jan 2")),
			BodyStr: svc.body(prov, dates, view.Sessions),
		})
		sent++
	}
	svc.logger.Info("digest: weekly digest sent", map[string]interface{}{"providers": sent})
}

func (svc *Service) body(prov provider.Provider, dates [schedule.WeekDays]time.Time, sessions []schedule.Session) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "Hi %s,\n\nHere is your schedule for the week of %s:\n", prov.Name, dates[0].Format("January 2"))

	for day := 0; day < schedule.WeekDays; day++ {
		daySessions := make([]schedule.Session, 0, len(sessions))
		for _, s := range sessions {
			if s.DayOfWeek.Valid && s.DayOfWeek.Int == day+1 {
				daySessions = append(daySessions, s)
			}
		}
		blocks := schedule.DayBlocks(daySessions, prov.ID)
		if len(blocks) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s %s\n", weekdayNames[day], dates[day].Format("Jan 2"))
		for _, blk := range blocks {
			name := blk.GroupName
			if blk.Kind == schedule.BlockSession {
				name = blk.Sessions[0].ServiceType
			}
			fmt.Fprintf(b, "  %s-%s  %s (%d student", blk.Start, blk.End, name, len(blk.Sessions))
			if len(blk.Sessions) != 1 {
				b.WriteString("s")
			}
			b.WriteString(")\n")
		}
	}

	fmt.Fprintf(b, "\nOpen %s to review your calendar.\n", core.Conf.FrontendBaseURL)
	return b.String()
}
