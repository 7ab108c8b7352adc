package infra

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
	"paisavest/internal/usecase"
	"paisavest/internal/utils"
)

// SIPScheduler sweeps every auto-invest user once a day and places their
// configured SIP. Schedules run in IST so "daily" matches the market day.
type SIPScheduler struct {
	cron        *cron.Cron
	userRepo    domain.UserRepository
	investments *usecase.InvestmentService
	spec        string
	log         *logrus.Logger
}

// NewSIPScheduler creates a new SIPScheduler
func NewSIPScheduler(userRepo domain.UserRepository, investments *usecase.InvestmentService, spec string, log *logrus.Logger) *SIPScheduler {
	return &SIPScheduler{
		cron:        cron.New(cron.WithLocation(utils.GetLocation())),
		userRepo:    userRepo,
		investments: investments,
		spec:        spec,
		log:         log,
	}
}

// Start registers the daily sweep and starts the scheduler
func (s *SIPScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunSweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.WithField("schedule", s.spec).Info("SIP scheduler started")
	return nil
}

// Stop stops the scheduler gracefully
func (s *SIPScheduler) Stop() {
	s.cron.Stop()
	s.log.Info("SIP scheduler stopped")
}

// RunSweep places the daily SIP for every enabled user. One user's failure
// never blocks the rest; a user whose flags changed since the query is simply
// skipped by the service's own validation.
func (s *SIPScheduler) RunSweep(ctx context.Context) {
	users, err := s.userRepo.GetAutoInvestUsers(ctx)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("SIP sweep: failed to list users")
		return
	}

	placed := 0
	for _, user := range users {
		if _, err := s.investments.ProcessDailySIP(ctx, user.ExternalID); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				continue
			}
			s.log.WithFields(logrus.Fields{
				"external_id": user.ExternalID,
				"error":       err.Error(),
			}).Error("SIP sweep: investment failed")
			continue
		}
		placed++
	}

	s.log.WithFields(logrus.Fields{
		"eligible": len(users),
		"placed":   placed,
	}).Info("SIP sweep complete")
}
