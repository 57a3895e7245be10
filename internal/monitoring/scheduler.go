package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/confspotter/confspotter-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DeadlineEventType tags events raised for approaching paper deadlines.
const DeadlineEventType = "deadline.upcoming"

// Notifier delivers an encoded message to a user's open connections.
type Notifier interface {
	SendToUser(userID int64, message []byte) bool
}

// UserLister is the slice of the user service the scheduler needs.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// DeadlineScheduler periodically warns users about paper deadlines of
// conferences matching their interests.
type DeadlineScheduler struct {
	users           UserLister
	recommendations services.RecommendationServiceProvider
	eventSvc        services.EventServiceProvider
	notifier        Notifier
	schedule        cron.Schedule
	windowDays      int
	tick            time.Duration
	now             func() time.Time
	done            chan struct{}
}

// NewDeadlineScheduler creates a scheduler that fires on the standard cron
// expression spec and looks windowDays ahead.
func NewDeadlineScheduler(spec string, windowDays int, users UserLister, recommendations services.RecommendationServiceProvider, eventSvc services.EventServiceProvider, notifier Notifier) (*DeadlineScheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline cron expression %q: %w", spec, err)
	}
	return &DeadlineScheduler{
		users:           users,
		recommendations: recommendations,
		eventSvc:        eventSvc,
		notifier:        notifier,
		schedule:        schedule,
		windowDays:      windowDays,
		tick:            time.Minute,
		now:             time.Now,
		done:            make(chan struct{}),
	}, nil
}

// Run starts the scheduler's ticking loop. It runs a pass immediately, then
// whenever the cron schedule comes due, until Stop is called.
func (s *DeadlineScheduler) Run() {
	log.Info().Int("window_days", s.windowDays).Msg("Starting deadline scheduler")
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.runPass()
	next := s.schedule.Next(s.now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping deadline scheduler")
			return
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}
			s.runPass()
			next = s.schedule.Next(now)
		}
	}
}

// Stop halts the scheduler.
func (s *DeadlineScheduler) Stop() {
	close(s.done)
}

func (s *DeadlineScheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := s.RunOnce(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("Deadline scheduler pass failed")
		return
	}
	log.Info().Int("notifications", sent).Msg("Deadline scheduler pass finished")
}

// RunOnce records a notification for every upcoming deadline not already
// reported and pushes it to connected clients. It returns how many new
// notifications were raised.
func (s *DeadlineScheduler) RunOnce(ctx context.Context, now time.Time) (int, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	sent := 0
	for _, user := range users {
		if len(user.Interests()) == 0 {
			continue
		}
		recs, err := s.recommendations.UpcomingDeadlines(ctx, user.ID, now, s.windowDays)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to compute upcoming deadlines")
			continue
		}

		for _, rec := range recs {
			deadline := rec.PaperDeadline.UTC()
			userID := user.ID
			key := fmt.Sprintf("deadline:%d:%d:%s", user.ID, rec.ID, deadline.Format("2006-01-02"))

			event, created, err := s.eventSvc.CreateEventOnce(ctx, key, DeadlineEventType, deadlineLevel(now, deadline), deadlineMessage(rec.Conference, now), &userID)
			if err != nil {
				log.Error().Err(err).Int64("user_id", user.ID).Int64("conference_id", rec.ID).Msg("Failed to record deadline event")
				continue
			}
			if !created {
				continue
			}
			sent++
			s.notifier.SendToUser(user.ID, websocket.NewNotificationMessage(event))
		}
	}
	return sent, nil
}

func daysUntil(now, deadline time.Time) int {
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}

func deadlineLevel(now, deadline time.Time) string {
	if daysUntil(now, deadline) <= 3 {
		return "warning"
	}
	return "info"
}

func deadlineMessage(c models.Conference, now time.Time) string {
	name := c.Name
	if c.Acronym != "" {
		name = c.Acronym
	}
	deadline := c.PaperDeadline.UTC()
	switch d := daysUntil(now, deadline); d {
	case 0:
		return fmt.Sprintf("Paper deadline for %s is today (%s).", name, deadline.Format("Jan 2, 2006"))
	case 1:
		return fmt.Sprintf("Paper deadline for %s is tomorrow (%s).", name, deadline.Format("Jan 2, 2006"))
	default:
		return fmt.Sprintf("Paper deadline for %s is in %d days (%s).", name, d, deadline.Format("Jan 2, 2006"))
	}
}
