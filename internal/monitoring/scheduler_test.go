package monitoring

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64][][]byte
}

func (n *recordingNotifier) SendToUser(userID int64, message []byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[int64][][]byte)
	}
	n.sent[userID] = append(n.sent[userID], message)
	return true
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 23, 59, 0, 0, time.UTC)
	return &t
}

func TestDeadlineScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "sched.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := services.NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	conferences := services.NewConferenceService(db)
	events := services.NewEventService(db)

	alice, err := users.CreateUser(ctx, services.SignUpInput{Username: "alice", Email: "alice@example.com", Password: "pw", Interests: [3]string{"learning"}})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, services.SignUpInput{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	now := time.Date(2030, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, c := range []models.Conference{
		{Name: "Machine Learning Summit", Acronym: "MLS", StartDate: time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC), PaperDeadline: day(2030, 3, 3)},
		{Name: "Deep Learning Days", StartDate: time.Date(2030, 9, 1, 9, 0, 0, 0, time.UTC), PaperDeadline: day(2030, 8, 1)},
		{Name: "Learning Past", StartDate: time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC), PaperDeadline: day(2030, 2, 1)},
	} {
		_, err := conferences.CreateConference(ctx, c)
		require.NoError(t, err)
	}

	notifier := &recordingNotifier{}
	sched, err := NewDeadlineScheduler("0 8 * * *", 30, users, services.NewRecommendationService(users, conferences), events, notifier)
	require.NoError(t, err)

	sent, err := sched.RunOnce(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "only the deadline inside the window is reported")
	require.Len(t, notifier.sent[alice.ID], 1)
	assert.Len(t, notifier.sent, 1, "users without interests receive nothing")

	var msg struct {
		Action  string       `json:"action"`
		Payload models.Event `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(notifier.sent[alice.ID][0], &msg))
	assert.Equal(t, "notification", msg.Action)
	assert.Equal(t, DeadlineEventType, msg.Payload.Type)
	assert.Equal(t, "warning", msg.Payload.Level)
	assert.Equal(t, "Paper deadline for MLS is in 2 days (Mar 3, 2030).", msg.Payload.Message)

	// A second pass finds the same deadline already reported.
	sent, err = sched.RunOnce(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, notifier.sent[alice.ID], 1)

	recent, err := events.GetRecentEvents(ctx, &alice.ID, 10)
	require.NoError(t, err)
	var deadlines int
	for _, e := range recent {
		if e.Type == DeadlineEventType {
			deadlines++
		}
	}
	assert.Equal(t, 1, deadlines)
}

func TestNewDeadlineScheduler_InvalidCron(t *testing.T) {
	_, err := NewDeadlineScheduler("not a cron", 30, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestDeadlineMessage(t *testing.T) {
	now := time.Date(2030, 1, 10, 22, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		deadline *time.Time
		want     string
	}{
		{"today", day(2030, 1, 10), "Paper deadline for ICML is today (Jan 10, 2030)."},
		{"tomorrow", day(2030, 1, 11), "Paper deadline for ICML is tomorrow (Jan 11, 2030)."},
		{"later", day(2030, 1, 20), "Paper deadline for ICML is in 10 days (Jan 20, 2030)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := models.Conference{Name: "International Conference on Machine Learning", Acronym: "ICML", PaperDeadline: tt.deadline}
			assert.Equal(t, tt.want, deadlineMessage(conf, now))
		})
	}
	assert.Equal(t, "info", deadlineLevel(now, *day(2030, 1, 20)))
}

func TestDeadlineScheduler_StopEndsRun(t *testing.T) {
	sched, err := NewDeadlineScheduler("0 8 * * *", 30, emptyUsers{}, nil, nil, &recordingNotifier{})
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		sched.Run()
		close(finished)
	}()
	sched.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

type emptyUsers struct{}

func (emptyUsers) ListUsers(context.Context) ([]models.User, error) { return nil, nil }
