package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func newUser(t *testing.T, svc *UserService, username string, interests ...string) models.User {
	t.Helper()
	var in [3]string
	copy(in[:], interests)
	u, err := svc.CreateUser(context.Background(), SignUpInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "pw-" + username,
		Interests: in,
	})
	require.NoError(t, err)
	return u
}

func newConference(t *testing.T, svc *ConferenceService, c models.Conference) models.Conference {
	t.Helper()
	out, err := svc.CreateConference(context.Background(), c)
	require.NoError(t, err)
	return out
}

func TestConferenceService_CreateGetList(t *testing.T) {
	ctx := context.Background()
	svc := NewConferenceService(setupDB(t))

	later := newConference(t, svc, models.Conference{Name: "Very Large Data Bases", Acronym: "VLDB", Location: "London", StartDate: date(2027, 8, 1)})
	earlier := newConference(t, svc, models.Conference{
		Name:          "  Neural Information Processing Systems ",
		Acronym:       "NeurIPS",
		Location:      "Vancouver",
		StartDate:     date(2027, 3, 10),
		EndDate:       ptr(date(2027, 3, 14)),
		PaperDeadline: ptr(date(2027, 1, 5)),
	})

	assert.Equal(t, "Neural Information Processing Systems", earlier.Name, "name should be trimmed")
	require.NotNil(t, earlier.EndDate)
	assert.True(t, earlier.EndDate.Equal(date(2027, 3, 14)))
	assert.Nil(t, later.EndDate)
	assert.False(t, earlier.CreatedAt.IsZero())

	got, err := svc.GetConference(ctx, earlier.ID)
	require.NoError(t, err)
	assert.Equal(t, "NeurIPS", got.Acronym)
	assert.True(t, got.StartDate.Equal(date(2027, 3, 10)))

	all, err := svc.ListConferences(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, earlier.ID, all[0].ID, "ordered by start date")

	n, err := svc.CountConferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConferenceService_Search(t *testing.T) {
	ctx := context.Background()
	svc := NewConferenceService(setupDB(t))
	newConference(t, svc, models.Conference{Name: "International Conference on Machine Learning", Acronym: "ICML", Location: "Vienna", StartDate: date(2027, 7, 1)})
	newConference(t, svc, models.Conference{Name: "SIGMOD", Acronym: "SIGMOD", Location: "Berlin", StartDate: date(2027, 6, 1)})
	newConference(t, svc, models.Conference{Name: "100% Pure", Acronym: "", Location: "", StartDate: date(2027, 5, 1)})

	tests := []struct {
		query string
		want  []string
	}{
		{"machine", []string{"International Conference on Machine Learning"}},
		{"MACHINE", []string{"International Conference on Machine Learning"}},
		{"icml", []string{"International Conference on Machine Learning"}},
		{"berlin", []string{"SIGMOD"}},
		{"%", []string{"100% Pure"}},
		{"nothing-here", nil},
	}
	for _, tt := range tests {
		got, err := svc.ListConferences(ctx, tt.query)
		require.NoError(t, err)
		var names []string
		for _, c := range got {
			names = append(names, c.Name)
		}
		assert.Equalf(t, tt.want, names, "query %q", tt.query)
	}
}

func TestConferenceService_SetPaperDeadline(t *testing.T) {
	ctx := context.Background()
	svc := NewConferenceService(setupDB(t))
	c := newConference(t, svc, models.Conference{Name: "KDD", StartDate: date(2027, 8, 1)})

	require.NoError(t, svc.SetPaperDeadline(ctx, c.ID, date(2027, 2, 10)))
	got, err := svc.GetConference(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaperDeadline)
	assert.True(t, got.PaperDeadline.Equal(date(2027, 2, 10)))

	assert.True(t, errors.Is(svc.SetPaperDeadline(ctx, 999, date(2027, 2, 10)), ErrNotFound))
}

func TestConferenceService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewConferenceService(setupDB(t))

	_, err := svc.GetConference(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.CreateConference(ctx, models.Conference{Name: " ", StartDate: date(2027, 1, 1)})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.CreateConference(ctx, models.Conference{Name: "No Date"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.CreateConference(ctx, models.Conference{Name: "Backwards", StartDate: date(2027, 2, 1), EndDate: ptr(date(2027, 1, 1))})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	newConference(t, svc, models.Conference{Name: "Dup", StartDate: date(2027, 1, 1)})
	_, err = svc.CreateConference(ctx, models.Conference{Name: "Dup", StartDate: date(2027, 1, 2)})
	assert.True(t, errors.Is(err, ErrConflict))

	inserted, err := svc.CreateConferenceIfAbsent(ctx, models.Conference{Name: "Dup", StartDate: date(2027, 1, 2)})
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = svc.CreateConferenceIfAbsent(ctx, models.Conference{Name: "Fresh", StartDate: date(2027, 1, 2)})
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestUserService_SignUpAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(setupDB(t)).WithBcryptCost(bcrypt.MinCost)

	u, err := svc.CreateUser(ctx, SignUpInput{
		Username:  " alice ",
		Email:     "Alice@Example.com",
		Phone:     "(555) 123-4567",
		Password:  "secret",
		Interests: [3]string{"", "  robotics ", "ai"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "5551234567", u.Phone)
	assert.Equal(t, "robotics", u.Interest1)
	assert.Equal(t, "ai", u.Interest2)
	assert.Empty(t, u.Interest3)
	assert.Empty(t, u.PasswordHash)

	byEmail, err := svc.AuthenticateUser(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Empty(t, byEmail.PasswordHash)

	byName, err := svc.AuthenticateUser(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = svc.AuthenticateUser(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.AuthenticateUser(ctx, "nobody@example.com", "secret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.AuthenticateUser(ctx, "", "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUserService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(setupDB(t)).WithBcryptCost(bcrypt.MinCost)

	_, err := svc.CreateUser(ctx, SignUpInput{Username: "bob", Email: "bob@example.com"})
	assert.True(t, errors.Is(err, ErrInvalidInput), "password required")

	_, err = svc.CreateUser(ctx, SignUpInput{Username: "bob", Email: "not-an-email", Password: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	newUser(t, svc, "bob")
	_, err = svc.CreateUser(ctx, SignUpInput{Username: "bob", Email: "other@example.com", Password: "x"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestUserService_UpdatePasswordAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(setupDB(t)).WithBcryptCost(bcrypt.MinCost)
	u := newUser(t, svc, "carol", "graphs")

	updated, err := svc.UpdateUser(ctx, u.ID, ProfileInput{Username: "carol2", Email: "carol2@example.com", Interests: [3]string{"vision"}})
	require.NoError(t, err)
	assert.Equal(t, "carol2", updated.Username)
	assert.Equal(t, "vision", updated.Interest1)

	err = svc.UpdatePassword(ctx, u.ID, "wrong", "new")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	require.NoError(t, svc.UpdatePassword(ctx, u.ID, "pw-carol", "new"))
	_, err = svc.AuthenticateUser(ctx, "carol2", "new")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.GetUserByID(ctx, u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(svc.DeleteUser(ctx, u.ID), ErrNotFound))

	_, err = svc.UpdateUser(ctx, u.ID, ProfileInput{Username: "x", Email: "x@example.com"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestPaperService(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	confs := NewConferenceService(db)
	papers := NewPaperService(db)

	author := newUser(t, users, "dave")
	c1 := newConference(t, confs, models.Conference{Name: "C1", StartDate: date(2027, 1, 1)})
	c2 := newConference(t, confs, models.Conference{Name: "C2", StartDate: date(2027, 2, 1)})

	p, err := papers.CreatePaper(ctx, models.Paper{Title: " Deep Things ", Abstract: "abs", Type: "short", DueDate: ptr(date(2026, 12, 1)), PersonID: author.ID, ConferenceID: c1.ID})
	require.NoError(t, err)
	assert.Equal(t, "Deep Things", p.Title)
	require.NotNil(t, p.DueDate)

	_, err = papers.CreatePaper(ctx, models.Paper{Title: "Other", Abstract: "abs", PersonID: author.ID, ConferenceID: c2.ID})
	require.NoError(t, err)

	all, err := papers.ListPapers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ofC1, err := papers.ListPapers(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, ofC1, 1)
	assert.Equal(t, p.ID, ofC1[0].ID)

	got, err := papers.GetPaper(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "short", got.Type)

	_, err = papers.GetPaper(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = papers.CreatePaper(ctx, models.Paper{Title: "x", PersonID: author.ID, ConferenceID: c1.ID})
	assert.True(t, errors.Is(err, ErrInvalidInput), "abstract required")

	_, err = papers.CreatePaper(ctx, models.Paper{Title: "x", Abstract: "y", PersonID: 999, ConferenceID: c1.ID})
	assert.True(t, errors.Is(err, ErrInvalidInput), "unknown person")

	_, err = papers.CreatePaper(ctx, models.Paper{Title: "x", Abstract: "y", PersonID: author.ID, ConferenceID: 999})
	assert.True(t, errors.Is(err, ErrInvalidInput), "unknown conference")
}

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	confs := NewConferenceService(db)
	favs := NewFavoriteService(db)

	u := newUser(t, users, "erin")
	a := newConference(t, confs, models.Conference{Name: "A", StartDate: date(2027, 5, 1)})
	b := newConference(t, confs, models.Conference{Name: "B", StartDate: date(2027, 4, 1)})

	require.NoError(t, favs.AddFavorite(ctx, u.ID, a.ID))
	require.NoError(t, favs.AddFavorite(ctx, u.ID, b.ID))
	require.NoError(t, favs.AddFavorite(ctx, u.ID, a.ID), "starring twice is a no-op")

	list, err := favs.ListFavorites(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	assert.True(t, errors.Is(favs.AddFavorite(ctx, u.ID, 999), ErrNotFound))

	require.NoError(t, favs.RemoveFavorite(ctx, u.ID, a.ID))
	assert.True(t, errors.Is(favs.RemoveFavorite(ctx, u.ID, a.ID), ErrNotFound))

	list, err = favs.ListFavorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, users.DeleteUser(ctx, u.ID))
	list, err = favs.ListFavorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "favorites cascade with the user")
}

func TestRecommendationService(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	confs := NewConferenceService(db)
	recs := NewRecommendationService(users, confs)

	now := time.Date(2027, 1, 10, 15, 0, 0, 0, time.UTC)
	newConference(t, confs, models.Conference{Name: "Robotics Summit", StartDate: date(2027, 6, 1), PaperDeadline: ptr(date(2027, 2, 1))})
	newConference(t, confs, models.Conference{Name: "Data Week", Description: "Applied ROBOTICS and AI", StartDate: date(2027, 5, 1), PaperDeadline: ptr(date(2027, 1, 10))})
	newConference(t, confs, models.Conference{Name: "Old Robotics", StartDate: date(2027, 3, 1), PaperDeadline: ptr(date(2027, 1, 9))})
	newConference(t, confs, models.Conference{Name: "Far Robotics", StartDate: date(2027, 9, 1), PaperDeadline: ptr(date(2027, 6, 1))})
	newConference(t, confs, models.Conference{Name: "Gardening", StartDate: date(2027, 4, 1)})

	u := newUser(t, users, "frank", "robotics", "ai")
	none := newUser(t, users, "gina")

	got, err := recs.Recommend(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, r := range got {
		assert.NotEqual(t, "Gardening", r.Name)
		if r.Name == "Data Week" {
			assert.Equal(t, []string{"robotics", "ai"}, r.MatchedInterests)
		}
	}

	empty, err := recs.Recommend(ctx, none.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	deadlines, err := recs.UpcomingDeadlines(ctx, u.ID, now, 30)
	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	assert.Equal(t, "Data Week", deadlines[0].Name, "deadline today is included")
	assert.Equal(t, "Robotics Summit", deadlines[1].Name)

	_, err = recs.Recommend(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEventService(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	events := NewEventService(db)
	u := newUser(t, users, "hank")

	_, err := events.CreateEvent(ctx, "system.start", "info", "started", nil)
	require.NoError(t, err)

	first, created, err := events.CreateEventOnce(ctx, "k1", "deadline.upcoming", "info", "soon", &u.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	_, created, err = events.CreateEventOnce(ctx, "k1", "deadline.upcoming", "info", "soon", &u.ID)
	require.NoError(t, err)
	assert.False(t, created)

	mine, err := events.GetRecentEvents(ctx, &u.ID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "soon", mine[0].Message)
	require.NotNil(t, mine[0].UserID)
	assert.Equal(t, u.ID, *mine[0].UserID)

	system, err := events.GetRecentEvents(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, system, 1)
	assert.Equal(t, "system.start", system[0].Type)
}
