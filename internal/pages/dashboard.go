package pages

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
)

// upcomingLimit caps the "Upcoming Conferences" panel.
const upcomingLimit = 3

// Dashboard shows every conference, the user's starred ones and the next
// few to start.
type Dashboard struct {
	Status
	Conferences []models.Conference

	api       DashboardAPI
	userID    int64
	favorites map[int64]bool
}

// NewDashboard creates the dashboard for userID.
func NewDashboard(api DashboardAPI, userID int64) *Dashboard {
	return &Dashboard{api: api, userID: userID, favorites: make(map[int64]bool)}
}

// Load fetches all conferences and the user's starred set.
func (d *Dashboard) Load(ctx context.Context) error {
	d.begin()
	confs, err := d.api.ListConferences(ctx, "")
	if err != nil {
		d.fail("Unable to load conferences.")
		return err
	}
	d.Conferences = confs

	favs, err := d.api.ListFavorites(ctx, d.userID)
	if err != nil {
		d.fail(messageFor(err, "Unable to load starred conferences."))
		return err
	}
	d.favorites = make(map[int64]bool, len(favs))
	for _, c := range favs {
		d.favorites[c.ID] = true
	}

	d.Loading = false
	return nil
}

// Filter returns the conferences whose name contains term, ignoring case.
// An empty term matches everything.
func (d *Dashboard) Filter(term string) []models.Conference {
	needle := strings.ToLower(term)
	out := []models.Conference{}
	for _, c := range d.Conferences {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// IsStarred reports whether the user starred the conference.
func (d *Dashboard) IsStarred(conferenceID int64) bool {
	return d.favorites[conferenceID]
}

// Starred returns the starred conferences in listing order.
func (d *Dashboard) Starred() []models.Conference {
	out := []models.Conference{}
	for _, c := range d.Conferences {
		if d.favorites[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// StarredCount is the number of starred conferences that are listed.
func (d *Dashboard) StarredCount() int {
	return len(d.Starred())
}

// Upcoming returns up to three conferences starting strictly after now,
// soonest first.
func (d *Dashboard) Upcoming(now time.Time) []models.Conference {
	out := []models.Conference{}
	for _, c := range d.Conferences {
		if c.StartDate.After(now) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	if len(out) > upcomingLimit {
		out = out[:upcomingLimit]
	}
	return out
}

// ToggleFavorite stars or unstars a conference. The starred set changes
// before the call returns and is restored if the API rejects it.
func (d *Dashboard) ToggleFavorite(ctx context.Context, conferenceID int64) error {
	starring := !d.favorites[conferenceID]
	d.setStarred(conferenceID, starring)

	d.begin()
	var err error
	if starring {
		err = d.api.AddFavorite(ctx, d.userID, conferenceID)
	} else {
		err = d.api.RemoveFavorite(ctx, d.userID, conferenceID)
	}
	if err != nil {
		d.setStarred(conferenceID, !starring)
		d.fail(messageFor(err, "Unable to update starred conferences."))
		return err
	}

	if starring {
		d.succeed("Conference starred!")
	} else {
		d.succeed("Removed from starred conferences.")
	}
	return nil
}

func (d *Dashboard) setStarred(conferenceID int64, starred bool) {
	if starred {
		d.favorites[conferenceID] = true
	} else {
		delete(d.favorites, conferenceID)
	}
}
