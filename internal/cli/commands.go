package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/pages"
)

const dateLayout = "Jan 2, 2006"

// field is one prompted form input.
type field struct {
	label string
	dst   *string
}

// fill prompts for each field in order, stopping at the first read error.
func (a *App) fill(fields []field) bool {
	for _, f := range fields {
		v, err := prompt(a.reader, a.out, f.label)
		if err != nil {
			return false
		}
		*f.dst = v
	}
	return true
}

func (a *App) signUp(ctx context.Context, _ []string) {
	p := pages.NewSignUpPage(a.api)
	if !a.fill([]field{
		{"Username", &p.Form.Username},
		{"Email", &p.Form.Email},
		{"Phone (optional)", &p.Form.Phone},
	}) {
		return
	}
	var err error
	if p.Form.Password, err = a.readPassword(a.reader, a.out, "Password"); err != nil {
		return
	}
	if p.Form.ConfirmPassword, err = a.readPassword(a.reader, a.out, "Confirm password"); err != nil {
		return
	}
	if !a.fill([]field{
		{"Interest 1", &p.Form.Interests[0]},
		{"Interest 2", &p.Form.Interests[1]},
		{"Interest 3", &p.Form.Interests[2]},
	}) {
		return
	}

	_, _ = p.Submit(ctx)
	a.report(p.Status)
}

func (a *App) login(ctx context.Context, _ []string) {
	p := pages.NewLoginPage(a.api, a.store)
	var err error
	if p.Email, err = prompt(a.reader, a.out, "Email"); err != nil {
		return
	}
	if p.Password, err = a.readPassword(a.reader, a.out, "Password"); err != nil {
		return
	}

	user, err := p.Submit(ctx)
	a.report(p.Status)
	if err != nil {
		return
	}
	a.user = &user
	a.dashboard = pages.NewDashboard(a.api, user.ID)
}

func (a *App) logout(context.Context, []string) {
	if err := a.banner.Logout(); err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.api.SetToken("")
	a.user = nil
	a.dashboard = nil
	a.printf("Logged out.\n")
}

func (a *App) loadDashboard(ctx context.Context) bool {
	if a.dashboard.Conferences != nil {
		return true
	}
	if err := a.dashboard.Load(ctx); err != nil {
		a.report(a.dashboard.Status)
		return false
	}
	return true
}

func (a *App) showDashboard(ctx context.Context, _ []string) {
	d := a.dashboard
	d.Conferences = nil
	if !a.loadDashboard(ctx) {
		return
	}

	a.printf("Total conferences: %d | Starred: %d\n", len(d.Conferences), d.StarredCount())

	a.printf("\nYour Starred Conferences\n")
	starred := d.Starred()
	if len(starred) == 0 {
		a.printf("  You haven't starred any conferences yet.\n")
	}
	for _, c := range starred {
		a.printConferenceLine(c)
	}

	a.printf("\nUpcoming Conferences\n")
	upcoming := d.Upcoming(time.Now())
	if len(upcoming) == 0 {
		a.printf("  No upcoming conferences found.\n")
	}
	for _, c := range upcoming {
		a.printConferenceLine(c)
	}
}

func (a *App) filter(ctx context.Context, args []string) {
	if !a.loadDashboard(ctx) {
		return
	}
	matches := a.dashboard.Filter(strings.Join(args, " "))
	for _, c := range matches {
		a.printConferenceLine(c)
	}
	a.printf("%d conference(s)\n", len(matches))
}

func (a *App) toggleStar(ctx context.Context, args []string) {
	id, ok := a.idArg(args)
	if !ok || !a.loadDashboard(ctx) {
		return
	}
	_ = a.dashboard.ToggleFavorite(ctx, id)
	a.report(a.dashboard.Status)
}

func (a *App) listAll(ctx context.Context, _ []string) {
	_ = a.info.ListAll(ctx)
	a.printConferenceTable()
}

func (a *App) search(ctx context.Context, args []string) {
	a.info.Query = strings.Join(args, " ")
	_ = a.info.Search(ctx)
	a.printConferenceTable()
}

func (a *App) showInfo(ctx context.Context, args []string) {
	id, ok := a.idArg(args)
	if !ok {
		return
	}
	defer a.info.HideDetail()

	if err := a.info.LoadDetail(ctx, id); err != nil {
		a.printf("%s\n", a.info.Message)
		return
	}
	c := a.info.Detail
	a.printf("%s\n", c.Name)
	if c.Acronym != "" {
		a.printf("  Acronym:  %s\n", c.Acronym)
	}
	a.printf("  Location: %s\n", orNA(c.Location))
	a.printf("  Dates:    %s\n", dateRange(*c))
	a.printf("  URL:      %s\n", orNA(c.URL))
	if c.PaperDeadline != nil {
		a.printf("  Deadline: %s\n", c.PaperDeadline.Format(dateLayout))
	}
	if c.Description != "" {
		a.printf("  %s\n", c.Description)
	}

	if err := a.info.LoadPapers(ctx, id); err != nil {
		a.printf("%s\n", a.info.Message)
		return
	}
	a.printf("  Papers: %d\n", len(a.info.Papers))
	for _, p := range a.info.Papers {
		a.printf("    [%d] %s\n", p.ID, p.Title)
	}
}

func (a *App) listPapers(ctx context.Context, _ []string) {
	if err := a.papers.Load(ctx); err != nil {
		a.report(a.papers.Status)
		return
	}
	for _, p := range a.papers.Papers {
		a.printf("[%d] %s - %s (person %d, conference %d)\n", p.ID, p.Title, p.Abstract, p.PersonID, p.ConferenceID)
	}
	a.printf("%d paper(s)\n", len(a.papers.Papers))
}

func (a *App) addPaper(ctx context.Context, _ []string) {
	f := &a.papers.Form
	*f = pages.PaperForm{}
	if a.user != nil {
		f.PersonID = strconv.FormatInt(a.user.ID, 10)
	}

	fields := []field{
		{"Title", &f.Title},
		{"Abstract", &f.Abstract},
		{"Type", &f.Type},
		{"Conference ID", &f.ConferenceID},
	}
	if f.PersonID == "" {
		fields = append(fields, field{"Person ID", &f.PersonID})
	}
	if !a.fill(fields) {
		return
	}

	_, _ = a.papers.Submit(ctx)
	a.report(a.papers.Status)
}

func (a *App) recommend(ctx context.Context, _ []string) {
	recs, err := a.api.Recommendations(ctx, a.user.ID)
	if err != nil {
		a.printf("Error: %s\n", messageOr(err, "Unable to load recommendations."))
		return
	}
	if len(recs) == 0 {
		a.printf("No conferences match your interests yet.\n")
		return
	}
	for _, r := range recs {
		a.printf("[%d] %s (matches: %s)\n", r.ID, r.Name, strings.Join(r.MatchedInterests, ", "))
	}
}

func (a *App) deadlines(ctx context.Context, args []string) {
	days := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.printf("Usage: deadlines [days]\n")
			return
		}
		days = n
	}

	recs, err := a.api.Deadlines(ctx, a.user.ID, days)
	if err != nil {
		a.printf("Error: %s\n", messageOr(err, "Unable to load deadlines."))
		return
	}
	if len(recs) == 0 {
		a.printf("No paper deadlines coming up.\n")
		return
	}
	for _, r := range recs {
		a.printf("%s  [%d] %s\n", r.PaperDeadline.Format(dateLayout), r.ID, r.Name)
	}
}

func (a *App) events(ctx context.Context, _ []string) {
	evs, err := a.api.RecentEvents(ctx, 20)
	if err != nil {
		a.printf("Error: %s\n", messageOr(err, "Unable to load notifications."))
		return
	}
	if len(evs) == 0 {
		a.printf("No notifications.\n")
		return
	}
	for _, e := range evs {
		a.printf("%s  %-7s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Level, e.Message)
	}
}

func (a *App) printConferenceTable() {
	for _, c := range a.info.Conferences {
		a.printf("[%d] %s | %s | %s\n", c.ID, c.Name, orNA(c.Location), dateRange(c))
	}
	if a.info.Message != "" {
		a.printf("%s\n", a.info.Message)
	}
}

func (a *App) printConferenceLine(c models.Conference) {
	mark := " "
	if a.dashboard != nil && a.dashboard.IsStarred(c.ID) {
		mark = "*"
	}
	a.printf("  %s [%d] %s (starts %s)\n", mark, c.ID, c.Name, c.StartDate.Format(dateLayout))
}

func (a *App) idArg(args []string) (int64, bool) {
	if len(args) == 0 {
		a.printf("Usage: <command> <id>\n")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		a.printf("Invalid id: %s\n", args[0])
		return 0, false
	}
	return id, true
}

func dateRange(c models.Conference) string {
	s := c.StartDate.Format(dateLayout)
	if c.EndDate != nil {
		s += " - " + c.EndDate.Format(dateLayout)
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
