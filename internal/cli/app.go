// Package cli is the interactive terminal front end of ConfSpotter.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/confspotter/confspotter-be/internal/client"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/pages"
	"github.com/confspotter/confspotter-be/internal/session"
	"github.com/rs/zerolog/log"
)

// App wires the pages to a terminal.
type App struct {
	api    *client.Client
	store  *session.Store
	reader *bufio.Reader
	out    io.Writer
	user   *models.User

	readPassword func(reader *bufio.Reader, w io.Writer, label string) (string, error)

	dashboard *pages.Dashboard
	info      *pages.ConferenceInfo
	papers    *pages.PaperPage
	banner    *pages.Banner
}

// NewApp creates an App. A previously saved session is restored.
func NewApp(api *client.Client, store *session.Store, in io.Reader, out io.Writer) *App {
	a := &App{
		api:          api,
		store:        store,
		reader:       bufio.NewReader(in),
		out:          out,
		readPassword: terminalPassword,
		info:         pages.NewConferenceInfo(api),
		papers:       pages.NewPaperPage(api),
		banner:       pages.NewBanner(store),
	}

	sess, err := store.Load()
	switch {
	case err == nil:
		api.SetToken(sess.Token)
		a.user = &sess.User
		a.dashboard = pages.NewDashboard(api, sess.User.ID)
	case !errors.Is(err, session.ErrNoSession):
		log.Warn().Err(err).Str("path", store.Path()).Msg("Ignoring unreadable session")
	}
	return a
}

func (a *App) isLoggedIn() bool { return a.user != nil }

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) status() string {
	if a.user == nil {
		return "guest"
	}
	return a.user.Username
}

// Run reads commands until EOF or exit.
func (a *App) Run(ctx context.Context) {
	a.printf("%s - %s (type 'help' for commands)\n", a.banner.Title, a.banner.Tagline)
	a.verifySession(ctx)

	for {
		a.printf("confspotter (%s)> ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			a.printf("\n")
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			a.printf("Bye!\n")
			return
		}
		a.dispatch(ctx, cmd, args)
	}
}

// verifySession drops a restored session the server no longer accepts.
// Other failures keep it; the server may simply be unreachable.
func (a *App) verifySession(ctx context.Context) {
	if a.user == nil {
		return
	}
	user, err := a.api.Me(ctx)
	if err == nil {
		a.user = &user
		return
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		log.Warn().Err(err).Msg("Could not verify saved session")
		return
	}
	if err := a.store.Clear(); err != nil {
		log.Warn().Err(err).Str("path", a.store.Path()).Msg("Failed to clear session")
	}
	a.api.SetToken("")
	a.user = nil
	a.dashboard = nil
	a.printf("Your session has expired. Please log in again.\n")
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) {
	public := map[string]func(context.Context, []string){
		"help":     a.help,
		"signup":   a.signUp,
		"login":    a.login,
		"search":   a.search,
		"all":      a.listAll,
		"info":     a.showInfo,
		"papers":   a.listPapers,
		"addpaper": a.addPaper,
	}
	private := map[string]func(context.Context, []string){
		"logout":    a.logout,
		"dashboard": a.showDashboard,
		"list":      a.filter,
		"star":      a.toggleStar,
		"recommend": a.recommend,
		"deadlines": a.deadlines,
		"events":    a.events,
	}

	if fn, ok := public[cmd]; ok {
		fn(ctx, args)
		return
	}
	if fn, ok := private[cmd]; ok {
		if !a.isLoggedIn() {
			a.printf("Please log in first.\n")
			return
		}
		fn(ctx, args)
		return
	}
	a.printf("Unknown command: %s\n", cmd)
}

func (a *App) help(context.Context, []string) {
	a.printf("Available commands: signup, login, search <text>, all, info <id>, papers, addpaper, exit\n")
	if a.isLoggedIn() {
		a.printf("Signed in: dashboard, list [text], star <id>, recommend, deadlines [days], events, logout\n")
	}
}

// report prints whichever banner a page action left behind.
func (a *App) report(st pages.Status) {
	switch {
	case st.Error != "":
		a.printf("Error: %s\n", st.Error)
	case st.Success != "":
		a.printf("%s\n", st.Success)
	}
}

func messageOr(err error, fallback string) string {
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
