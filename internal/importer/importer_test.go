package importer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/confspotter/confspotter-be/internal/database"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a \n\tb   c ", 0))
	assert.Equal(t, "", CleanText("   ", 10))

	long := strings.Repeat("x", 300)
	got := CleanText(long, 255)
	assert.Len(t, got, 255)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestParseRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		conf, err := ParseRow(map[string]string{
			"source": "wikicfp", "name": "  Intl.   Conf on  Data ", "link": "https://x.org",
			"location": "Oslo", "start_date": "2030-05-01", "end_date": "2030-05-03T18:00:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "Intl. Conf on Data", conf.Name)
		assert.Equal(t, "Oslo", conf.Location)
		assert.Equal(t, "https://x.org", conf.URL)
		assert.True(t, conf.StartDate.Equal(time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)))
		require.NotNil(t, conf.EndDate)
		assert.True(t, conf.EndDate.Equal(time.Date(2030, 5, 3, 18, 0, 0, 0, time.UTC)))
		assert.Equal(t, "Source: wikicfp | Location: Oslo | Link: https://x.org", conf.Description)
	})

	t.Run("year placeholder", func(t *testing.T) {
		conf, err := ParseRow(map[string]string{"name": "Yearly", "year": "2031"})
		require.NoError(t, err)
		assert.True(t, conf.StartDate.Equal(time.Date(2031, 1, 1, 9, 0, 0, 0, time.UTC)))
		assert.True(t, conf.EndDate.Equal(time.Date(2031, 1, 1, 17, 0, 0, 0, time.UTC)))
		assert.Empty(t, conf.Description)
	})

	t.Run("skips", func(t *testing.T) {
		for name, row := range map[string]map[string]string{
			"no name":     {"start_date": "2030-01-01", "end_date": "2030-01-02"},
			"no dates":    {"name": "Dateless"},
			"bad dates":   {"name": "Broken", "start_date": "soon", "end_date": "later"},
			"missing end": {"name": "Half", "start_date": "2030-01-01"},
			"non-numeric": {"name": "Odd", "year": "20xx"},
		} {
			_, err := ParseRow(row)
			assert.True(t, errors.Is(err, ErrSkipRow), name)
		}
	})

	t.Run("description truncated", func(t *testing.T) {
		conf, err := ParseRow(map[string]string{"name": "Long", "year": "2030", "source": strings.Repeat("s", 600)})
		require.NoError(t, err)
		assert.Len(t, conf.Description, 500)
		assert.True(t, strings.HasSuffix(conf.Description, "..."))
	})
}

const sample = `source,name,link,year,location,start_date,end_date
wikicfp,Alpha Conf,https://alpha.org,2030,Rome,2030-04-01,2030-04-03
wikicfp,Alpha Conf,https://alpha.org,2030,Rome,2030-04-01,2030-04-03
wikicfp,,https://nameless.org,2030,,,
conf.io,Beta Summit,,2031,,,
conf.io,Gamma,,,,,
`

func TestImport_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	conferences := services.NewConferenceService(db)

	res, err := New(conferences).Import(ctx, strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2, Skipped: 3}, res)

	n, err := conferences.CountConferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	found, err := conferences.ListConferences(ctx, "rome")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alpha Conf", found[0].Name)

	// Running the same file again imports nothing new.
	res, err = New(conferences).Import(ctx, strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 5, res.Skipped)
}

type failingStore struct{}

func (failingStore) CreateConferenceIfAbsent(context.Context, models.Conference) (bool, error) {
	return false, errors.New("disk full")
}

func TestImport_StoreFailureAborts(t *testing.T) {
	_, err := New(failingStore{}).Import(context.Background(), strings.NewReader(sample))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestImport_RequiresNameColumn(t *testing.T) {
	_, err := New(failingStore{}).Import(context.Background(), strings.NewReader("title,year\nX,2030\n"))
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}
