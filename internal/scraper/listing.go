package scraper

import (
	"context"
	"encoding/csv"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/confspotter/confspotter-be/internal/importer"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Source is a page that links to individual conference sites.
type Source struct {
	Name string
	URL  string
	// Link texts containing any of these words are site navigation.
	Exclude []string
}

// DefaultSources are the conference indexes of the ACM SIGCHI and SIGPLAN.
var DefaultSources = []Source{
	{
		Name: "SIGCHI",
		URL:  "https://sigchi.org/conferences/",
		Exclude: []string{
			"what is sigchi", "upcoming conference", "conference history", "publications", "ethics and conduct", "policies", "policy",
			"cares", "voting history", "contact us", "membership", "executive committee", "all committees", "chapters", "awards", "guides",
			"blog", "meetings", "announcements", "volunteer history", "open calls", "development fund", "digital library", "join us",
			"calendar", "updates", "application forms", "programs app", "youtube", "home", "about", "news", "events",
		},
	},
	{
		Name: "SIGPLAN",
		URL:  "https://sigplan.org/Conferences",
		Exclude: []string{
			"home", "about", "contact", "news", "conferences", "jobs", "awards", "opentoc", "sigplan", "research highlights",
			"membership", "calendar", "organizers",
		},
	},
}

// Listing is one scraped conference, shaped like an importer CSV row.
type Listing struct {
	Source    string
	Name      string
	Link      string
	Year      string
	StartDate string
	EndDate   string
	Location  string
}

func (l Listing) columns() map[string]string {
	return map[string]string{
		"source":     l.Source,
		"name":       l.Name,
		"link":       l.Link,
		"year":       l.Year,
		"location":   l.Location,
		"start_date": l.StartDate,
		"end_date":   l.EndDate,
	}
}

var labeledLocationRe = regexp.MustCompile(`(?i)\b(location|place|where|venue)[:\s]+([^\n,\r]{3,200})`)

// ListingScraper follows the conference links of index pages and reads
// dates and a location from each conference site.
type ListingScraper struct {
	fetcher *Fetcher
	workers int
}

// NewListingScraper creates a ListingScraper that fetches up to workers
// conference pages at once.
func NewListingScraper(fetcher *Fetcher, workers int) *ListingScraper {
	if workers < 1 {
		workers = 1
	}
	return &ListingScraper{fetcher: fetcher, workers: workers}
}

// Scrape collects and normalizes the listings of every source. A source
// whose index cannot be fetched is logged and skipped.
func (s *ListingScraper) Scrape(ctx context.Context, sources []Source) ([]Listing, error) {
	var all []Listing
	for _, src := range sources {
		log.Info().Str("source", src.Name).Str("url", src.URL).Msg("Fetching conference index")
		listings, err := s.ScrapeSource(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("source", src.Name).Msg("Skipping source")
			continue
		}
		log.Info().Str("source", src.Name).Int("found", len(listings)).Msg("Fetched conferences")
		all = append(all, listings...)
	}
	return Normalize(all), ctx.Err()
}

// ScrapeSource returns the raw listings linked from one index page.
func (s *ListingScraper) ScrapeSource(ctx context.Context, src Source) ([]Listing, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, err
	}
	doc, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	var listings []Listing
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.Join(strings.Fields(a.Text()), " ")
		href, _ := a.Attr("href")
		if utf8.RuneCountInString(text) < 3 || seen[href] || excluded(text, src.Exclude) {
			return
		}
		seen[href] = true

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		link := base.ResolveReference(ref)
		if link.Scheme != "http" && link.Scheme != "https" {
			return
		}
		listings = append(listings, Listing{Source: src.Name, Name: text, Link: link.String()})
	})

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range listings {
		i := i
		g.Go(func() error {
			s.fillDetails(ctx, &listings[i])
			return nil
		})
	}
	_ = g.Wait()
	return listings, nil
}

// fillDetails reads the year, dates and location from the conference
// page. Pages that cannot be fetched leave the details empty.
func (s *ListingScraper) fillDetails(ctx context.Context, l *Listing) {
	doc, err := s.fetcher.Fetch(ctx, l.Link)
	if err != nil {
		log.Debug().Err(err).Str("url", l.Link).Msg("Conference page unavailable")
		return
	}

	if u, err := url.Parse(l.Link); err == nil {
		l.Year = ExtractYear(u.Path)
	}
	if l.Year == "" {
		l.Year = ExtractYear(doc.Find("title").First().Text())
	}

	text := pageText(doc.Selection)
	l.StartDate, l.EndDate = ParseDateRange(text)
	if m := labeledLocationRe.FindStringSubmatch(text); m != nil {
		l.Location = NormalizeLocation(m[2])
	}
}

func excluded(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Normalize cleans names and locations, blanks malformed years and drops
// repeats of the same name, year and link.
func Normalize(listings []Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	seen := make(map[[3]string]bool, len(listings))
	for _, l := range listings {
		l.Name = CleanName(l.Name)
		l.Location = NormalizeLocation(l.Location)
		if !fullYearRe.MatchString(l.Year) {
			l.Year = ""
		}
		key := [3]string{l.Name, l.Year, l.Link}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

// WriteCSV writes listings with the header the importer expects.
func WriteCSV(w io.Writer, listings []Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(importer.Columns); err != nil {
		return err
	}
	for _, l := range listings {
		cols := l.columns()
		record := make([]string, len(importer.Columns))
		for i, name := range importer.Columns {
			record[i] = cols[name]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
