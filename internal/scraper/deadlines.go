package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/confspotter/confspotter-be/internal/importer"
	"github.com/rs/zerolog/log"
)

const (
	maxContextLength = 200
	maxCFPLinks      = 20
)

// Deadline is one dated entry found on a call-for-papers page.
type Deadline struct {
	Type      string
	Raw       string
	Date      time.Time
	SourceURL string
	Context   string
}

const paperTypePattern = `abstract|full\s*paper|short\s*paper|poster|demo|workshop|tutorial|camera[-\s]*ready`

var (
	deadlineDateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
		regexp.MustCompile(`(?i)` + monthPattern + `\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthPattern + `\s+\d{4}\b`),
	}

	sectionLineRe = regexp.MustCompile(`(?i)(` + paperTypePattern + `|paper|submission)[:\s]*(.*)$`)

	// Each phrase captures the paper type in group typeGroup and the
	// text holding the date in group 3.
	deadlinePhrases = []struct {
		re        *regexp.Regexp
		typeGroup int
	}{
		{regexp.MustCompile(`(?i)(` + paperTypePattern + `)\s+(deadline|due|submission)[:\s]*([^.\n]{10,50})`), 1},
		{regexp.MustCompile(`(?i)(deadline|due\s*date)[:\s]*(` + paperTypePattern + `)[:\s]*([^.\n]{10,50})`), 2},
		{regexp.MustCompile(`(?i)(submit|submission)\s+(` + paperTypePattern + `)[:\s]*([^.\n]{10,50})`), 2},
	}
)

var (
	sectionKeywords = []string{"important dates", "key dates", "deadlines", "timeline", "schedule"}
	tablePaperTypes = []string{"abstract", "full paper", "short paper", "poster", "demo", "workshop", "tutorial", "camera-ready", "camera ready"}
	cfpLinkKeywords = []string{"call for papers", "cfp", "calls", "submissions", "authors", "submit", "participate", "papers"}
	cfpPaths        = []string{"/%d/calls", "/%d/call-for-papers", "/%d/cfp", "/%d/call", "/%d/participate", "/%d/papers", "/%d/participate/papers"}
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// ExtractDeadlines finds dated paper-type entries in doc: lines under an
// important-dates heading, table rows, and inline sentences such as
// "abstract deadline: May 1, 2026". Entries whose date cannot be parsed
// are dropped.
func ExtractDeadlines(doc *goquery.Document, sourceURL string) []Deadline {
	found := deadlineSet{}

	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		title := strings.ToLower(h.Text())
		if !containsAny(title, sectionKeywords) {
			return
		}
		body := pageText(h.NextUntil(headingSelector))
		for _, line := range strings.Split(body, "\n") {
			m := sectionLineRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			found.add(m[1], firstDate(m[2]), sourceURL, line)
		}
	})

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 2 {
			return
		}
		rowText := strings.Join(cells.Map(func(_ int, c *goquery.Selection) string {
			return strings.TrimSpace(c.Text())
		}), " ")
		lower := strings.ToLower(rowText)
		for _, paperType := range tablePaperTypes {
			if strings.Contains(lower, paperType) {
				found.add(paperType, firstDate(rowText), sourceURL, rowText)
			}
		}
	})

	text := pageText(doc.Selection)
	for _, phrase := range deadlinePhrases {
		for _, m := range phrase.re.FindAllStringSubmatch(text, -1) {
			found.add(m[phrase.typeGroup], firstDate(m[3]), sourceURL, m[0])
		}
	}

	return found.list
}

func firstDate(s string) string {
	for _, re := range deadlineDateRes {
		if m := re.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

type deadlineSet struct {
	list []Deadline
	seen map[string]bool
}

func (s *deadlineSet) add(paperType, raw, sourceURL, snippet string) {
	if raw == "" {
		return
	}
	date, ok := ParseDeadline(raw)
	if !ok {
		return
	}
	s.put(Deadline{
		Type:      normalizeType(paperType),
		Raw:       raw,
		Date:      date,
		SourceURL: sourceURL,
		Context:   importer.CleanText(snippet, maxContextLength),
	})
}

func (s *deadlineSet) merge(ds []Deadline) {
	for _, d := range ds {
		s.put(d)
	}
}

// put keeps the first deadline seen for each type and date.
func (s *deadlineSet) put(d Deadline) {
	key := d.Type + "|" + d.Date.Format(isoDate)
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.list = append(s.list, d)
}

func normalizeType(t string) string {
	t = strings.Join(strings.Fields(strings.ToLower(t)), " ")
	if strings.HasPrefix(t, "camera") {
		return "camera-ready"
	}
	return strings.ReplaceAll(t, "fullpaper", "full paper")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// NextDeadline returns the earliest submission deadline on or after the
// day of now. Camera-ready dates follow acceptance and are ignored.
func NextDeadline(deadlines []Deadline, now time.Time) (Deadline, bool) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	upcoming := make([]Deadline, 0, len(deadlines))
	for _, dl := range deadlines {
		if dl.Type != "camera-ready" && !dl.Date.Before(today) {
			upcoming = append(upcoming, dl)
		}
	}
	if len(upcoming) == 0 {
		return Deadline{}, false
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	return upcoming[0], true
}

// DeadlineScraper gathers deadlines from a conference web site.
type DeadlineScraper struct {
	fetcher *Fetcher
}

// NewDeadlineScraper creates a DeadlineScraper.
func NewDeadlineScraper(fetcher *Fetcher) *DeadlineScraper {
	return &DeadlineScraper{fetcher: fetcher}
}

// Scrape reads the conference home page at link, then every same-site
// page it links to as a call for papers, and the usual CFP paths for
// year. It fails only when no page could be read at all.
func (s *DeadlineScraper) Scrape(ctx context.Context, link string, year int) ([]Deadline, error) {
	base, err := url.Parse(link)
	if err != nil {
		return nil, err
	}

	var (
		found    deadlineSet
		pages    []string
		queued   = map[string]bool{base.String(): true}
		fetched  int
		firstErr error
	)
	enqueue := func(u string) {
		if !queued[u] {
			queued[u] = true
			pages = append(pages, u)
		}
	}

	doc, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		firstErr = err
		log.Debug().Err(err).Str("url", link).Msg("Conference home page unavailable")
	} else {
		fetched++
		found.merge(ExtractDeadlines(doc, link))
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if len(pages) >= maxCFPLinks || !containsAny(strings.ToLower(a.Text()), cfpLinkKeywords) {
				return
			}
			href, _ := a.Attr("href")
			ref, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				return
			}
			target := base.ResolveReference(ref)
			target.Fragment = ""
			if target.Host == base.Host {
				enqueue(target.String())
			}
		})
	}

	root := strings.TrimRight(link, "/")
	for _, p := range cfpPaths {
		enqueue(root + fmt.Sprintf(p, year))
	}

	for _, page := range pages {
		if ctx.Err() != nil {
			return found.list, ctx.Err()
		}
		doc, err := s.fetcher.Fetch(ctx, page)
		if err != nil {
			log.Debug().Err(err).Str("url", page).Msg("Skipping call-for-papers candidate")
			continue
		}
		fetched++
		ds := ExtractDeadlines(doc, page)
		if len(ds) > 0 {
			log.Debug().Str("url", page).Int("deadlines", len(ds)).Msg("Found deadlines")
		}
		found.merge(ds)
	}

	if fetched == 0 {
		return nil, firstErr
	}
	return found.list, nil
}
