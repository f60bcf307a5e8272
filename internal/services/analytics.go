package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/pkg/dto"
)

const (
	dailySeriesDays = 30
	topN            = 10
	topNReferrers   = 15
	recentClicksN   = 15
)

// Display names for referrer types. Absent values count as "Direct",
// unmapped ones as "Unknown"; nothing is dropped.
var referrerTypeNames = map[string]string{
	"search":   "Search Engines",
	"social":   "Social Media",
	"email":    "Email",
	"ads":      "Advertising",
	"internal": "Internal",
	"direct":   "Direct",
	"external": "External Links",
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"de": "German",
	"fr": "French",
	"pt": "Portuguese",
	"it": "Italian",
	"nl": "Dutch",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"hi": "Hindi",
	"ar": "Arabic",
	"tr": "Turkish",
	"pl": "Polish",
}

// ClickFetcher supplies the raw event snapshot, newest first, capped.
type ClickFetcher interface {
	FetchForURLs(ctx context.Context, urlIDs []uuid.UUID) ([]models.ClickEvent, error)
}

// URLLookup resolves a user's url set and joins events back to their links.
type URLLookup interface {
	IDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	MapByIDs(ctx context.Context, urlIDs []uuid.UUID) (map[uuid.UUID]models.URL, error)
}

// AnalyticsService folds raw click events into grouped summaries. One
// bounded read, then pure in-memory accumulation over the snapshot; safe to
// run concurrently across requests.
type AnalyticsService struct {
	clicks ClickFetcher
	urls   URLLookup
	now    func() time.Time
}

func NewAnalyticsService(clicks ClickFetcher, urls URLLookup) *AnalyticsService {
	return &AnalyticsService{clicks: clicks, urls: urls, now: time.Now}
}

// SummarizeUser aggregates across every url the user owns.
func (s *AnalyticsService) SummarizeUser(ctx context.Context, userID uuid.UUID) (*dto.AnalyticsSummary, error) {
	urlIDs, err := s.urls.IDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Summarize(ctx, urlIDs)
}

// Summarize aggregates the given url set. An empty set or an empty fetch
// produces a zero-valued summary, not an error.
func (s *AnalyticsService) Summarize(ctx context.Context, urlIDs []uuid.UUID) (*dto.AnalyticsSummary, error) {
	events, err := s.clicks.FetchForURLs(ctx, urlIDs)
	if err != nil {
		return nil, err
	}

	urlByID := map[uuid.UUID]models.URL{}
	if len(events) > 0 {
		urlByID, err = s.urls.MapByIDs(ctx, urlIDs)
		if err != nil {
			return nil, err
		}
	}

	return aggregate(events, urlByID, s.now()), nil
}

// aggregate is the pure fold. Events are assumed newest-first; now anchors
// the UTC day windows.
func aggregate(events []models.ClickEvent, urlByID map[uuid.UUID]models.URL, now time.Time) *dto.AnalyticsSummary {
	now = now.UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	// The week is the last 7 UTC days including today, anchored on a day
	// boundary like every other window, not a rolling 168-hour instant.
	weekStart := todayStart.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	summary := &dto.AnalyticsSummary{
		TotalClicks: int64(len(events)),
	}

	countries := newCounter()
	browsers := newCounter()
	devices := newCounter()
	referrerTypes := newCounter()
	referrerDomains := newCounter()
	referrerSources := newCounter()
	languages := newCounter()

	series, bucketIndex := emptyDailySeries(todayStart)

	for _, e := range events {
		at := e.ClickedAt.UTC()

		// Each window is an independent predicate over the full set.
		if !at.Before(todayStart) {
			summary.ClicksToday++
		}
		if !at.Before(yesterdayStart) && at.Before(todayStart) {
			summary.ClicksYesterday++
		}
		if !at.Before(weekStart) {
			summary.ClicksThisWeek++
		}
		if !at.Before(monthStart) {
			summary.ClicksThisMonth++
		}

		countries.add(orUnknown(e.Country))
		browsers.add(orUnknown(e.Browser))
		devices.add(deviceClass(e.Device))
		referrerTypes.add(referrerTypeName(e.ReferrerType))
		referrerDomains.add(orDirect(e.ReferrerDomain))
		referrerSources.add(orDirect(e.ReferrerSource))
		languages.add(languageName(e.Language))

		if idx, ok := bucketIndex[at.Format("2006-01-02")]; ok {
			bucket := &series[idx]
			switch deviceClass(e.Device) {
			case models.DeviceMobile:
				bucket.Mobile++
			case models.DeviceDesktop:
				bucket.Desktop++
			case models.DeviceTablet:
				bucket.Tablet++
			default:
				bucket.Unknown++
			}
			bucket.Total++
		}

		if e.IsBot {
			summary.BotVsHuman.Bot++
		} else {
			summary.BotVsHuman.Human++
		}
	}

	total := summary.TotalClicks
	summary.TopCountries = countries.top(topN, total)
	summary.TopBrowsers = browsers.top(topN, total)
	summary.TopDevices = devices.top(topN, total)
	summary.TopReferrerTypes = referrerTypes.top(topN, total)
	summary.TopReferrerDomains = referrerDomains.top(topNReferrers, total)
	summary.TopReferrerSources = referrerSources.top(topNReferrers, total)
	summary.TopLanguages = languages.top(topN, total)
	summary.DailySeries = series
	summary.RecentClicks = recentClicks(events, urlByID)

	return summary
}

// counter is an insertion-ordered histogram so ties keep scan order after
// the stable sort.
type counter struct {
	counts map[string]int64
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int64)}
}

func (c *counter) add(label string) {
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

func (c *counter) top(n int, total int64) []dto.CountStat {
	stats := make([]dto.CountStat, 0, len(c.order))
	for _, label := range c.order {
		count := c.counts[label]
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100
		}
		stats = append(stats, dto.CountStat{Label: label, Count: count, Percent: percent})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// emptyDailySeries builds the dense 30-bucket window ending today, all
// zeroed, plus a date index for the fold.
func emptyDailySeries(todayStart time.Time) ([]dto.DailyBucket, map[string]int) {
	series := make([]dto.DailyBucket, dailySeriesDays)
	index := make(map[string]int, dailySeriesDays)
	for i := 0; i < dailySeriesDays; i++ {
		day := todayStart.AddDate(0, 0, i-(dailySeriesDays-1))
		date := day.Format("2006-01-02")
		series[i] = dto.DailyBucket{Date: date}
		index[date] = i
	}
	return series, index
}

func recentClicks(events []models.ClickEvent, urlByID map[uuid.UUID]models.URL) []dto.RecentClick {
	n := recentClicksN
	if len(events) < n {
		n = len(events)
	}
	recent := make([]dto.RecentClick, 0, n)
	for _, e := range events[:n] {
		url := urlByID[e.URLID]
		recent = append(recent, dto.RecentClick{
			ClickedAt:      e.ClickedAt.UTC().Format(time.RFC3339),
			ShortCode:      url.ShortCode,
			OriginalURL:    url.OriginalURL,
			Country:        orUnknown(e.Country),
			Browser:        orUnknown(e.Browser),
			Device:         deviceClass(e.Device),
			ReferrerDomain: orDirect(e.ReferrerDomain),
		})
	}
	return recent
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func orDirect(v string) string {
	if v == "" {
		return "Direct"
	}
	return v
}

func deviceClass(device string) string {
	switch strings.ToLower(device) {
	case models.DeviceMobile, models.DeviceDesktop, models.DeviceTablet:
		return strings.ToLower(device)
	default:
		return models.DeviceUnknown
	}
}

func referrerTypeName(refType string) string {
	if refType == "" {
		return "Direct"
	}
	if name, ok := referrerTypeNames[strings.ToLower(refType)]; ok {
		return name
	}
	return "Unknown"
}

// languageName maps the primary subtag of an Accept-Language value to a
// display name: "en-US,en;q=0.9" counts as English.
func languageName(acceptLanguage string) string {
	if acceptLanguage == "" {
		return "Unknown"
	}
	first := strings.TrimSpace(strings.Split(acceptLanguage, ",")[0])
	first = strings.Split(first, ";")[0]
	primary := strings.ToLower(strings.Split(first, "-")[0])
	if name, ok := languageNames[primary]; ok {
		return name
	}
	return "Unknown"
}
