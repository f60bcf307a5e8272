package dto

// CountStat is one histogram row. Percent is count/total*100 with an empty
// total reported as 0.
type CountStat struct {
	Label   string  `json:"label"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// DailyBucket is one day of the trailing series, split by device class.
// Days with no events still appear with all-zero counts.
type DailyBucket struct {
	Date    string `json:"date"`
	Mobile  int64  `json:"mobile"`
	Desktop int64  `json:"desktop"`
	Tablet  int64  `json:"tablet"`
	Unknown int64  `json:"unknown"`
	Total   int64  `json:"total"`
}

type BotSplit struct {
	Human int64 `json:"human"`
	Bot   int64 `json:"bot"`
}

// RecentClick is the narrow public projection of a click event, joined with
// its parent url.
type RecentClick struct {
	ClickedAt      string `json:"clicked_at"`
	ShortCode      string `json:"short_code"`
	OriginalURL    string `json:"original_url"`
	Country        string `json:"country"`
	Browser        string `json:"browser"`
	Device         string `json:"device"`
	ReferrerDomain string `json:"referrer_domain"`
}

type AnalyticsSummary struct {
	TotalClicks     int64 `json:"total_clicks"`
	ClicksToday     int64 `json:"clicks_today"`
	ClicksYesterday int64 `json:"clicks_yesterday"`
	ClicksThisWeek  int64 `json:"clicks_this_week"`
	ClicksThisMonth int64 `json:"clicks_this_month"`

	TopCountries       []CountStat `json:"top_countries"`
	TopBrowsers        []CountStat `json:"top_browsers"`
	TopDevices         []CountStat `json:"top_devices"`
	TopReferrerTypes   []CountStat `json:"top_referrer_types"`
	TopReferrerDomains []CountStat `json:"top_referrer_domains"`
	TopReferrerSources []CountStat `json:"top_referrer_sources"`
	TopLanguages       []CountStat `json:"top_languages"`

	DailySeries []DailyBucket `json:"daily_series"`
	BotVsHuman  BotSplit      `json:"bot_vs_human"`

	RecentClicks []RecentClick `json:"recent_clicks"`
}
