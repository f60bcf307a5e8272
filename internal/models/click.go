package models

import (
	"time"

	"github.com/google/uuid"
)

// Device classes recorded on click rows.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// ClickEvent is a single redirect hit. Rows are written by the edge redirect
// service; this backend only reads them for aggregation.
type ClickEvent struct {
	ID             uuid.UUID `json:"id"`
	URLID          uuid.UUID `json:"url_id"`
	ClickedAt      time.Time `json:"clicked_at"`
	Country        string    `json:"country"`
	Browser        string    `json:"browser"`
	Device         string    `json:"device"`
	ReferrerType   string    `json:"referrer_type"`
	ReferrerDomain string    `json:"referrer_domain"`
	ReferrerSource string    `json:"referrer_source"`
	Language       string    `json:"language"`
	IsBot          bool      `json:"is_bot"`
	IP             string    `json:"-"`
}
