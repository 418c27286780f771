package models

import "time"

// WebhookLog is the idempotency ledger: one row per inbound webhook attempt,
// keyed by (provider, provider_event_id). The unique index guarantees a second
// insert for the same pair is detected instead of racing. A row that is never
// marked processed (crash mid-flight) is legitimately reprocessed on retry.
type WebhookLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Provider        string    `gorm:"type:varchar(20);not null;index:ux_webhook_logs_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string    `gorm:"type:varchar(191);not null;index:ux_webhook_logs_provider_event,unique,priority:2" json:"provider_event_id"`
	Endpoint        string    `gorm:"type:varchar(100);not null" json:"endpoint"`
	RawPayload      string    `gorm:"type:longtext;not null" json:"raw_payload"`
	Processed       bool      `gorm:"default:false;index" json:"processed"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
