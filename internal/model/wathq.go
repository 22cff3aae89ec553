package model

import (
	"encoding/json"
	"time"
)

// Response sources of a Wathq lookup.
const (
	SourceCache   = "cache"
	SourceLive    = "live"
	SourceOffline = "offline"
)

// CacheEntry is a cached upstream response, valid until ExpiresAt.
type CacheEntry struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	Service    string          `json:"service"`
	CacheKey   string          `json:"cache_key"`
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body" swaggertype:"object"`
	ExpiresAt  time.Time       `json:"expires_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CallLog is an audit record of one Wathq lookup, served from cache or not.
type CallLog struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	UserID        string          `json:"user_id"`
	Service       string          `json:"service"`
	Method        string          `json:"method"`
	Endpoint      string          `json:"endpoint"`
	CacheKey      string          `json:"cache_key"`
	CacheHit      bool            `json:"cache_hit"`
	Source        string          `json:"source"`
	RequestParams json.RawMessage `json:"request_params" swaggertype:"object"`
	StatusCode    int             `json:"status_code"`
	ResponseBody  json.RawMessage `json:"response_body,omitempty" swaggertype:"object"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	DurationMS    int64           `json:"duration_ms"`
	CreatedAt     time.Time       `json:"created_at"`
}
