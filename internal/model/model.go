// Package model contains domain models/data structures.
// They carry no persistence tags; repositories map them to columns explicitly.
package model

import "time"

// Audit holds the columns every mutable table carries.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// Base is embedded by tenant-scoped records.
type Base struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Audit
}

// Stamp fills audit columns for a write performed by actor at now.
// CreatedAt/CreatedBy are only set when still empty.
func (a *Audit) Stamp(actor string, now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.CreatedBy = actor
	}
	a.UpdatedAt = now
	a.UpdatedBy = actor
}
