package model

// Tenant is a customer organization. Every tenant-scoped row references it.
type Tenant struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required,max=200"`
	Slug         string `json:"slug" validate:"required,max=63"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	IsActive     bool   `json:"is_active"`
	Audit
}
