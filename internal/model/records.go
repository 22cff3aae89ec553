package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// The records below mirror Wathq response shapes. The indexed columns are
// lifted out of the upstream payload; Payload keeps the full response so
// nothing is lost when Wathq adds fields.

// CommercialRegistration is a Ministry of Commerce registration.
type CommercialRegistration struct {
	Base
	CRNationalNumber string              `json:"cr_national_number" validate:"required,numeric,len=10"`
	CRNumber         string              `json:"cr_number" validate:"omitempty,numeric"`
	Name             string              `json:"name" validate:"required,max=300"`
	EntityType       string              `json:"entity_type"`
	Status           string              `json:"status"`
	City             string              `json:"city"`
	Capital          decimal.NullDecimal `json:"capital"`
	IssueDate        *time.Time          `json:"issue_date"`
	ExpiryDate       *time.Time          `json:"expiry_date"`
	Payload          json.RawMessage     `json:"payload,omitempty" swaggertype:"object"`
	FetchedAt        *time.Time          `json:"fetched_at"`
}

// RealEstateDeed is a Ministry of Justice property deed.
type RealEstateDeed struct {
	Base
	DeedNumber  string              `json:"deed_number" validate:"required,numeric"`
	OwnerID     string              `json:"owner_id" validate:"required"`
	OwnerIDType string              `json:"owner_id_type" validate:"required,oneof=national_id iqama cr"`
	DeedDate    *time.Time          `json:"deed_date"`
	Status      string              `json:"status"`
	Region      string              `json:"region"`
	City        string              `json:"city"`
	District    string              `json:"district"`
	Area        decimal.NullDecimal `json:"area"`
	Payload     json.RawMessage     `json:"payload,omitempty" swaggertype:"object"`
	FetchedAt   *time.Time          `json:"fetched_at"`
}

// PowerOfAttorney is a Ministry of Justice power of attorney.
type PowerOfAttorney struct {
	Base
	Code          string          `json:"code" validate:"required"`
	Status        string          `json:"status"`
	PrincipalID   string          `json:"principal_id"`
	PrincipalName string          `json:"principal_name"`
	AgentID       string          `json:"agent_id"`
	AgentName     string          `json:"agent_name"`
	IssueDate     *time.Time      `json:"issue_date"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	Payload       json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	FetchedAt     *time.Time      `json:"fetched_at"`
}

// Employee is an employment record from the social insurance registry.
type Employee struct {
	Base
	NationalID     string              `json:"national_id" validate:"required,numeric,len=10"`
	FullName       string              `json:"full_name" validate:"required,max=300"`
	Nationality    string              `json:"nationality"`
	EmployerNumber string              `json:"employer_number"`
	EmployerName   string              `json:"employer_name"`
	JobTitle       string              `json:"job_title"`
	BasicSalary    decimal.NullDecimal `json:"basic_salary"`
	StartDate      *time.Time          `json:"start_date"`
	Payload        json.RawMessage     `json:"payload,omitempty" swaggertype:"object"`
	FetchedAt      *time.Time          `json:"fetched_at"`
}

// NationalAddress is a Saudi Post national address.
type NationalAddress struct {
	Base
	NationalID       string              `json:"national_id" validate:"required,numeric,len=10"`
	BuildingNumber   string              `json:"building_number" validate:"omitempty,numeric,len=4"`
	Street           string              `json:"street"`
	District         string              `json:"district"`
	City             string              `json:"city"`
	PostalCode       string              `json:"postal_code" validate:"omitempty,numeric,len=5"`
	AdditionalNumber string              `json:"additional_number" validate:"omitempty,numeric,len=4"`
	ShortAddress     string              `json:"short_address"`
	Latitude         decimal.NullDecimal `json:"latitude"`
	Longitude        decimal.NullDecimal `json:"longitude"`
	Payload          json.RawMessage     `json:"payload,omitempty" swaggertype:"object"`
	FetchedAt        *time.Time          `json:"fetched_at"`
}

// Contract statuses.
const (
	ContractDraft      = "draft"
	ContractActive     = "active"
	ContractExpired    = "expired"
	ContractTerminated = "terminated"
)

// DefaultCurrency is used for contract values given without a currency.
const DefaultCurrency = "SAR"

// Contract binds an employee to an establishment inside a tenant.
type Contract struct {
	Base
	ContractNumber           string          `json:"contract_number" validate:"required,max=64"`
	EmployeeID               string          `json:"employee_id" validate:"required,uuid"`
	CommercialRegistrationID *string         `json:"commercial_registration_id" validate:"omitempty,uuid"`
	Title                    string          `json:"title" validate:"max=200"`
	StartDate                time.Time       `json:"start_date" validate:"required"`
	EndDate                  *time.Time      `json:"end_date"`
	Value                    decimal.Decimal `json:"value"`
	Currency                 string          `json:"currency" validate:"omitempty,len=3"`
	Status                   string          `json:"status" validate:"omitempty,oneof=draft active expired terminated"`
	Notes                    string          `json:"notes"`
}

// ApplyDefaults fills the optional columns left empty by the client.
func (c *Contract) ApplyDefaults() {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Status == "" {
		c.Status = ContractDraft
	}
}

// Snapshot returns the stored upstream response and when it was fetched.
func (r *CommercialRegistration) Snapshot() (json.RawMessage, *time.Time) { return r.Payload, r.FetchedAt }

// MarkFetched records when the upstream response was fetched.
func (r *CommercialRegistration) MarkFetched(at time.Time) { r.FetchedAt = &at }

// SetSnapshot replaces the stored upstream response and its fetch time.
func (r *CommercialRegistration) SetSnapshot(p json.RawMessage, at *time.Time) {
	r.Payload, r.FetchedAt = p, at
}

func (r *RealEstateDeed) Snapshot() (json.RawMessage, *time.Time) { return r.Payload, r.FetchedAt }
func (r *RealEstateDeed) MarkFetched(at time.Time)                { r.FetchedAt = &at }
func (r *RealEstateDeed) SetSnapshot(p json.RawMessage, at *time.Time) {
	r.Payload, r.FetchedAt = p, at
}

func (r *PowerOfAttorney) Snapshot() (json.RawMessage, *time.Time) { return r.Payload, r.FetchedAt }
func (r *PowerOfAttorney) MarkFetched(at time.Time)                { r.FetchedAt = &at }
func (r *PowerOfAttorney) SetSnapshot(p json.RawMessage, at *time.Time) {
	r.Payload, r.FetchedAt = p, at
}

func (r *Employee) Snapshot() (json.RawMessage, *time.Time) { return r.Payload, r.FetchedAt }
func (r *Employee) MarkFetched(at time.Time)                { r.FetchedAt = &at }
func (r *Employee) SetSnapshot(p json.RawMessage, at *time.Time) {
	r.Payload, r.FetchedAt = p, at
}

func (r *NationalAddress) Snapshot() (json.RawMessage, *time.Time) { return r.Payload, r.FetchedAt }
func (r *NationalAddress) MarkFetched(at time.Time)                { r.FetchedAt = &at }
func (r *NationalAddress) SetSnapshot(p json.RawMessage, at *time.Time) {
	r.Payload, r.FetchedAt = p, at
}
