package postgres

import (
	"database/sql"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
)

// Table definitions of the Wathq-mirrored records.

func CommercialRegistrationTable() Table[model.CommercialRegistration] {
	return Table[model.CommercialRegistration]{
		Name: "commercial_registrations",
		Columns: []string{
			"cr_national_number", "cr_number", "name", "entity_type", "status", "city",
			"capital", "issue_date", "expiry_date", "payload", "fetched_at",
		},
		KeyColumn:     "cr_national_number",
		SearchColumns: []string{"cr_national_number", "cr_number", "name"},
		Base:          func(r *model.CommercialRegistration) *model.Base { return &r.Base },
		Fields: func(r *model.CommercialRegistration) []any {
			return []any{
				&r.CRNationalNumber, &r.CRNumber, &r.Name, &r.EntityType, &r.Status, &r.City,
				&r.Capital, &r.IssueDate, &r.ExpiryDate, payloadField(&r.Payload), &r.FetchedAt,
			}
		},
	}
}

func RealEstateDeedTable() Table[model.RealEstateDeed] {
	return Table[model.RealEstateDeed]{
		Name: "real_estate_deeds",
		Columns: []string{
			"deed_number", "owner_id", "owner_id_type", "deed_date", "status", "region", "city",
			"district", "area", "payload", "fetched_at",
		},
		KeyColumn:     "deed_number",
		SearchColumns: []string{"deed_number", "owner_id", "city", "district"},
		Base:          func(r *model.RealEstateDeed) *model.Base { return &r.Base },
		Fields: func(r *model.RealEstateDeed) []any {
			return []any{
				&r.DeedNumber, &r.OwnerID, &r.OwnerIDType, &r.DeedDate, &r.Status, &r.Region, &r.City,
				&r.District, &r.Area, payloadField(&r.Payload), &r.FetchedAt,
			}
		},
	}
}

func PowerOfAttorneyTable() Table[model.PowerOfAttorney] {
	return Table[model.PowerOfAttorney]{
		Name: "powers_of_attorney",
		Columns: []string{
			"code", "status", "principal_id", "principal_name", "agent_id", "agent_name",
			"issue_date", "expiry_date", "payload", "fetched_at",
		},
		KeyColumn:     "code",
		SearchColumns: []string{"code", "principal_name", "agent_name"},
		Base:          func(r *model.PowerOfAttorney) *model.Base { return &r.Base },
		Fields: func(r *model.PowerOfAttorney) []any {
			return []any{
				&r.Code, &r.Status, &r.PrincipalID, &r.PrincipalName, &r.AgentID, &r.AgentName,
				&r.IssueDate, &r.ExpiryDate, payloadField(&r.Payload), &r.FetchedAt,
			}
		},
	}
}

func EmployeeTable() Table[model.Employee] {
	return Table[model.Employee]{
		Name: "employees",
		Columns: []string{
			"national_id", "full_name", "nationality", "employer_number", "employer_name",
			"job_title", "basic_salary", "start_date", "payload", "fetched_at",
		},
		KeyColumn:     "national_id",
		SearchColumns: []string{"national_id", "full_name", "employer_name"},
		Base:          func(r *model.Employee) *model.Base { return &r.Base },
		Fields: func(r *model.Employee) []any {
			return []any{
				&r.NationalID, &r.FullName, &r.Nationality, &r.EmployerNumber, &r.EmployerName,
				&r.JobTitle, &r.BasicSalary, &r.StartDate, payloadField(&r.Payload), &r.FetchedAt,
			}
		},
	}
}

func NationalAddressTable() Table[model.NationalAddress] {
	return Table[model.NationalAddress]{
		Name: "national_addresses",
		Columns: []string{
			"national_id", "building_number", "street", "district", "city", "postal_code",
			"additional_number", "short_address", "latitude", "longitude", "payload", "fetched_at",
		},
		KeyColumn:     "national_id",
		SearchColumns: []string{"national_id", "short_address", "city", "postal_code"},
		Base:          func(r *model.NationalAddress) *model.Base { return &r.Base },
		Fields: func(r *model.NationalAddress) []any {
			return []any{
				&r.NationalID, &r.BuildingNumber, &r.Street, &r.District, &r.City, &r.PostalCode,
				&r.AdditionalNumber, &r.ShortAddress, &r.Latitude, &r.Longitude, payloadField(&r.Payload), &r.FetchedAt,
			}
		},
	}
}

func ContractTable() Table[model.Contract] {
	return Table[model.Contract]{
		Name: "contracts",
		Columns: []string{
			"contract_number", "employee_id", "commercial_registration_id", "title", "start_date",
			"end_date", "value", "currency", "status", "notes",
		},
		KeyColumn:     "contract_number",
		SearchColumns: []string{"contract_number", "title"},
		Base:          func(r *model.Contract) *model.Base { return &r.Base },
		Fields: func(r *model.Contract) []any {
			return []any{
				&r.ContractNumber, &r.EmployeeID, &r.CommercialRegistrationID, &r.Title, &r.StartDate,
				&r.EndDate, &r.Value, &r.Currency, &r.Status, &r.Notes,
			}
		},
		Defaults: (*model.Contract).ApplyDefaults,
	}
}

// NewCommercialRegistrations and friends bind the tables to db.

func NewCommercialRegistrations(db *sql.DB) *Records[model.CommercialRegistration] {
	return NewRecords(db, CommercialRegistrationTable())
}

func NewRealEstateDeeds(db *sql.DB) *Records[model.RealEstateDeed] {
	return NewRecords(db, RealEstateDeedTable())
}

func NewPowersOfAttorney(db *sql.DB) *Records[model.PowerOfAttorney] {
	return NewRecords(db, PowerOfAttorneyTable())
}

func NewEmployees(db *sql.DB) *Records[model.Employee] {
	return NewRecords(db, EmployeeTable())
}

func NewNationalAddresses(db *sql.DB) *Records[model.NationalAddress] {
	return NewRecords(db, NationalAddressTable())
}

func NewContracts(db *sql.DB) *Records[model.Contract] {
	return NewRecords(db, ContractTable())
}
