package model

// Role groups permissions inside a tenant.
type Role struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenant_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Audit
}

// Permission is an entry of the fixed permission catalogue.
type Permission struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Permission codes.
const (
	PermUsersManage                  = "users:manage"
	PermRolesManage                  = "roles:manage"
	PermWathqQuery                   = "wathq:query"
	PermWathqCacheManage             = "wathq:cache_manage"
	PermCallLogsRead                 = "call_logs:read"
	PermReportsRead                  = "reports:read"
	PermReportsCreate                = "reports:create"
	PermReportsDelete                = "reports:delete"
	PermCommercialRegistrationsRead  = "commercial_registrations:read"
	PermCommercialRegistrationsWrite = "commercial_registrations:write"
	PermRealEstateDeedsRead          = "real_estate_deeds:read"
	PermRealEstateDeedsWrite         = "real_estate_deeds:write"
	PermPowersOfAttorneyRead         = "powers_of_attorney:read"
	PermPowersOfAttorneyWrite        = "powers_of_attorney:write"
	PermEmployeesRead                = "employees:read"
	PermEmployeesWrite               = "employees:write"
	PermNationalAddressesRead        = "national_addresses:read"
	PermNationalAddressesWrite       = "national_addresses:write"
	PermContractsRead                = "contracts:read"
	PermContractsWrite               = "contracts:write"
)

// PermissionCatalogue lists every permission a role can hold.
var PermissionCatalogue = []Permission{
	{PermUsersManage, "Create, update and deactivate tenant users"},
	{PermRolesManage, "Manage roles and their permissions"},
	{PermWathqQuery, "Query Wathq through the caching proxy"},
	{PermWathqCacheManage, "Invalidate cached Wathq responses"},
	{PermCallLogsRead, "Read Wathq call logs"},
	{PermReportsRead, "List and download PDF reports"},
	{PermReportsCreate, "Generate PDF reports"},
	{PermReportsDelete, "Delete PDF reports"},
	{PermCommercialRegistrationsRead, "Read commercial registrations"},
	{PermCommercialRegistrationsWrite, "Create, update and delete commercial registrations"},
	{PermRealEstateDeedsRead, "Read real-estate deeds"},
	{PermRealEstateDeedsWrite, "Create, update and delete real-estate deeds"},
	{PermPowersOfAttorneyRead, "Read powers of attorney"},
	{PermPowersOfAttorneyWrite, "Create, update and delete powers of attorney"},
	{PermEmployeesRead, "Read employee records"},
	{PermEmployeesWrite, "Create, update and delete employee records"},
	{PermNationalAddressesRead, "Read national addresses"},
	{PermNationalAddressesWrite, "Create, update and delete national addresses"},
	{PermContractsRead, "Read contracts"},
	{PermContractsWrite, "Create, update and delete contracts"},
}

// PermissionCodes returns the codes of PermissionCatalogue.
func PermissionCodes() []string {
	codes := make([]string, len(PermissionCatalogue))
	for i, p := range PermissionCatalogue {
		codes[i] = p.Code
	}
	return codes
}

// IsKnownPermission reports whether code is in the catalogue.
func IsKnownPermission(code string) bool {
	for _, p := range PermissionCatalogue {
		if p.Code == code {
			return true
		}
	}
	return false
}
