package wathq

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Service names accepted by the proxy.
const (
	ServiceCommercialRegistration = "commercial_registration"
	ServiceRealEstateDeed         = "real_estate_deed"
	ServicePowerOfAttorney        = "power_of_attorney"
	ServiceEmployee               = "employee"
	ServiceNationalAddress        = "national_address"
)

// Endpoint maps a service onto an upstream path. Path placeholders are
// written {name} and every placeholder is a required parameter.
type Endpoint struct {
	Service string
	Path    string
	Params  []string
	// Enum restricts the values a parameter may take.
	Enum map[string][]string
}

var endpoints = map[string]Endpoint{
	ServiceCommercialRegistration: {
		Service: ServiceCommercialRegistration,
		Path:    "/v5/commercialregistration/fullinfo/{cr_national_number}",
		Params:  []string{"cr_national_number"},
	},
	ServiceRealEstateDeed: {
		Service: ServiceRealEstateDeed,
		Path:    "/moj/real-estate/deed/{deed_number}/{owner_id}/{owner_id_type}",
		Params:  []string{"deed_number", "owner_id", "owner_id_type"},
		Enum:    map[string][]string{"owner_id_type": {"national_id", "iqama", "cr"}},
	},
	ServicePowerOfAttorney: {
		Service: ServicePowerOfAttorney,
		Path:    "/moj/poa/info/{code}",
		Params:  []string{"code"},
	},
	ServiceEmployee: {
		Service: ServiceEmployee,
		Path:    "/masdr/employee/info/{national_id}",
		Params:  []string{"national_id"},
	},
	ServiceNationalAddress: {
		Service: ServiceNationalAddress,
		Path:    "/spl/nationaladdress/info/{national_id}",
		Params:  []string{"national_id"},
	},
}

// EndpointFor returns the endpoint of service.
func EndpointFor(service string) (Endpoint, bool) {
	e, ok := endpoints[service]
	return e, ok
}

// Services lists the supported service names in sorted order.
func Services() []string {
	out := make([]string, 0, len(endpoints))
	for s := range endpoints {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ParamError reports missing or invalid request parameters.
type ParamError struct {
	Service string
	Missing []string
	Invalid []string
}

func (e *ParamError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("wathq %s: %s", e.Service, strings.Join(parts, "; "))
}

// Validate checks that every required parameter is present and allowed.
// Unknown parameters are ignored.
func (e Endpoint) Validate(params map[string]string) error {
	perr := &ParamError{Service: e.Service}
	for _, p := range e.Params {
		v := strings.TrimSpace(params[p])
		if v == "" {
			perr.Missing = append(perr.Missing, p)
			continue
		}
		if allowed, ok := e.Enum[p]; ok && !contains(allowed, v) {
			perr.Invalid = append(perr.Invalid, p)
		}
	}
	if len(perr.Missing) > 0 || len(perr.Invalid) > 0 {
		return perr
	}
	return nil
}

// Canonical returns only the endpoint's parameters, trimmed.
func (e Endpoint) Canonical(params map[string]string) map[string]string {
	out := make(map[string]string, len(e.Params))
	for _, p := range e.Params {
		out[p] = strings.TrimSpace(params[p])
	}
	return out
}

// BuildPath substitutes escaped parameter values into the path template.
func (e Endpoint) BuildPath(params map[string]string) string {
	path := e.Path
	for _, p := range e.Params {
		path = strings.ReplaceAll(path, "{"+p+"}", url.PathEscape(strings.TrimSpace(params[p])))
	}
	return path
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
