package wathq

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
)

// Upstream payloads are only partially modeled: the fields lifted into
// indexed columns are decoded here and the full body is kept as Payload.

// flexText accepts either a JSON string or an object carrying a name.
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = flexText(s)
		return nil
	}
	var obj struct {
		Name   string `json:"name"`
		NameAr string `json:"nameAr"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		*t = flexText(string(b))
		return nil
	}
	switch {
	case obj.Name != "":
		*t = flexText(obj.Name)
	case obj.NameAr != "":
		*t = flexText(obj.NameAr)
	default:
		*t = flexText(obj.Value)
	}
	return nil
}

// flexDate accepts ISO dates, RFC 3339 timestamps and dd/mm/yyyy.
type flexDate struct{ t *time.Time }

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02/01/2006", "2006/01/02"}

func (d *flexDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			t = t.UTC()
			d.t = &t
			return nil
		}
	}
	return nil
}

// flexDecimal accepts a number, a numeric string, or an object whose
// "amount"/"capital"/"value" member holds one.
type flexDecimal struct{ decimal.NullDecimal }

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	if err := d.NullDecimal.UnmarshalJSON(b); err == nil {
		return nil
	}
	d.NullDecimal = decimal.NullDecimal{}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	for _, k := range []string{"amount", "capital", "value"} {
		if raw, ok := obj[k]; ok {
			if err := d.NullDecimal.UnmarshalJSON(raw); err == nil {
				return nil
			}
			d.NullDecimal = decimal.NullDecimal{}
		}
	}
	return nil
}

func decode(service string, body json.RawMessage, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}

func clone(body json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), body...)
}

// DecodeCommercialRegistration maps a fullinfo response.
func DecodeCommercialRegistration(params map[string]string, body json.RawMessage) (*model.CommercialRegistration, error) {
	var v struct {
		CRNationalNumber string      `json:"crNationalNumber"`
		CRNumber         string      `json:"crNumber"`
		Name             string      `json:"name"`
		EntityType       flexText    `json:"entityType"`
		Status           flexText    `json:"status"`
		HeadquarterCity  string      `json:"headquarterCityName"`
		Capital          flexDecimal `json:"capital"`
		IssueDate        flexDate    `json:"issueDateGregorian"`
		ConfirmationDate flexDate    `json:"confirmationDateGregorian"`
	}
	if err := decode(ServiceCommercialRegistration, body, &v); err != nil {
		return nil, err
	}
	rec := &model.CommercialRegistration{
		CRNationalNumber: firstNonEmpty(v.CRNationalNumber, params["cr_national_number"]),
		CRNumber:         v.CRNumber,
		Name:             v.Name,
		EntityType:       string(v.EntityType),
		Status:           string(v.Status),
		City:             v.HeadquarterCity,
		Capital:          v.Capital.NullDecimal,
		IssueDate:        v.IssueDate.t,
		ExpiryDate:       v.ConfirmationDate.t,
		Payload:          clone(body),
	}
	return rec, nil
}

// DecodeRealEstateDeed maps a deed response.
func DecodeRealEstateDeed(params map[string]string, body json.RawMessage) (*model.RealEstateDeed, error) {
	var v struct {
		DeedNumber string      `json:"deedNumber"`
		DeedDate   flexDate    `json:"deedDate"`
		Status     flexText    `json:"deedStatus"`
		Region     flexText    `json:"regionName"`
		City       flexText    `json:"cityName"`
		District   flexText    `json:"districtName"`
		Area       flexDecimal `json:"deedArea"`
	}
	if err := decode(ServiceRealEstateDeed, body, &v); err != nil {
		return nil, err
	}
	return &model.RealEstateDeed{
		DeedNumber:  firstNonEmpty(v.DeedNumber, params["deed_number"]),
		OwnerID:     params["owner_id"],
		OwnerIDType: params["owner_id_type"],
		DeedDate:    v.DeedDate.t,
		Status:      string(v.Status),
		Region:      string(v.Region),
		City:        string(v.City),
		District:    string(v.District),
		Area:        v.Area.NullDecimal,
		Payload:     clone(body),
	}, nil
}

// DecodePowerOfAttorney maps a poa info response.
func DecodePowerOfAttorney(params map[string]string, body json.RawMessage) (*model.PowerOfAttorney, error) {
	type party struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	var v struct {
		Code       string   `json:"code"`
		Status     flexText `json:"status"`
		IssueDate  flexDate `json:"issueDate"`
		ExpiryDate flexDate `json:"expiryDate"`
		Principals []party  `json:"principals"`
		Agents     []party  `json:"agents"`
	}
	if err := decode(ServicePowerOfAttorney, body, &v); err != nil {
		return nil, err
	}
	rec := &model.PowerOfAttorney{
		Code:       firstNonEmpty(v.Code, params["code"]),
		Status:     string(v.Status),
		IssueDate:  v.IssueDate.t,
		ExpiryDate: v.ExpiryDate.t,
		Payload:    clone(body),
	}
	if len(v.Principals) > 0 {
		rec.PrincipalID, rec.PrincipalName = v.Principals[0].ID, v.Principals[0].Name
	}
	if len(v.Agents) > 0 {
		rec.AgentID, rec.AgentName = v.Agents[0].ID, v.Agents[0].Name
	}
	return rec, nil
}

// DecodeEmployee maps an employee info response.
func DecodeEmployee(params map[string]string, body json.RawMessage) (*model.Employee, error) {
	var v struct {
		NationalID     string      `json:"nationalId"`
		FullName       string      `json:"fullName"`
		Nationality    flexText    `json:"nationality"`
		EmployerNumber string      `json:"employerNumber"`
		EmployerName   string      `json:"employerName"`
		JobTitle       flexText    `json:"occupation"`
		BasicSalary    flexDecimal `json:"basicWage"`
		StartDate      flexDate    `json:"joiningDate"`
	}
	if err := decode(ServiceEmployee, body, &v); err != nil {
		return nil, err
	}
	return &model.Employee{
		NationalID:     firstNonEmpty(v.NationalID, params["national_id"]),
		FullName:       v.FullName,
		Nationality:    string(v.Nationality),
		EmployerNumber: v.EmployerNumber,
		EmployerName:   v.EmployerName,
		JobTitle:       string(v.JobTitle),
		BasicSalary:    v.BasicSalary.NullDecimal,
		StartDate:      v.StartDate.t,
		Payload:        clone(body),
	}, nil
}

// DecodeNationalAddress maps a national address response. Saudi Post wraps
// results in an "Addresses" list; the first entry is the primary address.
func DecodeNationalAddress(params map[string]string, body json.RawMessage) (*model.NationalAddress, error) {
	type address struct {
		BuildingNumber   string      `json:"BuildingNumber"`
		Street           string      `json:"Street"`
		District         string      `json:"District"`
		City             string      `json:"City"`
		PostCode         string      `json:"PostCode"`
		AdditionalNumber string      `json:"AdditionalNumber"`
		ShortAddress     string      `json:"ShortAddress"`
		Latitude         flexDecimal `json:"Latitude"`
		Longitude        flexDecimal `json:"Longitude"`
	}
	var v struct {
		Addresses []address `json:"Addresses"`
	}
	if err := decode(ServiceNationalAddress, body, &v); err != nil {
		return nil, err
	}
	if len(v.Addresses) == 0 {
		var single address
		if err := decode(ServiceNationalAddress, body, &single); err != nil {
			return nil, err
		}
		v.Addresses = []address{single}
	}
	a := v.Addresses[0]
	return &model.NationalAddress{
		NationalID:       params["national_id"],
		BuildingNumber:   a.BuildingNumber,
		Street:           a.Street,
		District:         a.District,
		City:             a.City,
		PostalCode:       a.PostCode,
		AdditionalNumber: a.AdditionalNumber,
		ShortAddress:     a.ShortAddress,
		Latitude:         a.Latitude.NullDecimal,
		Longitude:        a.Longitude.NullDecimal,
		Payload:          clone(body),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
