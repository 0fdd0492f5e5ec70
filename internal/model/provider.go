// Package model defines the typed records exchanged between pipeline stages.
package model

import "time"

// Canonical field names shared by every stage. Adapters, the reconciliation
// engine, and the merger all key their output on these names so a typo in
// one place fails loudly in tests instead of silently dropping a field.
const (
	FieldNPI              = "npi"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldOrganizationName = "organization_name"
	FieldProviderType     = "provider_type"
	FieldSpecialty        = "specialty"
	FieldAddressLine1     = "address_line1"
	FieldAddressLine2     = "address_line2"
	FieldCity             = "city"
	FieldState            = "state"
	FieldZipCode          = "zip_code"
	FieldPhone            = "phone"
	FieldEmail            = "email"
	FieldWebsite          = "website"
	FieldLicenseNumber    = "license_number"
	FieldLicenseState     = "license_state"
	FieldPracticeName     = "practice_name"
)

// ComparisonFields is the fixed set the reconciliation engine inspects for
// discrepancies. Order carries no meaning; detection is order-independent.
var ComparisonFields = []string{
	FieldNPI, FieldFirstName, FieldLastName, FieldPhone, FieldAddressLine1,
	FieldCity, FieldState, FieldZipCode, FieldSpecialty, FieldLicenseNumber,
	FieldEmail, FieldPracticeName, FieldOrganizationName,
}

// CorrectableFields may be overwritten by high-confidence validated values
// during the merger's auto-correction pass.
var CorrectableFields = []string{
	FieldNPI, FieldPhone, FieldAddressLine1, FieldAddressLine2, FieldCity,
	FieldState, FieldZipCode, FieldFirstName, FieldLastName, FieldSpecialty,
	FieldWebsite, FieldEmail, FieldPracticeName,
}

// HighRiskFields mark discrepancies that carry regulatory weight.
var HighRiskFields = map[string]bool{
	FieldNPI:           true,
	FieldLicenseNumber: true,
}

// systemFields are metadata columns the merger must never treat as data.
var systemFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"confidence_score":  true,
	"risk_score":        true,
	"validation_status": true,
	"source_file":       true,
	"document_path":     true,
}

// IsSystemField reports whether name is a metadata column excluded from merging.
func IsSystemField(name string) bool { return systemFields[name] }

// ProviderRecord is the immutable imported provider row. Pipeline stages
// operate on copies; the original is never mutated in place.
type ProviderRecord struct {
	ID               string    `json:"id"`
	NPI              string    `json:"npi"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	OrganizationName string    `json:"organization_name"`
	ProviderType     string    `json:"provider_type"`
	Specialty        string    `json:"specialty"`
	AddressLine1     string    `json:"address_line1"`
	AddressLine2     string    `json:"address_line2"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ZipCode          string    `json:"zip_code"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Website          string    `json:"website"`
	LicenseNumber    string    `json:"license_number"`
	LicenseState     string    `json:"license_state"`
	PracticeName     string    `json:"practice_name"`
	SourceFile       string    `json:"source_file,omitempty"`
	DocumentPath     string    `json:"document_path,omitempty"`
	ConfidenceScore  int       `json:"confidence_score"`
	RiskScore        int       `json:"risk_score"`
	ValidationStatus string    `json:"validation_status"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// Field returns the value of the named data field, or "" for unknown names.
func (p *ProviderRecord) Field(name string) string {
	switch name {
	case FieldNPI:
		return p.NPI
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldOrganizationName:
		return p.OrganizationName
	case FieldProviderType:
		return p.ProviderType
	case FieldSpecialty:
		return p.Specialty
	case FieldAddressLine1:
		return p.AddressLine1
	case FieldAddressLine2:
		return p.AddressLine2
	case FieldCity:
		return p.City
	case FieldState:
		return p.State
	case FieldZipCode:
		return p.ZipCode
	case FieldPhone:
		return p.Phone
	case FieldEmail:
		return p.Email
	case FieldWebsite:
		return p.Website
	case FieldLicenseNumber:
		return p.LicenseNumber
	case FieldLicenseState:
		return p.LicenseState
	case FieldPracticeName:
		return p.PracticeName
	}
	return ""
}

// SetField assigns the named data field. Unknown names are ignored.
func (p *ProviderRecord) SetField(name, value string) {
	switch name {
	case FieldNPI:
		p.NPI = value
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldOrganizationName:
		p.OrganizationName = value
	case FieldProviderType:
		p.ProviderType = value
	case FieldSpecialty:
		p.Specialty = value
	case FieldAddressLine1:
		p.AddressLine1 = value
	case FieldAddressLine2:
		p.AddressLine2 = value
	case FieldCity:
		p.City = value
	case FieldState:
		p.State = value
	case FieldZipCode:
		p.ZipCode = value
	case FieldPhone:
		p.Phone = value
	case FieldEmail:
		p.Email = value
	case FieldWebsite:
		p.Website = value
	case FieldLicenseNumber:
		p.LicenseNumber = value
	case FieldLicenseState:
		p.LicenseState = value
	case FieldPracticeName:
		p.PracticeName = value
	}
}

// DataFields is the complete list of reconcilable field names.
var DataFields = []string{
	FieldNPI, FieldFirstName, FieldLastName, FieldOrganizationName,
	FieldProviderType, FieldSpecialty, FieldAddressLine1, FieldAddressLine2,
	FieldCity, FieldState, FieldZipCode, FieldPhone, FieldEmail,
	FieldWebsite, FieldLicenseNumber, FieldLicenseState, FieldPracticeName,
}

// Fields returns the non-empty data fields keyed by canonical name.
func (p *ProviderRecord) Fields() map[string]string {
	out := make(map[string]string, len(DataFields))
	for _, name := range DataFields {
		if v := p.Field(name); v != "" {
			out[name] = v
		}
	}
	return out
}

// Clone returns a copy safe for a stage to mutate.
func (p *ProviderRecord) Clone() ProviderRecord {
	return *p
}

// FinalRecord is the reconciled provider profile written back to the store.
// MergedFrom records, per field, which source won the merge: always exactly
// one of validated, enriched, or original.
type FinalRecord struct {
	ProviderRecord
	MergedFrom map[string]string `json:"merged_from,omitempty"`
}
