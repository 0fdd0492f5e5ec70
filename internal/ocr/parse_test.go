package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDocument = `
State Medical Board Credential Verification

Dr. Jane Doe
NPI: 1234567890
License Number: MD-44821
Practice: 200 Oak Avenue, Springfield, IL 62701
Phone: (217) 555-0188
Email: jdoe@springfieldmed.example.org
`

func TestParseProviderData_FullDocument(t *testing.T) {
	parsed := ParseProviderData(sampleDocument)

	assert.Equal(t, "1234567890", parsed["npi"])
	assert.Equal(t, "Jane", parsed["first_name"])
	assert.Equal(t, "Doe", parsed["last_name"])
	assert.Equal(t, "MD-44821", parsed["license_number"])
	assert.Equal(t, "200 Oak Avenue, Springfield, IL 62701", parsed["address"])
	assert.Equal(t, "(217) 555-0188", parsed["phone"])
	assert.Equal(t, "jdoe@springfieldmed.example.org", parsed["email"])
}

func TestParseProviderData_NPIRequiresLabel(t *testing.T) {
	// A bare 10-digit run without an NPI label nearby is ignored.
	parsed := ParseProviderData("Account 9998887776 active since 2019")
	assert.NotContains(t, parsed, "npi")
}

func TestParseProviderData_NameFromSuffix(t *testing.T) {
	parsed := ParseProviderData("Attending: John Smith, M.D.")
	assert.Equal(t, "John", parsed["first_name"])
	assert.Equal(t, "Smith", parsed["last_name"])
}

func TestParseProviderData_LicenseVariants(t *testing.T) {
	assert.Equal(t, "A12345", ParseProviderData("License: A12345")["license_number"])
	assert.Equal(t, "B-9", ParseProviderData("Lic. # B-9")["license_number"])
}

func TestParseProviderData_Empty(t *testing.T) {
	assert.Empty(t, ParseProviderData(""))
}
