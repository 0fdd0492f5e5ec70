package adapter

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultSpecialties maps common variants and abbreviations to canonical
// specialty names. A YAML override file can extend or replace entries.
var defaultSpecialties = map[string]string{
	"cardio":            "Cardiology",
	"cardiology":        "Cardiology",
	"derm":              "Dermatology",
	"dermatology":       "Dermatology",
	"family medicine":   "Family Medicine",
	"family practice":   "Family Medicine",
	"internal medicine": "Internal Medicine",
	"im":                "Internal Medicine",
	"neuro":             "Neurology",
	"neurology":         "Neurology",
	"ob/gyn":            "Obstetrics & Gynecology",
	"obgyn":             "Obstetrics & Gynecology",
	"oncology":          "Oncology",
	"ortho":             "Orthopedics",
	"orthopedics":       "Orthopedics",
	"orthopaedics":      "Orthopedics",
	"peds":              "Pediatrics",
	"pediatrics":        "Pediatrics",
	"psych":             "Psychiatry",
	"psychiatry":        "Psychiatry",
}

// SpecialtyNormalizer maps specialty variants to canonical names.
type SpecialtyNormalizer struct {
	canonical map[string]string
}

// NewSpecialtyNormalizer returns a normalizer with the built-in mapping.
func NewSpecialtyNormalizer() *SpecialtyNormalizer {
	m := make(map[string]string, len(defaultSpecialties))
	for k, v := range defaultSpecialties {
		m[k] = v
	}
	return &SpecialtyNormalizer{canonical: m}
}

// specialtyOverrides is the YAML override file shape.
type specialtyOverrides struct {
	Specialties map[string]string `yaml:"specialties"`
}

// LoadOverrides merges mappings from a YAML file into the normalizer.
// File entries win over built-ins on conflict.
func (n *SpecialtyNormalizer) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "adapter: read specialty overrides %s", path)
	}

	var overrides specialtyOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return eris.Wrapf(err, "adapter: parse specialty overrides %s", path)
	}

	for variant, canonical := range overrides.Specialties {
		n.canonical[strings.ToLower(strings.TrimSpace(variant))] = canonical
	}
	return nil
}

// Normalize returns the canonical form of a specialty, or the trimmed
// input when no mapping exists.
func (n *SpecialtyNormalizer) Normalize(specialty string) string {
	trimmed := strings.TrimSpace(specialty)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := n.canonical[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
