package ocr

import (
	"regexp"
	"strings"
)

var (
	npiRe     = regexp.MustCompile(`\b\d{10}\b`)
	docPhone  = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	docEmail  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	docAddr   = regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr)[\s,]+[A-Za-z\s]+,\s*[A-Z]{2}\s+\d{5}`)
	docLicRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)License\s+Number[:\s]+([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)License[:\s]+([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)Lic\.\s+#[:\s]*([A-Z0-9-]+)`),
	}
	docNameRes = []*regexp.Regexp{
		regexp.MustCompile(`Dr\.\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
		regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+),\s*M\.D\.`),
		regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+),\s*DO`),
	}
)

// ParseProviderData scans OCR text for provider fields. An NPI match only
// counts when the surrounding text mentions "npi", since any bare 10-digit
// run could be a phone number or account id.
func ParseProviderData(text string) map[string]string {
	parsed := make(map[string]string)

	for _, loc := range npiRe.FindAllStringIndex(text, -1) {
		start := loc[0] - 20
		if start < 0 {
			start = 0
		}
		end := loc[1] + 20
		if end > len(text) {
			end = len(text)
		}
		if strings.Contains(strings.ToLower(text[start:end]), "npi") {
			parsed["npi"] = text[loc[0]:loc[1]]
			// Mask the NPI so the phone pattern cannot claim the same digits.
			text = text[:loc[0]] + strings.Repeat("#", loc[1]-loc[0]) + text[loc[1]:]
			break
		}
	}

	if m := docPhone.FindString(text); m != "" {
		parsed["phone"] = strings.TrimSpace(m)
	}
	if m := docEmail.FindString(text); m != "" {
		parsed["email"] = m
	}
	if m := docAddr.FindString(text); m != "" {
		parsed["address"] = strings.TrimSpace(m)
	}

	for _, re := range docNameRes {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			parts := strings.Fields(m[1])
			if len(parts) == 2 {
				parsed["first_name"] = parts[0]
				parsed["last_name"] = parts[1]
			}
			break
		}
	}

	for _, re := range docLicRes {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			parsed["license_number"] = m[1]
			break
		}
	}

	return parsed
}
