// Package importer loads provider rows from CSV and XLSX files into the store.
package importer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/store"
)

// headerAliases maps common spreadsheet column names to canonical fields.
// Lookup happens after canonicalHeader, so only normalized forms appear here.
var headerAliases = map[string]string{
	"npi_number":    model.FieldNPI,
	"first":         model.FieldFirstName,
	"last":          model.FieldLastName,
	"given_name":    model.FieldFirstName,
	"family_name":   model.FieldLastName,
	"surname":       model.FieldLastName,
	"organization":  model.FieldOrganizationName,
	"org_name":      model.FieldOrganizationName,
	"type":          model.FieldProviderType,
	"taxonomy":      model.FieldSpecialty,
	"address":       model.FieldAddressLine1,
	"address1":      model.FieldAddressLine1,
	"street":        model.FieldAddressLine1,
	"address2":      model.FieldAddressLine2,
	"suite":         model.FieldAddressLine2,
	"zip":           model.FieldZipCode,
	"zipcode":       model.FieldZipCode,
	"postal_code":   model.FieldZipCode,
	"phone_number":  model.FieldPhone,
	"telephone":     model.FieldPhone,
	"email_address": model.FieldEmail,
	"url":           model.FieldWebsite,
	"web_site":      model.FieldWebsite,
	"license":       model.FieldLicenseNumber,
	"license_no":    model.FieldLicenseNumber,
	"practice":      model.FieldPracticeName,
	"clinic_name":   model.FieldPracticeName,
	"document":      "document_path",
	"pdf_path":      "document_path",
}

// Result summarizes one import.
type Result struct {
	Imported int
	Skipped  int
}

// ImportFile loads provider rows from path into the store. The format is
// chosen by extension: .csv or .xlsx.
func ImportFile(ctx context.Context, st store.Store, path string) (Result, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		header, rows, err = readCSV(path)
	case ".xlsx":
		header, rows, err = readXLSX(path)
	default:
		return Result{}, eris.Errorf("importer: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return Result{}, err
	}

	records, skipped := recordsFromRows(header, rows, filepath.Base(path))
	if len(records) == 0 {
		return Result{Skipped: skipped}, nil
	}

	inserted, err := st.InsertProviders(ctx, records)
	if err != nil {
		return Result{}, eris.Wrap(err, "importer: insert providers")
	}

	zap.L().Info("import complete",
		zap.String("file", path),
		zap.Int("imported", inserted),
		zap.Int("skipped", skipped))

	return Result{Imported: inserted, Skipped: skipped}, nil
}

// canonicalHeader normalizes a column header for alias lookup.
func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	if canonical, ok := headerAliases[h]; ok {
		return canonical
	}
	return h
}

// recordsFromRows maps raw rows onto provider records using the header.
// Rows with no usable data fields are skipped, not errored.
func recordsFromRows(header []string, rows [][]string, sourceFile string) ([]model.ProviderRecord, int) {
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = canonicalHeader(h)
	}

	known := make(map[string]bool, len(model.DataFields))
	for _, name := range model.DataFields {
		known[name] = true
	}

	var (
		records []model.ProviderRecord
		skipped int
	)
	for _, row := range rows {
		rec := model.ProviderRecord{SourceFile: sourceFile}
		populated := false

		for i, cell := range row {
			if i >= len(fields) {
				break
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			switch fields[i] {
			case "id":
				rec.ID = value
			case "document_path":
				rec.DocumentPath = value
			default:
				if known[fields[i]] {
					rec.SetField(fields[i], value)
					populated = true
				}
			}
		}

		if !populated {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped
}
