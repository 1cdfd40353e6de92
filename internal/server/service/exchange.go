package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

// ExchangeService moves observation records across the serialization
// boundary: export to a versioned Document, import of a document of
// unknown provenance with per-record error collection.
type ExchangeService struct {
	repo Repository
}

// Export serializes the selected records (all when ids is nil) into a
// Document. Pure read: no mutation, no id reassignment. Unknown ids are
// skipped silently.
func (e *ExchangeService) Export(ctx context.Context, ids []int64) (models.Document, error) {
	all, err := e.repo.ListObservations(ctx)
	if err != nil {
		return models.Document{}, err
	}
	records := all
	if ids != nil {
		wanted := make(map[int64]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		records = []models.ObservationRecord{}
		for _, rec := range all {
			if wanted[rec.ID] {
				records = append(records, rec)
			}
		}
	}
	return models.Document{
		FormatVersion: models.DocumentFormatVersion,
		ExportedAt:    time.Now().UTC(),
		Records:       records,
	}, nil
}

// Import ingests a serialized Document. A document that cannot be parsed,
// or carries an unknown format version, is a single fatal error with zero
// records imported. Otherwise records are validated independently:
// failures are collected per record and never abort the batch. Every
// inserted record receives a fresh id; ids embedded in the document are
// discarded and no reconciliation against existing records is attempted.
func (e *ExchangeService) Import(ctx context.Context, raw []byte) (models.ImportResult, error) {
	result := models.ImportResult{Errors: []string{}}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.Errors = append(result.Errors, "malformed document: "+err.Error())
		return result, nil
	}
	if doc.FormatVersion != models.DocumentFormatVersion {
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported format version %d", doc.FormatVersion))
		return result, nil
	}

	valid := []models.ObservationRecord{}
	for i, rec := range doc.Records {
		if rec.Date == "" || rec.Time == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: date and time are required", i+1))
			continue
		}
		rec.ID = 0
		normalizeRecord(&rec)
		valid = append(valid, rec)
	}

	if len(valid) > 0 {
		if _, err := e.repo.BulkInsertObservations(ctx, valid); err != nil {
			return models.ImportResult{Errors: result.Errors}, err
		}
	}
	result.ImportedCount = len(valid)
	return result, nil
}
