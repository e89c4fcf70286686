package storage

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// MarshalCatalog serialises the record list into the slot value format: a
// JSON array of records.
func MarshalCatalog(records []models.WorkflowRecord) (string, error) {
	if records == nil {
		records = []models.WorkflowRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshaling catalog: %w", err)
	}
	return string(data), nil
}

// UnmarshalCatalog parses a slot value produced by MarshalCatalog.
func UnmarshalCatalog(value string) ([]models.WorkflowRecord, error) {
	var records []models.WorkflowRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("parsing catalog: value is not an array")
	}
	return records, nil
}
