package storage

import (
	"bytes"
	"fmt"
	"time"
)

// ExportObject is the metadata of one archived export
type ExportObject struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	MIME      string    `json:"mime"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewExportObject describes data stored under name
func NewExportObject(name string, data []byte, createdAt time.Time) (ExportObject, error) {
	sum, err := CalculateSHA256(bytes.NewReader(data))
	if err != nil {
		return ExportObject{}, fmt.Errorf("failed to hash export: %w", err)
	}
	return ExportObject{
		Name:      name,
		Size:      int64(len(data)),
		SHA256:    sum,
		MIME:      "application/json",
		CreatedAt: createdAt.UTC(),
	}, nil
}

// Validate checks that the metadata describes a storable object
func (o ExportObject) Validate() error {
	if err := ValidateName(o.Name); err != nil {
		return err
	}
	if o.Size < 0 {
		return fmt.Errorf("file size must be non-negative")
	}
	return nil
}
