package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildConfigSchema returns the JSON-Schema (draft 2020-12 subset) for the
// optional extraction config file. Durations are Go duration strings.
func buildConfigSchema() map[string]any {
	duration := map[string]any{"type": "string", "pattern": `^\d+(\.\d+)?(ns|us|µs|ms|s|m|h)+$`}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"pdf_min_doc_text_length":        map[string]any{"type": "integer", "minimum": 0},
			"pdf_min_doc_byte_size":          map[string]any{"type": "integer", "minimum": 0},
			"pdf_ocr_only_strategy":          map[string]any{"type": "boolean"},
			"use_legacy_single_page_ocr":     map[string]any{"type": "boolean"},
			"ocr_timeout":                    duration,
			"ocr_language":                   map[string]any{"type": "string", "minLength": 3},
			"ocr_apply_rotation":             map[string]any{"type": "boolean"},
			"ocr_enable_image_processing":    map[string]any{"type": "boolean"},
			"conversion_timeout":             duration,
			"max_doc_bytes":                  map[string]any{"type": "integer", "minimum": 1},
		},
	}
}

type extractionOverride struct {
	PDFMinDocTextLength      *int    `json:"pdf_min_doc_text_length"`
	PDFMinDocByteSize        *int64  `json:"pdf_min_doc_byte_size"`
	PDFOCROnlyStrategy       *bool   `json:"pdf_ocr_only_strategy"`
	UseLegacySinglePageOCR   *bool   `json:"use_legacy_single_page_ocr"`
	OCRTimeout               *string `json:"ocr_timeout"`
	OCRLanguage              *string `json:"ocr_language"`
	OCRApplyRotation         *bool   `json:"ocr_apply_rotation"`
	OCREnableImageProcessing *bool   `json:"ocr_enable_image_processing"`
	ConversionTimeout        *string `json:"conversion_timeout"`
	MaxDocBytes              *int64  `json:"max_doc_bytes"`
}

// ApplyConfigFile overlays the JSON file at path onto cfg.Extraction.
// The file is validated against the embedded schema before any field is read.
func ApplyConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapError(err, "read config file")
	}
	if err := validateAgainstSchema(buildConfigSchema(), data); err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("config file %s is invalid", path), err)
	}

	var o extractionOverride
	if err := json.Unmarshal(data, &o); err != nil {
		return WrapError(err, "decode config file")
	}

	e := &cfg.Extraction
	if o.PDFMinDocTextLength != nil {
		e.PDFMinDocTextLength = *o.PDFMinDocTextLength
	}
	if o.PDFMinDocByteSize != nil {
		e.PDFMinDocByteSize = *o.PDFMinDocByteSize
	}
	if o.PDFOCROnlyStrategy != nil {
		e.PDFOCROnlyStrategy = *o.PDFOCROnlyStrategy
	}
	if o.UseLegacySinglePageOCR != nil {
		e.UseLegacyOCRParserForSinglePageDocuments = *o.UseLegacySinglePageOCR
	}
	if o.OCRTimeout != nil {
		if d, err := time.ParseDuration(*o.OCRTimeout); err == nil {
			e.OCRTimeout = d
		}
	}
	if o.OCRLanguage != nil {
		e.OCRLanguage = *o.OCRLanguage
	}
	if o.OCRApplyRotation != nil {
		e.OCRApplyRotation = *o.OCRApplyRotation
	}
	if o.OCREnableImageProcessing != nil {
		e.OCREnableImageProcessing = *o.OCREnableImageProcessing
	}
	if o.ConversionTimeout != nil {
		if d, err := time.ParseDuration(*o.ConversionTimeout); err == nil {
			e.ConversionTimeout = d
		}
	}
	if o.MaxDocBytes != nil {
		e.MaxDocBytes = *o.MaxDocBytes
	}
	return nil
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
