package core

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/valter-silva-au/flowfolio/pkg/models"
	"gopkg.in/yaml.v3"
)

// ExportFormat selects how the catalog is rendered for copy or download.
type ExportFormat string

const (
	ExportTypeScript ExportFormat = "ts"
	ExportJSON       ExportFormat = "json"
	ExportYAML       ExportFormat = "yaml"
)

const typeScriptPrelude = "import { Workflow } from './types';\n\nexport const WORKFLOWS: Workflow[] = "

// ParseExportFormat accepts "ts", "typescript", "json", "yaml" and "yml".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ts", "typescript":
		return ExportTypeScript, nil
	case "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use ts, json or yaml)", s)
	}
}

// Filename is the default download name for the format.
func (f ExportFormat) Filename() string {
	switch f {
	case ExportJSON:
		return "workflows.json"
	case ExportYAML:
		return "workflows.yaml"
	default:
		return "data.ts"
	}
}

// ContentType is the media type used when serving the export over HTTP.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportYAML:
		return "application/yaml"
	default:
		return "text/typescript"
	}
}

// ExportCatalog renders records in the requested format.
func ExportCatalog(records []models.WorkflowRecord, format ExportFormat) ([]byte, error) {
	records = normalizeForExport(records)

	switch format {
	case ExportTypeScript:
		body, err := marshalIndented(records)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, len(typeScriptPrelude)+len(body)+1)
		out = append(out, typeScriptPrelude...)
		out = append(out, body...)
		out = append(out, ';')
		return out, nil
	case ExportJSON:
		body, err := marshalIndented(records)
		if err != nil {
			return nil, err
		}
		return append(body, '\n'), nil
	case ExportYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("encoding catalog as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding catalog as yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func marshalIndented(records []models.WorkflowRecord) ([]byte, error) {
	body, err := json.MarshalIndentWithOption(records, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return nil, fmt.Errorf("encoding catalog as json: %w", err)
	}
	return body, nil
}

func normalizeForExport(records []models.WorkflowRecord) []models.WorkflowRecord {
	out := make([]models.WorkflowRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
