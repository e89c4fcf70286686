package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetExportFlags(t *testing.T) {
	t.Helper()
	resetFlags(t, exportCmd)
}

func TestExportCmd_TypeScriptToStdout(t *testing.T) {
	installTestCatalog(t, nil)
	resetExportFlags(t)

	stdout, _, err := runRoot(t, "export")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "import { Workflow } from './types';\n\nexport const WORKFLOWS: Workflow[] = [") {
		t.Errorf("unexpected prelude:\n%s", stdout[:min(len(stdout), 120)])
	}
	if !strings.HasSuffix(stdout, "];") {
		t.Error("expected the module to end with a semicolon")
	}
}

func TestExportCmd_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"shortDescription": `},
		{"yaml", "shortDescription: "},
		{"typescript", "export const WORKFLOWS"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			installTestCatalog(t, nil)
			resetExportFlags(t)

			stdout, _, err := runRoot(t, "export", "--format", tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("%s export missing %q", tt.format, tt.want)
			}
		})
	}
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	installTestCatalog(t, nil)
	resetExportFlags(t)

	_, _, err := runRoot(t, "export", "-f", "csv")
	if err == nil || !strings.Contains(err.Error(), "unsupported export format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestExportCmd_OutputFile(t *testing.T) {
	installTestCatalog(t, nil)
	resetExportFlags(t)

	target := filepath.Join(t.TempDir(), "catalog.json")
	stdout, stderr, err := runRoot(t, "export", "-f", "json", "-o", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "Exported 4 workflows to "+target) {
		t.Errorf("unexpected stderr %q", stderr)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(string(data), "[") {
		t.Errorf("expected JSON array, got %q", string(data[:min(len(data), 40)]))
	}
}

func TestExportCmd_Download(t *testing.T) {
	installTestCatalog(t, nil)
	resetExportFlags(t)
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "export", "-f", "yaml", "--download")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat("workflows.yaml"); err != nil {
		t.Errorf("expected workflows.yaml in the working directory: %v", err)
	}
}
