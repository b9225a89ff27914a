package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportSuffix is appended to the document filename for the job report.
const ReportSuffix = ".report.yaml"

// WriteReport stores the job snapshot as YAML beside the exported document
// and returns the report path.
func WriteReport(dir string, s JobSnapshot) (string, error) {
	name := s.Filename
	if name == "" {
		name = s.ID + ".pdf"
	}
	path := filepath.Join(dir, strings.TrimSuffix(name, ".pdf")+ReportSuffix)

	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (JobSnapshot, error) {
	var s JobSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = yaml.Unmarshal(data, &s)
	return s, err
}
