package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

func ToJSON(r model.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON parses a report written by ToJSON. Section bodies come back as
// generic JSON values; use Section.DecodeBody for typed access.
func FromJSON(data []byte) (model.Report, error) {
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Report{}, fmt.Errorf("parse report: %w", err)
	}
	return r, nil
}

// ToYAML renders the report with the same field names as ToJSON.
func ToYAML(r model.Report) (string, error) {
	return toYAML(r)
}

// BodyYAML renders a section body for display.
func BodyYAML(body any) (string, error) {
	return toYAML(body)
}

func toYAML(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
