package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nanofi/nanofi/internal/applications"
)

// readFormFile loads application form data from a JSON or YAML file (chosen
// by extension). The top-level keys are section kinds.
func readFormFile(path string) (applications.FormData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLForm(data)
	default:
		var fd applications.FormData
		if err := json.Unmarshal(data, &fd); err != nil {
			return nil, fmt.Errorf("decode form %s: %w", path, err)
		}
		return fd, nil
	}
}

func parseYAMLForm(data []byte) (applications.FormData, error) {
	var sections map[string]any
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("decode yaml form: %w", err)
	}

	fd := make(applications.FormData, len(sections))
	for kind, v := range sections {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", kind, err)
		}
		fd[applications.SectionKind(kind)] = raw
	}
	return fd, nil
}

// promptForm asks for the usual inventor, patent and valuation fields.
// Blank answers are left out; a section with no answers is omitted.
func promptForm(r *bufio.Reader, w io.Writer) (applications.FormData, error) {
	ask := func(prompt string) (string, error) {
		return getSimpleText(r, prompt, w)
	}

	var (
		inv applications.InventorInfo
		pat applications.PatentInfo
		val applications.ValuationInfo
		err error
	)

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Inventor name", &inv.Name},
		{"Inventor email", &inv.Email},
		{"Organization", &inv.Organization},
		{"Patent title", &pat.Title},
		{"Patent number", &pat.PatentNumber},
		{"Filing date (YYYY-MM-DD)", &pat.FilingDate},
		{"Jurisdiction", &pat.Jurisdiction},
		{"Currency", &val.Currency},
	}
	for _, f := range fields {
		if *f.dst, err = ask(f.prompt); err != nil {
			return nil, err
		}
	}

	value, err := ask("Estimated value")
	if err != nil {
		return nil, err
	}
	if value != "" {
		if val.EstimatedValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("estimated value: %w", err)
		}
	}

	var sections []applications.SectionPayload
	if inv != (applications.InventorInfo{}) {
		sections = append(sections, inv)
	}
	if pat != (applications.PatentInfo{}) {
		sections = append(sections, pat)
	}
	if val.Currency != "" || !val.EstimatedValue.IsZero() {
		sections = append(sections, val)
	}
	return applications.Wrap(sections...)
}
