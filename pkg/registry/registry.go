package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Option is one selectable value of a form dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section names accepted by Section and AddOption.
const (
	SectionLanguages       = "languages"
	SectionEmploymentTypes = "employmentTypes"
	SectionIncomeSources   = "incomeSources"
	SectionExistingLoans   = "existingLoans"
)

// FormRegistry holds the choices offered by the loan application form.
type FormRegistry struct {
	Version         string   `json:"version"`
	Languages       []Option `json:"languages"`
	EmploymentTypes []Option `json:"employmentTypes"`
	IncomeSources   []Option `json:"incomeSources"`
	ExistingLoans   []Option `json:"existingLoans"`
}

var defaultRegistry = FormRegistry{
	Version: "1.0.0",
	Languages: []Option{
		{Value: "en", Label: "English"},
		{Value: "hi", Label: "Hindi"},
		{Value: "ta", Label: "Tamil"},
		{Value: "ml", Label: "Malayalam"},
		{Value: "mr", Label: "Marathi"},
		{Value: "bn", Label: "Bengali"},
		{Value: "gu", Label: "Gujarati"},
		{Value: "te", Label: "Telugu"},
		{Value: "kn", Label: "Kannada"},
	},
	EmploymentTypes: []Option{
		{Value: "Permanent", Label: "Permanent Employee"},
		{Value: "Contract", Label: "Contract Employee"},
		{Value: "Government", Label: "Government Employee"},
		{Value: "Self-employed", Label: "Self Employed"},
		{Value: "Business", Label: "Business Owner"},
	},
	IncomeSources: []Option{
		{Value: "Salary", Label: "Salary"},
		{Value: "Business", Label: "Business Income"},
		{Value: "Freelance", Label: "Freelance"},
		{Value: "Investment", Label: "Investment Returns"},
		{Value: "Other", Label: "Other"},
	},
	ExistingLoans: []Option{
		{Value: "No", Label: "No existing loans"},
		{Value: "Yes", Label: "Have existing loans"},
	},
}

// Default returns a copy of the built-in registry.
func Default() *FormRegistry {
	reg := defaultRegistry
	reg.Languages = append([]Option(nil), defaultRegistry.Languages...)
	reg.EmploymentTypes = append([]Option(nil), defaultRegistry.EmploymentTypes...)
	reg.IncomeSources = append([]Option(nil), defaultRegistry.IncomeSources...)
	reg.ExistingLoans = append([]Option(nil), defaultRegistry.ExistingLoans...)
	return &reg
}

// LoadRegistry reads a registry from a JSON file. Empty sections fall back
// to the built-in choices.
func LoadRegistry(path string) (*FormRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FormRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	def := Default()
	if len(reg.Languages) == 0 {
		reg.Languages = def.Languages
	}
	if len(reg.EmploymentTypes) == 0 {
		reg.EmploymentTypes = def.EmploymentTypes
	}
	if len(reg.IncomeSources) == 0 {
		reg.IncomeSources = def.IncomeSources
	}
	if len(reg.ExistingLoans) == 0 {
		reg.ExistingLoans = def.ExistingLoans
	}
	return &reg, nil
}

func (r *FormRegistry) HasLanguage(code string) bool {
	return find(r.Languages, code) != nil
}

// LanguageName returns the display name for a language code, or the code itself.
func (r *FormRegistry) LanguageName(code string) string {
	if opt := find(r.Languages, code); opt != nil {
		return opt.Label
	}
	return code
}

func (r *FormRegistry) EmploymentLabel(value string) string {
	return label(r.EmploymentTypes, value)
}

func (r *FormRegistry) IncomeSourceLabel(value string) string {
	return label(r.IncomeSources, value)
}

// Values returns the raw values of a section, in registry order.
func Values(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func find(opts []Option, value string) *Option {
	for i := range opts {
		if strings.EqualFold(opts[i].Value, value) {
			return &opts[i]
		}
	}
	return nil
}

func label(opts []Option, value string) string {
	if opt := find(opts, value); opt != nil {
		return opt.Label
	}
	return value
}

// Sections lists the section names in a stable order.
func Sections() []string {
	out := []string{SectionLanguages, SectionEmploymentTypes, SectionIncomeSources, SectionExistingLoans}
	sort.Strings(out)
	return out
}

// Section returns a pointer to the named option list.
func (r *FormRegistry) Section(name string) (*[]Option, error) {
	switch name {
	case SectionLanguages:
		return &r.Languages, nil
	case SectionEmploymentTypes:
		return &r.EmploymentTypes, nil
	case SectionIncomeSources:
		return &r.IncomeSources, nil
	case SectionExistingLoans:
		return &r.ExistingLoans, nil
	}
	return nil, fmt.Errorf("unknown section %q (want one of %s)", name, strings.Join(Sections(), ", "))
}

// AddOption appends opt to a section. Values are unique per section, ignoring case.
func (r *FormRegistry) AddOption(section string, opt Option) error {
	opts, err := r.Section(section)
	if err != nil {
		return err
	}
	if strings.TrimSpace(opt.Value) == "" {
		return fmt.Errorf("option value is required")
	}
	if opt.Label == "" {
		opt.Label = opt.Value
	}
	if find(*opts, opt.Value) != nil {
		return fmt.Errorf("%s already has option %q", section, opt.Value)
	}
	*opts = append(*opts, opt)
	return nil
}

// Validate checks that every section is non-empty and holds unique, labelled values.
func (r *FormRegistry) Validate() error {
	for _, name := range Sections() {
		opts, _ := r.Section(name)
		if len(*opts) == 0 {
			return fmt.Errorf("%s has no options", name)
		}
		seen := make(map[string]bool, len(*opts))
		for _, o := range *opts {
			key := strings.ToLower(strings.TrimSpace(o.Value))
			if key == "" {
				return fmt.Errorf("%s has an option without a value", name)
			}
			if o.Label == "" {
				return fmt.Errorf("%s option %q has no label", name, o.Value)
			}
			if seen[key] {
				return fmt.Errorf("%s has duplicate option %q", name, o.Value)
			}
			seen[key] = true
		}
	}
	return nil
}

// SaveRegistry writes reg as indented JSON, creating the directory if needed.
func SaveRegistry(reg *FormRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
