package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// ReferenceData is a YAML seed of the platform's reference tables.
type ReferenceData struct {
	Courses        []model.CourseRef           `yaml:"courses"`
	Modules        []model.ModuleRef           `yaml:"modules"`
	Professors     []model.ProfessorAssignment `yaml:"professors"`
	Models         []model.ModelPricing        `yaml:"models"`
	Transcriptions []model.TranscriptionCost   `yaml:"transcriptions"`
}

// LoadReference reads a reference-data YAML file.
func LoadReference(path string) (*ReferenceData, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	var ref ReferenceData
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("parsing reference data: %w", err)
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Validate checks IDs and cross references. IDs must be positive; every
// module must point at a listed course when courses are present.
func (r *ReferenceData) Validate() error {
	courses := make(map[int64]bool, len(r.Courses))
	for _, c := range r.Courses {
		if c.ID <= 0 || c.UniversityID <= 0 {
			return fmt.Errorf("course %d: id and universityId must be positive", c.ID)
		}
		courses[c.ID] = true
	}
	for _, m := range r.Modules {
		if m.ID <= 0 || m.CourseID <= 0 {
			return fmt.Errorf("module %d: id and courseId must be positive", m.ID)
		}
		if len(courses) > 0 && !courses[m.CourseID] {
			return fmt.Errorf("module %d: unknown course %d", m.ID, m.CourseID)
		}
	}
	for _, p := range r.Models {
		if p.ModelName == "" {
			return fmt.Errorf("pricing row without modelName")
		}
		if p.InputCostPerMillionTokens < 0 || p.OutputCostPerMillionTokens < 0 {
			return fmt.Errorf("model %s: negative rate", p.ModelName)
		}
	}
	return nil
}
