package models

import "slices"

// Category groups workflows in the portfolio. The set is closed.
type Category string

const (
	CategoryAIAgents       Category = "AI Agents"
	CategoryDataExtraction Category = "Data Extraction"
	CategoryBusinessOps    Category = "Business Ops"
	CategoryMarketing      Category = "Marketing"
)

// AllCategories is the filter sentinel that matches every category.
const AllCategories = "All"

// Categories lists the valid categories in display order.
var Categories = []Category{
	CategoryAIAgents,
	CategoryDataExtraction,
	CategoryBusinessOps,
	CategoryMarketing,
}

// ParseCategory converts untrusted input into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.IsValid()
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// Complexity is an informational difficulty rating for a workflow.
type Complexity string

const (
	ComplexitySimple   Complexity = "Simple"
	ComplexityMedium   Complexity = "Medium"
	ComplexityAdvanced Complexity = "Advanced"
)

// Complexities lists the valid complexity ratings from lowest to highest.
var Complexities = []Complexity{
	ComplexitySimple,
	ComplexityMedium,
	ComplexityAdvanced,
}

// ParseComplexity converts untrusted input into a Complexity.
func ParseComplexity(s string) (Complexity, bool) {
	c := Complexity(s)
	return c, c.IsValid()
}

// IsValid reports whether c is one of the known complexity ratings.
func (c Complexity) IsValid() bool {
	return slices.Contains(Complexities, c)
}

// Severity maps a complexity rating to the display indicator level
// (low, medium, high).
func (c Complexity) Severity() string {
	switch c {
	case ComplexitySimple:
		return "low"
	case ComplexityAdvanced:
		return "high"
	default:
		return "medium"
	}
}

// WorkflowRecord is one portfolio case study. The JSON field names match the
// durable storage format.
type WorkflowRecord struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title" validate:"notblank"`
	ShortDescription string     `json:"shortDescription" yaml:"shortDescription" validate:"notblank"`
	FullDescription  string     `json:"fullDescription" yaml:"fullDescription"`
	Category         Category   `json:"category" yaml:"category" validate:"category"`
	ImageURL         string     `json:"imageUrl" yaml:"imageUrl"`
	NodesCount       int        `json:"nodesCount" yaml:"nodesCount" validate:"gte=0"`
	Complexity       Complexity `json:"complexity" yaml:"complexity" validate:"complexity"`
	Tags             []string   `json:"tags" yaml:"tags"`
}

// Clone returns a deep copy of r so callers never share the tag slice.
func (r WorkflowRecord) Clone() WorkflowRecord {
	cp := r
	cp.Tags = make([]string, len(r.Tags))
	copy(cp.Tags, r.Tags)
	return cp
}

// HasInlineImage reports whether the image is an embedded data URI rather
// than a remote URL.
func (r WorkflowRecord) HasInlineImage() bool {
	return len(r.ImageURL) >= 5 && r.ImageURL[:5] == "data:"
}
