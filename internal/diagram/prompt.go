package diagram

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config describes one engineering-diagram generation request.
type Config struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Style       string `json:"style"`
	Annotations bool   `json:"annotations"`
	Scale       string `json:"scale,omitempty"`
	Units       string `json:"units,omitempty"`
}

var validStyles = map[string]struct{}{
	"technical": {},
	"schematic": {},
	"blueprint": {},
	"modern":    {},
	"minimal":   {},
}

// Validate checks the configuration before any credit is spent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Type) == "" {
		return errors.New("diagram: type is required")
	}
	if strings.TrimSpace(c.Category) == "" {
		return errors.New("diagram: category is required")
	}
	if len(strings.TrimSpace(c.Description)) < 10 {
		return errors.New("diagram: description must be at least 10 characters")
	}
	if _, ok := validStyles[c.Style]; !ok {
		return fmt.Errorf("diagram: unsupported style %q", c.Style)
	}
	if c.Units != "" && c.Units != "metric" && c.Units != "imperial" {
		return fmt.Errorf("diagram: unsupported units %q", c.Units)
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// Name derives the display name stored with the generated record.
func (c Config) Name() string {
	return titleCaser.String(strings.TrimSpace(c.Type)) + " Diagram"
}

// Tags derives the comma-separated tag list for the record.
func (c Config) Tags() string {
	return strings.Join([]string{c.Category, c.Type, c.Style}, ",")
}

var styleHints = map[string]string{
	"technical": "technical drawing style, black and white, precise lines, engineering standard",
	"schematic": "schematic diagram with standard symbols, clean lines, professional",
	"blueprint": "blueprint style, blue background, white lines, architectural drawing",
	"modern":    "modern clean design, minimal colors, clear hierarchy",
	"minimal":   "minimalist diagram, simple shapes, monochrome",
}

// BuildPrompt assembles the provider prompt for the configuration. Pure
// string building, no state.
func BuildPrompt(c Config) string {
	parts := []string{strings.TrimSpace(c.Description)}
	if hint, ok := styleHints[c.Style]; ok {
		parts = append(parts, hint)
	}
	if c.Annotations {
		parts = append(parts, "with labels and annotations")
	}
	parts = append(parts,
		"high precision, clear connections, professional quality",
		fmt.Sprintf("%s diagram format", c.Type),
	)
	if viewpoint := viewpointHint(c.Category, c.Type); viewpoint != "" {
		parts = append(parts, viewpoint)
	}
	if c.Units != "" {
		parts = append(parts, fmt.Sprintf("Include dimensions and scale in %s units.", c.Units))
	}
	return strings.Join(parts, ", ")
}

// viewpointHint enforces the projection expectations per diagram family.
func viewpointHint(category, diagramType string) string {
	switch category {
	case "architecture":
		switch diagramType {
		case "floorplan":
			return "Top-down floorplan (orthographic), walls as thick lines, doors as arcs, room labels, and dimension lines."
		case "isometric":
			return "Isometric (3D) projection showing depth and elevation, not top-down."
		}
	case "cad":
		if diagramType == "mechanical" {
			return "Orthographic projection (front/top/side) with precise dimensions and tolerances."
		}
	case "network":
		return "Top-down logical network diagram with standardized symbols and labeled links."
	case "circuit":
		return "Schematic circuit diagram using standard symbols, clear net labels, no perspective."
	case "flowchart":
		return "Flowchart layout with directional connectors and labeled decision nodes."
	}
	return ""
}
