// Package intake provides a deterministic, model-free extractor for
// candidate material. It is the offline counterpart to the language-model
// profiler: air-gapped deployments and tests use it directly, and its
// heading parser defines how a declared target role is recognized.
package intake

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/candidhq/candid/pkg/ports"
)

// maxProfileLines bounds how much of the material the plain extractor
// repeats back as the profile.
const maxProfileLines = 8

// Extractor implements ports.Extractor without any model call.
type Extractor struct{}

// NewExtractor creates a plain-text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract summarizes the material by taking its leading prose lines and
// parsing the declared target role from headings.
func (e *Extractor) Extract(_ context.Context, material string) (*ports.Extraction, error) {
	if strings.TrimSpace(material) == "" {
		return nil, fmt.Errorf("candidate material is empty")
	}

	return &ports.Extraction{
		Profile:    leadingProse(material),
		TargetRole: ParseTargetRole(material),
	}, nil
}

// leadingProse collects the first block of non-empty prose lines, stopping
// at the next heading once any prose has been seen.
func leadingProse(material string) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(material))
	for scanner.Scan() && len(lines) < maxProfileLines {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			if len(lines) > 0 {
				break
			}
			continue
		}
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// ParseTargetRole scans for a "Target Role" heading and returns the first
// non-empty line of its section.
func ParseTargetRole(material string) string {
	scanner := bufio.NewScanner(strings.NewReader(material))
	inSection := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(line, "# "))
			if strings.EqualFold(heading, "target role") {
				inSection = true
				continue
			}
			if inSection {
				return ""
			}
			continue
		}
		if inSection && line != "" {
			return line
		}
	}
	return ""
}
