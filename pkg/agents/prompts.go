package agents

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the system prompts and fallback texts for every agent.
type Prompts struct {
	Profiler struct {
		System string `yaml:"system"`
	} `yaml:"profiler"`

	Interviewer struct {
		System     string   `yaml:"system"`
		RoundKinds []string `yaml:"round_kinds"`
		Fallback   string   `yaml:"fallback"`
	} `yaml:"interviewer"`

	Evaluator struct {
		System   string `yaml:"system"`
		Fallback string `yaml:"fallback"`
	} `yaml:"evaluator"`

	Coach struct {
		System   string `yaml:"system"`
		Fallback string `yaml:"fallback"`
	} `yaml:"coach"`

	Reporter struct {
		System string `yaml:"system"`
	} `yaml:"reporter"`
}

// DefaultPrompts parses the embedded prompt file. The embed is part of the
// build, so a parse failure is a packaging bug and panics at init time.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts(promptsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts are invalid: %v", err))
	}
	return p
}

// ParsePrompts loads prompts from YAML, for deployments that override the
// embedded defaults with a file on disk.
func ParsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if p.Interviewer.Fallback == "" {
		return nil, fmt.Errorf("parse prompts: interviewer fallback must not be empty")
	}
	if len(p.Interviewer.RoundKinds) == 0 {
		return nil, fmt.Errorf("parse prompts: interviewer round kinds must not be empty")
	}
	return &p, nil
}

// KindForRound returns the question focus for a round, rotating through the
// configured kinds and sticking to the last one for later rounds.
func (p *Prompts) KindForRound(round int) string {
	kinds := p.Interviewer.RoundKinds
	if round < 0 {
		round = 0
	}
	if round >= len(kinds) {
		return kinds[len(kinds)-1]
	}
	return kinds[round]
}
