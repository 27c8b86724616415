package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// stageManifest describes a pipeline's stage topology on disk: every stage
// a wire-format file is going to reference, named and policy-tagged ahead
// of parsing, rather than left to parser.Parse's create-on-demand
// fallback. Only the stagecall dialect is wired to this CLI, so a
// manifest entry needs no dialect field.
type stageManifest struct {
	Stages []struct {
		Name   string `yaml:"name"`
		Policy string `yaml:"policy"`
	} `yaml:"stages"`
}

// loadManifest reads path and pre-registers every stage it names on p.
func loadManifest(path string, p *pipeline.Pipeline) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m stageManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}

	for _, s := range m.Stages {
		policy := stage.SingleDispatch
		switch s.Policy {
		case "", "single":
			policy = stage.SingleDispatch
		case "multiple":
			policy = stage.MultipleDispatch
		default:
			return fmt.Errorf("manifest stage %q: unknown policy %q", s.Name, s.Policy)
		}
		addStagecallStage(p, s.Name, policy)
	}
	return nil
}
