package cmd

import (
	"io"
	"os"

	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// stagecallCodec is the one BodyCodec/TypeCodec this CLI wires up. A
// second dialect would need its own parse/run/print plumbing since Go
// generics fix (L, T) per call site; this binary ships with exactly one.
var stagecallCodec = stagecall.Codec{}

// addStagecallStage registers a fresh stagecall stage under name.
func addStagecallStage(p *pipeline.Pipeline, name string, policy stage.StagedNamePolicy) *stage.StageInfo[*stagecall.Op, stagecall.IntType] {
	_, info := pipeline.AddStage[*stagecall.Op, stagecall.IntType](p, name, policy)
	return info
}

// readSource returns path's contents, or stdin's if path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
