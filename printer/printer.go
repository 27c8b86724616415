// Package printer is parser.Parse's inverse: given a StagedFunction or
// SpecializedFunction it emits the wire-format text parser.Parse accepts,
// so that print ∘ parse is the identity on valid input (modulo trailing
// whitespace). Like parser, a dialect's own statement syntax is opaque
// here — emitted through the same BodyCodec the caller supplies.
package printer

import (
	"fmt"
	"strings"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
	"github.com/QuEraComputing/kirin/parser"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

func functionName(p *pipeline.Pipeline, fn ids.Function) string {
	info, ok := p.Functions.Get(fn)
	if !ok || info.Name == nil {
		return fmt.Sprintf("%d", fn.Raw())
	}
	name, ok := p.Symbols.Resolve(*info.Name)
	if !ok {
		return fmt.Sprintf("%d", fn.Raw())
	}
	return name
}

func signatureText[T any](codec parser.TypeCodec[T], sig stage.Signature[T]) (params, result string) {
	names := make([]string, len(sig.Params))
	for i, t := range sig.Params {
		names[i] = codec.TypeName(t)
	}
	return strings.Join(names, ", "), codec.TypeName(sig.Result)
}

// StagedFunction renders a single `stage @NAME fn @FUNC(...) -> R;` header.
func StagedFunction[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, info *stage.StageInfo[L, T], codec parser.TypeCodec[T], sf ids.StagedFunction) (string, error) {
	stageName := ""
	if info.Name != nil {
		stageName, _ = p.Symbols.Resolve(*info.Name)
	}
	sfi, ok := info.StagedFunctions.Get(sf)
	if !ok {
		return "", kerrors.ArenaMiss{Detail: fmt.Sprintf("staged function %d", sf.Raw())}
	}
	params, result := signatureText[T](codec, sfi.Signature)
	return fmt.Sprintf("stage @%s fn @%s(%s) -> %s;\n", stageName, functionName(p, sfi.Function), params, result), nil
}

// Specialization renders a single `specialize @NAME fn @FUNC(...) -> R {
// <body> }` definition, using codec to emit the body statement's text.
func Specialization[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, info *stage.StageInfo[L, T], codec parser.BodyCodec[L, T], spec ids.SpecializedFunction) (string, error) {
	si, ok := info.Specialized.Get(spec)
	if !ok {
		return "", kerrors.ArenaMiss{Detail: fmt.Sprintf("specialized function %d", spec.Raw())}
	}
	sfi, ok := info.StagedFunctions.Get(si.Staged)
	if !ok {
		return "", kerrors.ArenaMiss{Detail: fmt.Sprintf("staged function %d", si.Staged.Raw())}
	}
	stageName := ""
	if info.Name != nil {
		stageName, _ = p.Symbols.Resolve(*info.Name)
	}
	params, result := signatureText[T](codec, si.Signature)
	body := codec.EmitBody(info.Store, si.Body)
	return fmt.Sprintf("specialize @%s fn @%s(%s) -> %s {\n%s\n}\n", stageName, functionName(p, sfi.Function), params, result, body), nil
}

// Stage renders an entire stage: its staged-function header followed by
// every one of its non-invalidated specializations, matching the order
// parser.Parse's two-pass install expects on re-parse.
func Stage[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, info *stage.StageInfo[L, T], codec parser.BodyCodec[L, T]) (string, error) {
	var sb strings.Builder

	var allStaged []ids.StagedFunction
	info.StagedFunctions.Iter(func(id ids.StagedFunction, _ *stage.StagedFunctionInfo[T]) bool {
		allStaged = append(allStaged, id)
		return true
	})

	for _, sf := range allStaged {
		text, err := StagedFunction[L, T](p, info, codec, sf)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}

	for _, sf := range allStaged {
		for _, spec := range info.LiveSpecializations(sf) {
			text, err := Specialization[L, T](p, info, codec, spec)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
	}

	return sb.String(), nil
}
