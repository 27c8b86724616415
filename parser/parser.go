package parser

import (
	"fmt"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
	"github.com/QuEraComputing/kirin/lexer"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// header is one parsed `stage ...;` or `specialize ... { ... }` declaration.
type header struct {
	isSpecialize bool
	pos          lexer.Position
	stageName    string
	fnName       string
	paramNames   []string
	resultName   string
	body         string // specialize only: the raw text between { and }
}

type scanner struct {
	toks []lexer.Token
	pos  int
	text string
	file string
}

func (s *scanner) peek() lexer.Token { return s.toks[s.pos] }

func (s *scanner) next() lexer.Token {
	t := s.toks[s.pos]
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return t
}

func (s *scanner) expect(t lexer.TokenType) (lexer.Token, error) {
	got := s.next()
	if got.Type != t {
		return got, kerrors.NewParseError(kerrors.InvalidHeader, got.Pos,
			fmt.Sprintf("expected %s, got %s %q", t, got.Type, got.Literal), s.text, s.file)
	}
	return got, nil
}

// sigilName strips a token's leading sigil (@, %, ^), used for GLOBAL/LOCAL
// tokens whose Literal carries it.
func sigilName(t lexer.Token) string {
	if len(t.Literal) > 0 {
		return t.Literal[1:]
	}
	return ""
}

func (s *scanner) parseHeader() (header, error) {
	var h header

	kw := s.next()
	switch kw.Type {
	case lexer.STAGE:
		h.isSpecialize = false
	case lexer.SPECIALIZE:
		h.isSpecialize = true
	default:
		return h, kerrors.NewParseError(kerrors.InvalidHeader, kw.Pos,
			fmt.Sprintf("expected 'stage' or 'specialize', got %q", kw.Literal), s.text, s.file)
	}
	h.pos = kw.Pos

	stageTok, err := s.expect(lexer.GLOBAL)
	if err != nil {
		return h, err
	}
	h.stageName = sigilName(stageTok)

	if _, err := s.expect(lexer.FN); err != nil {
		return h, err
	}

	fnTok, err := s.expect(lexer.GLOBAL)
	if err != nil {
		return h, err
	}
	h.fnName = sigilName(fnTok)

	if _, err := s.expect(lexer.LPAREN); err != nil {
		return h, err
	}
	for s.peek().Type != lexer.RPAREN {
		tyTok, err := s.expect(lexer.IDENT)
		if err != nil {
			return h, err
		}
		h.paramNames = append(h.paramNames, tyTok.Literal)
		if s.peek().Type == lexer.COMMA {
			s.next()
		}
	}
	if _, err := s.expect(lexer.RPAREN); err != nil {
		return h, err
	}

	if _, err := s.expect(lexer.ARROW); err != nil {
		return h, err
	}
	resTok, err := s.expect(lexer.IDENT)
	if err != nil {
		return h, err
	}
	h.resultName = resTok.Literal

	if !h.isSpecialize {
		if _, err := s.expect(lexer.SEMI); err != nil {
			return h, err
		}
		return h, nil
	}

	open, err := s.expect(lexer.LBRACE)
	if err != nil {
		return h, err
	}
	bodyStart := open.Pos.Offset + 1

	depth := 1
	var closeTok lexer.Token
	for depth > 0 {
		t := s.next()
		switch t.Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth == 0 {
				closeTok = t
			}
		case lexer.EOF:
			return h, kerrors.NewParseError(kerrors.InvalidHeader, open.Pos,
				"unterminated specialize body: missing '}'", s.text, s.file)
		}
	}
	h.body = s.text[bodyStart:closeTok.Pos.Offset]
	return h, nil
}

func splitHeaders(text, file string) ([]header, error) {
	toks := lexer.All(text)
	s := &scanner{toks: toks, text: text, file: file}

	var out []header
	for s.peek().Type != lexer.EOF {
		h, err := s.parseHeader()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Parse tokenizes text and installs every declaration it finds against a
// single dialect (L, T): each `stage @NAME ...` header resolves @NAME to
// an existing stage of that dialect, or creates one under policy if no
// stage of that name exists yet; each `specialize @NAME ...` header
// attaches a body, parsed via codec, to the staged function its header
// names. Declarations run in two passes (every stage header, then every
// specialize body) so a specialize may forward-reference a stage declared
// later in the same text. Parse returns the Function ids touched. file, if
// non-empty, names the source for error messages.
func Parse[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, codec BodyCodec[L, T], policy stage.StagedNamePolicy, text, file string) ([]ids.Function, error) {
	headers, err := splitHeaders(text, file)
	if err != nil {
		return nil, err
	}

	stages := map[string]*stage.StageInfo[L, T]{}
	for _, h := range headers {
		if _, ok := stages[h.stageName]; ok {
			continue
		}
		info, err := resolveStage[L, T](p, h.stageName, policy, h.pos, text, file)
		if err != nil {
			return nil, err
		}
		stages[h.stageName] = info
	}

	touched := map[ids.Function]struct{}{}

	for _, h := range headers {
		if h.isSpecialize {
			continue
		}
		fn, err := installStage(p, stages[h.stageName], codec, h, text, file)
		if err != nil {
			return nil, err
		}
		touched[fn] = struct{}{}
	}

	for _, h := range headers {
		if !h.isSpecialize {
			continue
		}
		fn, err := installSpecialize(p, stages[h.stageName], codec, h, text, file)
		if err != nil {
			return nil, err
		}
		touched[fn] = struct{}{}
	}

	out := make([]ids.Function, 0, len(touched))
	for fn := range touched {
		out = append(out, fn)
	}
	return out, nil
}

// resolveStage resolves name to an already-registered stage of dialect
// (L, T), or registers a fresh one under policy if no stage by that name
// exists at all. A name that resolves to a stage of a *different* dialect
// is an UnknownStage error with a closest-match suggestion, since from the
// caller's perspective the name they meant is simply not there.
func resolveStage[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, name string, policy stage.StagedNamePolicy, pos lexer.Position, text, file string) (*stage.StageInfo[L, T], error) {
	sym := p.Symbols.Intern(name)
	if handle, err := p.StageByName(sym); err == nil {
		info, ok := pipeline.ForDialect[L, T](handle)
		if !ok {
			return nil, unknownStageError(p, name, pos, text, file)
		}
		return info, nil
	}
	_, info := pipeline.AddStage[L, T](p, name, policy)
	return info, nil
}

func resolveTypes[T any](codec TypeCodec[T], names []string, pos lexer.Position, text, file string) ([]T, error) {
	out := make([]T, len(names))
	for i, name := range names {
		t, ok := codec.ParseType(name)
		if !ok {
			return nil, kerrors.NewParseError(kerrors.InvalidHeader, pos,
				fmt.Sprintf("unknown type %q", name), text, file)
		}
		out[i] = t
	}
	return out, nil
}

func installStage[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, info *stage.StageInfo[L, T], codec BodyCodec[L, T], h header, text, file string) (ids.Function, error) {
	params, err := resolveTypes[T](codec, h.paramNames, h.pos, text, file)
	if err != nil {
		return 0, err
	}
	result, ok := codec.ParseType(h.resultName)
	if !ok {
		return 0, kerrors.NewParseError(kerrors.InvalidHeader, h.pos,
			fmt.Sprintf("unknown type %q", h.resultName), text, file)
	}

	fn := p.Function(h.fnName)
	sig := stage.Signature[T]{Params: params, Result: result}
	var stg ids.CompileStage
	if info.ID != nil {
		stg = *info.ID
	}
	if _, err := pipeline.StagedFunction[L, T](p).Func(fn).Stage(stg).Signature(sig).New(); err != nil {
		return 0, err
	}
	return fn, nil
}

func installSpecialize[L any, T lattice.Lattice[T]](p *pipeline.Pipeline, info *stage.StageInfo[L, T], codec BodyCodec[L, T], h header, text, file string) (ids.Function, error) {
	fn := p.Function(h.fnName)

	staged := info.StagedOf(fn)
	if len(staged) == 0 {
		return 0, kerrors.NewParseError(kerrors.MissingStageDeclaration, h.pos,
			fmt.Sprintf("specialize %%%s references function @%s with no preceding stage @%s declaration", h.fnName, h.fnName, h.stageName),
			text, file)
	}

	params, err := resolveTypes[T](codec, h.paramNames, h.pos, text, file)
	if err != nil {
		return 0, err
	}
	result, ok := codec.ParseType(h.resultName)
	if !ok {
		return 0, kerrors.NewParseError(kerrors.InvalidHeader, h.pos,
			fmt.Sprintf("unknown type %q", h.resultName), text, file)
	}
	sig := stage.Signature[T]{Params: params, Result: result}

	body, err := codec.ParseBody(h.body, info.Store)
	if err != nil {
		return 0, kerrors.NewParseError(kerrors.EmitFailed, h.pos, err.Error(), text, file)
	}

	// A Function has more than one staged function only under
	// MultipleDispatch; attach to whichever one this signature is actually
	// subsumed by.
	var lastErr error
	for _, sf := range staged {
		_, err := info.Specialize().Of(sf).Signature(sig).Body(body).New()
		if err == nil {
			return fn, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// stageNames returns the names of every stage currently registered on p,
// for UnknownStage suggestions.
func stageNames(p *pipeline.Pipeline) []string {
	var names []string
	for _, h := range p.Stages() {
		if name := h.Name(); name != nil {
			if s, ok := p.Symbols.Resolve(*name); ok {
				names = append(names, s)
			}
		}
	}
	return names
}

// unknownStageError reports that text named a stage symbol that exists
// under a different dialect than the one Parse was called for, suggesting
// the closest known name if any are registered.
func unknownStageError(p *pipeline.Pipeline, name string, pos lexer.Position, text, file string) error {
	msg := fmt.Sprintf("unknown stage @%s", name)
	if suggestion := closestName(name, stageNames(p)); suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean @%s?)", msg, suggestion)
	}
	return kerrors.NewParseError(kerrors.UnknownStage, pos, msg, text, file)
}
