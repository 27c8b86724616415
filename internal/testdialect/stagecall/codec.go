package stagecall

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/ir"
)

// Codec is this dialect's own statement-body syntax:
//
//	^entry(%n: i64):
//	%z: i64 = const 0
//	condzero %n, ^done, ^dec
//	^dec:
//	%m: i64 = dec %n
//	return %m
//	^done:
//	return %z
//
// StageCall has no textual form: cross-stage bounces are wired up directly
// in Go (see the package's own tests), since the wire format has no syntax
// for naming a specialization in another stage that may not exist yet at
// parse time.
type Codec struct{}

func (Codec) ParseType(name string) (IntType, bool) {
	if name == "i64" {
		return IntType{}, true
	}
	return IntType{}, false
}

func (Codec) TypeName(IntType) string { return "i64" }

type blockText struct {
	label    string
	argDecls []string
	lines    []string
}

func splitBlocks(body string) []blockText {
	var rawLines []string
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			rawLines = append(rawLines, l)
		}
	}
	if len(rawLines) == 0 {
		return nil
	}

	var blocks []blockText
	cur := blockText{label: "entry"}
	started := false
	for _, l := range rawLines {
		if strings.HasPrefix(l, "^") && strings.HasSuffix(l, ":") {
			if started {
				blocks = append(blocks, cur)
			}
			label, argDecls := parseBlockHeader(l)
			cur = blockText{label: label, argDecls: argDecls}
			started = true
			continue
		}
		started = true
		cur.lines = append(cur.lines, l)
	}
	blocks = append(blocks, cur)
	return blocks
}

func parseBlockHeader(l string) (string, []string) {
	l = strings.TrimSuffix(l, ":")
	l = strings.TrimPrefix(l, "^")
	name := l
	var decls []string
	if i := strings.IndexByte(l, '('); i >= 0 {
		name = l[:i]
		inner := strings.TrimSuffix(l[i+1:], ")")
		if inner != "" {
			for _, d := range strings.Split(inner, ",") {
				decls = append(decls, strings.TrimSpace(d))
			}
		}
	}
	return name, decls
}

func opName(s string) (string, string, bool) {
	name, ty, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "%")), strings.TrimSpace(ty), true
}

// ParseBody mirrors arith.Codec.ParseBody's construction strategy:
// predicting each block's id from allocation order so forward branch
// targets resolve before the blocks that reference them are built.
func (c Codec) ParseBody(body string, store *ir.Store[*Op, IntType]) (ids.Statement, error) {
	blocks := splitBlocks(body)
	if len(blocks) == 0 {
		return 0, fmt.Errorf("stagecall: empty specialization body")
	}

	base := int(store.Blocks.NextId())
	labelIndex := make(map[string]int, len(blocks))
	for i, b := range blocks {
		labelIndex[b.label] = i
	}
	blockID := func(label string) (ids.Block, error) {
		i, ok := labelIndex[label]
		if !ok {
			return 0, fmt.Errorf("stagecall: unknown block label ^%s", label)
		}
		return ids.Block(base + i), nil
	}

	values := map[string]ids.SSAValue{}

	for i, b := range blocks {
		id := ids.Block(base + i)

		var args []ids.SSAValue
		for _, decl := range b.argDecls {
			name, tyName, ok := opName(decl)
			if !ok {
				return 0, fmt.Errorf("stagecall: malformed block argument %q", decl)
			}
			t, ok := c.ParseType(tyName)
			if !ok {
				return 0, fmt.Errorf("stagecall: unknown type %q", tyName)
			}
			arg := store.SSA().Name(name).Ty(t).AsBlockArgument(id).New()
			values[name] = arg
			args = append(args, arg)
		}

		var stmts []ids.Statement
		var terminator ids.Statement
		for _, line := range b.lines {
			stmtID, isTerm, err := c.parseLine(store, line, values, blockID)
			if err != nil {
				return 0, err
			}
			if isTerm {
				terminator = stmtID
			} else {
				stmts = append(stmts, stmtID)
			}
		}

		built, err := store.Block().Name(b.label).Stmt(stmts...).Terminator(terminator).New()
		if err != nil {
			return 0, err
		}
		if built != id {
			return 0, fmt.Errorf("stagecall: internal block id mismatch: predicted %d, got %d", id, built)
		}
		info, _ := store.Blocks.GetMut(built)
		info.Arguments = args
	}

	var regionBlocks []ids.Block
	for i := range blocks {
		regionBlocks = append(regionBlocks, ids.Block(base+i))
	}
	builder := store.Region()
	for _, b := range regionBlocks {
		builder = builder.AddBlock(b)
	}
	region, err := builder.New()
	if err != nil {
		return 0, err
	}

	return store.Statement().Definition(Body(region)).New(), nil
}

func (c Codec) parseLine(store *ir.Store[*Op, IntType], line string, values map[string]ids.SSAValue, blockID func(string) (ids.Block, error)) (ids.Statement, bool, error) {
	if strings.HasPrefix(line, "return ") {
		v, err := lookupValue(values, strings.TrimSpace(strings.TrimPrefix(line, "return ")))
		if err != nil {
			return 0, false, err
		}
		return store.Statement().Definition(Return(v)).New(), true, nil
	}
	if strings.HasPrefix(line, "jump ") {
		target, err := blockID(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "jump ")), "^"))
		if err != nil {
			return 0, false, err
		}
		return store.Statement().Definition(Jump(ids.Successor{Target: target})).New(), true, nil
	}
	if strings.HasPrefix(line, "condzero ") {
		rest := strings.TrimSpace(strings.TrimPrefix(line, "condzero "))
		parts := strings.Split(rest, ",")
		if len(parts) != 3 {
			return 0, false, fmt.Errorf("stagecall: condzero wants 3 operands, got %q", line)
		}
		cond, err := lookupValue(values, strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, false, err
		}
		zeroB, err := blockID(strings.TrimPrefix(strings.TrimSpace(parts[1]), "^"))
		if err != nil {
			return 0, false, err
		}
		nonZeroB, err := blockID(strings.TrimPrefix(strings.TrimSpace(parts[2]), "^"))
		if err != nil {
			return 0, false, err
		}
		stmt := store.Statement().Definition(CondZero(cond, ids.Successor{Target: zeroB}, ids.Successor{Target: nonZeroB})).New()
		return stmt, true, nil
	}

	name, rhs, ok := strings.Cut(line, "=")
	if !ok {
		return 0, false, fmt.Errorf("stagecall: malformed statement %q", line)
	}
	resName, tyName, ok := opName(name)
	if !ok {
		return 0, false, fmt.Errorf("stagecall: malformed result declaration %q", name)
	}
	t, ok := c.ParseType(tyName)
	if !ok {
		return 0, false, fmt.Errorf("stagecall: unknown type %q", tyName)
	}

	def, err := parseOp(strings.TrimSpace(rhs), values)
	if err != nil {
		return 0, false, err
	}

	stmtID := store.Statement().Definition(def).ResultTypes(t).New()
	results := def.Results()
	if len(results) != 1 {
		return 0, false, fmt.Errorf("stagecall: statement %q did not produce exactly one result", line)
	}
	sym := store.Symbols.Intern(resName)
	if info, ok := store.SSAs.GetMut(results[0]); ok {
		info.Name = &sym
	}
	values[resName] = results[0]
	return stmtID, false, nil
}

func parseOp(text string, values map[string]ids.SSAValue) (*Op, error) {
	op, argsText, ok := strings.Cut(text, " ")
	if !ok {
		op, argsText = text, ""
	}
	var args []ids.SSAValue
	for _, a := range strings.Split(argsText, ",") {
		a = strings.TrimSpace(a)
		if a == "" || op == "const" {
			continue
		}
		v, err := lookupValue(values, a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch op {
	case "const":
		n, err := strconv.ParseInt(strings.TrimSpace(argsText), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stagecall: bad constant %q: %w", argsText, err)
		}
		return Const(n), nil
	case "dec":
		if len(args) != 1 {
			return nil, fmt.Errorf("stagecall: dec wants 1 operand, got %q", text)
		}
		return Dec(args[0]), nil
	default:
		return nil, fmt.Errorf("stagecall: unknown op %q", op)
	}
}

func lookupValue(values map[string]ids.SSAValue, ref string) (ids.SSAValue, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "%")
	v, ok := values[ref]
	if !ok {
		return 0, fmt.Errorf("stagecall: unbound value %%%s", ref)
	}
	return v, nil
}

// EmitBody is ParseBody's inverse.
func (c Codec) EmitBody(store *ir.Store[*Op, IntType], stmt ids.Statement) string {
	info, ok := store.Statement(stmt)
	if !ok {
		return ""
	}
	regions := info.Definition.Regions()
	if len(regions) == 0 {
		return ""
	}
	blocks := store.RegionBlocks(regions[0])

	var sb strings.Builder
	names := map[ids.SSAValue]string{}
	nextTemp := 0
	nameOf := func(v ids.SSAValue) string {
		if n, ok := names[v]; ok {
			return n
		}
		if info, ok := store.SSA(v); ok && info.Name != nil {
			if s, ok := store.Symbols.Resolve(*info.Name); ok {
				names[v] = s
				return s
			}
		}
		n := fmt.Sprintf("t%d", nextTemp)
		nextTemp++
		names[v] = n
		return n
	}

	// labelOf is computed for every block up front so branch targets
	// render the same label a forward reference used to name them, not
	// the raw id a single-block body's header skips printing under.
	labelOf := make(map[ids.Block]string, len(blocks))
	for _, b := range blocks {
		bi, ok := store.Block(b)
		if !ok {
			continue
		}
		label := fmt.Sprintf("%d", b.Raw())
		if bi.Name != nil {
			if s, ok := store.Symbols.Resolve(*bi.Name); ok {
				label = s
			}
		}
		labelOf[b] = label
	}

	for _, b := range blocks {
		bi, ok := store.Block(b)
		if !ok {
			continue
		}
		if len(bi.Arguments) > 0 || len(blocks) > 1 {
			var argDecls []string
			for _, a := range bi.Arguments {
				argDecls = append(argDecls, fmt.Sprintf("%%%s: %s", nameOf(a), c.TypeName(IntType{})))
			}
			fmt.Fprintf(&sb, "^%s(%s):\n", labelOf[b], strings.Join(argDecls, ", "))
		}

		for _, sid := range store.BodyStatements(b) {
			si, _ := store.Statement(sid)
			sb.WriteString(c.emitStatement(si.Definition, nameOf, labelOf))
			sb.WriteString("\n")
		}
		if bi.Terminator != nil {
			ti, _ := store.Statement(*bi.Terminator)
			sb.WriteString(c.emitStatement(ti.Definition, nameOf, labelOf))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c Codec) emitStatement(op *Op, nameOf func(ids.SSAValue) string, labelOf map[ids.Block]string) string {
	switch op.Kind {
	case KindConst:
		return fmt.Sprintf("%%%s: i64 = const %d", nameOf(op.Results()[0]), op.Value)
	case KindDec:
		return fmt.Sprintf("%%%s: i64 = dec %%%s", nameOf(op.Results()[0]), nameOf(op.args[0]))
	case KindReturn:
		return fmt.Sprintf("return %%%s", nameOf(op.args[0]))
	case KindJump:
		return fmt.Sprintf("jump ^%s", labelOf[op.Target.Target])
	case KindCondZero:
		return fmt.Sprintf("condzero %%%s, ^%s, ^%s", nameOf(op.args[0]), labelOf[op.ZeroTarget.Target], labelOf[op.NonZeroTarget.Target])
	case KindStageCall:
		return fmt.Sprintf("; stagecall %%%s -> stage %d spec %d (no textual form)", nameOf(op.args[0]), op.CalleeStage.Raw(), op.CalleeSpec.Raw())
	default:
		return ""
	}
}
