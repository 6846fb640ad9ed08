package emit

import (
	"fmt"
	"strings"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/resolve"
)

// Emitter walks a resolved program and produces TGT (Rust) source text.
// The capture registry is computed once up front (a use-def summary per
// callable) rather than threaded through return values during the walk;
// either way the captured set at each callable must end up exactly the
// transitive set of HigherScope references.
type Emitter struct {
	result   *resolve.Result
	registry captureRegistry
}

// Emit produces the body of the generated program's entry point: one Rust
// statement (or item, for function/procedure declarations) per top-level
// SRC statement, in source order.
func Emit(prog *ast.Program, result *resolve.Result) (string, error) {
	em := &Emitter{
		result:   result,
		registry: buildCaptureRegistry(prog.Statements),
	}
	ctx := newRootContext()
	return em.emitBlock(prog.Statements, nil, ctx, "")
}

func (em *Emitter) emitFunctionDecl(s *ast.FunctionDecl, scope []string, ctx *emitContext, indent string) (string, error) {
	innerScope := append(append([]string{}, scope...), s.Name)
	returnType, ok := em.lookupType(innerScope, s.Name)
	if !ok {
		return "", fmt.Errorf("emit: no resolved return type for function %s", s.Name)
	}

	child := ctx.enterCallable(s.Name, s.Params)
	captured := em.registry[s.Name]

	params := make([]string, 0, len(captured)+len(s.Params))
	for _, name := range captured {
		d, ok := em.lookupType(scope, name)
		if !ok {
			return "", fmt.Errorf("emit: no resolved type for captured variable %s of %s", name, s.Name)
		}
		params = append(params, fmt.Sprintf("%s: &mut %s", name, rustType(d)))
	}
	for _, p := range s.Params {
		d, ok := em.lookupType(innerScope, p.Name)
		if !ok {
			return "", fmt.Errorf("emit: no resolved type for argument %s of %s", p.Name, s.Name)
		}
		params = append(params, fmt.Sprintf("%s: &%s", p.Name, rustType(d)))
	}

	body, err := em.emitBlock(s.Body, innerScope, child, indent+"\t")
	if err != nil {
		pos := s.Pos()
		frame := errors.StackFrame{FunctionName: s.Name, Position: &pos}
		return "", errors.Wrap(err, "transpiling function "+frame.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sfn %s(%s) -> %s {\n", indent, s.Name, strings.Join(params, ", "), rustType(returnType))
	b.WriteString(body)
	fmt.Fprintf(&b, "%s\treturn %s;\n", indent, s.Name)
	fmt.Fprintf(&b, "%s}", indent)
	return b.String(), nil
}

func (em *Emitter) emitProcedureDecl(s *ast.ProcedureDecl, scope []string, ctx *emitContext, indent string) (string, error) {
	innerScope := append(append([]string{}, scope...), s.Name)
	child := ctx.enterCallable(s.Name, s.Params)
	captured := em.registry[s.Name]

	params := make([]string, 0, len(captured)+len(s.Params))
	for _, name := range captured {
		d, ok := em.lookupType(scope, name)
		if !ok {
			return "", fmt.Errorf("emit: no resolved type for captured variable %s of %s", name, s.Name)
		}
		params = append(params, fmt.Sprintf("%s: &mut %s", name, rustType(d)))
	}
	for _, p := range s.Params {
		d, ok := em.lookupType(innerScope, p.Name)
		if !ok {
			return "", fmt.Errorf("emit: no resolved type for argument %s of %s", p.Name, s.Name)
		}
		params = append(params, fmt.Sprintf("%s: &mut %s", p.Name, rustType(d)))
	}

	body, err := em.emitBlock(s.Body, innerScope, child, indent+"\t")
	if err != nil {
		pos := s.Pos()
		frame := errors.StackFrame{FunctionName: s.Name, Position: &pos}
		return "", errors.Wrap(err, "transpiling procedure "+frame.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sfn %s(%s) {\n", indent, s.Name, strings.Join(params, ", "))
	b.WriteString(body)
	fmt.Fprintf(&b, "%s}", indent)
	return b.String(), nil
}
