package resolve

import (
	"strings"
	"testing"

	"github.com/rosy-lang/rosyc/internal/lexer"
	"github.com/rosy-lang/rosyc/internal/parser"
	"github.com/rosy-lang/rosyc/internal/types"
)

func TestResolveSimpleProgram(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE) X Y;
    X := 1.5;
    Y := X + 2.0;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	result, err := Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	xType, ok := result.Symbols.Lookup(nil, "X")
	if !ok || xType.Base != types.RE {
		t.Fatalf("expected X: RE, got %v (%v)", xType, ok)
	}
}

func TestResolveFunctionReturnType(t *testing.T) {
	src := `BEGIN
    FUNCTION SQUARE (RE) X (RE);
        SQUARE := X * X;
    ENDFUNCTION;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	result, err := Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	sig, ok := result.Functions["SQUARE"]
	if !ok {
		t.Fatalf("expected SQUARE function signature")
	}
	if sig.ReturnType.Base != types.RE {
		t.Fatalf("expected RE return type, got %v", sig.ReturnType)
	}
}

func TestResolveRejectsUndefinedConcat(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE) X;
    VARIABLE (ST) S;
    X := 1.0;
    S := X & X;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected a type conflict error for RE & RE")
	}
	if !strings.Contains(err.Error(), "Type Conflict") {
		t.Fatalf("expected a Type Conflict diagnostic, got: %v", err)
	}
}

func TestResolveArrayIndexStripsDimension(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE[3]) A;
    VARIABLE (RE) X;
    X := A[1];
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	if _, err := Resolve(prog); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
}

func TestResolveInfersUntypedFunctionFromCallSite(t *testing.T) {
	src := `BEGIN
    FUNCTION ADD A B;
        ADD := A + B;
    ENDFUNCTION;
    WRITE 6 ADD(1.5, 2.5);
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	result, err := Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	sig := result.Functions["ADD"]
	if sig == nil {
		t.Fatalf("expected ADD signature")
	}
	if sig.ReturnType.Base != types.RE {
		t.Fatalf("expected inferred RE return, got %v", sig.ReturnType)
	}
	for i, pt := range sig.ParamTypes {
		if pt.Base != types.RE {
			t.Fatalf("expected parameter %d inferred as RE, got %v", i, pt)
		}
	}
}

func TestResolveInfersVariableFromAssignment(t *testing.T) {
	src := `BEGIN
    FUNCTION GREETING;
        GREETING := "hello";
    ENDFUNCTION;
    WRITE 6 GREETING();
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	result, err := Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if result.Functions["GREETING"].ReturnType.Base != types.ST {
		t.Fatalf("expected GREETING to return ST, got %v", result.Functions["GREETING"].ReturnType)
	}
}

func TestResolveReportsDeclaredAssignConflict(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE) X;
    X := "hello";
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected a type conflict")
	}
	msg := err.Error()
	if !strings.Contains(msg, "RE") || !strings.Contains(msg, "ST") || !strings.Contains(msg, "'X'") {
		t.Fatalf("conflict diagnostic should name X, RE and ST, got: %v", msg)
	}
}

func TestResolveReportsUnresolvableFunction(t *testing.T) {
	src := `BEGIN
    FUNCTION F;
    ENDFUNCTION;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected an unresolved-slot error")
	}
	if !strings.Contains(err.Error(), "Type Resolution Failed") {
		t.Fatalf("expected the boxed resolution report, got: %v", err)
	}
	if !strings.Contains(err.Error(), "'F'") {
		t.Fatalf("report should name F, got: %v", err)
	}
}

func TestResolveReportsCycle(t *testing.T) {
	src := `BEGIN
    FUNCTION F;
        F := G();
    ENDFUNCTION;
    FUNCTION G;
        G := F();
    ENDFUNCTION;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Circular") {
		t.Fatalf("expected the circular-dependency section, got: %v", msg)
	}
	if !strings.Contains(msg, "'F'") || !strings.Contains(msg, "'G'") {
		t.Fatalf("cycle report should name both F and G, got: %v", msg)
	}
}

func TestResolveConditionalReturnAssignment(t *testing.T) {
	src := `BEGIN
    FUNCTION CLAMP X;
        IF X > 1.0;
            CLAMP := 1.0;
        ELSE;
            CLAMP := X;
        ENDIF;
    ENDFUNCTION;
    WRITE 6 CLAMP(2.0);
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	result, err := Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if result.Functions["CLAMP"].ReturnType.Base != types.RE {
		t.Fatalf("expected CLAMP inferred as RE, got %v", result.Functions["CLAMP"].ReturnType)
	}
}

func TestResolveRejectsArityMismatch(t *testing.T) {
	src := `BEGIN
    FUNCTION ADD (RE) A (RE) B (RE);
        ADD := A + B;
    ENDFUNCTION;
    WRITE 6 ADD(1.0);
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected an arity error")
	}
	if !strings.Contains(err.Error(), "1 argument") || !strings.Contains(err.Error(), "2 parameter") {
		t.Fatalf("expected arity counts in the diagnostic, got: %v", err)
	}
}

func TestResolveRejectsRedeclaration(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE) X;
    VARIABLE (ST) X;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected a redeclaration error")
	}
	if !strings.Contains(err.Error(), "declared twice") {
		t.Fatalf("expected a redeclaration diagnostic, got: %v", err)
	}
}

func TestResolveRejectsOverIndexing(t *testing.T) {
	src := `BEGIN
    VARIABLE (RE[3]) A;
    VARIABLE (RE) X;
    X := A[1, 2];
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected an over-indexing error")
	}
	if !strings.Contains(err.Error(), "indices") {
		t.Fatalf("expected an index-count diagnostic, got: %v", err)
	}
}

func TestResolveAccumulatesIndependentErrors(t *testing.T) {
	src := `BEGIN
    WRITE 6 A;
    WRITE 6 B;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	_, err := Resolve(prog)
	if err == nil {
		t.Fatalf("expected undeclared-name errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "'A'") || !strings.Contains(msg, "'B'") {
		t.Fatalf("both independent failures should be reported together, got: %v", msg)
	}
}
