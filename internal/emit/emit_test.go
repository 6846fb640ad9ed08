package emit

import (
	"strings"
	"testing"

	"github.com/rosy-lang/rosyc/internal/lexer"
	"github.com/rosy-lang/rosyc/internal/parser"
	"github.com/rosy-lang/rosyc/internal/resolve"
)

func mustEmit(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	result, err := resolve.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	out, err := Emit(prog, result)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	return out
}

func TestEmitIntegerSum(t *testing.T) {
	out := mustEmit(t, `BEGIN
    VARIABLE (RE) X;
    X := 1 + 2;
    WRITE 6 X;
END;`)
	if !strings.Contains(out, "rosy_add") {
		t.Fatalf("expected an addition call, got:\n%s", out)
	}
	if !strings.Contains(out, "println!") {
		t.Fatalf("expected a println! for WRITE, got:\n%s", out)
	}
}

func TestEmitParameterizedFunctionCall(t *testing.T) {
	out := mustEmit(t, `BEGIN
    FUNCTION ADD (RE) A (RE) B (RE);
        ADD := A + B;
    ENDFUNCTION;
    WRITE 6 ADD(1.5, 2.5);
END;`)
	if !strings.Contains(out, "fn ADD(") {
		t.Fatalf("expected a fn ADD declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "ADD(&1.5_f64") {
		t.Fatalf("expected ADD to be called with its arguments, got:\n%s", out)
	}
}

func TestEmitNestedScopeCaptureForwardsCount(t *testing.T) {
	out := mustEmit(t, `BEGIN
    PROCEDURE OUTER;
        VARIABLE (RE) COUNT;
        PROCEDURE INNER;
            COUNT := COUNT + 1;
        ENDPROCEDURE;
        COUNT := 0;
        INNER();
        INNER();
        INNER();
        WRITE 6 COUNT;
    ENDPROCEDURE;
    OUTER();
END;`)
	if !strings.Contains(out, "fn INNER(COUNT: &mut f64)") {
		t.Fatalf("expected INNER to capture COUNT by mutable reference, got:\n%s", out)
	}
	if !strings.Contains(out, "INNER(&mut COUNT)") {
		t.Fatalf("expected call sites to forward COUNT, got:\n%s", out)
	}
}

func TestEmitLoopIteration(t *testing.T) {
	out := mustEmit(t, `BEGIN
    LOOP I 1 5;
        WRITE 6 I;
    ENDLOOP;
END;`)
	if !strings.Contains(out, "for __I_raw in") {
		t.Fatalf("expected a for loop over the iterator range, got:\n%s", out)
	}
}

func TestEmitWriteWithNoArgsProducesBlankLine(t *testing.T) {
	out := mustEmit(t, `BEGIN
    WRITE 6;
END;`)
	if !strings.Contains(out, "println!();") {
		t.Fatalf("expected a bare println!() for an empty WRITE, got:\n%s", out)
	}
}

func TestEmitInferredFunction(t *testing.T) {
	out := mustEmit(t, `BEGIN
    FUNCTION ADD A B;
        ADD := A + B;
    ENDFUNCTION;
    WRITE 6 ADD(1.5, 2.5);
END;`)
	if !strings.Contains(out, "fn ADD(A: &f64, B: &f64) -> f64") {
		t.Fatalf("expected ADD's inferred signature, got:\n%s", out)
	}
}

func TestEmitBreakOutsideLoopFails(t *testing.T) {
	src := `BEGIN
    BREAK;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	result, err := resolve.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if _, err := Emit(prog, result); err == nil {
		t.Fatalf("expected BREAK outside a loop to be rejected")
	}
}

func TestEmitFitBlock(t *testing.T) {
	out := mustEmit(t, `BEGIN
    VARIABLE (RE) K OBJ;
    FIT K;
        OBJ := K * K;
    ENDFIT 0.0001 100 1 OBJ;
END;`)
	if !strings.Contains(out, "rosy_runtime::optimizer::run_fit") {
		t.Fatalf("expected a run_fit call, got:\n%s", out)
	}
	if !strings.Contains(out, "vec![K]") {
		t.Fatalf("expected knobs packed into a vector, got:\n%s", out)
	}
}

func TestEmitPLoopCoordinate(t *testing.T) {
	out := mustEmit(t, `BEGIN
    VARIABLE (RE[4]) RESULTS;
    VARIABLE (RE) I;
    PLOOP I 1 4;
        RESULTS[I] := I * I;
    ENDPLOOP 1 RESULTS;
END;`)
	if !strings.Contains(out, "group_index") {
		t.Fatalf("expected the worker group-index query, got:\n%s", out)
	}
	if !strings.Contains(out, "coordinate(&mut RESULTS, 1,") {
		t.Fatalf("expected the coordinate broadcast call, got:\n%s", out)
	}
}

func TestEmitAccumulatesIndependentErrors(t *testing.T) {
	src := `BEGIN
    BREAK;
    BREAK;
END;`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	result, err := resolve.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	_, err = Emit(prog, result)
	if err == nil {
		t.Fatalf("expected BREAK-outside-loop errors")
	}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Fatalf("both broken statements should be reported together, got: %v", err)
	}
}
