package types

// pair is a (lhs, rhs) base-kind key into an operator's result table.
type pair struct {
	lhs Base
	rhs Base
}

// opTable is the single source of truth for a binary operator's allowed
// operand/result combinations. Both the resolver (to compute an
// expression's type) and the emitter (to pick the right runtime call)
// consult the same table, ported in meaning from the upstream
// rosy_lib/operators/{add,sub,mult,div}.rs registries.
type opTable map[pair]Base

func build(rows [][3]Base) opTable {
	t := make(opTable, len(rows))
	for _, r := range rows {
		t[pair{r[0], r[1]}] = r[2]
	}
	return t
}

var arithmeticRows = [][3]Base{
	{RE, RE, RE},
	{RE, CM, CM},
	{RE, VE, VE},
	{RE, DA, DA},
	{RE, CD, CD},
	{CM, RE, CM},
	{CM, CM, CM},
	{CM, DA, CD},
	{CM, CD, CD},
	{VE, RE, VE},
	{VE, VE, VE},
	{DA, RE, DA},
	{DA, CM, CD},
	{DA, DA, DA},
	{DA, CD, CD},
	{CD, RE, CD},
	{CD, CM, CD},
	{CD, DA, CD},
	{CD, CD, CD},
}

// AddTable is RE/CM/VE/DA/CD's arithmetic promotion table plus LO&LO -> LO
// ("logical OR" in the upstream registry).
var AddTable = withLogical(arithmeticRows, "Logical OR")

// SubTable mirrors AddTable; subtraction has no logical-kind row upstream
// (LO - LO is not defined).
var SubTable = build(arithmeticRows)

// MultTable is the arithmetic table plus LO&LO -> LO ("logical AND").
var MultTable = withLogical(arithmeticRows, "Logical AND")

// DivTable mirrors SubTable: division is undefined over LO.
var DivTable = build(arithmeticRows)

func withLogical(rows [][3]Base, _comment string) opTable {
	t := build(rows)
	t[pair{LO, LO}] = LO
	return t
}

// ConcatTable holds concatenation's only rule: two already-stringified
// values concatenate to a string. Upstream's retrieval pack does not carry
// a standalone concat registry file; ST & ST -> ST is the one rule implied
// by WRITE's string-building use of & throughout the corpus (see
// DESIGN.md's Open Question log for this decision).
var ConcatTable = opTable{
	{ST, ST}: ST,
}

// ExtractTable is the | operator's table, ported from
// rosy_lib/operators/extract.rs's HashMap literal (a different shape from
// the TypeRule-macro tables above, hence its own table below).
var ExtractTable = opTable{
	{ST, RE}: ST,
	{ST, VE}: ST,
	{CM, RE}: RE,
	{VE, RE}: RE,
	{VE, VE}: VE,
}

func lookup(t opTable, lhs, rhs Base) (Base, bool) {
	b, ok := t[pair{lhs, rhs}]
	return b, ok
}

// Add returns the result base of lhs + rhs, or false if undefined.
func Add(lhs, rhs Base) (Base, bool) { return lookup(AddTable, lhs, rhs) }

// Sub returns the result base of lhs - rhs, or false if undefined.
func Sub(lhs, rhs Base) (Base, bool) { return lookup(SubTable, lhs, rhs) }

// Mult returns the result base of lhs * rhs, or false if undefined.
func Mult(lhs, rhs Base) (Base, bool) { return lookup(MultTable, lhs, rhs) }

// Div returns the result base of lhs / rhs, or false if undefined.
func Div(lhs, rhs Base) (Base, bool) { return lookup(DivTable, lhs, rhs) }

// Concat returns the result base of lhs & rhs, or false if undefined.
func Concat(lhs, rhs Base) (Base, bool) { return lookup(ConcatTable, lhs, rhs) }

// Extract returns the result base of lhs | rhs, or false if undefined.
func Extract(lhs, rhs Base) (Base, bool) { return lookup(ExtractTable, lhs, rhs) }

// Sin returns SIN's result base for its single argument: DA and CD are
// fixed points of SIN (the sine of a Taylor polynomial is itself a Taylor
// polynomial of the same base kind), RE -> RE, CM -> CM.
func Sin(arg Base) (Base, bool) {
	switch arg {
	case RE, CM, DA, CD:
		return arg, true
	default:
		return "", false
	}
}

// Length returns LENGTH's result base: always RE, defined for DA and CD
// (the number of independent variables of the polynomial).
func Length(arg Base) (Base, bool) {
	switch arg {
	case DA, CD:
		return RE, true
	default:
		return "", false
	}
}
