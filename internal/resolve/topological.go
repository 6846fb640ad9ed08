package resolve

import (
	"sort"
	"strconv"

	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/types"
)

// topologicalResolve processes the dependency graph built during discovery,
// resolving slots from leaves inward via Kahn's algorithm. Every slot is
// resolved exactly once; cycles or slots with no viable rule are reported
// together as a single boxed diagnostic. Keys are visited in sorted order
// throughout, so the resolution order among simultaneously-ready slots is a
// pure function of slot identities rather than of map iteration.
func (r *Resolver) topologicalResolve() error {
	keys := make([]string, 0, len(r.nodes))
	for key := range r.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dependents := map[string][]string{}
	inDegree := map[string]int{}

	for _, key := range keys {
		node := r.nodes[key]
		deps := 0
		for _, dep := range node.dependsOn {
			if _, ok := r.nodes[dep.Key()]; ok {
				deps++
				dependents[dep.Key()] = append(dependents[dep.Key()], key)
			}
		}
		inDegree[key] = deps
	}

	var queue []string
	for _, key := range keys {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	// A node whose rule fails to evaluate is recorded and left unresolved;
	// the queue keeps draining so independent failures elsewhere in the
	// graph surface in the same report rather than one per compile attempt.
	var diags errors.Diagnostics
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		node := r.nodes[key]
		if node.resolved == nil && r.depsResolved(node) {
			diags.Add(r.resolveNode(key))
		}

		for _, depKey := range dependents[key] {
			inDegree[depKey]--
			if inDegree[depKey] == 0 {
				queue = append(queue, depKey)
			}
		}
	}
	if err := diags.Err(); err != nil {
		return err
	}

	var unresolved []*graphNode
	for _, node := range r.nodes {
		if node.resolved == nil {
			unresolved = append(unresolved, node)
		}
	}
	if len(unresolved) == 0 {
		return nil
	}
	return r.buildResolutionError(unresolved)
}

// depsResolved reports whether every in-graph dependency of node carries a
// resolved type. A node downstream of a failed one is skipped silently:
// only the root cause belongs in the report.
func (r *Resolver) depsResolved(node *graphNode) bool {
	for _, dep := range node.dependsOn {
		if depNode, ok := r.nodes[dep.Key()]; ok && depNode.resolved == nil {
			return false
		}
	}
	return true
}

func (r *Resolver) resolveNode(key string) error {
	node := r.nodes[key]
	if node.resolved != nil {
		return nil
	}

	switch rule := node.rule.(type) {
	case ExplicitRule:
		t := rule.Type
		node.resolved = &t
	case InferredRule:
		t, err := r.evaluateRecipe(rule.Recipe)
		if err != nil {
			return err
		}
		node.resolved = &t
	case MirrorRule:
		source, ok := r.nodes[rule.Source.Key()]
		if !ok || source.resolved == nil {
			return newResolutionError("mirror source " + rule.Source.String() + " not resolved when resolving " + node.slot.String())
		}
		t := *source.resolved
		node.resolved = &t
	case UnresolvedRule:
		// No rule was ever established; leave unresolved for the final report.
	}
	return nil
}

// evaluateRecipe computes a Recipe's type using only already-resolved
// slots, mirroring the upstream resolver's evaluate_recipe.
func (r *Resolver) evaluateRecipe(recipe Recipe) (types.Descriptor, error) {
	switch rec := recipe.(type) {
	case LiteralRecipe:
		return rec.Type, nil

	case VariableRecipe:
		node, ok := r.nodes[rec.Slot.Key()]
		if !ok || node.resolved == nil {
			return types.Descriptor{}, newResolutionError("variable slot " + rec.Slot.String() + " not resolved")
		}
		return *node.resolved, nil

	case FunctionCallRecipe:
		node, ok := r.nodes[rec.ReturnSlot.Key()]
		if !ok || node.resolved == nil {
			return types.Descriptor{}, newResolutionError("function return slot " + rec.ReturnSlot.String() + " not resolved")
		}
		return *node.resolved, nil

	case IndexRecipe:
		inner, err := r.evaluateRecipe(rec.Inner)
		if err != nil {
			return types.Descriptor{}, err
		}
		if rec.Count > len(inner.Dims) {
			return types.Descriptor{}, newResolutionError(
				"cannot index a " + inner.String() + " value with " + strconv.Itoa(rec.Count) + " indices")
		}
		result := inner
		for i := 0; i < rec.Count; i++ {
			result = result.ElementType()
		}
		return result, nil

	case BinaryOpRecipe:
		// Both operands are evaluated regardless of how the first fares:
		// independent failures on the two sides report together.
		left, lerr := r.evaluateRecipe(rec.Left)
		right, rerr := r.evaluateRecipe(rec.Right)
		if err := errors.Combine(lerr, rerr); err != nil {
			return types.Descriptor{}, err
		}
		base, ok := applyBinaryOp(rec.Op, left.Base, right.Base)
		if !ok {
			return types.Descriptor{}, newTypeConflictError(binaryOpSymbol(rec.Op), left, right)
		}
		return types.Scalar(base), nil

	case ComparisonRecipe:
		_, lerr := r.evaluateRecipe(rec.Left)
		_, rerr := r.evaluateRecipe(rec.Right)
		if err := errors.Combine(lerr, rerr); err != nil {
			return types.Descriptor{}, err
		}
		return types.Scalar(types.LO), nil

	case ConcatRecipe:
		if len(rec.Terms) == 0 {
			return types.Descriptor{}, newResolutionError("empty concat expression")
		}
		// Evaluate every term before folding so one bad term does not
		// hide problems in its siblings.
		terms := make([]types.Descriptor, len(rec.Terms))
		var diags errors.Diagnostics
		for i, t := range rec.Terms {
			d, err := r.evaluateRecipe(t)
			terms[i] = d
			diags.Add(err)
		}
		if err := diags.Err(); err != nil {
			return types.Descriptor{}, err
		}
		result := terms[0]
		for _, next := range terms[1:] {
			base, ok := types.Concat(result.Base, next.Base)
			if !ok {
				return types.Descriptor{}, newTypeConflictError("&", result, next)
			}
			result = types.Scalar(base)
		}
		return result, nil

	case SinRecipe:
		inner, err := r.evaluateRecipe(rec.Inner)
		if err != nil {
			return types.Descriptor{}, err
		}
		base, ok := types.Sin(inner.Base)
		if !ok {
			return types.Descriptor{}, newResolutionError("no SIN rule for " + inner.String())
		}
		return types.Scalar(base), nil

	case LengthRecipe:
		inner, err := r.evaluateRecipe(rec.Inner)
		if err != nil {
			return types.Descriptor{}, err
		}
		base, ok := types.Length(inner.Base)
		if !ok {
			return types.Descriptor{}, newResolutionError("no LENGTH rule for " + inner.String())
		}
		return types.Scalar(base), nil

	case UndeclaredRecipe:
		return types.Descriptor{}, newUndeclaredError(rec.Name)

	case UnknownRecipe:
		return types.Descriptor{}, newResolutionError("cannot evaluate unknown expression recipe")

	default:
		return types.Descriptor{}, newResolutionError("unhandled recipe variant")
	}
}

func applyBinaryOp(op BinaryOpKind, lhs, rhs types.Base) (types.Base, bool) {
	switch op {
	case OpAdd:
		return types.Add(lhs, rhs)
	case OpSub:
		return types.Sub(lhs, rhs)
	case OpMult:
		return types.Mult(lhs, rhs)
	case OpDiv:
		return types.Div(lhs, rhs)
	case OpExtract:
		return types.Extract(lhs, rhs)
	default:
		return "", false
	}
}

func binaryOpSymbol(op BinaryOpKind) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "/"
	case OpExtract:
		return "|"
	default:
		return "?"
	}
}
