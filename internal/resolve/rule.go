package resolve

import "github.com/rosy-lang/rosyc/internal/types"

// Rule says how a slot's type is to be determined: directly from a type
// annotation, by re-running an expression recipe, by copying another slot's
// resolved type, or not at all.
type Rule interface{ isRule() }

type ExplicitRule struct{ Type types.Descriptor }

type InferredRule struct {
	Recipe Recipe
	Reason string
}

type MirrorRule struct {
	Source Slot
	Reason string
}

type UnresolvedRule struct{}

func (ExplicitRule) isRule()   {}
func (InferredRule) isRule()   {}
func (MirrorRule) isRule()     {}
func (UnresolvedRule) isRule() {}

// ruleReason extracts the human-readable reason carried by InferredRule and
// MirrorRule, used when reporting an unresolved slot.
func ruleReason(r Rule) (string, bool) {
	switch v := r.(type) {
	case InferredRule:
		return v.Reason, true
	case MirrorRule:
		return v.Reason, true
	default:
		return "", false
	}
}
