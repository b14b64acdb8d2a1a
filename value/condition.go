package value

import (
	"strings"

	"github.com/deepnoodle-ai/datapack/symbol"
)

// Condition is the argument of an execute if/unless subcommand, e.g.
// "score p o matches 1..".
type Condition struct {
	parts []symbol.Name
}

// RawCondition builds a condition from space-separated parts.
func RawCondition(parts ...symbol.Name) Condition {
	return Condition{parts: parts}
}

// ScoreCompare compares two scores with one of < <= = >= >.
func ScoreCompare(a *ScoreboardVar, op string, b *ScoreboardVar) Condition {
	return RawCondition(symbol.Lit("score"), a.Player, a.Objective, symbol.Lit(op), b.Player, b.Objective)
}

// ScoreMatches tests a score against a range like "1", "..5" or "3..".
func ScoreMatches(a *ScoreboardVar, rng string) Condition {
	return RawCondition(symbol.Lit("score"), a.Player, a.Objective, symbol.Lit("matches"), symbol.Lit(rng))
}

// DataExists tests whether a structured path holds a value.
func DataExists(v *StructuredVar) Condition {
	return RawCondition(symbol.Lit("data"), symbol.Lit(v.Container.String()), v.Target, symbol.Lit(v.Path))
}

// Template returns the condition as a command template and its symbol
// arguments. Literal parts are inlined.
func (c Condition) Template() (string, []symbol.Name) {
	var b strings.Builder
	var args []symbol.Name
	for i, part := range c.parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		if lit, ok := part.(symbol.Lit); ok {
			b.WriteString(symbol.Escape(string(lit)))
			continue
		}
		b.WriteString("%s")
		args = append(args, part)
	}
	return b.String(), args
}

// IsZero reports whether the condition is empty.
func (c Condition) IsZero() bool {
	return len(c.parts) == 0
}

func (c Condition) String() string {
	texts := make([]string, len(c.parts))
	for i, p := range c.parts {
		texts[i] = p.String()
	}
	return strings.Join(texts, " ")
}
