package variance

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"fuelbook/internal/core/apperror"
	"fuelbook/pkg/logger"
)

// RuleAction says what a matching rule does to a candidate notification.
type RuleAction string

const (
	// ActionSuppress drops the notification entirely.
	ActionSuppress RuleAction = "suppress"
	// ActionEscalate raises severity to the rule's EscalateTo level.
	ActionEscalate RuleAction = "escalate"
)

// Rule is an operator-configured alert rule. The expression is a CEL
// predicate over the candidate notification; when it evaluates to true the
// action is applied.
//
// Available variables: notification_type, severity, fuel_type (strings);
// variance_pct, magnitude, fill_pct (doubles).
type Rule struct {
	Name       string     `json:"name"`
	Expression string     `json:"expression"`
	Action     RuleAction `json:"action"`
	EscalateTo Severity   `json:"escalateTo,omitempty"`
}

type compiledRule struct {
	rule Rule
	prg  cel.Program
}

// RuleSet holds compiled alert rules. A nil RuleSet applies no rules.
type RuleSet struct {
	rules []compiledRule
}

// CompileRules builds a RuleSet, rejecting rules that do not compile or do
// not produce a boolean.
func CompileRules(rules []Rule) (*RuleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("notification_type", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("fuel_type", cel.StringType),
		cel.Variable("variance_pct", cel.DoubleType),
		cel.Variable("magnitude", cel.DoubleType),
		cel.Variable("fill_pct", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	rs := &RuleSet{}
	for _, r := range rules {
		if r.Action == ActionEscalate && r.EscalateTo.rank() < 0 {
			return nil, apperror.NewInvalidInput(
				fmt.Sprintf("alert rule %q: escalate target %q is not a severity", r.Name, r.EscalateTo))
		}

		ast, iss := env.Compile(r.Expression)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile alert rule %q: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, apperror.NewInvalidInput(
				fmt.Sprintf("alert rule %q must evaluate to a boolean", r.Name))
		}

		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program alert rule %q: %w", r.Name, err)
		}

		rs.rules = append(rs.rules, compiledRule{rule: r, prg: prg})
	}

	return rs, nil
}

// ruleInput carries the evaluation variables for one candidate.
type ruleInput struct {
	NotificationType NotificationType
	Severity         Severity
	FuelType         string
	VariancePct      float64
	Magnitude        float64
	FillPct          float64
}

// apply runs all rules against a candidate. It returns whether the
// notification should be kept and the (possibly escalated) severity.
// Evaluation errors skip the rule: alerting degrades, it never fails.
func (rs *RuleSet) apply(ctx context.Context, in ruleInput) (bool, Severity) {
	severity := in.Severity
	if rs == nil {
		return true, severity
	}

	vars := map[string]any{
		"notification_type": string(in.NotificationType),
		"severity":          string(in.Severity),
		"fuel_type":         in.FuelType,
		"variance_pct":      in.VariancePct,
		"magnitude":         in.Magnitude,
		"fill_pct":          in.FillPct,
	}

	for _, cr := range rs.rules {
		out, _, err := cr.prg.Eval(vars)
		if err != nil {
			logger.Warn(ctx, "alert rule evaluation failed",
				"rule", cr.rule.Name, "error", err)
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}

		switch cr.rule.Action {
		case ActionSuppress:
			logger.Info(ctx, "notification suppressed by alert rule", "rule", cr.rule.Name)
			return false, severity
		case ActionEscalate:
			if cr.rule.EscalateTo.rank() > severity.rank() {
				logger.Info(ctx, "notification escalated by alert rule",
					"rule", cr.rule.Name, "from", severity, "to", cr.rule.EscalateTo)
				severity = cr.rule.EscalateTo
			}
		}
	}

	return true, severity
}
