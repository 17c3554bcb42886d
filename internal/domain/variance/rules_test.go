package variance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRulesRejectsBadExpression(t *testing.T) {
	_, err := CompileRules([]Rule{{
		Name:       "broken",
		Expression: `variance_pct >>> 5`,
		Action:     ActionSuppress,
	}})
	assert.Error(t, err)
}

func TestCompileRulesRejectsNonBooleanOutput(t *testing.T) {
	_, err := CompileRules([]Rule{{
		Name:       "not a predicate",
		Expression: `variance_pct + 1.0`,
		Action:     ActionSuppress,
	}})
	assert.Error(t, err)
}

func TestCompileRulesRejectsUnknownEscalateTarget(t *testing.T) {
	_, err := CompileRules([]Rule{{
		Name:       "bad target",
		Expression: `true`,
		Action:     ActionEscalate,
		EscalateTo: Severity("apocalyptic"),
	}})
	assert.Error(t, err)
}

func TestNilRuleSetPassesThrough(t *testing.T) {
	var rs *RuleSet
	keep, severity := rs.apply(context.Background(), ruleInput{Severity: SeverityHigh})
	assert.True(t, keep)
	assert.Equal(t, SeverityHigh, severity)
}

func TestEscalationNeverLowersSeverity(t *testing.T) {
	rs, err := CompileRules([]Rule{{
		Name:       "downgrade attempt",
		Expression: `true`,
		Action:     ActionEscalate,
		EscalateTo: SeverityLow,
	}})
	require.NoError(t, err)

	keep, severity := rs.apply(context.Background(), ruleInput{Severity: SeverityCritical})
	assert.True(t, keep)
	assert.Equal(t, SeverityCritical, severity)
}

func TestSuppressWinsOverLaterRules(t *testing.T) {
	rs, err := CompileRules([]Rule{
		{Name: "suppress all", Expression: `true`, Action: ActionSuppress},
		{Name: "escalate all", Expression: `true`, Action: ActionEscalate, EscalateTo: SeverityCritical},
	})
	require.NoError(t, err)

	keep, _ := rs.apply(context.Background(), ruleInput{Severity: SeverityMedium})
	assert.False(t, keep)
}
