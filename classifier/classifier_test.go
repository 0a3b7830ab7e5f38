package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/catalog"
	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/model/mock"
)

func TestClassify_KeywordRules(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name  string
		query string
		want  Pipeline
	}{
		{"greeting", "Hello", Pipeline{catalog.Assistant}},
		{"parse", "Please parse this contract and identify clauses", Pipeline{catalog.ContractParser}},
		{"research", "What does the law say about force majeure?", Pipeline{catalog.LegalResearch}},
		{"compliance", "Is this contract GDPR compliant?", Pipeline{catalog.ContractParser, catalog.ComplianceChecker}},
		{"risk", "What is our liability risk exposure here?", Pipeline{catalog.ContractParser, catalog.RiskAssessor}},
		{"full", "Give me a full review of this contract", Pipeline{catalog.ContractParser, catalog.ComplianceChecker, catalog.RiskAssessor, catalog.LegalMemo}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tc.query, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_TieBreakSkipsParserWhenClausesAlreadyExtracted(t *testing.T) {
	c := New(nil)
	got, err := c.Classify(context.Background(), "Is this contract GDPR compliant?", true)
	require.NoError(t, err)
	assert.Equal(t, Pipeline{catalog.ComplianceChecker}, got)
}

func TestClassify_FallsBackToModelWhenNoKeywordMatches(t *testing.T) {
	m := mock.New(&model.Result{ContentParts: []string{`{"signal":"legal_research"}`}})
	c := New(m)

	got, err := c.Classify(context.Background(), "something with no recognizable keyword at all", false)
	require.NoError(t, err)
	assert.Equal(t, Pipeline{catalog.LegalResearch}, got)
}

func TestClassify_NoRuleNoModelIsAnError(t *testing.T) {
	c := New(nil)
	_, err := c.Classify(context.Background(), "totally ambiguous input", false)
	assert.Error(t, err)
}

func TestClassify_UnrecognizedModelSignalDefaultsToGeneral(t *testing.T) {
	m := mock.New(&model.Result{ContentParts: []string{`{"signal":"not_a_real_signal"}`}})
	c := New(m)

	got, err := c.Classify(context.Background(), "ambiguous but has a model", false)
	require.NoError(t, err)
	assert.Equal(t, Pipeline{catalog.Assistant}, got)
}
