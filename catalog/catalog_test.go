package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_New_RegistersAllSixAgents(t *testing.T) {
	c := New()
	all := c.All()
	assert.Len(t, all, 6)

	names := map[Name]bool{}
	for _, a := range all {
		names[a.Name] = true
		assert.NotEmpty(t, a.SystemInstructions)
		assert.NotEmpty(t, a.ToolNames)
		assert.Greater(t, a.MaxToolIterations, 0)
	}
	for _, want := range []Name{Assistant, ContractParser, LegalResearch, ComplianceChecker, RiskAssessor, LegalMemo} {
		assert.True(t, names[want], "missing agent %s", want)
	}
}

func TestCatalog_Get(t *testing.T) {
	c := New()

	t.Run("known agent", func(t *testing.T) {
		a, ok := c.Get(LegalResearch)
		require.True(t, ok)
		assert.True(t, a.GroundedSearch)
		assert.True(t, a.DefaultOptions.GroundedSearch)
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, ok := c.Get(Name("NOT_REAL"))
		assert.False(t, ok)
	})
}

func TestCatalog_OnlyLegalResearchRequiresGroundedSearch(t *testing.T) {
	c := New()
	for _, a := range c.All() {
		if a.Name == LegalResearch {
			assert.True(t, a.GroundedSearch)
			continue
		}
		assert.False(t, a.GroundedSearch, "agent %s should not require grounded search", a.Name)
	}
}
