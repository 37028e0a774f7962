package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostOf(t *testing.T) {
	table := NewDefaultTable()

	cases := []struct {
		path string
		want int64
	}{
		{"/api/v1/niches", 20},
		{"/api/v1/niches/", 20},
		{"/api/v1/niches/0042", 50},
		{"/api/v1/opportunities", 30},
		{"/api/v1/rankings", 30},
		{"/api/v1/categories", 10},
		{"/api/v1/unknown", DefaultCostCents},
		{"/api/v1/niches/0042/extra", DefaultCostCents},
		{"/", DefaultCostCents},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, table.CostOf(tc.path), tc.path)
	}
}

func TestCostOf_LiteralBeatsParam(t *testing.T) {
	table := NewTable([]Entry{
		{Pattern: "/api/v1/niches/:code", CostCents: 50},
		{Pattern: "/api/v1/niches/featured", CostCents: 5},
	}, 99)

	assert.Equal(t, int64(5), table.CostOf("/api/v1/niches/featured"))
	assert.Equal(t, int64(50), table.CostOf("/api/v1/niches/0001"))
	assert.Equal(t, int64(99), table.CostOf("/api/v1/niches"))
}

func TestDetailCostsMoreThanList(t *testing.T) {
	table := NewDefaultTable()
	assert.Greater(t, table.CostOf("/api/v1/niches/0001"), table.CostOf("/api/v1/niches"))
}

func TestPatternOf(t *testing.T) {
	table := NewDefaultTable()
	assert.Equal(t, "/api/v1/niches/:code", table.PatternOf("/api/v1/niches/0042"))
	assert.Equal(t, "/api/v1/categories", table.PatternOf("/api/v1/categories"))
	assert.Equal(t, "other", table.PatternOf("/api/v1/nope"))
}
