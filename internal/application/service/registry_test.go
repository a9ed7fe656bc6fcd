package service

import (
	"testing"

	"journey-harness/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioRegistry_KeepsOrder(t *testing.T) {
	r := NewScenarioRegistry()
	for _, id := range []string{"sign-up", "plan-index", "reserve-complete"} {
		require.NoError(t, r.Register(entity.Scenario{ID: id}))
	}

	assert.Equal(t, []string{"sign-up", "plan-index", "reserve-complete"}, r.IDs())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "reserve-complete", all[2].ID)

	sc, ok := r.Get("plan-index")
	assert.True(t, ok)
	assert.Equal(t, "plan-index", sc.ID)
}

func TestScenarioRegistry_RejectsDuplicatesAndEmptyIDs(t *testing.T) {
	r := NewScenarioRegistry()
	require.NoError(t, r.Register(entity.Scenario{ID: "sign-up"}))

	assert.Error(t, r.Register(entity.Scenario{ID: "sign-up"}))
	assert.Error(t, r.Register(entity.Scenario{}))
	assert.Len(t, r.All(), 1)
}

func TestScenarioRegistry_Select(t *testing.T) {
	r := NewScenarioRegistry()
	require.NoError(t, r.Register(entity.Scenario{ID: "a"}))
	require.NoError(t, r.Register(entity.Scenario{ID: "b"}))

	picked, err := r.Select("b", "a")
	require.NoError(t, err)
	assert.Equal(t, "b", picked[0].ID)
	assert.Equal(t, "a", picked[1].ID)

	all, err := r.Select()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = r.Select("missing")
	assert.ErrorContains(t, err, `unknown scenario "missing"`)
}
