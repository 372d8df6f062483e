package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlsix/internal/entity"
	"vlsix/pkg/geometry"
)

func TestBetterNetNamePrefersSignalOverAuto(t *testing.T) {
	assert.Equal(t, "CLK", BetterNetName("CLK", "net-042"))
	assert.Equal(t, "A.1", BetterNetName("net-001", "A.1"))
}

func TestFinalizeNamePicksLexSmallestExternal(t *testing.T) {
	e := NewEquipotential(1, entity.ID(1))
	a := NewNet(entity.NextID(), "B", TypeLogical)
	a.External = true
	b := NewNet(entity.NextID(), "A", TypeLogical)
	b.External = true
	e.AddNetContribution(a)
	e.AddNetContribution(b)
	e.FinalizeName()
	assert.Equal(t, "A", e.CanonicalName)
	assert.True(t, e.Flags&FlagExternal != 0)
}

func TestFinalizeNameSynthesizesForFullyInternal(t *testing.T) {
	e := NewEquipotential(7, entity.ID(1))
	n := NewNet(entity.NextID(), "internal_net", TypeLogical)
	e.AddNetContribution(n)
	e.FinalizeName()
	assert.Equal(t, "tmp_equi_7", e.CanonicalName)
	assert.True(t, e.Flags&FlagAutomatic != 0)
}

func TestPowerGroundConflictSetsHasFused(t *testing.T) {
	e := NewEquipotential(1, entity.ID(1))
	vdd := NewNet(entity.NextID(), "VDD", TypePower)
	vss := NewNet(entity.NextID(), "VSS", TypeGround)
	e.AddNetContribution(vdd)
	e.AddNetContribution(vss)
	require.True(t, e.Flags&FlagHasFused != 0)
}

func TestRecordShortCircuit(t *testing.T) {
	e := NewEquipotential(1, entity.ID(1))
	witness := geometry.NewBox(50, 0, 100, 20)
	e.RecordShortCircuit("A", "B", witness)
	require.Len(t, e.ShortCircuits, 1)
	assert.Equal(t, "A", e.ShortCircuits[0].NetA)
	assert.True(t, e.Flags&FlagHasFused != 0)
}
