package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlsix/internal/entity"
	"vlsix/internal/net"
)

func TestAddNetRejectsDuplicateName(t *testing.T) {
	c := New(entity.NextID(), "TOP")
	require.NoError(t, c.AddNet(net.NewNet(entity.NextID(), "CLK", net.TypeClock)))
	err := c.AddNet(net.NewNet(entity.NextID(), "CLK", net.TypeLogical))
	assert.ErrorIs(t, err, ErrDuplicateNetName)
}

func TestAliasResolvesToPrimaryNet(t *testing.T) {
	c := New(entity.NextID(), "TOP")
	n := net.NewNet(entity.NextID(), "VDD", net.TypePower)
	require.NoError(t, c.AddNet(n))
	require.NoError(t, c.AddAlias(n, "VDD_CORE"))

	got, ok := c.Net("VDD_CORE")
	require.True(t, ok)
	assert.Same(t, n, got)
}

func TestAliasRejectsCollisionWithExistingNetName(t *testing.T) {
	c := New(entity.NextID(), "TOP")
	vdd := net.NewNet(entity.NextID(), "VDD", net.TypePower)
	vss := net.NewNet(entity.NextID(), "VSS", net.TypeGround)
	require.NoError(t, c.AddNet(vdd))
	require.NoError(t, c.AddNet(vss))

	err := c.AddAlias(vdd, "VSS")
	assert.ErrorIs(t, err, ErrDuplicateNetName)
}

func TestRemoveNetDetachesAliases(t *testing.T) {
	c := New(entity.NextID(), "TOP")
	n := net.NewNet(entity.NextID(), "A", net.TypeLogical)
	require.NoError(t, c.AddNet(n))
	require.NoError(t, c.AddAlias(n, "A_ALIAS"))

	c.RemoveNet("A")
	_, ok := c.Net("A")
	assert.False(t, ok)
	_, ok = c.Net("A_ALIAS")
	assert.False(t, ok)

	// The alias name is free again.
	other := net.NewNet(entity.NextID(), "A_ALIAS", net.TypeLogical)
	assert.NoError(t, c.AddNet(other))
}

func TestResetExtractionClearsEquipotentials(t *testing.T) {
	c := New(entity.NextID(), "TOP")
	id := c.NewEquipotentialID()
	c.PublishEquipotential(net.NewEquipotential(id, c.ID()))
	require.Len(t, c.Equipotentials(), 1)

	c.ResetExtraction()
	assert.Empty(t, c.Equipotentials())
}
