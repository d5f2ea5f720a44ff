package rooms

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questboard/server/internal/chat/chattest"
)

func TestProvisionSingleChannel(t *testing.T) {
	ctx := context.Background()
	fake := chattest.NewFake()
	category := fake.AddCategory("sessions")
	p := NewProvisioner(fake, zerolog.Nop())

	roomID, err := p.Provision(ctx, ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Curse of Strahd",
		CreatorID:    "creator",
		CategoryID:   category,
		Mode:         ModeSingleChannel,
	})
	require.NoError(t, err)

	assert.Equal(t, "curse-of-strahd", fake.ChannelName(roomID))
	assert.Equal(t, category, fake.ParentOf(roomID))
	assert.True(t, fake.HasAccess(roomID, "creator"))

	msgs := fake.Messages(roomID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Session room")
	assert.Contains(t, msgs[0], "Curse of Strahd")
}

func TestProvisionNameCollision(t *testing.T) {
	ctx := context.Background()
	fake := chattest.NewFake()
	category := fake.AddCategory("sessions")
	p := NewProvisioner(fake, zerolog.Nop())

	req := ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Dragon Heist",
		CreatorID:    "creator",
		CategoryID:   category,
		Mode:         ModeSingleChannel,
	}

	first, err := p.Provision(ctx, req)
	require.NoError(t, err)
	second, err := p.Provision(ctx, req)
	require.NoError(t, err)
	third, err := p.Provision(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "dragon-heist", fake.ChannelName(first))
	assert.Equal(t, "dragon-heist-2", fake.ChannelName(second))
	assert.Equal(t, "dragon-heist-3", fake.ChannelName(third))
}

func TestProvisionCategoryMode(t *testing.T) {
	ctx := context.Background()
	fake := chattest.NewFake()
	p := NewProvisioner(fake, zerolog.Nop())

	req := ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Dragon Heist",
		CreatorID:    "creator",
		Mode:         ModeCategory,
	}

	roomID, err := p.Provision(ctx, req)
	require.NoError(t, err)

	// A fresh category wraps the room; the room keeps the plain slug.
	assert.Equal(t, "dragon-heist", fake.ChannelName(roomID))
	categoryID := fake.ParentOf(roomID)
	require.NotEmpty(t, categoryID)
	assert.Equal(t, "dragon-heist", fake.ChannelName(categoryID))

	// A second event with the same name suffixes the category only.
	secondID, err := p.Provision(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "dragon-heist", fake.ChannelName(secondID))
	assert.Equal(t, "dragon-heist-2", fake.ChannelName(fake.ParentOf(secondID)))
}

func TestProvisionMissingCategory(t *testing.T) {
	ctx := context.Background()
	fake := chattest.NewFake()
	p := NewProvisioner(fake, zerolog.Nop())

	_, err := p.Provision(ctx, ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Curse of Strahd",
		CreatorID:    "creator",
		CategoryID:   "gone",
		Mode:         ModeSingleChannel,
	})
	var perr ProvisioningError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "category")
}

func TestProvisionUnknownMode(t *testing.T) {
	fake := chattest.NewFake()
	p := NewProvisioner(fake, zerolog.Nop())

	_, err := p.Provision(context.Background(), ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Curse of Strahd",
		CreatorID:    "creator",
		Mode:         Mode("voice"),
	})
	var perr ProvisioningError
	require.True(t, errors.As(err, &perr))
}

func TestAccessLifecycle(t *testing.T) {
	ctx := context.Background()
	fake := chattest.NewFake()
	category := fake.AddCategory("sessions")
	p := NewProvisioner(fake, zerolog.Nop())

	roomID, err := p.Provision(ctx, ProvisionRequest{
		GuildID:      "g1",
		ScenarioName: "Curse of Strahd",
		CreatorID:    "creator",
		CategoryID:   category,
		Mode:         ModeSingleChannel,
	})
	require.NoError(t, err)

	p.GrantAccess(ctx, roomID, "alice")
	assert.True(t, fake.HasAccess(roomID, "alice"))

	p.RevokeAccess(ctx, roomID, "alice")
	assert.False(t, fake.HasAccess(roomID, "alice"))

	// Permission failures are swallowed.
	fake.FailPermission = errors.New("missing permissions")
	p.GrantAccess(ctx, roomID, "bob")
	assert.False(t, fake.HasAccess(roomID, "bob"))
}
