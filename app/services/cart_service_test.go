package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories/memory"
	"github.com/lumenera/backend/app/services"
)

func newCartFixture(t *testing.T) (*services.CartService, string) {
	t.Helper()
	users := memory.NewUserRepository()
	user := models.User{Name: "Ari", Email: "ari@example.com", Password: "x"}
	require.NoError(t, users.Create(context.Background(), &user))
	return services.NewCartService(users), user.ID.Hex()
}

func TestCartAddIncrements(t *testing.T) {
	cart, userID := newCartFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, userID, "card1", models.VariantStandard)
	require.NoError(t, err)
	got, err := cart.Add(ctx, userID, "card1", models.VariantStandard)
	require.NoError(t, err)

	assert.Equal(t, 2, got["card1"][models.VariantStandard])
}

func TestCartAddRejectsUnknownVariant(t *testing.T) {
	cart, userID := newCartFixture(t)

	_, err := cart.Add(context.Background(), userID, "card1", "Mythic")
	assert.ErrorIs(t, err, services.ErrUnknownVariant)
}

func TestCartUpdateZeroRemovesEntry(t *testing.T) {
	cart, userID := newCartFixture(t)
	ctx := context.Background()

	_, err := cart.Update(ctx, userID, "card1", models.VariantRuned, 3)
	require.NoError(t, err)
	_, err = cart.Update(ctx, userID, "card1", models.VariantSacred, 1)
	require.NoError(t, err)

	got, err := cart.Update(ctx, userID, "card1", models.VariantRuned, 0)
	require.NoError(t, err)

	_, hasRuned := got["card1"][models.VariantRuned]
	assert.False(t, hasRuned, "zero quantity must remove the variant key")
	assert.Equal(t, 1, got["card1"][models.VariantSacred])
}

func TestCartUpdateZeroRemovesProductWhenEmpty(t *testing.T) {
	cart, userID := newCartFixture(t)
	ctx := context.Background()

	_, err := cart.Update(ctx, userID, "card1", models.VariantRuned, 2)
	require.NoError(t, err)

	got, err := cart.Update(ctx, userID, "card1", models.VariantRuned, 0)
	require.NoError(t, err)

	_, hasProduct := got["card1"]
	assert.False(t, hasProduct, "empty variant map must remove the product key")
}

func TestCartUpdateEmptyKeysClearsAll(t *testing.T) {
	cart, userID := newCartFixture(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, userID, "card1", models.VariantStandard)
	require.NoError(t, err)
	_, err = cart.Add(ctx, userID, "card2", models.VariantCursed)
	require.NoError(t, err)

	got, err := cart.Update(ctx, userID, "", "", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	stored, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
