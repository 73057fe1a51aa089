package services_test

import (
	"context"
	"testing"

	apperrors "storefront-service/errors"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type wishlistFixture struct {
	svc       services.WishlistService
	users     *memUsers
	wishlists *memWishlists
	user      *models.User
	product   *models.Product
	product2  *models.Product
}

func newWishlistFixture() *wishlistFixture {
	user := newUser("Grace")
	p1, p2 := newProduct("watch"), newProduct("tablet")
	users := newMemUsers(user)
	wishlists := newMemWishlists()
	return &wishlistFixture{
		svc:       services.NewWishlistService(wishlists, users, newMemProducts(p1, p2)),
		users:     users,
		wishlists: wishlists,
		user:      user,
		product:   p1,
		product2:  p2,
	}
}

func TestWishlistAdd(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid := f.user.ID.Hex()

	items, err := f.svc.Add(ctx, uid, f.product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []models.WishlistItem{{ProductID: f.product.ID}}, items)

	user, _ := f.users.FindByID(ctx, f.user.ID)
	require.NotNil(t, user.Wishlist, "wishlist attached to user")

	_, err = f.svc.Add(ctx, uid, f.product.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	stored, err := f.wishlists.FindByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.WishlistItem{{ProductID: f.product.ID}}, stored.Products, "duplicate add leaves the wishlist unchanged")

	items, err = f.svc.Add(ctx, uid, f.product2.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWishlistAdd_NotFound(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()

	_, err := f.svc.Add(ctx, primitive.NewObjectID().Hex(), f.product.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Add(ctx, f.user.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWishlistGet(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid := f.user.ID.Hex()

	items, err := f.svc.Get(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, items, "no wishlist yields an empty list")

	_, _ = f.svc.Add(ctx, uid, f.product2.ID.Hex())
	items, err = f.svc.Get(ctx, uid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "tablet", items[0].Product.Name)
}

func TestWishlistRemove(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid := f.user.ID.Hex()

	_, err := f.svc.Remove(ctx, uid, f.product.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "no wishlist")

	_, _ = f.svc.Add(ctx, uid, f.product.ID.Hex())
	_, _ = f.svc.Add(ctx, uid, f.product2.ID.Hex())

	items, err := f.svc.Remove(ctx, uid, f.product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []models.WishlistItem{{ProductID: f.product2.ID}}, items)

	_, err = f.svc.Remove(ctx, uid, f.product.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "not in wishlist")
}

func TestWishlistRemove_LastItemDeletesWishlist(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid := f.user.ID.Hex()
	_, _ = f.svc.Add(ctx, uid, f.product.ID.Hex())

	items, err := f.svc.Remove(ctx, uid, f.product.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.wishlists.FindByUser(ctx, f.user.ID)
	assert.Error(t, err)
	user, _ := f.users.FindByID(ctx, f.user.ID)
	assert.Nil(t, user.Wishlist)
}

func TestWishlistToggle(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid, pid := f.user.ID.Hex(), f.product.ID.Hex()

	wishlist, added, err := f.svc.Toggle(ctx, uid, pid)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []models.WishlistItem{{ProductID: f.product.ID}}, wishlist.Products)

	wishlist, added, err = f.svc.Toggle(ctx, uid, pid)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, wishlist.Products)

	_, err = f.wishlists.FindByUser(ctx, f.user.ID)
	assert.Error(t, err, "two toggles on an empty wishlist leave none")
}

func TestWishlistToggle_RestoresMembership(t *testing.T) {
	f := newWishlistFixture()
	ctx := context.Background()
	uid := f.user.ID.Hex()
	_, _ = f.svc.Add(ctx, uid, f.product.ID.Hex())

	_, _, err := f.svc.Toggle(ctx, uid, f.product2.ID.Hex())
	require.NoError(t, err)
	_, _, err = f.svc.Toggle(ctx, uid, f.product2.ID.Hex())
	require.NoError(t, err)

	items, err := f.svc.Get(ctx, uid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.product.ID, items[0].Product.ID)
}

func TestWishlistToggle_ValidatesLikeAdd(t *testing.T) {
	f := newWishlistFixture()
	_, _, err := f.svc.Toggle(context.Background(), f.user.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
