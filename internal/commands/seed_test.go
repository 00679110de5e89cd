package commands

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery/internal/config"
	"grocery/internal/database"
	"grocery/internal/server"
	"grocery/internal/services"
	"grocery/pkg/cache"
)

func TestSeedDemo(t *testing.T) {
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { closeDB(db) })

	cfg := &config.Config{JWTSecret: "test", JWTTTL: time.Hour, DefaultLatitude: 6.9271, DefaultLongitude: 79.8612, DefaultSearchRadiusKm: 10, AuthRateLimit: 100, AuthRateBurst: 100}
	srv := server.New(server.Options{Config: cfg, DB: db, Cache: cache.NewMemory()})
	ctx := context.Background()

	require.NoError(t, seedDemo(ctx, srv, "password"))
	require.NoError(t, seedDemo(ctx, srv, "password"), "seeding twice is a no-op")

	nearby, err := srv.Shops.Nearby(ctx, services.NearbyQuery{})
	require.NoError(t, err)
	require.Len(t, nearby.Shops, 1)

	products, err := srv.Catalog.ListShopProducts(nearby.Shops[0].ID, "", "")
	require.NoError(t, err)
	assert.Len(t, products, len(demoProducts))

	_, user, err := srv.Auth.LoginUser("consumer@grocery.local", "password")
	require.NoError(t, err)
	assert.Equal(t, "Demo Consumer", user.FullName)
}
