package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"grocery/internal/database"
	"grocery/internal/models"
	"grocery/internal/server"
	"grocery/internal/services"
	"grocery/pkg/cache"
)

const seedOwnerEmail = "owner@grocery.local"

var seedPassword string

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, an approved shop and a small catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)
		if err := database.Migrate(db); err != nil {
			return err
		}
		srv := server.New(server.Options{Config: cfg, DB: db, Cache: cache.NewMemory()})
		return seedDemo(cmd.Context(), srv, seedPassword)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password for every demo account")
	rootCmd.AddCommand(seedCmd)
}

type seedProduct struct {
	name, category, unit, price string
}

var demoProducts = []seedProduct{
	{"Samba Rice", "Grains", "kg", "250.00"},
	{"Fresh Milk", "Dairy", "litre", "320.00"},
	{"Eggs", "Dairy", "dozen", "540.00"},
	{"Bananas", "Fruit", "kg", "180.00"},
	{"Bread", "Bakery", "loaf", "150.00"},
}

// seedDemo populates an empty database. It does nothing when the demo
// shop owner already exists.
func seedDemo(ctx context.Context, srv *server.Server, password string) error {
	owner := &models.User{Email: seedOwnerEmail, Password: password, FullName: "Demo Shop Owner", Role: models.RoleShopOwner}
	if err := srv.Auth.RegisterUser(owner); err != nil {
		if errors.Is(err, services.ErrConflict) {
			log.Info().Msg("demo data already present")
			return nil
		}
		return err
	}
	for _, u := range []*models.User{
		{Email: "consumer@grocery.local", Password: password, FullName: "Demo Consumer", Role: models.RoleConsumer},
		{Email: "rider@grocery.local", Password: password, FullName: "Demo Rider", Role: models.RoleDeliveryPartner},
	} {
		if err := srv.Auth.RegisterUser(u); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.Email, err)
		}
	}

	rangeKm := models.DefaultDeliveryRangeKm
	shop, err := srv.Shops.CreateShop(ctx, owner.ID, services.ShopInput{
		Name:            "Colombo Fresh Mart",
		Description:     "Vegetables, dairy and pantry staples",
		Address:         "12 Galle Road, Colombo 03",
		Latitude:        6.9271,
		Longitude:       79.8612,
		DeliveryRangeKm: &rangeKm,
	})
	if err != nil {
		return err
	}
	if _, err := srv.Shops.SetStatus(ctx, shop.ID, services.ShopApprove); err != nil {
		return err
	}

	for _, p := range demoProducts {
		global, err := srv.Catalog.CreateGlobalProduct("system", services.GlobalProductInput{
			Name:     p.name,
			Category: p.category,
			BaseUnit: p.unit,
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
		if _, err := srv.Catalog.AddShopProduct(owner.ID, services.ShopProductInput{
			GlobalProductID: global.ID,
			Price:           decimal.RequireFromString(p.price),
			StockQuantity:   100,
			IsAvailable:     true,
		}); err != nil {
			return fmt.Errorf("failed to list product %s: %w", p.name, err)
		}
		log.Info().Str("product", p.name).Msg("seeded product")
	}
	log.Info().Str("shop_id", shop.ID).Msg("demo data loaded")
	return nil
}
