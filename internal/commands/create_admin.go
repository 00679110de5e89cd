package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"grocery/internal/database"
	"grocery/internal/models"
	"grocery/internal/repositories"
	"grocery/internal/services"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Administrators cannot sign up through the API. Create one here.

Examples:
  grocery create-admin --email admin@example.com --password s3cret! --name "Site Admin"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(adminPassword) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)
		if err := database.Migrate(db); err != nil {
			return err
		}

		auth := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret, cfg.JWTTTL)
		admin := &models.User{Email: adminEmail, Password: adminPassword, FullName: adminName, Role: models.RoleAdmin}
		if err := auth.RegisterUser(admin); err != nil {
			return err
		}
		log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("administrator created")
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Administrator email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Administrator password (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Full name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
