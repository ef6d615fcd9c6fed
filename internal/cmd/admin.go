package cmd

import (
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	identityRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/identity/repository"
	identityUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/identity/usecase"
	"github.com/spf13/cobra"
)

var grantEmail string

var grantAdminCmd = &cobra.Command{
	Use:   "grant-platform-admin",
	Short: "Make an existing account a platform admin",
	RunE:  runGrantAdmin,
}

func init() {
	grantAdminCmd.Flags().StringVar(&grantEmail, "email", "", "email of the account to promote")
	_ = grantAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(grantAdminCmd)
}

func runGrantAdmin(cmd *cobra.Command, _ []string) error {
	if grantEmail == "" {
		return errors.New("--email is required")
	}
	cfg := loadConfig()
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	uc := identityUCPkg.NewIdentityUseCase(identityRepoPkg.NewPGRepository(db), tokens, nil, appLogger)
	if err := uc.GrantPlatformAdmin(cmd.Context(), grantEmail); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now a platform admin\n", grantEmail)
	return nil
}
