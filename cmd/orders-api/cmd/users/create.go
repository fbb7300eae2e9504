package users

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
	"github.com/storefront/orders-api/internal/core/service"
	"github.com/storefront/orders-api/internal/core/token"
	mongodb "github.com/storefront/orders-api/internal/infrastructure/db/mongo"
	"github.com/storefront/orders-api/internal/pkg/config"
	"github.com/storefront/orders-api/pkg/logger"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with an explicit role",
	Long: `Creates an account directly in the store. This is the only way to create
an administrator; self-registration over HTTP always yields the user role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		role := domain.Role(roleFlag)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q (expected %q or %q)", roleFlag, domain.RoleUser, domain.RoleAdmin)
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logger.Get()

		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		userRepo := mongodb.NewUserRepository(db)
		if err := mongodb.EnsureIndexes(ctx, userRepo); err != nil {
			return err
		}

		issuer, err := token.NewIssuer(token.Config{
			Secret: []byte(cfg.Auth.JWTSecret),
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		})
		if err != nil {
			return fmt.Errorf("configure token issuer: %w", err)
		}

		auth := service.NewAuthService(userRepo, issuer, log)
		user, err := auth.Register(ctx, ports.RegisterInput{
			Username: usernameFlag,
			Email:    emailFlag,
			Password: password,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("Created user %s (%s) with role %s\n", user.ID, user.Email, user.Role)
		return nil
	},
}
