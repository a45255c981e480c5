package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/credagent/agent-admin-backend/cmd/flags"
	"github.com/credagent/agent-admin-backend/httpserver"
	"github.com/credagent/agent-admin-backend/profile"
	"github.com/credagent/agent-admin-backend/secrets"
	"github.com/credagent/agent-admin-backend/stats"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "admin-server",
		Usage: "Serve the credential-agent admin status API",
		Flags: append(append(append([]cli.Flag{}, flags.ServerFlags...), flags.KeySourceFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger)

			auth, err := buildAuthenticator(cCtx, cfg, logger)
			if err != nil {
				logger.Error("Failed to configure authentication", "err", err)
				return err
			}

			registry, err := profile.NewStaticRegistry(&profile.Profile{
				Label:   cfg.AgentLabel,
				Version: cfg.AgentVersion,
			})
			if err != nil {
				return err
			}

			server, err := httpserver.New(cfg, auth, registry, stats.NewCollector())
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			if err := server.Start(); err != nil {
				logger.Error("Failed to start server", "err", err)
				return err
			}

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop", "listenAddress", server.Addr())
			<-exit
			logger.Info("Shutdown signal received")

			server.Stop()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildAuthenticator selects the admin key source from the CLI flags. The
// key is loaded once here; the server never re-reads it per request.
func buildAuthenticator(cCtx *cli.Context, cfg *httpserver.HTTPServerConfig, logger *slog.Logger) (httpserver.Authenticator, error) {
	if hash := cCtx.String(flags.AdminKeyHashFlag.Name); hash != "" {
		auth, err := httpserver.NewBcryptAuthenticator([]byte(hash))
		if err != nil {
			return nil, err
		}
		return auth, nil
	}

	source, err := buildKeySource(cCtx, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminKey, err := source.AdminKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin API key: %w", err)
	}

	auth, err := httpserver.NewAPIKeyAuthenticator(adminKey, cfg.EnforceUnprotectedPaths)
	if err != nil {
		return nil, err
	}
	return auth, nil
}

func buildKeySource(cCtx *cli.Context, logger *slog.Logger) (secrets.Source, error) {
	switch {
	case cCtx.String(flags.VaultAddrFlag.Name) != "":
		logger.Info("Loading admin API key from Vault",
			"address", cCtx.String(flags.VaultAddrFlag.Name),
			"mount", cCtx.String(flags.VaultMountFlag.Name),
			"path", cCtx.String(flags.VaultPathFlag.Name))
		return secrets.NewVaultSource(
			cCtx.String(flags.VaultAddrFlag.Name),
			cCtx.String(flags.VaultTokenFlag.Name),
			cCtx.String(flags.VaultMountFlag.Name),
			cCtx.String(flags.VaultPathFlag.Name),
			cCtx.String(flags.VaultFieldFlag.Name),
			logger,
		)
	case cCtx.String(flags.AdminKeyFileFlag.Name) != "":
		return secrets.FileSource(cCtx.String(flags.AdminKeyFileFlag.Name)), nil
	case cCtx.String(flags.AdminKeyEnvFlag.Name) != "":
		return secrets.EnvSource(cCtx.String(flags.AdminKeyEnvFlag.Name)), nil
	case cCtx.String(flags.AdminKeyFlag.Name) != "":
		logger.Warn("Admin API key passed on the command line; prefer a key file or Vault")
		return secrets.StaticSource(cCtx.String(flags.AdminKeyFlag.Name)), nil
	default:
		return nil, errors.New("no admin API key source configured " +
			"(set --admin-api-key, --admin-api-key-file, --admin-api-key-env, --admin-api-key-bcrypt or --vault-addr)")
	}
}
