// Package flags holds CLI flag definitions shared by the admin commands.
package flags

import (
	"log/slog"
	"time"

	"github.com/credagent/agent-admin-backend/common"
	"github.com/credagent/agent-admin-backend/httpserver"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// SetupLogger builds the process logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the common server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		Log:                      logger,
		AgentLabel:               cCtx.String(AgentLabelFlag.Name),
		AgentVersion:             cCtx.String(AgentVersionFlag.Name),
		MaxBodySize:              cCtx.Int64(MaxBodySizeFlag.Name) * 1024 * 1024,
		EnforceUnprotectedPaths:  cCtx.Bool(UnprotectedPathsFlag.Name),
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8031",
	Usage: "address to listen on for the admin API",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "",
	Usage: "address to listen on for Prometheus metrics (disabled if empty)",
}

var AgentLabelFlag = &cli.StringFlag{
	Name:  "agent-label",
	Value: "credential-agent",
	Usage: "agent label shown as the API documentation title",
}

var AgentVersionFlag = &cli.StringFlag{
	Name:  "agent-version",
	Value: common.Version,
	Usage: "agent version string advertised in the API document",
}

var MaxBodySizeFlag = &cli.Int64Flag{
	Name:  "client-max-request-size",
	Value: 1,
	Usage: "maximum request body size in megabytes",
}

var UnprotectedPathsFlag = &cli.BoolFlag{
	Name:  "allow-unprotected-paths",
	Value: false,
	Usage: "exempt documentation and health-check paths from the admin key check",
}

var AdminKeyFlag = &cli.StringFlag{
	Name:  "admin-api-key",
	Value: "",
	Usage: "admin API key (use a key file or vault in production)",
}

var AdminKeyFileFlag = &cli.StringFlag{
	Name:  "admin-api-key-file",
	Value: "",
	Usage: "file containing the admin API key",
}

var AdminKeyEnvFlag = &cli.StringFlag{
	Name:  "admin-api-key-env",
	Value: "",
	Usage: "environment variable containing the admin API key",
}

var AdminKeyHashFlag = &cli.StringFlag{
	Name:  "admin-api-key-bcrypt",
	Value: "",
	Usage: "bcrypt hash of the admin API key (mutually exclusive with the plain key sources)",
}

var VaultAddrFlag = &cli.StringFlag{
	Name:  "vault-addr",
	Value: "",
	Usage: "Vault server address to fetch the admin API key from",
}

var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Value:   "",
	Usage:   "Vault authentication token",
	EnvVars: []string{"VAULT_TOKEN"},
}

var VaultMountFlag = &cli.StringFlag{
	Name:  "vault-mount",
	Value: "secret",
	Usage: "Vault KV v2 mount path",
}

var VaultPathFlag = &cli.StringFlag{
	Name:  "vault-path",
	Value: "agent/admin",
	Usage: "path of the admin key secret within the Vault mount",
}

var VaultFieldFlag = &cli.StringFlag{
	Name:  "vault-field",
	Value: "api_key",
	Usage: "field holding the admin key within the Vault secret",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

// CommonFlags are shared by all admin commands.
var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

// ServerFlags configure the admin status server.
var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	MetricsAddrFlag,
	AgentLabelFlag,
	AgentVersionFlag,
	MaxBodySizeFlag,
	UnprotectedPathsFlag,
	PprofFlag,
}

// KeySourceFlags configure where the admin API key is loaded from.
var KeySourceFlags = []cli.Flag{
	AdminKeyFlag,
	AdminKeyFileFlag,
	AdminKeyEnvFlag,
	AdminKeyHashFlag,
	VaultAddrFlag,
	VaultTokenFlag,
	VaultMountFlag,
	VaultPathFlag,
	VaultFieldFlag,
}
