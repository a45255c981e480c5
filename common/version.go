package common

// PackageName identifies this service in metrics and logs.
const PackageName = "agent-admin-backend"

// Version is set at build time via -ldflags. Defaults to "dev".
var Version = "dev"
