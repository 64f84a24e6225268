// Package config provides centralized configuration management for the
// spot-market data service. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SPOT_* for namespacing:
//
//	SPOT_SERVER_PORT=8080
//	SPOT_LOGGING_LEVEL=info
//	SPOT_PATHS_DATA_DIR=data
//	SPOT_RATE_LIMIT_ENABLED=true
//
// # Source Contracts
//
// Beyond the runtime settings, the package also carries the fixed parsing
// contracts of the nine boundary source workbooks (file names, column
// positions, header rows) and the trading workbook sheet names. These are
// data the whole pipeline agrees on, not tunables.
package config
