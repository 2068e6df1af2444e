// Package cli assembles the sdkrel command hierarchy, wiring configuration
// loading and structured logging into every subcommand.
package cli
