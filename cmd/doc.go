// Package cmd implements the command-line interface for calmeet.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Calendar and Meet tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
