// Package commands defines the cmdipass CLI and wires dependencies for subcommands.
//
// Commands
//
//   - get          List every entry matching a search string
//   - get-one      Print one entry, or one field of it
//   - associate    Register with the password manager and store the key
//   - status       Describe the stored association
//   - version      Print the version
//
// # Implementation
//
// The root command builds the app (association store, transports and
// backend service) before any subcommand runs. Nothing touches the network
// until a subcommand opens a backend.
package commands
