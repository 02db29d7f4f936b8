// Package app wires the association store, transports and backend service
// into the operations the CLI exposes.
package app
