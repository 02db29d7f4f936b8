// Package backend opens a credential backend for one invocation.
//
// Opening loads the stored association, or performs first-time association
// and persists it, then proves the association with test-associate. The
// store is always consulted before any network or socket traffic, so an
// insecure association file stops the run without contacting the server.
package backend
