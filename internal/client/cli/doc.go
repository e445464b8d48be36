// Package cli provides the interactive e-waste marketplace client.
//
// The REPL offers a different command set in each authentication state:
// anonymous users can log in, register or request a password reset; after
// registration the user enters the emailed code; authenticated users browse
// the dashboard, listings, transactions and reviews and manage their
// profile.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
