// Package cli is the NanoFi terminal client.
//
// It wires configuration, the local storage profile, the session and
// application stores and the review workflow, and exposes them both as a
// cobra command tree (one command per invocation) and as an interactive
// shell. In the shell a storage watcher re-hydrates the session whenever
// another nanofi process logs in or out on the same profile.
//
// See NewApp, NewRootCommand and App.Shell.
package cli
