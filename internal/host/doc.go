// Package host is the small plugin host the CLI runs plugconf inside: a
// singleton Container and a Framework that records plugin registrations and
// configures the plugins in a later pass.
package host
