// Package config loads, normalizes, and validates filecycle configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the WORKDIR_PREFIX and WORKDIR
// environment fallbacks for the rotation root. Environment lookups happen
// when Load runs, never at package init.
//
// Always obtain settings through this package so the rotation manager, the
// daemon, and the CLI agree on the same root directory and retention policy.
package config
