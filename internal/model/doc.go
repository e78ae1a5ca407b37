// Package model defines the domain types and value objects for the
// voxdeploy CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (CheckResult, ServiceContainer, StackState, etc.) are
// transient representations reconstructed from Docker API queries and
// host probes at runtime — there are no persistent state files.
//
// The package also defines the error kind taxonomy (ErrorKind) and a
// custom error type (DeployError) used for structured error output.
// Every fatal error maps to process exit code 1; the kind exists for
// diagnostics, not for exit-code multiplexing.
package model
