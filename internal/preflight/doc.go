// Package preflight verifies and provisions the host tooling the
// VoxNovel stack needs: root privilege, the Docker engine, the Docker
// Compose plugin, and (optionally) the NVIDIA driver and container
// toolkit for GPU passthrough.
//
// Checks are idempotent: tooling that is already present is reported
// and left alone, so running the deploy twice never reinstalls
// anything. Installations shell out to the vendor-documented flows
// (the get.docker.com convenience script, apt for the compose plugin
// and the NVIDIA container toolkit).
//
// All host probes (PATH lookups, euid, subprocess execution) are
// injectable through the Runner struct so the decision logic is
// testable without a real host.
package preflight
