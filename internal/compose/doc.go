// Package compose parses Docker Compose files for the voxdeploy CLI.
//
// voxdeploy never generates or mutates compose files — the compose file
// is operator-owned. Parsing exists to validate the file before the
// stack is touched and to discover service names and published ports
// for the post-deploy report (access URL, per-service status).
//
// Only the fields voxdeploy cares about are modeled; everything else in
// the YAML is ignored. Parsing uses gopkg.in/yaml.v3.
package compose
