// Package config loads the voxdeploy deployment settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (the stock VoxNovel Proxmox deployment)
//  2. An optional voxdeploy.jsonc file in the working directory
//  3. VOXDEPLOY_* environment variables
//
// The settings file uses JSONC (JSON with Comments), parsed with
// github.com/tidwall/jsonc before handing off to encoding/json, so
// operators can annotate their deployment configuration in place.
package config
