// Package workspace prepares the host filesystem for the VoxNovel stack.
//
// It creates the data directories that back the container volume mounts
// (uploads, output audiobooks, working files, tortoise models) and the
// nginx config directory. All operations are idempotent: directories
// that already exist are left alone except for their permission mode,
// which is reasserted so repeated runs converge on the configured state.
package workspace
