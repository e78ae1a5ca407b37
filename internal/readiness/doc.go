// Package readiness decides when a freshly started VoxNovel stack is
// actually usable.
//
// Instead of sleeping a fixed duration and checking once, the Waiter
// polls the stack's container states at a fixed interval until every
// container is running or a deadline passes. An optional HTTP probe of
// the web server's /health endpoint then confirms the application
// inside the container is answering, not just that the container
// process exists.
//
// The contract is strict in one direction: if no container is up by the
// deadline, the deployment has failed and success is never claimed.
package readiness
