// Package bootstrap sequences server startup: instance guard, configuration
// resolution, the schema consent gate, the background index refresh, and the
// hand-off to the service layer.
//
// A single control flow drives the state machine synchronously; exactly one
// background task (the refresher) is spawned and never joined. Termination
// signals cancel the run context, and both the normal exit path and the
// signal path converge on the guard's idempotent release.
package bootstrap
