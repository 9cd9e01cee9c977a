// Package transfer implements the transfer queue: a registry of upload and
// download tasks, admission under a concurrency limit, progress and speed
// tracking, retries and resumable multipart state.
//
// A single dispatcher goroutine applies every command and every executor
// event in arrival order. Public methods post a message and return; Sync
// waits until everything posted before it has been applied. Readers get
// copies of tasks, never the live records.
package transfer
