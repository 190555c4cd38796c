// Package notify provides utilities for sending formatted notifications to CLI users.
//
// This package includes:
//   - [WriteMessage] for displaying formatted messages with type-specific symbols and colors
//   - [StageSeparatingWriter] for automatic blank line insertion between CLI stages
//
// Progress reporting for multi-item batches (the Plan Executor's event
// stream) is handled by the report func(plan.Event) callback passed to
// plan.Executor.Run instead of a package-local progress group: plan execution is strictly sequential, so there is no
// parallel task runner here.
//
// Message types include success (✔), error (✗), warning (⚠), info (ℹ), activity (►),
// generate (✚), and title messages with customizable emojis.
//
// The [StageSeparatingWriter] wraps an io.Writer and automatically detects stage titles
// (lines starting with emojis) to insert visual separation between workflow stages.
package notify
