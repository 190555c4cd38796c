// Package fsutil provides utilities for filesystem operations.
//
// Key functionality:
//   - File reading: ReadFileSafe
//   - File writing: TryWriteFile
//   - Path operations: ExpandHomePath, SafeJoin
//   - Working directory: PushDir
package fsutil
