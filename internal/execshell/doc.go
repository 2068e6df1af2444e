// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and context-aware cancellation via
// ShellExecutor, exposes OSCommandRunner for default process execution, and
// defines abstractions used throughout sdkrel to run autorest, tsp-client,
// tox, pip, and related CLIs in a testable manner.
package execshell
