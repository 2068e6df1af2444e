// Package ui renders human-readable command lifecycle output.
//
// It adapts execshell command events to console logging so operators can
// follow generator and verification subprocesses without reading structured
// logs.
package ui
