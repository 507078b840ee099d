// Package logging provides file-based logging with rotation.
// Logs are written to ~/.codebase-qa-agent/logs/ for debugging and
// troubleshooting.
//
// By default (without --debug), CLI subcommands log at info level to both
// that file and stderr ('serve' writes to the file only); --debug raises the
// level to debug.
package logging
