// Syncdeck CLI entry point
//
// Syncdeck is the operator console for a scheduled folder-synchronization
// service: projects, sync triggers, session history with per-file logs,
// and retries, with a built-in offline simulator backend.
package main

import "github.com/eravn/syncdeck/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
