package commands

import (
	"strings"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/pkg/interfaces"
)

const commandModuleRoot = "til.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriching it
// with consistent structured fields so executions are attributable in shared logs.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
