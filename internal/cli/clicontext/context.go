// Package clicontext provides global CLI context and state management.
package clicontext

import "sync"

// Global holds the global CLI context, including flags that affect all commands.
type Global struct {
	// ConfigPath is the srptool configuration file. Empty selects the
	// built-in defaults.
	ConfigPath string

	// Output is the output format for structured results (yaml or json).
	Output string
}

var (
	globalContext = &Global{Output: "yaml"}
	mu            sync.RWMutex
)

// Set updates the global CLI context.
func Set(ctx *Global) {
	mu.Lock()
	defer mu.Unlock()
	globalContext = ctx
}

// Get returns a copy of the current global CLI context.
func Get() Global {
	mu.RLock()
	defer mu.RUnlock()
	return *globalContext
}

// ConfigPath returns the configuration file path.
func ConfigPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalContext.ConfigPath
}

// SetConfigPath sets the configuration file path.
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	globalContext.ConfigPath = path
}

// Output returns the output format.
func Output() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalContext.Output
}

// SetOutput sets the output format.
func SetOutput(format string) {
	mu.Lock()
	defer mu.Unlock()
	globalContext.Output = format
}
