package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kurtosis-tech/stacktrace"
)

const defaultShellName = "sh"

// ShellNameEnvVar is the environment variable naming the shell executable
// to resolve via PATH.
const ShellNameEnvVar = "WINGMATE_SHELL"

// resolveShell searches PATH, in order, for the first executable file
// matching shellName. Returns "" with no error if nothing was found; the
// caller decides whether an absent shell is fatal (it only is when a
// ShellPrefixed service actually needs it).
func resolveShell(shellName string) (string, error) {
	if shellName == "" {
		shellName = defaultShellName
	}

	pathEnv := os.Getenv("PATH")
	for _, dir := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, shellName)
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() && isExecutable(info) {
			return candidate, nil
		}
	}

	return "", nil
}

// ShellNotFoundError is returned by RequireShell when no shell could be
// resolved for a ShellPrefixed service that needs one.
type ShellNotFoundError struct {
	ShellName string
}

func (e *ShellNotFoundError) Error() string {
	return "shell '" + e.ShellName + "' not found on PATH"
}

// RequireShell resolves and returns the configured shell, failing hard if
// none can be found. Used lazily, at service-start time, only for
// ShellPrefixed services.
func RequireShell() (string, error) {
	shellName := os.Getenv(ShellNameEnvVar)
	if shellName == "" {
		shellName = defaultShellName
	}

	path, err := resolveShell(shellName)
	if err != nil {
		return "", stacktrace.Propagate(err, "failed to resolve shell %q", shellName)
	}
	if path == "" {
		return "", &ShellNotFoundError{ShellName: shellName}
	}
	return path, nil
}
