package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurtosis-tech/stacktrace"
)

const (
	// ConfigSearchPathEnvVar lists the ':'-separated ordered directories to
	// search for config.
	ConfigSearchPathEnvVar = "WINGMATE_CONFIG_PATH"
	// DefaultConfigSearchPath is used when ConfigSearchPathEnvVar is unset.
	DefaultConfigSearchPath = "/etc/wingmate"

	servicesDirname  = "services"
	crontabFilename  = "crontab"
)

// NoServiceOrCronError is returned when no directory in the search path
// yields any service or crontab entry.
type NoServiceOrCronError struct {
	SearchPath []string
}

func (e *NoServiceOrCronError) Error() string {
	return "no services or crontab entries found under any of: " + strings.Join(e.SearchPath, ", ")
}

// InvalidConfigSearchPathError is returned when the search path is empty.
type InvalidConfigSearchPathError struct{}

func (e *InvalidConfigSearchPathError) Error() string {
	return "config search path is empty"
}

// searchPath returns the ordered list of directories to search, read from
// ConfigSearchPathEnvVar or defaulting to DefaultConfigSearchPath.
func searchPath() []string {
	raw := os.Getenv(ConfigSearchPathEnvVar)
	if raw == "" {
		raw = DefaultConfigSearchPath
	}
	var dirs []string
	for _, d := range strings.Split(raw, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Load discovers the Config from the first directory in the search path
// (WINGMATE_CONFIG_PATH, default /etc/wingmate) that yields at least one
// service or crontab entry.
func Load() (*Config, error) {
	dirs := searchPath()
	if len(dirs) == 0 {
		return nil, &InvalidConfigSearchPathError{}
	}

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		cfg, err := loadFromDir(dir)
		if err != nil {
			return nil, stacktrace.Propagate(err, "failed loading config from %q", dir)
		}

		if len(cfg.Services) > 0 || len(cfg.Crontab) > 0 {
			return cfg, nil
		}
	}

	return nil, &NoServiceOrCronError{SearchPath: dirs}
}

// loadFromDir discovers services/ and crontab under a single candidate
// directory, without yet enforcing the "yields something" rule (the
// caller does that across the whole search path).
func loadFromDir(dir string) (*Config, error) {
	cfg := &Config{}

	servicesDir := filepath.Join(dir, servicesDirname)
	entries, err := os.ReadDir(servicesDir)
	switch {
	case err == nil:
		for _, ent := range entries {
			if ent.IsDir() {
				cfg.Notes = append(cfg.Notes, "skipped directory in services/: "+ent.Name())
				continue
			}
			info, err := ent.Info()
			if err != nil {
				cfg.Notes = append(cfg.Notes, "could not stat services/"+ent.Name()+": "+err.Error())
				continue
			}
			if !info.Mode().IsRegular() {
				cfg.Notes = append(cfg.Notes, "skipped non-regular file in services/: "+ent.Name())
				continue
			}
			path := filepath.Join(servicesDir, ent.Name())
			kind := ShellPrefixed
			if isExecutable(info) {
				kind = Direct
			}
			cfg.Services = append(cfg.Services, ServiceCommand{Kind: kind, Path: path})
		}
	case os.IsNotExist(err):
		// no services/ subdirectory under this root; that's fine
	default:
		return nil, stacktrace.Propagate(err, "failed reading %q", servicesDir)
	}

	crontabPath := filepath.Join(dir, crontabFilename)
	f, err := os.Open(crontabPath)
	switch {
	case err == nil:
		defer f.Close()
		entries, err := parseCrontab(f)
		if err != nil {
			return nil, stacktrace.Propagate(err, "failed parsing %q", crontabPath)
		}
		cfg.Crontab = entries
	case os.IsNotExist(err):
		// no crontab file under this root; that's fine
	default:
		return nil, stacktrace.Propagate(err, "failed opening %q", crontabPath)
	}

	return cfg, nil
}

// isExecutable reports whether any execute bit is set in the file mode.
func isExecutable(info fs.FileInfo) bool {
	return info.Mode()&0o111 != 0
}
