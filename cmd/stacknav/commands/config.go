package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/agiangrant/stacknav"
)

// commonFlags are shared by the commands that build a container.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "configuration file (default: nearest stacknav.toml)")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}

// load returns the configuration named by --config, the nearest one found
// from the working directory, or the defaults when there is none.
func (f *commonFlags) load(logger *slog.Logger) (stacknav.Config, error) {
	path := f.configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return stacknav.Config{}, err
		}
		found, err := stacknav.FindConfig(cwd)
		if err != nil {
			logger.Debug("no config file, using defaults")
			return stacknav.DefaultConfig(), nil
		}
		path = found
	}

	logger.Debug("loading config", "path", path)
	cfg, err := stacknav.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the stderr text logger for a --log-level value.
func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
