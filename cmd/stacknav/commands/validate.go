package commands

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Validate implements the 'stacknav validate' command
func Validate(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	var flags commonFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("validate takes at most one file")
	}
	if fs.NArg() == 1 {
		flags.configPath = fs.Arg(0)
	}

	logger, err := newLogger(flags.logLevel)
	if err != nil {
		return err
	}
	cfg, err := flags.load(logger)
	if err != nil {
		return err
	}

	name := flags.configPath
	if name == "" {
		name = "defaults"
	}
	fmt.Printf("  ✓ %s: %s headers, %s mode, %d screens\n", name, cfg.Stack.HeaderMode, cfg.Stack.Mode, len(cfg.Screens))
	return nil
}
