package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/agiangrant/stacknav"
	"github.com/agiangrant/stacknav/stack"
)

// Init implements the 'stacknav init' command
func Init(args []string) error {
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	output := fs.StringP("output", "o", "stacknav.toml", "file to write (.toml, .yaml or .yml)")
	mode := fs.String("mode", "card", "card or modal presentation")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*output); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", *output)
	}

	config := stacknav.DefaultConfig()
	config.Stack.Mode = *mode
	// A sample screen so the file shows the per-screen section.
	config.Screens = map[string]stacknav.ScreenConfig{
		"Home": {Title: "Home", GestureEnabled: stack.Bool(false)},
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if err := stacknav.SaveConfig(*output, config); err != nil {
		return err
	}
	fmt.Printf("  ✓ Created %s\n", filepath.Base(*output))
	return nil
}
