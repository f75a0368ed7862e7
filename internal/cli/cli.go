// Package cli builds the single-command flag surface dvtm.c's flat
// getopt surface maps to: one cobra.Command with pflag shorthand flags,
// no subcommands.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dvtm-go/internal/app"
	"dvtm-go/internal/config"
	"dvtm-go/internal/version"
)

// Execute parses os.Args, runs the multiplexer (or prints help/version),
// and returns the process exit code: 0 for success, help or version; 1
// for bad usage or a fatal runtime error.
func Execute() int {
	var (
		showUsage   bool
		showVersion bool
		toggleMouse bool
		modKey      string
		delayMS     int
		scrollback  int
		title       string
		statusFifo  string
		cmdFifo     string
	)

	code := 0
	cmd := &cobra.Command{
		Use:           "dvtm [cmd]...",
		Short:         "dynamic virtual terminal manager",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			switch {
			case showUsage:
				return c.Help()
			case showVersion:
				fmt.Fprintln(os.Stdout, version.Version)
				return nil
			}
			if err := run(args, toggleMouse, modKey, delayMS, scrollback, title, statusFifo, cmdFifo); err != nil {
				code = 1
				return err
			}
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	// Preempt cobra's default "-h" help shorthand: dvtm.c reserves -h for
	// scrollback lines and -? for help.
	flags.BoolP("help", "", false, "show help")
	flags.BoolVarP(&showUsage, "usage", "?", false, "show usage and exit")
	flags.BoolVarP(&showVersion, "version", "v", false, "show version and exit")
	flags.BoolVarP(&toggleMouse, "toggle-mouse", "M", false, "toggle the default mouse-enabled state")
	flags.StringVarP(&modKey, "mod", "m", "", "replace the modifier key bound in every default binding (^x means Ctrl-x)")
	flags.IntVarP(&delayMS, "escape-delay", "d", 0, "escape sequence delay in milliseconds, clamped to [50,1000]")
	flags.IntVarP(&scrollback, "scrollback", "h", 0, "scrollback history lines")
	flags.StringVarP(&title, "title", "t", "", "static outer-terminal title")
	flags.StringVarP(&statusFifo, "status-fifo", "s", "", "status FIFO path")
	flags.StringVarP(&cmdFifo, "cmd-fifo", "c", "", "command FIFO path")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dvtm:", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// run resolves configuration, builds the App, spawns the positional and
// startup clients, and runs the event loop to completion.
func run(args []string, toggleMouse bool, modKey string, delayMS, scrollback int, title, statusFifo, cmdFifo string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("stdin is not a terminal")
	}

	cfg, err := config.Load(config.LocatePath())
	if err != nil {
		return err
	}

	if toggleMouse {
		cfg.MouseEnabled = !cfg.MouseEnabled
	}
	if modKey != "" {
		cfg.ReplaceModKey(normalizeMod(modKey))
	}
	if delayMS > 0 {
		cfg.EscDelayMS = clamp(delayMS, 50, 1000)
	} else if env := os.Getenv("ESCDELAY"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			cfg.EscDelayMS = clamp(n, 50, 1000)
		}
	}
	if scrollback > 0 {
		cfg.Scrollback = scrollback
	}
	cfg.Title = title
	cfg.StatusFifo = statusFifo
	cfg.CmdFifo = cmdFifo

	a, err := app.New(cfg, app.DefaultShell(), title)
	if err != nil {
		return err
	}
	if err := a.Bootstrap(args); err != nil {
		return err
	}
	return a.Run()
}

// normalizeMod translates dvtm.c's "^x" CTRL(x) shorthand to the
// dispatcher's "C-x" key token; anything else passes through unchanged.
func normalizeMod(s string) string {
	if strings.HasPrefix(s, "^") && len(s) == 2 {
		return "C-" + strings.ToLower(s[1:])
	}
	return s
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
