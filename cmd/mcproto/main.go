package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mcerrors "github.com/vango-dev/mcproto/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		mcerrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		noColor    bool
	)

	rootCmd := &cobra.Command{
		Use:   "mcproto",
		Short: "Decode, inspect and proxy the Minecraft wire protocol",
		Long: `mcproto reads and writes the Minecraft binary protocol (version 5).

It splits raw streams into VarInt frames, decodes every packet of the
handshake, status, login and play phases in both directions, and runs
an inspecting proxy that records what it sees.

Examples:
  mcproto decode --hex "0f 00 05 09 6c 6f 63 61 6c 68 6f 73 74 63 dd 02"
  mcproto catalogue --phase play --direction clientbound
  mcproto proxy --upstream play.example.net:25565
  mcproto inspect captures/3f2c.mccap`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				mcerrors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to mcproto.toml (default: search from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		decodeCmd(&configPath),
		framesCmd(),
		catalogueCmd(),
		proxyCmd(&configPath),
		inspectCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
