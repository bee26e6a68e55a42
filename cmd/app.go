// Package cmd implements the CLI application to compute capital gains under
// several tax methods.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlots/feed"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&gainsCmd{}, "gains")
	c.Register(&methodsCmd{}, "gains")

	c.Register(&schwabCmd{}, "brokers")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "taxer.json", "Path to the feed configuration (JSON, or YAML with a .yaml extension)")

// Verbose enables debug logs, including the records skipped while reading a feed.
var Verbose = flag.Bool("v", false, "verbose logging")

// newLogger returns the logger shared by the commands, writing to w.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if *Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the app feed configuration.
func loadConfig() (*feed.Config, error) {
	cfg, err := feed.LoadConfig(*configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", *configFile, err)
	}
	return cfg, nil
}

// printMarkdown renders md for the terminal, or prints it as is when it
// cannot be rendered.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(os.Stdout, md)
		return
	}
	fmt.Fprint(os.Stdout, out)
}
