package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"motdyn/pkg/config"
	"motdyn/pkg/facts"
	"motdyn/pkg/installer"
	"motdyn/pkg/logger"
	"motdyn/pkg/render"
	"motdyn/pkg/utils"
	"motdyn/pkg/welcome"
)

// version is set at build time via -ldflags="-X main.version=<tag>".
var version = "dev"

func main() {
	verbose := flag.Bool("verbose", false, "Show extra detail in the banner")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors regardless of config")
	configFile := flag.String("config", "", "Extra config file, overlaid on system and user configs")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("motdyn %s\n", version)
		os.Exit(0)
	}

	logger.Init(*verbose)

	switch flag.Arg(0) {
	case "":
		if err := runBanner(*verbose, *noColor, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "motdyn: %v\n", err)
			os.Exit(1)
		}
	case "install":
		if err := installer.New().Install(); err != nil {
			fmt.Fprintf(os.Stderr, "Install failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Install successful!")
	case "uninstall":
		if err := installer.New().Uninstall(); err != nil {
			fmt.Fprintf(os.Stderr, "Uninstall failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Uninstall successful!")
	case "status":
		installed, path := installer.New().Status()
		if installed {
			fmt.Printf("motdyn is installed (%s)\n", path)
		} else {
			fmt.Printf("motdyn is not installed (no %s)\n", path)
		}
	default:
		fmt.Fprintf(os.Stderr, "motdyn: unknown command %q\n", flag.Arg(0))
		os.Exit(1)
	}
}

// loadConfig merges the system file, the user file, an optional extra file
// and the environment, in that order. A missing or malformed file costs
// only itself.
func loadConfig(extra string) *config.Config {
	load := func(path string) *config.Config {
		cfg, err := config.Load(path)
		if err != nil {
			logger.L.Debug("config ignored", "path", path, "err", err)
			return nil
		}
		return cfg
	}
	cfg := config.Merge(load(config.SystemPath), load(utils.ExpandTilde(config.UserPath)))
	if extra != "" {
		cfg = config.Merge(cfg, load(extra))
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg
}

// runBanner assembles the facts, resolves the welcome line and prints the
// report. Partial data never fails the run; only an output failure does.
func runBanner(verbose, noColor bool, extraConfig string) error {
	cfg := loadConfig(extraConfig)

	fs := facts.Gather(facts.NewSources(), cfg.ExcludeFS())

	text := welcome.Provider{
		URL:     cfg.WelcomeURL,
		Timeout: cfg.FetchTimeout(),
		Default: cfg.Welcome(),
	}.Fetch(context.Background())

	opts := render.Options{
		Color:    !noColor && cfg.ColorEnabled(stdoutIsTTY()),
		Verbose:  verbose,
		AsciiArt: cfg.AsciiArt,
		Farewell: cfg.FarewellText(),
	}

	if _, err := fmt.Print(render.Render(fs, text, opts)); err != nil {
		return fmt.Errorf("writing banner: %w", err)
	}
	return nil
}

func stdoutIsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
