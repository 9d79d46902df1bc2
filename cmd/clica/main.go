package main

import (
	"fmt"
	"os"

	"github.com/joeycumines/clica/internal/command"
	"github.com/joeycumines/clica/internal/config"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return err
	}
	return newRegistry(cfg, configPath, os.Stdin).Dispatch(os.Args[1:], os.Stdout, os.Stderr)
}

func newRegistry(cfg *config.Config, configPath string, in *os.File) *command.Registry {
	registry := command.NewRegistry()
	registry.Register(command.NewHelpCommand(registry))
	registry.Register(command.NewVersionCommand(version))
	registry.Register(command.NewConfigCommand(cfg, configPath))
	registry.Register(command.NewInitCommand(configPath))
	registry.Register(command.NewRunCommand(cfg, configPath, in))
	registry.Register(command.NewLogCommand(cfg))
	registry.Register(command.NewSessionCommand(cfg))
	return registry
}
