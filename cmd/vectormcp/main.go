// Package main is the entry point for the vectormcp server.
//
// The default command speaks MCP over stdin/stdout: stdout carries
// protocol frames only, all logging goes to stderr. Auth subcommands
// manage the backend API key in the OS credential store.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vectormcp/internal/config"
	"vectormcp/internal/logging"
	"vectormcp/internal/mcp"
	"vectormcp/internal/tools"

	"github.com/spf13/cobra"
)

const (
	serverName    = "vectormcp"
	serverVersion = "1.0.0"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vectormcp",
		Short:        "MCP server fronting a vector-store API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s (protocol %s)\n", serverName, serverVersion, mcp.ProtocolVersion)
		},
	}

	root.AddCommand(serve, version, newAuthCmd(), newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file at the standard location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, exists := config.FindConfigFile()
			if exists {
				return fmt.Errorf("config already exists at %s", path)
			}
			cfg := config.DefaultConfig()
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	configCmd.AddCommand(initCmd, pathCmd)
	return configCmd
}

func runServe() error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Info("Configuration loaded", "base_url", cfg.BaseURL, "eager_credential_check", cfg.EagerCredentialCheck)

	creds := config.NewCredentialManager()
	service := tools.NewService(cfg, creds, logger)

	var opts []mcp.Option
	if cfg.EagerCredentialCheck {
		opts = append(opts, mcp.WithEagerCredentialCheck(service.CredentialCheck))
	}

	server := mcp.NewServer(serverName, serverVersion, mcp.NewStdioTransport(), service, logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored backend API key",
	}

	set := &cobra.Command{
		Use:   "set [key]",
		Short: "Store an API key in the OS credential store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Fprint(os.Stderr, "API key: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}

			if err := config.NewCredentialManager().StoreAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "API key stored")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is available",
		Run: func(cmd *cobra.Command, args []string) {
			cm := config.NewCredentialManager()
			key, err := cm.ResolveAPIKey()
			if err != nil {
				fmt.Fprintln(os.Stderr, "No API key configured")
				return
			}
			fmt.Fprintf(os.Stderr, "API key available: %s\n", config.Redact(key))
			if cm.HasAPIKey() {
				fmt.Fprintln(os.Stderr, "Credential store: key present")
			} else {
				fmt.Fprintln(os.Stderr, "Credential store: empty (key comes from the environment)")
			}
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewCredentialManager().DeleteAPIKey(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Stored API key removed")
			return nil
		},
	}

	auth.AddCommand(set, status, clear)
	return auth
}
