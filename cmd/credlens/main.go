package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "credlens",
		Short: "Score the credibility of news text and explain the verdict",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(verifyCmd())
	root.AddCommand(topicsCmd())
	root.AddCommand(recentCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func verifyCmd() *cobra.Command {
	var (
		jsonOutput bool
		langCode   string
	)

	cmd := &cobra.Command{
		Use:   "verify [text or url]",
		Short: "Score a piece of text or an article URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args, jsonOutput, langCode)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&langCode, "lang", "en", "language code hint")
	return cmd
}

func topicsCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Show trending headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "score each headline")
	return cmd
}

func recentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent verifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max verifications to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with headline sweeper and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
