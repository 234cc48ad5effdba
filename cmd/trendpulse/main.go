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
		Use:           "trendpulse",
		Short:         "Aggregate news and search trends and analyze them with AI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(buildCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func buildCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the current trend list from every source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max trends to show (0 for all)")
	return cmd
}

func queryCmd() *cobra.Command {
	var (
		timeframe  string
		predictive bool
	)

	cmd := &cobra.Command{
		Use:   "query <term>",
		Short: "Aggregate search interest and news for a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], timeframe, predictive)
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "7d", "1h, 6h, 24h, 3d, 7d, 1m, 3m or 12m")
	cmd.Flags().BoolVar(&predictive, "predictive", false, "append a projected timeline")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var (
		analysisType string
		lang         string
		file         string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a trend read as JSON from a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), analysisType, lang, file)
		},
	}

	cmd.Flags().StringVar(&analysisType, "type", "summary", "summary, prediction or detailed")
	cmd.Flags().StringVar(&lang, "lang", "en", "en or vi")
	cmd.Flags().StringVar(&file, "file", "-", "trend JSON file (- for stdin)")
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
		Short: "Start HTTP server with scheduled cache prewarm and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
