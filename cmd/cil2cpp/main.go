// Command cil2cpp ingests a .NET assembly and its dependency closure and
// emits the reachability-pruned IR a separate C++ emitter renders from.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	bclDir     string
	configName string
	outDir     string
	overridePath string
)

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	return logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "cil2cpp",
		Short: "Ahead-of-time compiler from .NET assemblies to a C++ project",
		Long:  "cil2cpp reads an entry assembly's CIL metadata, prunes it to what the entry point actually reaches, and produces the IR a C++ emitter consumes.",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("cil2cpp 0.1.0")
		},
	}

	buildCmd := &cobra.Command{
		Use:   "build ENTRY_ASSEMBLY",
		Short: "Build the reachable IR for an entry assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0])
		},
	}
	buildCmd.Flags().StringVar(&bclDir, "bcl-dir", "", "directory containing the base class library assemblies")
	buildCmd.Flags().StringVar(&configName, "config", "release", "build configuration preset (debug|release)")
	buildCmd.Flags().StringVar(&overridePath, "config-file", "", "path to a cil2cpp.yaml overriding the preset")
	buildCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the stub report into")
	buildCmd.MarkFlagRequired("bcl-dir")

	rootCmd.AddCommand(versionCmd, buildCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}
