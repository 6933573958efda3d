package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/axiomates/cil2cpp/internal/assemblyset"
	"github.com/axiomates/cil2cpp/internal/build"
	"github.com/axiomates/cil2cpp/internal/codegen"
	"github.com/axiomates/cil2cpp/internal/config"
	"github.com/axiomates/cil2cpp/internal/gate"
	"github.com/axiomates/cil2cpp/internal/icall"
	"github.com/axiomates/cil2cpp/internal/pipeline"
	"github.com/axiomates/cil2cpp/internal/reach"
)

func runBuild(entryPath string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.FromName(configName)
	if err != nil {
		return err
	}
	if overridePath != "" {
		cfg, err = config.LoadOverride(cfg, overridePath)
		if err != nil {
			return err
		}
	}
	logger.Info("resolved build configuration", zap.String("preset", configName), zap.Bool("debug", cfg.IsDebug))

	set, err := assemblyset.Load(entryPath, bclDir, cfg.ReadDebugSymbols)
	if err != nil {
		return fmt.Errorf("loading assembly closure: %w", err)
	}
	logger.Info("loaded assembly closure", zap.Int("assemblies", len(set.Order)), zap.Int("cycles", len(set.CyclesDetected)))

	bridge := pipeline.NewBridge(set, icall.NewRegistry())
	result := reach.Analyze(bridge, bridge.Roots())
	bridge.SetReachability(result)
	logger.Info("reachability closed",
		zap.Int("methods", len(result.ReachableMethods)),
		zap.Int("types", len(result.ReachableTypes)),
		zap.Int("instantiations", len(result.Instantiations)))

	builder := build.New(bridge, bridge.Faults())
	mod := builder.Run()

	gateFaults := bridge.Faults()
	gate.New(gateFaults).Run(mod)

	if gateFaults.HasFatal() {
		for _, fe := range gateFaults.FatalErrors() {
			logger.Error("fatal build error", zap.Error(fe))
		}
		return fmt.Errorf("build aborted: %d fatal error(s)", len(gateFaults.FatalErrors()))
	}

	view := codegen.NewModuleView(mod)
	logger.Info("built module view", zap.Int("types", len(view.Types())), zap.Int("methods", len(view.Methods())))

	entries := gate.Report(mod)
	if len(entries) > 0 {
		logger.Warn("methods stubbed by the safety-net gate", zap.Int("count", len(entries)))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	reportPath := filepath.Join(outDir, "stubbed_methods.txt")
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("creating stub report: %w", err)
	}
	defer f.Close()
	if err := gate.WriteText(f, entries); err != nil {
		return fmt.Errorf("writing stub report: %w", err)
	}
	logger.Info("wrote stub report", zap.String("path", reportPath))

	for _, fault := range gateFaults.Faults() {
		logger.Debug("method fault", zap.String("method", fault.Method), zap.String("kind", fault.Kind.String()), zap.String("detail", fault.Detail))
	}
	return nil
}
