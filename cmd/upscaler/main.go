// Package main provides the CLI entry point for upscaler.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/upscaler/pkg/adapters/ffmpeg"
	"github.com/user/upscaler/pkg/adapters/filesink"
	"github.com/user/upscaler/pkg/adapters/ggrenderer"
	"github.com/user/upscaler/pkg/adapters/logger"
	"github.com/user/upscaler/pkg/adapters/mp4probe"
	"github.com/user/upscaler/pkg/adapters/nullsink"
	"github.com/user/upscaler/pkg/adapters/osfilesystem"
	"github.com/user/upscaler/pkg/config"
	"github.com/user/upscaler/pkg/orchestrator"
	"github.com/user/upscaler/pkg/pipeline"
	"github.com/user/upscaler/pkg/ports"
	"github.com/user/upscaler/pkg/summarizer"
	"github.com/user/upscaler/pkg/superres"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Upscale UpscaleCmd `cmd:"" help:"Upscale a movie with a super-resolution model."`
	Models  ModelsCmd  `cmd:"" help:"List the models available in a directory."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// UpscaleCmd defines the upscale subcommand. Flags left unset keep the
// value from --config or the built-in default.
type UpscaleCmd struct {
	Config string `short:"c" type:"existingfile" help:"YAML job file."`

	// Input/Output
	InputFile  *string `short:"i" help:"Input movie file."`
	OutputFile *string `short:"o" help:"Output MP4 file."`
	ModelsDir  *string `short:"m" help:"Directory containing the model files."`

	// Upscaling
	Factor            *int    `short:"f" help:"Scale factor (default: 2)."`
	Algo              *string `short:"a" help:"Super-resolution algorithm (default: espcn)."`
	ParallelInstances *int    `short:"p" help:"Number of concurrent upscale instances (default: 8)."`

	// Encoding
	CRF        *int    `help:"H.264 CRF value (0-51, lower is better)."`
	FFmpegPath *string `help:"Path to the ffmpeg executable."`

	// Debug
	Debug        bool    `short:"d" help:"Save sampled comparison frames and run metadata."`
	DebugDir     *string `help:"Directory for debug output, one subdirectory per run (default: ./debug)."`
	DebugEvery   *int    `help:"Save every Nth frame when debugging (default: 30)."`
	DebugFormat  *string `help:"Image format of debug frames (png, jpeg)."`
	DebugQuality *int    `help:"JPEG quality of debug frames (1-100, 0 = default)."`

	Summary *string `short:"s" help:"Write a Markdown summary to this path."`

	// Logging
	LogLevel  *string `short:"l" help:"Log level (debug, info, warn, error)."`
	LogFormat *string `help:"Log format (console, json)."`
	Quiet     bool    `short:"Q" help:"Suppress all log output."`
}

// ModelsCmd lists the models found under a directory.
type ModelsCmd struct {
	Dir string `arg:"" type:"existingdir" help:"Models directory."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("upscaler"),
		kong.Description(l10n.T("Upscale movies with super-resolution models.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// buildConfig loads the job file, if any, and applies flag overrides.
func (cmd *UpscaleCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	setString(&cfg.Input, cmd.InputFile)
	setString(&cfg.Output, cmd.OutputFile)
	setString(&cfg.ModelsDir, cmd.ModelsDir)
	setInt(&cfg.Factor, cmd.Factor)
	setString(&cfg.Algo, cmd.Algo)
	setInt(&cfg.Workers, cmd.ParallelInstances)
	setInt(&cfg.CRF, cmd.CRF)
	setString(&cfg.FFmpegPath, cmd.FFmpegPath)
	setString(&cfg.DebugDir, cmd.DebugDir)
	setInt(&cfg.DebugEvery, cmd.DebugEvery)
	setString(&cfg.DebugFormat, cmd.DebugFormat)
	setInt(&cfg.DebugQuality, cmd.DebugQuality)
	setString(&cfg.Summary, cmd.Summary)
	setString(&cfg.LogLevel, cmd.LogLevel)
	setString(&cfg.LogFormat, cmd.LogFormat)
	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.Quiet {
		cfg.LogLevel = "quiet"
	}

	cfg.Normalize()
	return cfg, cfg.Validate()
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func debugFormat(cfg config.Config) filesink.Option {
	if cfg.DebugFormat == "jpeg" {
		return filesink.WithFormat(ports.FormatJPEG, cfg.DebugQuality)
	}
	return filesink.WithFormat(ports.FormatPNG, 0)
}

func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLogLevel(cfg.LogLevel)
	switch {
	case level == ports.LevelQuiet:
		return logger.NewNoop()
	case cfg.LogFormat == "json":
		return logger.NewJSON(level, os.Stderr)
	default:
		return logger.NewConsole(level)
	}
}

// Run executes the upscale command.
func (cmd *UpscaleCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	orchConfig, err := cfg.ToOrchestratorConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)

	// The first signal asks for a cooperative stop; frames already
	// submitted are still written. A second one kills the process.
	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		interrupted.Store(true)
		log.Warn("Interrupted, finishing queued frames...")
		signal.Stop(sigCh)
	}()

	// Create adapters
	fs := osfilesystem.New()
	video, err := ffmpeg.New(ffmpeg.Options{
		Path:   cfg.FFmpegPath,
		Prober: mp4probe.New(),
		Logger: log,
	})
	if err != nil {
		return pipeline.ResourceError("locate ffmpeg", err)
	}

	orchConfig.RunID = orchestrator.NewRunID()
	var debug ports.DebugSink
	if cfg.Debug {
		dir := filepath.Join(cfg.DebugDir, orchConfig.RunID)
		if err := fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		debug = filesink.New(dir, fs, ggrenderer.New(), debugFormat(cfg))
	} else {
		debug = nullsink.New()
	}

	up := orchestrator.New(video, video, orchestrator.SuperresFactory(fs), debug, log)

	showProgress := !cmd.Quiet && isatty.IsTerminal(os.Stderr.Fd())
	progress := func(frame int) bool {
		if interrupted.Load() {
			return false
		}
		if showProgress {
			fmt.Fprintf(os.Stderr, "\r%s", l10n.F("Frame: %d", frame))
		}
		return true
	}

	result, runErr := up.Run(context.Background(), orchConfig, progress)
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}

	if cfg.Summary != "" && result.RunID != "" {
		if err := writeSummary(fs, cfg.Summary, orchConfig, result, runErr); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", cfg.Summary)
		}
	}
	return runErr
}

func writeSummary(fs ports.FileSystem, path string, cfg orchestrator.Config, r orchestrator.RunResult, runErr error) error {
	output := summarizer.OutputInfo{
		Path:   cfg.OutputPath,
		Width:  r.OutputWidth,
		Height: r.OutputHeight,
	}
	if runErr == nil {
		if st, err := os.Stat(cfg.OutputPath); err == nil {
			output.FileSize = st.Size()
		}
	}
	result := summarizer.ResultInfo{
		FramesWritten: r.FramesWritten,
		Stopped:       r.Stopped,
		Elapsed:       r.Elapsed,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	summary := summarizer.NewBuilder().
		WithRunID(r.RunID).
		WithInput(summarizer.InputInfo{
			Path:       cfg.InputPath,
			Width:      r.Input.Width,
			Height:     r.Input.Height,
			FPS:        r.Input.FPS,
			FrameCount: r.Input.FrameCount,
			Codec:      r.Input.Codec,
		}).
		WithOutput(output).
		WithSettings(summarizer.Settings{
			Algo:    r.Algo.String(),
			Factor:  r.Factor,
			Workers: r.Workers,
			CRF:     cfg.CRF,
		}).
		WithResult(result).
		Build()

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithTranslator(translate)), fs)
	return w.Write(path, summary)
}

func translate(s string) string {
	return l10n.T(s)
}

// Run executes the models command.
func (cmd *ModelsCmd) Run() error {
	models, err := superres.Catalog(osfilesystem.New(), cmd.Dir)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.New(l10n.F("no models found in %s", cmd.Dir))
	}
	for _, m := range models {
		fmt.Printf("%-13s x%d  %s\n", m.Algo, m.Scale, m.Path)
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("upscaler version %s", version))
	return nil
}
