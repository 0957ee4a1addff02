package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/guest"
	"github.com/meigma/shadercache/internal/host"
)

func commonFlags(extra ...cli.Flag) []cli.Flag {
	return append(extra,
		&cli.StringFlag{Name: "dir", Required: true, Usage: "Shader cache directory", EnvVars: []string{"SHADERCACHE_DIR"}},
		&cli.StringFlag{Name: "api", Value: "vulkan", Usage: "Graphics API the host files were written for"},
		&cli.StringFlag{Name: "vendor", Value: "unknown", Usage: "GPU vendor name the host files were written for"},
		&cli.UintFlag{Name: "codegen-version", Value: host.DefaultCodegenVersion, Usage: "Translator output version host binaries must match"},
		&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "Set log level (debug, info, warn, error)", EnvVars: []string{"LOG_LEVEL"}},
	)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "shadercache",
		Usage:     "Inspect and maintain a shader disk cache",
		Writer:    stdout,
		ErrWriter: stderr,
	}
	app.Commands = []*cli.Command{
		{
			Name:   "info",
			Usage:  "Print entry counts of the cache files",
			Flags:  commonFlags(),
			Action: func(c *cli.Context) error { return runInfo(c, stderr) },
		},
		{
			Name:  "verify",
			Usage: "Read every stored program and report unusable entries",
			Flags: commonFlags(
				&cli.StringFlag{Name: "cpuprofile", Usage: "Write a CPU profile of the scan to this file", TakesFile: true},
			),
			Action: func(c *cli.Context) error { return runVerify(c, stderr) },
		},
		{
			Name:  "clear",
			Usage: "Truncate the cache files",
			Flags: commonFlags(
				&cli.BoolFlag{Name: "host-only", Usage: "Only clear the host files of --api and --vendor"},
			),
			Action: func(c *cli.Context) error { return runClear(c, stderr) },
		},
		{
			Name:  "prune",
			Usage: "Remove host files of other backends, oldest first",
			Flags: commonFlags(
				&cli.Int64Flag{Name: "max-size", Value: 0, Usage: "Bytes of host files to keep"},
			),
			Action: func(c *cli.Context) error { return runPrune(c) },
		},
	}
	return app
}

func newLogger(c *cli.Context, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func openStorage(c *cli.Context, logger *slog.Logger) (*host.Storage, error) {
	dir := c.String("dir")
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	g, err := guest.New(dir, guest.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	caps := gpu.Capabilities{API: c.String("api"), VendorName: c.String("vendor")}
	return host.New(dir, g, caps,
		host.WithLogger(logger),
		host.WithCodegenVersion(uint32(c.Uint("codegen-version"))), //nolint:gosec // flag value is a small version number
	)
}

func runInfo(c *cli.Context, stderr io.Writer) error {
	logger, err := newLogger(c, stderr)
	if err != nil {
		return err
	}
	s, err := openStorage(c, logger)
	if err != nil {
		return err
	}

	guestCount, err := s.Guest().Count()
	if err != nil {
		return err
	}
	mods, err := s.Guest().ModificationsCount()
	if err != nil {
		return err
	}
	programs, err := s.GetProgramCount()
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "guest shaders:  %d (%d modifications)\n", guestCount, mods)
	fmt.Fprintf(w, "programs:       %d\n", programs)
	fmt.Fprintf(w, "host files:     %s (%s)\n", host.HostFileName(c.String("api"), c.String("vendor")), presence(s.HostTocPath()))

	others, err := host.ListHostFiles(c.String("dir"))
	if err != nil {
		return err
	}
	for _, hf := range others {
		fmt.Fprintf(w, "  %-24s %10d bytes  %s\n", hf.Name, hf.Size, hf.ModTime.Format(time.RFC3339))
	}
	return nil
}

func presence(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "present"
}

// scan counts the programs LoadShaders hands out.
type scan struct {
	host     int
	guest    int
	graphics int
	compute  int
}

func (s *scan) QueueHostProgram(_ int, _ []*gpu.CachedStage, _ []byte, spec *gpu.SpecializationState) {
	s.host++
	s.count(spec)
}

func (s *scan) QueueGuestProgram(_ int, _ []*gpu.GuestCode, spec *gpu.SpecializationState) {
	s.guest++
	s.count(spec)
}

func (s *scan) CheckCompilation() {}

func (s *scan) count(spec *gpu.SpecializationState) {
	if spec.Compute {
		s.compute++
	} else {
		s.graphics++
	}
}

func runVerify(c *cli.Context, stderr io.Writer) error {
	logger, err := newLogger(c, stderr)
	if err != nil {
		return err
	}
	s, err := openStorage(c, logger)
	if err != nil {
		return err
	}

	if path := c.String("cpuprofile"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()
	sc := &scan{}
	loadErr := s.LoadShaders(context.Background(), sc)

	w := c.App.Writer
	fmt.Fprintf(w, "programs read:  %d (%d graphics, %d compute)\n", sc.host+sc.guest, sc.graphics, sc.compute)
	fmt.Fprintf(w, "host binaries:  %d usable, %d need translation\n", sc.host, sc.guest)
	fmt.Fprintf(w, "elapsed:        %s\n", time.Since(start).Round(time.Millisecond))

	if loadErr != nil {
		var le *cacheerr.LoadError
		if errors.As(loadErr, &le) {
			return fmt.Errorf("cache unusable (%s): %w", le.Result, loadErr)
		}
		return loadErr
	}
	fmt.Fprintln(w, "ok")
	return nil
}

func runClear(c *cli.Context, stderr io.Writer) error {
	logger, err := newLogger(c, stderr)
	if err != nil {
		return err
	}
	s, err := openStorage(c, logger)
	if err != nil {
		return err
	}

	if err := s.ClearHostCache(); err != nil {
		return err
	}
	if !c.Bool("host-only") {
		if err := s.ClearSharedCache(); err != nil {
			return err
		}
		if err := s.ClearGuestCache(); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, "cleared")
	return nil
}

func runPrune(c *cli.Context) error {
	dir := c.String("dir")
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	keep := host.HostFileName(c.String("api"), c.String("vendor"))
	freed, remaining, err := host.PruneHostFiles(dir, keep, c.Int64("max-size"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "freed %d bytes, %d bytes of host files remain\n", freed, remaining)
	return nil
}
