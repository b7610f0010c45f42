package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"flvkit/internal/config"
	"flvkit/internal/metrics"
	"flvkit/internal/probeserver"
	"flvkit/internal/task"
	"flvkit/pkg/flv"
)

var usageStr = `
Usage: flvparser [options] <file.flv>...
       flvparser [options] -serve <addr>

Parse Options:
	-audio                           Extract raw audio to <dir>/<name>_audio.es (default: true)
	-video                           Write retained tags to <dir>/<name>_video.flv (default: true)
	-retain <types>                  Tag types to retain: video,audio,script (default: video)
	-dir <dir>                       Output directory (default: .)
	-workers <n>                     Files parsed concurrently (default: 4)
	-q                               No per tag report

Server Options:
	-serve <addr>                    Run the HTTP probe server on addr

Common Options:
	-c <file>                        YAML configuration file
	-log-level <level>               debug, info, warn, error (default: info)
	-log-format <format>             text or json (default: text)
	-log-path <file>                 Log to a daily rotated file instead of stderr
	-h, -help                        Show this message
	-v, -version                     Show version
`

func usage() {
	fmt.Printf("%s\n", usageStr)
	os.Exit(0)
}

func main() {
	exe := "flvparser"

	fs := flag.NewFlagSet(exe, flag.ExitOnError)
	fs.Usage = usage

	opts, err := configureOptions(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	os.Exit(run(opts, os.Stdout))
}

// Options is the merged result of the config file and the command line.
type Options struct {
	Config *config.Config
	Serve  string
	Inputs []string
}

func configureOptions(fs *flag.FlagSet, args []string) (*Options, error) {
	var (
		showVersion bool
		showHelp    bool
		configFile  string
		serve       string

		audio, video, quiet bool
		retain, dir         string
		workers             int
		logLevel, logFormat string
		logPath             string
	)

	def := config.Default()

	fs.BoolVar(&showHelp, "h", false, "Show this message")
	fs.BoolVar(&showHelp, "help", false, "Show this message")
	fs.BoolVar(&showVersion, "v", false, "Show Version")
	fs.BoolVar(&showVersion, "version", false, "Show Version")
	fs.StringVar(&configFile, "c", "", "YAML configuration file.")
	fs.StringVar(&serve, "serve", "", "Run the HTTP probe server on addr.")
	fs.BoolVar(&audio, "audio", def.Audio, "Extract raw audio.")
	fs.BoolVar(&video, "video", def.Video, "Write the remuxed file.")
	fs.BoolVar(&quiet, "q", def.Quiet, "No per tag report.")
	fs.StringVar(&retain, "retain", strings.Join(def.Retain, ","), "Tag types to retain.")
	fs.StringVar(&dir, "dir", def.Dir, "Output directory.")
	fs.IntVar(&workers, "workers", def.Workers, "Files parsed concurrently.")
	fs.StringVar(&logLevel, "log-level", def.Log.Level, "Log level.")
	fs.StringVar(&logFormat, "log-format", def.Log.Format, "Log format.")
	fs.StringVar(&logPath, "log-path", "", "Log file.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		printVersion()
		return nil, nil
	}

	if showHelp {
		usage()
		return nil, nil
	}

	cfg := def
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	// flags given on the command line win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "audio":
			cfg.Audio = audio
		case "video":
			cfg.Video = video
		case "q":
			cfg.Quiet = quiet
		case "retain":
			cfg.Retain = []string{retain}
		case "dir":
			cfg.Dir = dir
		case "workers":
			cfg.Workers = workers
		case "log-level":
			cfg.Log.Level = logLevel
		case "log-format":
			cfg.Log.Format = logFormat
		case "log-path":
			cfg.Log.LogPath = logPath
			cfg.Log.UseStderr = logPath == ""
		case "serve":
			cfg.Server.Listen = serve
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &Options{
		Config: cfg,
		Serve:  serve,
		Inputs: fs.Args(),
	}
	if opts.Serve == "" && len(opts.Inputs) == 0 {
		return nil, fmt.Errorf("%s: no input file, see -h", fs.Name())
	}

	return opts, nil
}

var VERSION string = "1.0.0"

func printVersion() {
	fmt.Printf("flvparser: v%s\n", VERSION)
	os.Exit(0)
}

func run(opts *Options, report io.Writer) int {
	cfg := opts.Config

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	m := metrics.New()

	if opts.Serve != "" {
		if err := probeserver.New(cfg.Server, logger, m).Run(); err != nil {
			return 1
		}
		return 0
	}

	types, err := cfg.RetainTypes()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	runner := task.NewRunner(task.Options{
		Audio:  cfg.Audio,
		Video:  cfg.Video,
		Retain: types,
		Dir:    cfg.Dir,
		Quiet:  cfg.Quiet,
	}, logger, m)

	results, err := runner.RunBatch(opts.Inputs, cfg.Workers, report)
	if err != nil {
		logger.WithField("event", "RunBatch").Error(err)
		return 1
	}

	for _, res := range results {
		if res.Err == nil {
			continue
		}

		fmt.Fprintf(os.Stderr, "%s: %v\n", res.Input, res.Err)
		logger.WithFields(logrus.Fields{
			"event":  "Run",
			"input":  res.Input,
			"offset": flv.OffsetOf(res.Err),
			"result": metrics.Result(res.Err),
		}).Warn("parse failed")
	}

	if task.Failed(results) > 0 {
		return 1
	}
	return 0
}
