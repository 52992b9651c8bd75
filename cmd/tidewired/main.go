package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"strconv"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/tidewire/tidewire/internal/logger"
	"github.com/tidewire/tidewire/internal/samplehandlers"
	"github.com/tidewire/tidewire/pkg/dispatcher"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName  = "tidewire"
	ConfigFileName = "config.toml"

	DefaultPort      = 8080
	DefaultPoolSize  = dispatcher.DefaultPoolSize
	DefaultStaticDir = "."
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	cmd := &cli.Command{
		Name:    "tidewired",
		Usage:   "sample HTTP/1.1 + WebSocket server built on the tidewire toolkit",
		Version: bi.Main.Version,
		Flags:   flags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "pretty-log",
			Usage: "human-readable console logging, instead of JSON",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "local TCP port number to listen on",
			Value: DefaultPort,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("TIDEWIRE_PORT"),
				toml.TOML("server.port", path),
			),
			Validator: validatePort,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "maximum number of connections served concurrently",
			Value: DefaultPoolSize,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("TIDEWIRE_POOL_SIZE"),
				toml.TOML("server.pool_size", path),
			),
			Validator: validatePoolSize,
		},
		&cli.StringFlag{
			Name:  "static-dir",
			Usage: "directory served by the sample static-file handler",
			Value: DefaultStaticDir,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("TIDEWIRE_STATIC_DIR"),
				toml.TOML("server.static_dir", path),
			),
		},
	}
}

func validatePort(p int) error {
	if p < 0 || p > 65535 {
		return errors.New("out of range [0-65535]")
	}
	return nil
}

func validatePoolSize(n int) error {
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

// configFile returns the path to the app's configuration file. It also
// creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		fmt.Printf("Error: failed to create config file: %v\n", err)
		os.Exit(1)
	}
	return altsrc.StringSourcer(path)
}

func initLog(pretty bool) {
	var handler slog.Handler
	if pretty {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, cmd *cli.Command) error {
	initLog(cmd.Bool("pretty-log"))

	port := cmd.Int("port")
	poolSize := cmd.Int("pool-size")
	staticDir := cmd.String("static-dir")

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		logger.FatalErrorContext(ctx, "failed to bind port", err, slog.Int("port", port))
	}
	defer ln.Close()

	s := dispatcher.NewServer(
		dispatcher.WithPoolSize(poolSize),
		dispatcher.WithLogger(slog.Default()),
	)
	registerHandlers(s, staticDir)

	slog.InfoContext(ctx, "listening", slog.Int("port", port), slog.Int("pool_size", poolSize))
	return s.Serve(ln)
}

// registerHandlers wires the sample counter, static-file, and WebSocket
// echo handlers onto s. None of these are part of the core toolkit; they
// exist only to exercise it end to end (see internal/samplehandlers).
func registerHandlers(s *dispatcher.Server, staticDir string) {
	counter := &samplehandlers.Counter{}
	s.Register(counter.Matcher("/counter"), counter.Handle)

	static := samplehandlers.NewStaticFile(staticDir)
	s.Register(static.Matcher("/static/"), static.Handle("/static/"))

	s.Register(dispatcher.IsUpgradeRequest, s.UpgradeHandler(samplehandlers.Echo))
}
