package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/xeptore/tunedl/cache"
	"github.com/xeptore/tunedl/catalog"
	"github.com/xeptore/tunedl/config"
	"github.com/xeptore/tunedl/cover"
	"github.com/xeptore/tunedl/download"
	"github.com/xeptore/tunedl/fetch"
	"github.com/xeptore/tunedl/log"
	"github.com/xeptore/tunedl/media"
	"github.com/xeptore/tunedl/ratelimit"
	"github.com/xeptore/tunedl/report"
	"github.com/xeptore/tunedl/store"
	"github.com/xeptore/tunedl/tag"
)

func setup(cmd *cli.Command) (zerolog.Logger, *config.Config, error) {
	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return logger, nil, fmt.Errorf("load .env file: %v", err)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		logger.Error().Err(err).Msg("Failed to load config")
		return logger, nil, exitCodeError(3)
	}

	logger = log.FromConfig(conf.Log)
	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	return logger, conf, nil
}

func applyFlags(cmd *cli.Command, conf *config.Downloader) {
	if cmd.IsSet("output") {
		conf.OutputDir = cmd.String("output")
	}

	if cmd.IsSet("codec") {
		conf.Codec = cmd.String("codec")
	}

	if cmd.IsSet("bitrate") {
		conf.Bitrate = cmd.String("bitrate")
	}

	if cmd.IsSet("parallelism") {
		conf.Parallelism = cmd.Int("parallelism")
	}

	if cmd.IsSet("pool-size") {
		conf.PoolSize = cmd.Int("pool-size")
	}

	if cmd.IsSet("jitter") {
		conf.TrackJitter = cmd.Bool("jitter")
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func resolveLink(cmd *cli.Command) (media.Link, error) {
	if arg := cmd.Args().First(); arg != "" {
		return media.ParseLink(arg)
	}

	if kind, id := cmd.String("kind"), cmd.String("id"); kind != "" || id != "" {
		return media.NewLink(kind, id)
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return media.Link{}, fmt.Errorf("%w: a link or --kind and --id are required", media.ErrInvalidConfig)
	}

	var raw string
	prompt := &survey.Input{ //nolint:exhaustruct
		Message: "Spotify link:",
	}
	askOpts := []survey.AskOpt{
		survey.WithValidator(survey.Required),
		survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			_, err := media.ParseLink(s)
			return err
		}),
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
	}
	if err := survey.AskOne(prompt, &raw, askOpts...); nil != err {
		return media.Link{}, fmt.Errorf("failed to ask for link: %v", err)
	}

	return media.ParseLink(raw)
}

// exitCode translates errors the operator can act on into their documented exit codes.
func exitCode(logger zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, catalog.ErrNotFound):
		logger.Error().Err(err).Msg("Entity was not found in the catalog")
		return exitCodeError(2)
	case errors.Is(err, media.ErrInvalidConfig):
		logger.Error().Err(err).Msg("Invalid download configuration")
		return exitCodeError(3)
	case errors.Is(err, catalog.ErrUnauthorized):
		logger.Error().Err(err).Msg("Catalog rejected the client credentials")
		return exitCodeError(4)
	default:
		return err
	}
}

func downloadRun(ctx context.Context, cmd *cli.Command) (err error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}
	logger = logger.With().Str("run_id", uuid.NewString()).Logger()

	applyFlags(cmd, &conf.Downloader)

	link, err := resolveLink(cmd)
	if nil != err {
		return exitCode(logger, err)
	}
	logger = logger.With().Str("link", link.String()).Logger()

	cfg, err := media.NewDownloadConfig(
		conf.Downloader.OutputDir,
		conf.Downloader.Codec,
		conf.Downloader.Bitrate,
		conf.Downloader.Parallelism,
	)
	if nil != err {
		return exitCode(logger, err)
	}
	logger.Debug().Dict("download_config", cfg.ToDict()).Msg("Download config resolved")

	client, err := catalog.NewSpotifyClient(ctx, conf.Spotify)
	if nil != err {
		return exitCode(logger, err)
	}

	var svc catalog.Service = catalog.NewSpotify(client, conf.Spotify.Market, conf.Spotify.MaxRetries)
	if !cmd.Bool("no-cache") && !conf.Store.Disabled {
		st, openErr := store.Open(conf.Store.Path, conf.Store.TTL.Duration)
		if nil != openErr {
			logger.Warn().Err(openErr).Msg("Failed to open catalog store, continuing without it")
		} else {
			defer func() {
				if closeErr := st.Close(); nil != closeErr {
					err = errors.Join(err, fmt.Errorf("failed to close catalog store: %v", closeErr))
				}
			}()
			svc = catalog.NewCached(svc, st)
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, seconds(conf.Downloader.Timeouts.CatalogLookup))
	collection, err := svc.Lookup(lookupCtx, logger, link)
	cancel()
	if nil != err {
		return exitCode(logger, err)
	}
	logger.Info().Dict("collection", collection.ToDict()).Msg("Collection resolved")

	c := cache.New()
	defer c.Stop()

	fetcher := fetch.NewYTDLP(
		fetch.Options{
			Executable:    conf.Downloader.YTDLP.Executable,
			SearchTimeout: seconds(conf.Downloader.Timeouts.Search),
			FetchTimeout:  seconds(conf.Downloader.Timeouts.Fetch),
		},
		ratelimit.NewLimiter(conf.Downloader.YTDLP.SearchEvery.Duration, conf.Downloader.YTDLP.SearchBurst),
		c.Candidates,
	)
	covers := cover.NewFetcher(
		&http.Client{}, //nolint:exhaustruct
		c.Covers,
		cover.Options{ //nolint:exhaustruct
			Timeout:      seconds(conf.Downloader.Timeouts.DownloadCover),
			MaxBytes:     conf.Downloader.Cover.MaxBytes,
			MaxDimension: conf.Downloader.Cover.MaxDimension,
			Retries:      conf.Downloader.Cover.Retries,
		},
	)
	orchestrator := download.NewOrchestrator(
		fetcher,
		tag.NewTagger(),
		tag.NewVerifier(),
		covers,
		download.Options{
			PoolSize:    conf.Downloader.PoolSize,
			TrackJitter: conf.Downloader.TrackJitter,
		},
	)

	summary, err := orchestrator.Run(ctx, logger, collection, cfg)
	if nil != err {
		return exitCode(logger, err)
	}

	report.NewPrinter(os.Stdout, isatty.IsTerminal(os.Stdout.Fd())).Summary(summary)

	if err := ctx.Err(); nil != err {
		logger.Warn().Int("canceled", summary.Canceled).Msg("Download was interrupted")
		return err
	}

	return nil
}

func verifyRun(ctx context.Context, cmd *cli.Command) error {
	logger, _, err := setup(cmd)
	if nil != err {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		logger.Error().Msg("At least one file is required")
		return exitCodeError(3)
	}

	var (
		verifier = tag.NewVerifier()
		rows     = make([]report.Verification, 0, len(paths))
		failed   int
	)
	for _, p := range paths {
		if err := ctx.Err(); nil != err {
			return err
		}

		summary, err := verifier.Verify(ctx, p)
		if nil != err {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to verify file")
			failed++
		}
		rows = append(rows, report.Verification{Path: p, Summary: summary, Err: err})
	}

	report.NewPrinter(os.Stdout, isatty.IsTerminal(os.Stdout.Fd())).Verification(rows)

	if failed > 0 {
		return exitCodeError(5)
	}

	return nil
}

func ytdlpInstall(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, _, err := setup(cmd)
	if nil != err {
		return err
	}

	executable, err := fetch.Install(ctx)
	if nil != err {
		return fmt.Errorf("install yt-dlp: %v", err)
	}
	logger.Info().Str("executable", executable).Msg("yt-dlp is installed")

	return nil
}
