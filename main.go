package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/xeptore/tunedl/constants"
	"github.com/xeptore/tunedl/log"
)

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "tunedl",
		Version: constants.Version,
		Metadata: map[string]any{
			"compiled_at": constants.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "Spotify catalog audio downloader",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		AllowExtFlags:              false,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "download",
				Usage:     "Download a track, album, or playlist",
				ArgsUsage: "[link]",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Entity kind (track, album, playlist), used with --id instead of a link",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "id",
						Usage: "Entity id, used with --kind instead of a link",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output root directory",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "codec",
						Usage: "Audio codec (mp3, flac, mpa, opus)",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "bitrate",
						Usage: "Audio bitrate (worst, 32, 96, 128, 192, 256, 320, best)",
					},
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:    "parallelism",
						Aliases: []string{"p"},
						Usage:   "Maximum number of tracks per chunk",
					},
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Maximum number of chunks downloaded at the same time",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "jitter",
						Usage: "Pause for a random short while between tracks of a chunk",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass the stored catalog descriptors",
					},
				},
				Action: downloadRun,
			},
			//nolint:exhaustruct
			{
				Name:      "verify",
				Usage:     "Print the tags of downloaded audio files",
				ArgsUsage: "<file>...",
				Action:    verifyRun,
			},
			{
				Name:  "ytdlp",
				Usage: "yt-dlp commands",
				Commands: []*cli.Command{
					//nolint:exhaustruct
					{
						Name:   "install",
						Usage:  "Download a yt-dlp build into the user cache directory",
						Action: ytdlpInstall,
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}
