package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pmarche/keeper/config"
	"github.com/pmarche/keeper/shell"
)

var (
	GitVersion string
)

//go:embed keeper.txt
var keeperbanner string

func main() {
	// Determine the directory of the executable; relative data paths are
	// anchored there so the shell works from anywhere.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println(keeperbanner)
	if GitVersion != "" {
		fmt.Println(GitVersion)
	}

	cfg := config.New()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg.AdjustRelativePaths(exPath)

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	log.Logger = logger

	sig := make(chan os.Signal, 1)
	sc := shell.NewShellController(cfg)
	go sc.Loop(sig)
	<-sig
	log.Info().Msg("goodbye")
}
