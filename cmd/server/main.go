package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"
	"github.com/Parsa-Sedighi/rb26-survey/internal/logger"
	"github.com/Parsa-Sedighi/rb26-survey/internal/mission"
	"github.com/Parsa-Sedighi/rb26-survey/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	AreaFile    string `short:"c" long:"area"    env:"AREA_FILE"      description:"Path to area configuration file" default:"area.yaml"`
	MissionFile string `short:"m" long:"mission" env:"MISSION_FILE"   description:"Mission JSON to serve (empty board if unset)"`
	Addr        string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on"            default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on"               default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Area
	area, err := config.Load(opts.AreaFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load area configuration")
	}

	reg := board.NewRegistry()
	if opts.MissionFile != "" {
		mf, err := mission.LoadFile(opts.MissionFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load mission file")
		}
		reg = mf.Registry(area.Rules())
	}

	srvCtx, err := server.NewServerContext(area, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server context")
	}

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/area", srvCtx.HandleArea)
	mux.HandleFunc("/api/mission", srvCtx.HandleMission)
	mux.HandleFunc("/api/mission.geojson", srvCtx.HandleGeoJSON)
	mux.HandleFunc("/api/convert", srvCtx.HandleConvert)
	mux.HandleFunc("/api/project", srvCtx.HandleProject)
	mux.HandleFunc("/api/snapshot.webp", srvCtx.HandleSnapshot)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("area", area.Name).
		Int("entities", reg.Len()).
		Msg("Mission server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
