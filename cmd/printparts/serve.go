package main

import (
	"log/slog"
	"os"

	"github.com/maruel/subcommands"
	"github.com/soypat/solid/internal/partserver"
)

var cmdServe = &subcommands.Command{
	UsageLine: "serve [-addr host:port] [-config file] [-cells n]",
	ShortDesc: "serves parts over HTTP",
	LongDesc: `Serves parts over HTTP.

GET /parts lists parts. GET /parts/<part>.scad and /parts/<part>.stl return
the part built from the server configuration. POST to the same paths with a
YAML body overrides the server configuration for that request.`,
	CommandRun: func() subcommands.CommandRun {
		c := &serveRun{}
		c.common.Register(&c.Flags)
		c.Flags.StringVar(&c.addr, "addr", ":8080", "TCP address to listen to")
		c.Flags.IntVar(&c.cells, "cells", 100, "default mesh cells for STL responses")
		return c
	},
}

type serveRun struct {
	subcommands.CommandRunBase
	common commonFlags
	addr   string
	cells  int
}

func (c *serveRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	cfg, err := c.common.load()
	if err != nil {
		return printErr(a, err)
	}
	level := slog.LevelInfo
	if c.common.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	srv := partserver.New(cfg, c.cells, logger)
	if err := srv.ListenAndServe(c.addr); err != nil {
		return printErr(a, err)
	}
	return 0
}
