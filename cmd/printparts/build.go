package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/maruel/subcommands"
	"github.com/soypat/solid/parts"
	"github.com/soypat/solid/render"
	"github.com/soypat/solid/render/preview"
	"golang.org/x/sync/errgroup"
)

type outputFormat int

const (
	formatSCAD outputFormat = iota
	formatSTL
	formatPNG // STL and its PNG preview
)

func buildCommand(format outputFormat, usage, short, long string) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: usage,
		ShortDesc: short,
		LongDesc:  long,
		CommandRun: func() subcommands.CommandRun {
			c := &buildRun{format: format}
			c.common.Register(&c.Flags)
			c.Flags.StringVar(&c.out, "out", ".", "output directory")
			if format != formatSCAD {
				c.Flags.IntVar(&c.cells, "cells", 200, "mesh cells along the longest side of a part, raised if needed to resolve its thinnest wall")
			}
			return c
		},
	}
}

var cmdSCAD = buildCommand(formatSCAD,
	"scad [-config file] [-out dir] [part...]",
	"writes parts as OpenSCAD files",
	"Writes <part>.scad for each named part, or all parts if none are named.",
)

var cmdSTL = buildCommand(formatSTL,
	"stl [-config file] [-out dir] [-cells n] [part...]",
	"meshes parts to binary STL files",
	"Meshes each named part, or all parts if none are named, and writes <part>.stl.\nParts are rendered concurrently.",
)

var cmdPreview = buildCommand(formatPNG,
	"preview [-config file] [-out dir] [-cells n] [part...]",
	"writes STL files and PNG previews of parts",
	"Like stl, and also renders <part>.png from each STL file.",
)

type buildRun struct {
	subcommands.CommandRunBase
	common commonFlags
	format outputFormat
	out    string
	cells  int
}

func (c *buildRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(args); err != nil {
		return printErr(a, err)
	}
	return 0
}

func (c *buildRun) innerRun(args []string) error {
	names, err := partNames(args)
	if err != nil {
		return err
	}
	cfg, err := c.common.load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.out, 0o755); err != nil {
		return err
	}
	if c.format == formatSCAD {
		for _, name := range names {
			if err := c.writeSCAD(name, cfg); err != nil {
				return err
			}
		}
		return nil
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return c.writeSTL(name, cfg)
		})
	}
	return g.Wait()
}

func (c *buildRun) writeSCAD(name string, cfg parts.Config) error {
	b, err := parts.AppendSCAD(nil, name, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	path := filepath.Join(c.out, name+".scad")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s (%s)", path, humanize.Bytes(uint64(len(b))))
	return nil
}

func (c *buildRun) writeSTL(name string, cfg parts.Config) error {
	start := time.Now()
	shape, err := parts.Build(name, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	cells, err := parts.MinCells(name, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if c.cells >= cells {
		cells = c.cells
	} else {
		log.Printf("%s: raising -cells from %d to %d to resolve its thinnest wall", name, c.cells, cells)
	}
	oc, err := render.NewOctreeRenderer(shape, cells)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	path := filepath.Join(c.out, name+".stl")
	ntri, err := render.CreateSTL(path, oc)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("wrote %s (%d triangles, %s) in %s", path, ntri, fileSize(path), time.Since(start).Round(time.Millisecond))
	if c.format != formatPNG {
		return nil
	}
	pngPath := filepath.Join(c.out, name+".png")
	if err := preview.STLToPNG(path, pngPath, preview.DefaultView()); err != nil {
		return fmt.Errorf("%s preview: %w", name, err)
	}
	log.Printf("wrote %s (%s)", pngPath, fileSize(pngPath))
	return nil
}

func fileSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return humanize.Bytes(uint64(fi.Size()))
}
