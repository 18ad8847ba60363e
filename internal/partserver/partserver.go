// Package partserver serves the printable parts over HTTP as OpenSCAD or STL files.
package partserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/soypat/solid"
	"github.com/soypat/solid/parts"
	"github.com/soypat/solid/render"
	"github.com/valyala/fasthttp"
)

// MaxCells bounds the mesh resolution a client may request.
const MaxCells = 256

// Server builds parts on request from a base configuration.
type Server struct {
	cfg    parts.Config
	cells  int
	log    *slog.Logger
	router *router.Router
}

// New returns a Server building parts from cfg and meshing STL output
// with cells cells along the longest side of each part. A nil logger discards logs.
func New(cfg parts.Config, cells int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(discard{})
	}
	s := &Server{cfg: cfg, cells: cells, log: logger}
	r := router.New()
	r.GET("/parts", s.list)
	r.GET("/parts/:file", s.getPart)
	r.POST("/parts/:file", s.postPart)
	r.GET("/config", s.config)
	s.router = r
	return s
}

// Handler returns the request handler serving all routes.
func (s *Server) Handler() fasthttp.RequestHandler { return s.router.Handler }

// ListenAndServe serves HTTP requests on the TCP address addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", slog.String("addr", addr))
	return fasthttp.ListenAndServe(addr, s.Handler())
}

func (s *Server) list(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	for _, name := range parts.Names() {
		ctx.WriteString(name)
		ctx.WriteString("\n")
	}
}

func (s *Server) config(ctx *fasthttp.RequestCtx) {
	b, err := s.cfg.YAML()
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.SetContentType("application/yaml")
	ctx.SetBody(b)
}

func (s *Server) getPart(ctx *fasthttp.RequestCtx) {
	s.servePart(ctx, s.cfg)
}

func (s *Server) postPart(ctx *fasthttp.RequestCtx) {
	cfg, err := parts.DecodeConfig(bytes.NewReader(ctx.PostBody()), s.cfg)
	if err != nil {
		s.log.Debug("bad config", slog.String("err", err.Error()))
		ctx.Error(err.Error(), http.StatusBadRequest)
		return
	}
	s.servePart(ctx, cfg)
}

func (s *Server) servePart(ctx *fasthttp.RequestCtx, cfg parts.Config) {
	start := time.Now()
	file, _ := ctx.UserValue("file").(string)
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	cells, explicitCells := s.cells, ctx.QueryArgs().Has("cells")
	if explicitCells {
		n, err := ctx.QueryArgs().GetUint("cells")
		if err != nil || n < 2 || n > MaxCells {
			ctx.Error("cells must be an integer between 2 and 256", http.StatusBadRequest)
			return
		}
		cells = n
	}
	switch ext {
	case ".scad", ".stl":
	default:
		ctx.Error("unsupported file extension "+ext, http.StatusNotFound)
		return
	}
	shape, err := parts.Build(name, cfg)
	switch {
	case errors.Is(err, parts.ErrUnknownPart):
		ctx.Error(err.Error(), http.StatusNotFound)
		return
	case err != nil:
		ctx.Error(err.Error(), http.StatusBadRequest)
		return
	}
	if ext == ".scad" {
		if err := s.writeSCAD(ctx, shape, cfg); err != nil {
			s.internalError(ctx, err)
			return
		}
	} else {
		minCells, err := parts.MinCells(name, cfg)
		if err != nil {
			s.internalError(ctx, err)
			return
		}
		switch {
		case minCells > MaxCells:
			ctx.Error(fmt.Sprintf("%s walls need %d cells, more than the server limit of %d", name, minCells, MaxCells), http.StatusBadRequest)
			return
		case cells < minCells && explicitCells:
			ctx.Error(fmt.Sprintf("%s walls need at least %d cells", name, minCells), http.StatusBadRequest)
			return
		case cells < minCells:
			cells = minCells
		}
		oc, err := render.NewOctreeRenderer(shape, cells)
		if err != nil {
			ctx.Error(err.Error(), http.StatusBadRequest)
			return
		}
		tris, err := render.RenderAll(oc)
		if err != nil {
			s.internalError(ctx, err)
			return
		}
		err = render.WriteSTL(ctx, tris)
		switch {
		case errors.Is(err, render.ErrEmptyMesh):
			ctx.Error(fmt.Sprintf("%s meshed to no triangles with %d cells", name, cells), http.StatusBadRequest)
			return
		case err != nil:
			s.internalError(ctx, err)
			return
		}
		ctx.SetContentType("model/stl")
	}
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+file+`"`)
	s.log.Info("served part",
		slog.String("file", file),
		slog.Int("bytes", len(ctx.Response.Body())),
		slog.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) writeSCAD(ctx *fasthttp.RequestCtx, shape solid.Shape, cfg parts.Config) error {
	b, err := solid.AppendSCAD(nil, shape, solid.Header(cfg.Facets))
	if err != nil {
		return err
	}
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBody(b)
	return nil
}

func (s *Server) internalError(ctx *fasthttp.RequestCtx, err error) {
	s.log.Error("request failed", slog.String("uri", string(ctx.RequestURI())), slog.String("err", err.Error()))
	ctx.Error(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
