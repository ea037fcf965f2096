// Package handlers implements the HTTP endpoints of the conversion API.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolGraph-Pipeline/internal/application/pipeline"
	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// ConvertRequest is the POST /api/v1/convert body: the molecule stream as
// text plus the conversion settings.  Unset settings fall back to the
// server's configured defaults.
type ConvertRequest struct {
	// Data is the molecule stream: SDF records or one SMILES per line.
	Data string `json:"data" binding:"required"`

	Format             string  `json:"format,omitempty"`
	Method             string  `json:"method,omitempty"`
	NConf              int     `json:"n_conf,omitempty"`
	TwoD               bool    `json:"two_d,omitempty"`
	ConformersFromFile bool    `json:"conformers_from_file,omitempty"`
	SplitComponents    bool    `json:"split_components,omitempty"`
	AtomTypes          []int   `json:"atom_types,omitempty"`
	K                  int     `json:"k,omitempty"`
	Threshold          float64 `json:"threshold,omitempty"`
	MaxDist            float64 `json:"max_dist,omitempty"`
	Intervals          int     `json:"n_intervals,omitempty"`
}

// ConvertResponse carries the emitted graphs in stream order.
type ConvertResponse struct {
	RunID  string         `json:"run_id"`
	Count  int            `json:"count"`
	Graphs []*graph.Graph `json:"graphs"`
}

// ConvertHandler serves the conversion endpoint.  Each request runs its own
// pipeline; the generator and the optional shared cache are long-lived.
type ConvertHandler struct {
	defaults chem.PipelineOptions
	gen      pipeline.ConformerGenerator
	cache    pipeline.ConversionCache
	metrics  *monprom.PipelineMetrics
	log      logging.Logger
}

// NewConvertHandler constructs the handler.  cache and metrics may be nil.
func NewConvertHandler(defaults chem.PipelineOptions, gen pipeline.ConformerGenerator, cache pipeline.ConversionCache, metrics *monprom.PipelineMetrics, log logging.Logger) *ConvertHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ConvertHandler{
		defaults: defaults,
		gen:      gen,
		cache:    cache,
		metrics:  metrics,
		log:      log.Named("convert_handler"),
	}
}

// Convert handles POST /api/v1/convert.
func (h *ConvertHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "malformed request body"))
		return
	}

	opts := h.requestOptions(req)
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(h.log),
	}
	if h.gen != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithGenerator(h.gen))
	}
	if h.cache != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithCache(h.cache))
	}
	if h.metrics != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithMetrics(h.metrics))
	}

	p, err := pipeline.New(opts, pipelineOpts...)
	if err != nil {
		writeError(c, err)
		return
	}

	graphs := []*graph.Graph{}
	err = p.Run(c.Request.Context(), strings.NewReader(req.Data), func(g *graph.Graph) error {
		graphs = append(graphs, g)
		return nil
	})
	if err != nil {
		h.log.Error("conversion failed", logging.String("run_id", p.RunID()), logging.Err(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		RunID:  p.RunID(),
		Count:  len(graphs),
		Graphs: graphs,
	})
}

// requestOptions merges the request's settings over the server defaults.
func (h *ConvertHandler) requestOptions(req ConvertRequest) chem.PipelineOptions {
	opts := h.defaults
	if req.Format != "" {
		opts.Format = chem.FileFormat(req.Format)
	}
	if req.Method != "" {
		opts.Extraction.Method = chem.FeatureMethod(req.Method)
	}
	if req.NConf > 0 {
		opts.NConf = req.NConf
	}
	if req.TwoD {
		opts.TwoD = true
	}
	if req.ConformersFromFile {
		opts.ConformersFromFile = true
	}
	if req.SplitComponents {
		opts.SplitComponents = true
	}
	if req.AtomTypes != nil {
		opts.Extraction.AtomTypes = req.AtomTypes
	}
	if req.K > 0 {
		opts.Extraction.K = req.K
	}
	if req.Threshold > 0 {
		opts.Extraction.Threshold = req.Threshold
	}
	if req.MaxDist > 0 {
		opts.Extraction.MaxDist = req.MaxDist
	}
	if req.Intervals > 0 {
		opts.Extraction.Intervals = req.Intervals
	}
	return opts
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an application error onto its HTTP status via the error
// code taxonomy.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(errors.HTTPStatusForCode(code), ErrorResponse{
		Code:    code.String(),
		Message: err.Error(),
	})
}
