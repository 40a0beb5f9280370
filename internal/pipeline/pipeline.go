// Package pipeline drives a case through its stages: intake, per-role OCR,
// embedding, and extraction. Stages hand off through a Trigger and are
// idempotent, so a re-delivered invocation overwrites rather than corrupts.
package pipeline

import (
	"errors"
	"log/slog"

	"github.com/avasant/casepipe/internal/ai"
	"github.com/avasant/casepipe/internal/chunker"
	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/loader"
	"github.com/avasant/casepipe/internal/ocr"
	"github.com/avasant/casepipe/internal/storage"
)

// Stage names used for trigger routing.
const (
	StageOCR     = "ocr"
	StageEmbed   = "embed"
	StageExtract = "extract"
)

var (
	// ErrBadLink rejects a submitted case link that yields no storage
	// prefix.
	ErrBadLink = errors.New("invalid case link")

	// ErrNoDocuments means a role's main corpus came up empty at the
	// embedding stage, so extraction cannot run for that role.
	ErrNoDocuments = errors.New("no documents to embed")

	// ErrNotReady means the case exists but at least one role has not
	// finished extraction yet.
	ErrNotReady = errors.New("case not ready")
)

// Payload identifies one unit of stage work.
type Payload struct {
	JobID  string   `json:"job_id"`
	Role   job.Role `json:"role"`
	Source string   `json:"source"`
}

// Config tunes chunking, retrieval and fan-out.
type Config struct {
	MainChunk       chunker.Config
	TranscriptChunk chunker.Config
	TopK            int
	PageWorkers     int
	DocWorkers      int
}

func DefaultConfig() Config {
	return Config{
		MainChunk:       chunker.DefaultConfig(),
		TranscriptChunk: chunker.DefaultConfig(),
		TopK:            18,
		PageWorkers:     8,
		DocWorkers:      5,
	}
}

// Pipeline owns the stage implementations and their capabilities.
type Pipeline struct {
	objects   storage.ObjectStore
	states    job.StateStore
	ras       ocr.Rasterizer
	extractor ocr.TextExtractor
	emb       ai.Embedder
	comp      ai.Completer
	templates []fieldgroup.Template
	trigger   Trigger
	classify  Classifier
	textLayer loader.Loader
	log       *slog.Logger
	cfg       Config
}

func New(
	objects storage.ObjectStore,
	states job.StateStore,
	ras ocr.Rasterizer,
	extractor ocr.TextExtractor,
	emb ai.Embedder,
	comp ai.Completer,
	templates []fieldgroup.Template,
	trigger Trigger,
	log *slog.Logger,
	cfg Config,
) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = DefaultConfig().PageWorkers
	}
	if cfg.DocWorkers <= 0 {
		cfg.DocWorkers = DefaultConfig().DocWorkers
	}
	return &Pipeline{
		objects:   objects,
		states:    states,
		ras:       ras,
		extractor: extractor,
		emb:       emb,
		comp:      comp,
		templates: templates,
		trigger:   trigger,
		classify:  NameAndContentClassifier{},
		textLayer: &loader.PDFLoader{},
		log:       log,
		cfg:       cfg,
	}
}

// SetClassifier replaces the transcript classifier. Call before the
// pipeline starts handling work.
func (p *Pipeline) SetClassifier(c Classifier) {
	p.classify = c
}

// SetTextLayerLoader replaces the digital-PDF text extractor. Call before
// the pipeline starts handling work.
func (p *Pipeline) SetTextLayerLoader(l loader.Loader) {
	p.textLayer = l
}
