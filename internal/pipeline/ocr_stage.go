package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/loader"
	"github.com/avasant/casepipe/internal/ocr"
	"github.com/avasant/casepipe/internal/storage"
)

// RunOCR extracts text from every input document of one role. Scanned PDFs
// go through page-parallel recognition; other supported formats pass
// through untouched for the embedding stage's loaders. A role with no
// supported inputs short-circuits straight to a blank record.
func (p *Pipeline) RunOCR(ctx context.Context, pl Payload) error {
	prefix := storage.InputPrefix(pl.Source, pl.Role)
	keys, err := p.objects.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list inputs %s: %w", prefix, err)
	}

	var supported []string
	for _, key := range keys {
		if loader.IsSupported(key) {
			supported = append(supported, key)
		}
	}
	if len(supported) == 0 {
		p.log.Info("no documents for role, writing blank record",
			"job_id", pl.JobID, "role", pl.Role)
		if err := p.writeBlankRecord(ctx, pl.JobID, pl.Role); err != nil {
			return err
		}
		return p.states.Set(ctx, pl.JobID, pl.Role, job.StateExtractionComplete)
	}

	processed := 0
	for _, key := range supported {
		if err := p.processDocument(ctx, pl, key); err != nil {
			p.log.Error("document failed, skipping",
				"job_id", pl.JobID, "role", pl.Role, "key", key, "error", err)
			continue
		}
		processed++
	}
	p.log.Info("ocr complete",
		"job_id", pl.JobID, "role", pl.Role,
		"documents", len(supported), "processed", processed)

	return p.trigger.Invoke(ctx, StageEmbed, pl)
}

func (p *Pipeline) processDocument(ctx context.Context, pl Payload, key string) error {
	data, err := p.objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	name := path.Base(key)
	if strings.ToLower(path.Ext(name)) == ".pdf" {
		// Digital PDFs carry their own text layer; only scanned ones need
		// the rasterize-and-recognize round trip.
		text, err := p.textLayer.Load(bytes.NewReader(data), name)
		if err != nil || strings.TrimSpace(text) == "" {
			text, err = ocr.ExtractDocument(ctx, data, p.ras, p.extractor, p.cfg.PageWorkers)
			if err != nil {
				return fmt.Errorf("recognize %s: %w", key, err)
			}
		}
		out := storage.TextKey(pl.JobID, pl.Role, name)
		if err := p.objects.Put(ctx, out, []byte(text)); err != nil {
			return fmt.Errorf("put %s: %w", out, err)
		}
		return nil
	}

	// Already text-bearing; the embedding stage loads it by extension.
	out := storage.TextPrefix(pl.JobID, pl.Role) + name
	if err := p.objects.Put(ctx, out, data); err != nil {
		return fmt.Errorf("put %s: %w", out, err)
	}
	return nil
}

func (p *Pipeline) writeBlankRecord(ctx context.Context, jobID string, role job.Role) error {
	rec := p.blankRecord(role)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal blank record: %w", err)
	}
	key := storage.ResponseKey(jobID, role)
	if err := p.objects.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
