package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/avasant/casepipe/internal/ai"
	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/index"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/storage"
)

// RunExtract fills every field group for one role from the stored indexes
// and writes the merged record. A template whose answer cannot be parsed
// loses only its own groups; the blank seed keeps the record complete.
func (p *Pipeline) RunExtract(ctx context.Context, pl Payload) error {
	main, err := p.loadIndex(ctx, pl, fieldgroup.SourceMain)
	if err != nil {
		return fmt.Errorf("load main index: %w", err)
	}
	transcript, err := p.loadIndex(ctx, pl, fieldgroup.SourceTranscript)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load transcript index: %w", err)
	}

	applicant := path.Base(pl.Source)
	record := p.blankRecord(pl.Role)

	for _, tpl := range p.templates {
		idx := main
		if tpl.Source == fieldgroup.SourceTranscript {
			if transcript == nil {
				p.log.Info("no transcript index, skipping group",
					"job_id", pl.JobID, "role", pl.Role, "group", tpl.Name)
				continue
			}
			idx = transcript
		}

		out, err := p.extractGroup(ctx, idx, tpl, applicant)
		if err != nil {
			p.log.Error("field group failed, keeping blanks",
				"job_id", pl.JobID, "role", pl.Role, "group", tpl.Name, "error", err)
			continue
		}
		record.Merge(out)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := storage.ResponseKey(pl.JobID, pl.Role)
	if err := p.objects.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	p.log.Info("extraction complete", "job_id", pl.JobID, "role", pl.Role)
	return p.states.Set(ctx, pl.JobID, pl.Role, job.StateExtractionComplete)
}

func (p *Pipeline) loadIndex(ctx context.Context, pl Payload, subcategory string) (*index.Index, error) {
	data, err := p.objects.Get(ctx, storage.IndexKey(pl.JobID, pl.Role, subcategory))
	if err != nil {
		return nil, err
	}
	return index.Unmarshal(data)
}

func (p *Pipeline) extractGroup(ctx context.Context, idx *index.Index, tpl fieldgroup.Template, applicant string) (map[string]any, error) {
	query, err := tpl.Query(applicant)
	if err != nil {
		return nil, err
	}
	chunks, err := idx.Search(ctx, query, p.emb, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	answer, err := p.comp.Complete(ctx, texts, query)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	answer = strings.TrimSpace(ai.StripCodeBlock(answer))

	var out map[string]any
	if err := json.Unmarshal([]byte(answer), &out); err != nil {
		return nil, fmt.Errorf("parse answer: %w", err)
	}
	return out, nil
}

func (p *Pipeline) blankRecord(role job.Role) fieldgroup.Record {
	return fieldgroup.Blank(p.templates, string(role))
}
