package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/avasant/casepipe/internal/chunker"
	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/index"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/loader"
	"github.com/avasant/casepipe/internal/storage"
)

type docChunks struct {
	main       []chunker.Chunk
	transcript []chunker.Chunk
}

// RunEmbed loads the role's extracted text, chunks it into the main and
// transcript corpora, embeds both and stores the indexes. An empty main
// corpus aborts the role: extraction has nothing to retrieve from.
func (p *Pipeline) RunEmbed(ctx context.Context, pl Payload) error {
	prefix := storage.TextPrefix(pl.JobID, pl.Role)
	keys, err := p.objects.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list text files %s: %w", prefix, err)
	}

	// Slot per document keeps chunk order stable across reruns regardless
	// of worker scheduling.
	slots := make([]docChunks, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.DocWorkers)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			dc, err := p.chunkDocument(gctx, key)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", key, err)
			}
			slots[i] = dc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var main, transcript []chunker.Chunk
	for _, dc := range slots {
		main = append(main, dc.main...)
		transcript = append(transcript, dc.transcript...)
	}
	if len(main) == 0 {
		return fmt.Errorf("role %s of job %s: %w", pl.Role, pl.JobID, ErrNoDocuments)
	}

	if len(transcript) > 0 {
		if err := p.buildIndex(ctx, pl, fieldgroup.SourceTranscript, transcript); err != nil {
			return err
		}
	}
	if err := p.buildIndex(ctx, pl, fieldgroup.SourceMain, main); err != nil {
		return err
	}

	p.log.Info("embedding complete",
		"job_id", pl.JobID, "role", pl.Role,
		"main_chunks", len(main), "transcript_chunks", len(transcript))

	if err := p.states.Set(ctx, pl.JobID, pl.Role, job.StateVectorGenerated); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return p.trigger.Invoke(ctx, StageExtract, pl)
}

func (p *Pipeline) chunkDocument(ctx context.Context, key string) (docChunks, error) {
	data, err := p.objects.Get(ctx, key)
	if err != nil {
		return docChunks{}, err
	}
	ld, err := loader.ForFile(key)
	if err != nil {
		return docChunks{}, err
	}
	text, err := ld.Load(bytes.NewReader(data), key)
	if err != nil {
		return docChunks{}, err
	}

	name := path.Base(key)
	if p.classify.IsTranscript(name, text) {
		return docChunks{
			transcript: chunker.Document(name, fieldgroup.SourceTranscript, text, p.cfg.TranscriptChunk),
		}, nil
	}
	return docChunks{
		main: chunker.Document(name, fieldgroup.SourceMain, text, p.cfg.MainChunk),
	}, nil
}

func (p *Pipeline) buildIndex(ctx context.Context, pl Payload, subcategory string, chunks []chunker.Chunk) error {
	idx, err := index.Build(ctx, chunks, p.emb)
	if err != nil {
		return fmt.Errorf("build %s index: %w", subcategory, err)
	}
	data, err := idx.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s index: %w", subcategory, err)
	}
	key := storage.IndexKey(pl.JobID, pl.Role, subcategory)
	if err := p.objects.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
