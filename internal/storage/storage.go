package storage

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/avasant/casepipe/internal/job"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the durable medium every stage reads from and writes to.
// No two stages write the same key, so implementations need no locking.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Key layout, shared by all stages:
//
//	{source}/{role}/{filename}                 uploaded input documents
//	{job}/textfiles/{role}/{filename}.txt      OCR output, one blob per document
//	{job}/embeddings/{role}/{subcategory}.json serialized vector index
//	{job}/output/{role}_response.json          final extraction record

// SourceRoot normalizes a submitted link into a storage prefix. Full URLs
// are tolerated: the scheme and host are stripped and the path kept, so
// "https://bucket.example.com/cases/jane" and "cases/jane" are equivalent.
func SourceRoot(link string) string {
	link = strings.TrimSpace(strings.ReplaceAll(link, "+", " "))
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		link = u.Path
	}
	return strings.Trim(link, "/")
}

// InputPrefix addresses one role's uploaded documents under a source root.
func InputPrefix(source string, role job.Role) string {
	return path.Join(source, string(role)) + "/"
}

// TextPrefix addresses one role's OCR text blobs.
func TextPrefix(jobID string, role job.Role) string {
	return path.Join(jobID, "textfiles", string(role)) + "/"
}

// TextKey addresses one document's text blob, its extension replaced.
func TextKey(jobID string, role job.Role, filename string) string {
	base := path.Base(filename)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return TextPrefix(jobID, role) + base + ".txt"
}

// IndexKey addresses the serialized vector index for a sub-category.
func IndexKey(jobID string, role job.Role, subcategory string) string {
	return path.Join(jobID, "embeddings", string(role), subcategory+".json")
}

// ResponseKey addresses a role's final extraction record.
func ResponseKey(jobID string, role job.Role) string {
	return path.Join(jobID, "output", string(role)+"_response.json")
}
