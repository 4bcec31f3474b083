// Package exchange moves export documents between the service and a blob
// store.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"poms/internal/blob"
	"poms/internal/core"
)

// ExportPrefix namespaces export documents inside the blob store.
const ExportPrefix = "exports/"

// ContentType of export documents.
const ContentType = "application/json"

// Service is the subset of core.Service the exchange needs.
type Service interface {
	Now() time.Time
	Export(ctx context.Context) core.ExportDocument
	Import(ctx context.Context, snapshot core.Snapshot) (core.Result, error)
}

// Exchange writes exports to and reads imports from a blob store.
type Exchange struct {
	svc    Service
	store  blob.Store
	newID  func() string
	logger zerolog.Logger
}

// New constructs an Exchange.
func New(svc Service, store blob.Store, logger zerolog.Logger) *Exchange {
	return &Exchange{svc: svc, store: store, newID: uuid.NewString, logger: logger}
}

// ExportKey names an export taken at now.
func ExportKey(now time.Time, id string) string {
	return fmt.Sprintf("%spoms_data_%s-%s.json", ExportPrefix, now.Format("20060102"), id)
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc core.ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}

// Decode reads an export document. Collections absent from the document
// decode as empty.
func Decode(r io.Reader) (core.Snapshot, error) {
	var doc core.ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode import document: %w", err)
	}
	return doc.Snapshot, nil
}

// Export stores the current state under a fresh key.
func (e *Exchange) Export(ctx context.Context) (blob.Info, error) {
	doc := e.svc.Export(ctx)
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return blob.Info{}, fmt.Errorf("encode export: %w", err)
	}
	key := ExportKey(e.svc.Now(), e.newID())
	info, err := e.store.Put(ctx, key, &buf, blob.PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{"export-date": doc.ExportDate},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store export: %w", err)
	}
	e.logger.Info().Str("key", key).Int64("size", info.Size).Str("driver", string(e.store.Driver())).Msg("data exported")
	return info, nil
}

// List returns stored exports ordered by key.
func (e *Exchange) List(ctx context.Context) ([]blob.Info, error) {
	return e.store.List(ctx, ExportPrefix)
}

// ImportKey replaces the service state with a stored export.
func (e *Exchange) ImportKey(ctx context.Context, key string) (core.Result, error) {
	_, rc, err := e.store.Get(ctx, key)
	if err != nil {
		return core.Result{}, fmt.Errorf("load export %s: %w", key, err)
	}
	defer rc.Close()
	return e.Import(ctx, rc)
}

// Import replaces the service state with the document read from r.
func (e *Exchange) Import(ctx context.Context, r io.Reader) (core.Result, error) {
	snapshot, err := Decode(r)
	if err != nil {
		return core.Result{}, err
	}
	return e.svc.Import(ctx, snapshot)
}

// IsMissing reports whether err came from an unknown export key.
func IsMissing(err error) bool {
	return errors.Is(err, blob.ErrNotFound)
}
