package tenants

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// InstallationWriter is the single path through which any trigger (interactive
// OAuth, install webhook, refresh) persists a tenant credential.
type InstallationWriter interface {
	WriteInstallation(ctx context.Context, tenantID string, installation *Installation) error
}

// Writer is the InstallationWriter over a Repo.
type Writer struct {
	repo    Repo
	onWrite func(source Source)
}

var _ InstallationWriter = (*Writer)(nil)

type WriterOption func(*Writer)

// WithOnWrite registers a callback invoked after every successful write
func WithOnWrite(fn func(source Source)) WriterOption {
	return func(w *Writer) {
		w.onWrite = fn
	}
}

func NewWriter(repo Repo, opts ...WriterOption) *Writer {
	w := &Writer{repo: repo}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteInstallation rejects records without an access token so a failed exchange
// can never leave a half-written installation behind.
func (w *Writer) WriteInstallation(ctx context.Context, tenantID string, installation *Installation) error {
	if tenantID == "" {
		return fmt.Errorf("[tenants WriteInstallation] tenant id is required")
	}
	if !installation.IsInstalled() {
		return fmt.Errorf("[tenants WriteInstallation] %s: record has no access token", tenantID)
	}
	if err := w.repo.Put(ctx, tenantID, installation); err != nil {
		return fmt.Errorf("[tenants WriteInstallation] %w", err)
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("source", string(installation.Source)).
		Bool("has_refresh_token", installation.HasRefreshToken()).
		Msg("installation written")

	if w.onWrite != nil {
		w.onWrite(installation.Source)
	}
	return nil
}
