package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/media"
	"github.com/Skotchmaster/marketplace/internal/repo"
)

const imageDeleteTimeout = 30 * time.Second

// ImageReleaser deletes stored images once nothing references them anymore.
type ImageReleaser struct {
	Repo  *repo.GormRepo
	Store media.Store
}

// Release deletes every ref that is not used by an article other than owner
// or by any order line item. Failures are logged and never returned.
func (r *ImageReleaser) Release(ctx context.Context, refs []string, owner uuid.UUID) []string {
	l := logging.FromContext(ctx).With("component", "image_releaser")

	var deleted []string
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}

		n, err := r.Repo.CountImageReferences(ctx, ref, owner)
		if err != nil {
			l.Warn("image_release_error", "ref", ref, "reason", "count references", "error", err)
			continue
		}
		if n > 0 {
			continue
		}

		dctx, cancel := context.WithTimeout(ctx, imageDeleteTimeout)
		err = r.Store.Delete(dctx, ref)
		cancel()
		if err != nil {
			l.Warn("image_release_error", "ref", ref, "reason", "delete object", "error", err)
			continue
		}
		deleted = append(deleted, ref)
	}
	if len(deleted) > 0 {
		l.Info("image_release_success", "deleted", len(deleted))
	}
	return deleted
}

// Discard deletes freshly stored uploads that never made it onto an article.
func (r *ImageReleaser) Discard(ctx context.Context, refs []string) {
	l := logging.FromContext(ctx).With("component", "image_releaser")
	for _, ref := range refs {
		if err := r.Store.Delete(ctx, ref); err != nil {
			l.Warn("image_discard_error", "ref", ref, "error", err)
		}
	}
}
