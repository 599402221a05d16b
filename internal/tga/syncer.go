package tga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/internal/repository"
	"github.com/vuquimar/api-rei-do-pano/internal/search"
)

// Syncer pulls the ERP catalog into the local store. Groups sync first so
// product rows can denormalize their group description, then products page
// by page with the searchable text recomputed on the way in.
type Syncer struct {
	client *Client
	repo   repository.SyncRepository
	log    *slog.Logger
	now    func() time.Time
}

// NewSyncer creates a syncer over the given ERP client and repository.
func NewSyncer(client *Client, repo repository.SyncRepository, log *slog.Logger) *Syncer {
	return &Syncer{
		client: client,
		repo:   repo,
		log:    log,
		now:    time.Now,
	}
}

// Stats summarizes one sync run.
type Stats struct {
	Groups   int
	Products int
	Full     bool
	Took     time.Duration
}

// Run executes one sync. full forces a whole-catalog pull; otherwise the
// products checkpoint narrows the pull to records the ERP changed since the
// last successful run. Checkpoints only advance for resources that synced
// completely, so a failed run re-covers its window on the next tick.
//
// The checkpoint records the run's start time rather than its end: a product
// changed upstream mid-run may land in this pull or the next one, never in
// neither.
func (s *Syncer) Run(ctx context.Context, full bool) (Stats, error) {
	start := s.now().UTC()
	stats := Stats{Full: full}
	var runErr error

	s.log.InfoContext(ctx, "catalog sync started", slog.Bool("full", full))

	if err := s.syncGroups(ctx, &stats, start); err != nil {
		// Products can still sync against the previous group descriptions.
		s.log.ErrorContext(ctx, "group sync failed, product rows will carry stale group names",
			slog.String("error", err.Error()),
		)
		runErr = errors.Join(runErr, err)
	}

	if err := s.syncProducts(ctx, &stats, start, full); err != nil {
		s.log.ErrorContext(ctx, "product sync failed",
			slog.String("error", err.Error()),
		)
		runErr = errors.Join(runErr, err)
	}

	stats.Took = s.now().UTC().Sub(start)
	syncDuration.Observe(stats.Took.Seconds())

	if runErr != nil {
		syncRunsTotal.WithLabelValues("error").Inc()
		return stats, runErr
	}

	syncRunsTotal.WithLabelValues("success").Inc()
	syncLastSuccess.Set(float64(s.now().Unix()))
	s.log.InfoContext(ctx, "catalog sync finished",
		slog.Int("groups", stats.Groups),
		slog.Int("products", stats.Products),
		slog.Duration("took", stats.Took),
	)
	return stats, nil
}

// syncGroups pulls every group page. The group list is small, so it is
// always a full pull.
func (s *Syncer) syncGroups(ctx context.Context, stats *Stats, start time.Time) error {
	for page := 1; ; page++ {
		groups, err := s.client.Groups(ctx, page)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			break
		}

		for i := range groups {
			groups[i].UpdatedAt = start
		}
		n, err := s.repo.UpsertGroups(ctx, groups)
		stats.Groups += n
		if err != nil {
			return fmt.Errorf("persist groups page %d: %w", page, err)
		}
		syncedGroupsTotal.Add(float64(n))

		if len(groups) < s.client.PageLimit() {
			break
		}
	}

	return s.repo.SaveCheckpoint(ctx, domain.CheckpointGroups, start)
}

// syncProducts pulls product pages until a short page. A page whose upsert
// fails is logged and skipped so one poison batch cannot starve the rest of
// the catalog, but the run still reports failure and keeps the checkpoint.
func (s *Syncer) syncProducts(ctx context.Context, stats *Stats, start time.Time, full bool) error {
	var updatedAfter time.Time
	if !full {
		cp, err := s.repo.Checkpoint(ctx, domain.CheckpointProducts)
		if err != nil {
			return fmt.Errorf("load products checkpoint: %w", err)
		}
		updatedAfter = cp.LastSyncAt
	}

	groupNames, err := s.repo.GroupDescriptions(ctx)
	if err != nil {
		return fmt.Errorf("load group descriptions: %w", err)
	}

	var pageErr error
	for page := 1; ; page++ {
		products, err := s.client.Products(ctx, page, updatedAfter)
		if err != nil {
			// Without this page's length the short-page termination is
			// unknowable, so the pull cannot continue.
			return errors.Join(pageErr, err)
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			p := &products[i]
			p.GroupName = groupNames[p.GroupCode]
			p.SearchText = search.SearchableText(p.Name, p.Code, p.Barcode, p.GroupName)
			p.UpdatedAt = start
		}

		n, err := s.repo.UpsertProducts(ctx, products)
		stats.Products += n
		syncedProductsTotal.Add(float64(n))
		if err != nil {
			s.log.WarnContext(ctx, "product page not persisted",
				slog.Int("page", page),
				slog.String("error", err.Error()),
			)
			pageErr = errors.Join(pageErr, fmt.Errorf("persist products page %d: %w", page, err))
		}

		if len(products) < s.client.PageLimit() {
			break
		}
	}
	if pageErr != nil {
		return pageErr
	}

	return s.repo.SaveCheckpoint(ctx, domain.CheckpointProducts, start)
}
