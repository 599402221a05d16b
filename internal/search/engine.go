package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
)

// Catalog enumerates candidate products with their precomputed searchable
// text. Implementations must be safe for concurrent readers; the engine
// never writes through this interface.
type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// FullTextRanker is optionally implemented by catalogs whose store computes
// full-text ranks natively (Postgres ts_rank over the search_vector column).
// Ranks are keyed by product code and must already be normalized into [0,1)
// so combiner weights keep their meaning. Products absent from the map have
// zero term overlap.
type FullTextRanker interface {
	FullTextRanks(ctx context.Context, q Query) (map[string]float64, error)
}

// Config holds the engine's immutable tuning.
type Config struct {
	Weights     Weights
	MaxPageSize int
	// NativeRank pushes full-text scoring down to the catalog store when it
	// implements FullTextRanker. The in-process scorer remains the fallback.
	NativeRank bool
}

// Engine is the search orchestrator: validate, normalize once, score every
// candidate with the three strategies, combine, floor, sort, paginate. It is
// stateless between calls and safe for concurrent use.
type Engine struct {
	catalog  Catalog
	combiner *Combiner
	fulltext FullTextScorer
	allTerms AllTermsScorer
	similar  SimilarityScorer
	cfg      Config
	log      *slog.Logger
}

func NewEngine(catalog Catalog, cfg Config, log *slog.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		combiner: NewCombiner(cfg.Weights),
		cfg:      cfg,
		log:      log,
	}
}

type scoredCandidate struct {
	product   domain.Product
	composite float64
}

// Search runs one query. Page numbering is 1-based. An empty or
// whitespace-only query matches the whole catalog in code order; a query
// matching nothing returns an empty page. Repeated calls over an unchanged
// catalog return identical orderings.
func (e *Engine) Search(ctx context.Context, rawQuery string, page, pageSize int) (domain.ResultPage, error) {
	if page < 1 {
		return domain.ResultPage{}, apperrors.Validation("page", "must be at least 1")
	}
	if pageSize < 1 || pageSize > e.cfg.MaxPageSize {
		return domain.ResultPage{}, apperrors.Validation("page_size",
			fmt.Sprintf("must be between 1 and %d", e.cfg.MaxPageSize))
	}

	q := NewQuery(rawQuery)

	products, err := e.catalog.List(ctx)
	if err != nil {
		return domain.ResultPage{}, fmt.Errorf("list catalog: %w", err)
	}

	if q.Empty() {
		sort.Slice(products, func(i, j int) bool {
			return products[i].Code < products[j].Code
		})
		return e.page(products, page, pageSize), nil
	}

	nativeRanks := e.nativeRanks(ctx, q)

	scored := make([]scoredCandidate, 0, len(products))
	for _, p := range products {
		composite := e.score(q, p, nativeRanks)
		if !e.combiner.Relevant(composite) {
			continue
		}
		scored = append(scored, scoredCandidate{product: p, composite: composite})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].composite != scored[j].composite {
			return scored[i].composite > scored[j].composite
		}
		return scored[i].product.Code < scored[j].product.Code
	})

	ranked := make([]domain.Product, len(scored))
	for i, c := range scored {
		ranked[i] = c.product
	}
	return e.page(ranked, page, pageSize), nil
}

// score computes the composite for one candidate. A product whose searchable
// text was never populated scores zero on every strategy instead of failing
// the request.
func (e *Engine) score(q Query, p domain.Product, nativeRanks map[string]float64) float64 {
	text := p.SearchText
	if text == "" {
		return 0
	}

	var ft float64
	if nativeRanks != nil {
		ft = nativeRanks[p.Code]
	} else {
		ft = e.fulltext.Score(q, text)
	}
	at := e.allTerms.Score(q, text)
	sim := e.similar.Score(q, text)

	return e.combiner.Combine(ft, at, sim)
}

// nativeRanks fetches store-side full-text ranks when enabled and available.
// A rank query failure degrades to the in-process scorer rather than failing
// the search.
func (e *Engine) nativeRanks(ctx context.Context, q Query) map[string]float64 {
	if !e.cfg.NativeRank {
		return nil
	}
	ranker, ok := e.catalog.(FullTextRanker)
	if !ok {
		return nil
	}
	ranks, err := ranker.FullTextRanks(ctx, q)
	if err != nil {
		if e.log != nil {
			e.log.WarnContext(ctx, "native full-text rank failed, using in-process scorer",
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return ranks
}

func (e *Engine) page(ranked []domain.Product, page, pageSize int) domain.ResultPage {
	pg := Paginate(ranked, page, pageSize)
	items := make([]domain.Product, len(pg.Items))
	copy(items, pg.Items)
	for i := range items {
		// Scoring input, not a result field. Clearing it keeps fresh and
		// cache round-tripped pages identical.
		items[i].SearchText = ""
	}
	return domain.ResultPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: pg.TotalCount,
		TotalPages: pg.TotalPages,
	}
}
