package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"tatler/internal/domain"
)

const (
	importGradeCount   = 3
	importCommentCount = 4
)

// ImportSummary reconciles a bulk import run. Skipped counts rows rejected
// by validation before the write; Duplicates and Failed come from the
// partial-tolerant bulk insert.
type ImportSummary struct {
	Read       int
	Skipped    int
	Inserted   int
	Duplicates int
	Failed     int
	Sample     *domain.Restaurant // first normalized document, for the run log
}

type ImportService struct {
	repo domain.RestaurantRepository
	gen  *MockData
	now  func() time.Time
}

func NewImportService(r domain.RestaurantRepository, gen *MockData, now func() time.Time) *ImportService {
	if now == nil {
		now = time.Now
	}
	return &ImportService{repo: r, gen: gen, now: now}
}

// Run makes one sequential pass over the source: validate each row, skip
// and log rejects, enrich accepted rows with generated grades and comments,
// then perform a single partial-tolerant bulk insert. A source read error
// aborts the whole import before anything is written.
func (s *ImportService) Run(ctx context.Context, src domain.RowSource) (ImportSummary, error) {
	var sum ImportSummary
	var batch []domain.Restaurant

	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportSummary{}, fmt.Errorf("read source: %w", err)
		}
		sum.Read++

		doc, err := NormalizeRecord(row, sum.Read-1)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				log.Warn().Int("row", verr.Row).Strs("fields", verr.Fields).Msg("row skipped")
				sum.Skipped++
				continue
			}
			return ImportSummary{}, err
		}

		now := s.now().UTC()
		doc.Grades = s.gen.Grades(importGradeCount)
		doc.Comments = s.gen.Comments(doc.Name, importCommentCount)
		doc.CreatedAt = now
		doc.UpdatedAt = now
		batch = append(batch, doc)
	}

	if len(batch) == 0 {
		log.Info().Int("read", sum.Read).Msg("no valid rows to import")
		return sum, nil
	}
	sum.Sample = &batch[0]

	res, err := s.repo.BulkInsert(ctx, batch, true)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("bulk insert: %w", err)
	}
	sum.Inserted = res.Inserted
	sum.Duplicates = res.Duplicates
	sum.Failed = res.Failed

	for _, o := range res.Outcomes {
		if o.Status == domain.BulkInserted {
			continue
		}
		log.Warn().
			Int("index", o.Index).
			Str("restaurant_id", o.RestaurantID).
			Str("status", o.Status).
			Str("error", o.Err).
			Msg("document not inserted")
	}
	return sum, nil
}
