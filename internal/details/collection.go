package details

import (
	"context"
	"fmt"

	"github.com/reelfeed/reelfeed/internal/media"
)

// CollectionAggregate is a collection page payload. AverageRating is the
// vote-weighted mean over the rated parts; it is nil when no part has any
// votes, which renders as "N/A".
type CollectionAggregate struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Overview      string       `json:"overview,omitempty"`
	PosterPath    string       `json:"posterPath"`
	BackdropPath  string       `json:"backdropPath"`
	Parts         []media.Item `json:"parts"`
	AverageRating *float64     `json:"averageRating"`
	RatedParts    int          `json:"ratedParts"`
}

// Collection fetches a collection and aggregates its parts. Each part's
// rating contributes in proportion to its vote count, so an obscure entry
// with a handful of votes cannot drag down a widely rated series.
func (s *Service) Collection(ctx context.Context, id int) (*CollectionAggregate, error) {
	record, err := s.provider.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("collection %d: %w", id, err)
	}

	parts := make([]media.Item, 0, len(record.Parts))
	var weightedSum float64
	var totalVotes int
	rated := 0
	for _, raw := range record.Parts {
		item, ok := media.NormalizeCollectionPart(raw)
		if !ok {
			s.logger.Warn().Int("collectionId", id).Msg("Skipping malformed collection part")
			continue
		}
		parts = append(parts, item)
		if item.VoteCount > 0 {
			weightedSum += item.Rating * float64(item.VoteCount)
			totalVotes += item.VoteCount
			rated++
		}
	}

	aggregate := &CollectionAggregate{
		ID:           record.ID,
		Name:         record.Name,
		Overview:     record.Overview,
		PosterPath:   derefPath(record.PosterPath),
		BackdropPath: derefPath(record.BackdropPath),
		Parts:        parts,
		RatedParts:   rated,
	}
	if totalVotes > 0 {
		avg := weightedSum / float64(totalVotes)
		aggregate.AverageRating = &avg
	}
	return aggregate, nil
}

func derefPath(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
