package stats

import (
	"context"

	"github.com/verte-zerg/tarotquiz/internal/model"
	"github.com/verte-zerg/tarotquiz/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Records  []model.ProgressRecord
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, progress *store.ProgressStore, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	var records []model.ProgressRecord
	if cfg.UserKey != "" {
		records, err = progress.Get(ctx, cfg.UserKey)
		if err != nil {
			return Report{}, err
		}
	}
	return Report{Sessions: sessions, Records: records}, nil
}
