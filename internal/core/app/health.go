package app

import (
	"context"
	"fmt"
	"time"

	"javaindex/internal/shared/observability"
	"javaindex/internal/shared/util"
)

type HealthService struct {
	ix *Indexer
}

func NewHealthService(ix *Indexer) *HealthService {
	return &HealthService{ix: ix}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	stats, err := s.ix.store.Stats(ctx)
	if err != nil {
		status.Status = "degraded"
		status.Components["store"] = "error: " + err.Error()
	} else {
		status.Components["store"] = fmt.Sprintf("ok (%d files, %d types)", stats.Files, stats.Types)
		if stats.LastRun != nil {
			status.Components["last_run"] = fmt.Sprintf("%s (%d indexed, %d failed)", stats.LastRun.ID, stats.LastRun.Indexed, stats.LastRun.Failed)
		}
	}

	status.Components["parser"] = fmt.Sprintf("ok (%d leased)", s.ix.codeParser.Leased())
	status.Components["memory"] = fmt.Sprintf("%d MB heap", util.GetHeapAllocMB())

	return status
}
