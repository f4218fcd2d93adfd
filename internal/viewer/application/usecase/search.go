package usecase

import (
	"context"

	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/logger"
	out "bustracker/internal/viewer/application/ports/out"
	"bustracker/internal/viewer/view"
)

// SearchService — одноразовый фильтрованный просмотр. Результат идет
// через тот же рендерер, что и живые обновления: на время фильтра
// не подходящие маркеры исчезают, до прихода следующего полного
// snapshot от подписки.
type SearchService struct {
	reader   out.FleetReader
	renderer *view.Renderer
	log      *logger.Logger
}

func NewSearchService(reader out.FleetReader, renderer *view.Renderer, log *logger.Logger) *SearchService {
	return &SearchService{
		reader:   reader,
		renderer: renderer,
		log:      log,
	}
}

// Execute: пустой route — полный одноразовый срез, иначе точное
// совпадение по route.
func (s *SearchService) Execute(ctx context.Context, route string) (fleet.Snapshot, error) {
	var (
		snap fleet.Snapshot
		err  error
	)

	if route == "" {
		snap, err = s.reader.Snapshot(ctx)
	} else {
		snap, err = s.reader.SnapshotByRoute(ctx, route)
	}
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "search_read_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"route": route,
			},
		})
		return nil, err
	}

	s.renderer.Render(snap)

	s.log.Debug(logger.Entry{
		Action:  "search_rendered",
		Message: "one-shot snapshot rendered",
		Additional: map[string]any{
			"route": route,
			"buses": len(snap),
		},
	})

	return snap, nil
}
