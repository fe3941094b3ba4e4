package streaming

import (
	"bondflow/internal/bus"
	"bondflow/internal/model"
)

// Service keeps the latest published stream per product.
type Service struct {
	*bus.Store[string, model.PriceStream]
}

func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore[string, model.PriceStream]("streaming", productKey, opts...),
	}
}

// Listener subscribes the service to algo streams.
func (s *Service) Listener() bus.Listener[model.PriceStream] {
	return bus.OnAdd(s.PublishPrice)
}

// PublishPrice stores stream and notifies the listeners.
func (s *Service) PublishPrice(stream model.PriceStream) error {
	return s.Ingest(stream)
}
