package replication

import (
	"fmt"

	"github.com/plannerhub/planner-sync/internal/logger"
)

// Service is the production Replicator: a registry of collection bindings
// plus the generic pull and push handlers. It holds no per-client state;
// everything a call needs arrives in its arguments.
type Service struct {
	bindings map[string]CollectionBinding
	logger   *logger.Logger
}

// NewService constructs a Service serving the given bindings.
func NewService(log *logger.Logger, bindings ...CollectionBinding) *Service {
	byName := make(map[string]CollectionBinding, len(bindings))
	for _, b := range bindings {
		byName[b.Config().Collection] = b
	}

	log.Info().Int("collections", len(byName)).Msg("replication service created")

	return &Service{
		bindings: byName,
		logger:   log,
	}
}

// Config implements Replicator.
func (s *Service) Config(collection string) (BindingConfig, error) {
	b, err := s.binding(collection)
	if err != nil {
		return BindingConfig{}, err
	}
	return b.Config(), nil
}

func (s *Service) binding(collection string) (CollectionBinding, error) {
	b, ok := s.bindings[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return b, nil
}
