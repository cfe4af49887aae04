package tools

import (
	"github.com/calmeet/calmeet/internal/calendar"
	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/meet"
)

// Clients groups the provider adapters the catalog binds to.
type Clients struct {
	Calendar *calendar.Client
	Meet     *meet.Client
}

// NewRegistry assembles the complete tool catalog: eight Calendar v3 tools
// and twelve Meet v2 tools. Descriptor order determines tools/list order.
func NewRegistry(clients Clients) (*dispatch.Registry, error) {
	registry := dispatch.NewRegistry()

	descriptors := calendarDescriptors(clients.Calendar)
	descriptors = append(descriptors, meetDescriptors(clients.Meet)...)

	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func intPtr(n int64) *int64 {
	return &n
}
