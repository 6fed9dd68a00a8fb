package budget

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	periods map[string]Period
	events  []ChargeEvent
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		periods: make(map[string]Period),
	}
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, key string, limit float64) (Period, error) {
	if err := ctx.Err(); err != nil {
		return Period{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(key, limit), nil
}

func (s *memoryStore) ensureLocked(key string, limit float64) Period {
	p, ok := s.periods[key]
	if !ok {
		p = Period{
			PeriodKey:   key,
			BudgetLimit: limit,
			Breakdown:   make(map[string]float64),
		}
		s.periods[key] = p
	}
	return p
}

func (s *memoryStore) GetPeriod(ctx context.Context, key string) (Period, error) {
	if err := ctx.Err(); err != nil {
		return Period{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[key]
	if !ok {
		return Period{}, ErrPeriodNotFound
	}
	return clonePeriod(p), nil
}

func (s *memoryStore) AddCosts(ctx context.Context, key string, limit float64, costs map[string]float64, countAnalysis bool) (Period, error) {
	if err := ctx.Err(); err != nil {
		return Period{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ensureLocked(key, limit)
	for service, cost := range costs {
		p.Breakdown[service] += cost
		p.TotalCost += cost
	}
	if countAnalysis {
		p.NumAnalyses++
	}
	s.periods[key] = p
	return clonePeriod(p), nil
}

func (s *memoryStore) SetLimit(ctx context.Context, key string, limit float64) (Period, error) {
	if err := ctx.Err(); err != nil {
		return Period{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ensureLocked(key, limit)
	p.BudgetLimit = limit
	s.periods[key] = p
	return clonePeriod(p), nil
}

func (s *memoryStore) RecordEvent(ctx context.Context, event ChargeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memoryStore) ListRecent(ctx context.Context, limit int) ([]ChargeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	events := make([]ChargeEvent, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

func clonePeriod(p Period) Period {
	out := p
	out.Breakdown = make(map[string]float64, len(p.Breakdown))
	for k, v := range p.Breakdown {
		out.Breakdown[k] = v
	}
	return out
}
