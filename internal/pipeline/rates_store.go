// internal/pipeline/rates_store.go
package pipeline

import (
	"sync"
	"time"

	"github.com/rateworks/refi-outreach/internal/model"
)

// RatesStore guards the current market rates. Rates are updated by the
// admin endpoint and stamped by the daily trigger.
type RatesStore struct {
	mu    sync.RWMutex
	rates model.Rates
}

// NewRatesStore seeds the store with the Optimal Blue national averages
// used by the reference dashboard.
func NewRatesStore() *RatesStore {
	return &RatesStore{
		rates: model.Rates{
			Conventional30: 6.048,
			Jumbo30:        6.361,
			FHA30:          5.956,
			VA30:           5.690,
			LastUpdated:    time.Now().UTC(),
		},
	}
}

// Current returns a copy of the current rates.
func (s *RatesStore) Current() model.Rates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

// Apply overwrites any rate whose pointer is non-nil and bumps the
// last-updated timestamp.
func (s *RatesStore) Apply(conventional, jumbo, fha, va *float64) model.Rates {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conventional != nil {
		s.rates.Conventional30 = *conventional
	}
	if jumbo != nil {
		s.rates.Jumbo30 = *jumbo
	}
	if fha != nil {
		s.rates.FHA30 = *fha
	}
	if va != nil {
		s.rates.VA30 = *va
	}
	s.rates.LastUpdated = time.Now().UTC()
	return s.rates
}

// Touch bumps the last-updated timestamp without changing rates.
func (s *RatesStore) Touch() model.Rates {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.LastUpdated = time.Now().UTC()
	return s.rates
}
