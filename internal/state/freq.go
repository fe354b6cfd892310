package state

import (
	"strings"
	"sync"

	"stockpulse/internal/domain"
)

// Frequencies keeps running counts of terms extracted from accepted analyses.
// Counts are monotonic for the lifetime of the process; there is no decay.
type Frequencies struct {
	mu        sync.RWMutex
	symbols   map[string]int
	topics    map[string]int
	companies map[string]int
}

// FrequencySnapshot is a read-consistent copy of all three tables.
type FrequencySnapshot struct {
	Symbols   map[string]int `json:"symbols"`
	Topics    map[string]int `json:"topics"`
	Companies map[string]int `json:"companies"`
}

// NewFrequencies builds empty tables.
func NewFrequencies() *Frequencies {
	return &Frequencies{
		symbols:   map[string]int{},
		topics:    map[string]int{},
		companies: map[string]int{},
	}
}

// RecordAccepted merges one accepted outcome into the tables. Each listed
// mention counts once; outcomes that are not accepted never mutate anything.
func (f *Frequencies) RecordAccepted(outcome domain.Outcome) {
	if outcome.Kind != domain.OutcomeAccepted {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, mention := range outcome.Symbols {
		symbol := strings.ToUpper(strings.TrimSpace(mention.Symbol))
		if symbol == "" {
			continue
		}
		f.symbols[symbol]++
	}

	for _, topic := range outcome.Topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		f.topics[topic]++
	}

	for _, company := range outcome.Companies {
		company = strings.TrimSpace(company)
		if company == "" {
			continue
		}
		f.companies[company]++
	}
}

// Snapshot copies all tables for concurrent readers.
func (f *Frequencies) Snapshot() FrequencySnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return FrequencySnapshot{
		Symbols:   copyTable(f.symbols),
		Topics:    copyTable(f.topics),
		Companies: copyTable(f.companies),
	}
}

func copyTable(table map[string]int) map[string]int {
	out := make(map[string]int, len(table))
	for term, count := range table {
		out[term] = count
	}
	return out
}
