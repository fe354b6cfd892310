package state

// State owns every piece of mutable pipeline data: the dedup set, the result
// store, and the frequency tables. It is created once at startup and handed
// to both the scheduler side (single writer) and the HTTP side (concurrent
// readers); there is no ambient package-level state anywhere else.
type State struct {
	Dedup       *Dedup
	Store       *Store
	Frequencies *Frequencies
}

// Counts summarizes pipeline progress for the read-only API.
type Counts struct {
	ProcessedCount int `json:"processed_count"`
	StoredCount    int `json:"stored_count"`
}

// New builds empty pipeline state.
func New() *State {
	return &State{
		Dedup:       NewDedup(),
		Store:       NewStore(),
		Frequencies: NewFrequencies(),
	}
}

// Counts reports how many posts were ever processed and how many analyses
// were retained.
func (s *State) Counts() Counts {
	return Counts{
		ProcessedCount: s.Dedup.Len(),
		StoredCount:    s.Store.Count(),
	}
}
