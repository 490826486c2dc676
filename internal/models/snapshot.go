package models

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of a ledger session. Results are held
// oldest first in memory; the JSON document lists them newest first, the
// order the browser tracker writes.
type Snapshot struct {
	Results       []OutcomeRecord `json:"results"`
	CurrentShoe   int             `json:"currentShoe"`
	CurrentDealer int             `json:"currentDealer"`
}

// NewSnapshot returns the state of a fresh session.
func NewSnapshot() Snapshot {
	return Snapshot{Results: []OutcomeRecord{}, CurrentShoe: 1, CurrentDealer: 1}
}

// DecodeSnapshot parses a newest-first snapshot document into an oldest-first
// Snapshot. Missing results default to an empty ledger and missing or zero
// counters default to 1.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.Results == nil {
		snap.Results = []OutcomeRecord{}
	}
	snap.Results = reversed(snap.Results)
	if snap.CurrentShoe <= 0 {
		snap.CurrentShoe = 1
	}
	if snap.CurrentDealer <= 0 {
		snap.CurrentDealer = 1
	}
	return snap, nil
}

// EncodeSnapshot renders a snapshot as indented JSON, newest result first.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	snap.Results = reversed(snap.Results)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func reversed(records []OutcomeRecord) []OutcomeRecord {
	out := make([]OutcomeRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
