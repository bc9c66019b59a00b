package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type WarningKind string

const (
	// WarningMissing means the slot has never been written.
	WarningMissing WarningKind = "missing"
	// WarningCorrupt means the slot held bytes that do not decode as a list of lines.
	WarningCorrupt WarningKind = "corrupt"
	// WarningInvalid means individual lines were dropped; the rest of the slot survived.
	WarningInvalid WarningKind = "invalid_lines"
	// WarningUnavailable means the store could not be read at all.
	WarningUnavailable WarningKind = "unavailable"
)

// RestoreWarning records a slot that was restored in degraded form.
type RestoreWarning struct {
	Slot    string      `json:"slot"`
	Kind    WarningKind `json:"kind"`
	Dropped int         `json:"dropped,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

type RestoreWarnings []RestoreWarning

// Has reports whether slot carries a warning of kind.
func (w RestoreWarnings) Has(slot string, kind WarningKind) bool {
	for _, warning := range w {
		if warning.Slot == slot && warning.Kind == kind {
			return true
		}
	}
	return false
}

// Degraded reports whether any slot lost data, ignoring slots that were simply absent.
func (w RestoreWarnings) Degraded() bool {
	for _, warning := range w {
		if warning.Kind != WarningMissing {
			return true
		}
	}
	return false
}

// Restore loads both slots for key. Each slot falls back to an empty list on its own,
// so a corrupt saved list never costs the caller the active one. Restore never fails
// on stored data; the returned error only reports invalid arguments.
func Restore(ctx context.Context, store SlotStore, key string) (*Engine, RestoreWarnings, error) {
	engine, err := NewEngine(store, key)
	if err != nil {
		return nil, nil, err
	}

	var warnings RestoreWarnings
	blobs, err := store.Load(ctx, key, SlotActive, SlotSaved)
	if err != nil {
		for _, slot := range []string{SlotActive, SlotSaved} {
			warnings = append(warnings, RestoreWarning{Slot: slot, Kind: WarningUnavailable, Detail: err.Error()})
		}
		return engine, warnings, nil
	}

	active, activeWarnings := decodeSlot(SlotActive, blobs)
	warnings = append(warnings, activeWarnings...)

	saved, savedWarnings := decodeSlot(SlotSaved, blobs)
	warnings = append(warnings, savedWarnings...)

	// An id present in both lists keeps its active line.
	kept := saved[:0]
	dropped := 0
	for _, line := range saved {
		if indexOf(active, line.ProductID) >= 0 {
			dropped++
			continue
		}
		kept = append(kept, line)
	}
	if dropped > 0 {
		warnings = append(warnings, RestoreWarning{
			Slot:    SlotSaved,
			Kind:    WarningInvalid,
			Dropped: dropped,
			Detail:  "product already in active list",
		})
	}

	engine.active = active
	engine.saved = kept
	return engine, warnings, nil
}

func decodeSlot(slot string, blobs map[string][]byte) ([]Line, RestoreWarnings) {
	blob, ok := blobs[slot]
	if !ok || len(strings.TrimSpace(string(blob))) == 0 {
		return []Line{}, RestoreWarnings{{Slot: slot, Kind: WarningMissing}}
	}

	var raw []Line
	if err := json.Unmarshal(blob, &raw); err != nil {
		return []Line{}, RestoreWarnings{{Slot: slot, Kind: WarningCorrupt, Detail: err.Error()}}
	}

	lines := make([]Line, 0, len(raw))
	var reasons []string
	for _, line := range raw {
		if reason := validateLine(line, lines); reason != "" {
			reasons = append(reasons, reason)
			continue
		}
		lines = append(lines, line)
	}
	if len(reasons) == 0 {
		return lines, nil
	}
	return lines, RestoreWarnings{{
		Slot:    slot,
		Kind:    WarningInvalid,
		Dropped: len(reasons),
		Detail:  strings.Join(reasons, "; "),
	}}
}

func validateLine(line Line, accepted []Line) string {
	switch {
	case strings.TrimSpace(line.ProductID) == "":
		return "line without product id"
	case line.Quantity < 1:
		return fmt.Sprintf("product %s has quantity %d", line.ProductID, line.Quantity)
	case line.Price.IsNegative():
		return fmt.Sprintf("product %s has negative price", line.ProductID)
	case indexOf(accepted, line.ProductID) >= 0:
		return fmt.Sprintf("product %s listed twice", line.ProductID)
	}
	return ""
}
