// Package settings handles the flat settings document: theme, feature
// toggles, goals, plus embedded plan and off-day tables. The document is the
// unit of settings export/import, consumed wholesale on import.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"grindlog/internal/models"
	"grindlog/internal/store"
)

// Goals are the user's overall targets, independent of per-day plans.
type Goals struct {
	Hours    float64 `json:"hours"`
	Hands    int     `json:"hands"`
	Sessions int     `json:"sessions"`
}

// Document is the exported settings shape. Plans and off-days are embedded
// so one file captures the full planning state.
type Document struct {
	Theme              string                 `json:"theme"`
	SplitPeriods       bool                   `json:"splitPeriods"`
	ShowNotes          bool                   `json:"showNotes"`
	ShowHandsPlayed    bool                   `json:"showHandsPlayed"`
	AllowManualEditing bool                   `json:"allowManualEditing"`
	Goals              Goals                  `json:"goals"`
	Plans              map[string]models.Plan `json:"plans"`
	OffDays            map[string]bool        `json:"offDays"`
}

// Default returns the settings a fresh install starts with.
func Default() Document {
	return Document{
		Theme:           "dark",
		SplitPeriods:    true,
		ShowNotes:       true,
		ShowHandsPlayed: true,
		Plans:           map[string]models.Plan{},
		OffDays:         map[string]bool{},
	}
}

// Export serializes the document with the store's current plan and off-day
// tables embedded.
func Export(ctx context.Context, st store.Store, d Document) ([]byte, error) {
	plans, err := st.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	offDays, err := st.ListOffDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list off days: %w", err)
	}

	d.Plans = plans
	d.OffDays = offDays
	return json.MarshalIndent(d, "", "  ")
}

// Import parses a settings document and applies its planning tables to the
// store as a full replace. The returned document carries the toggles and
// goals for the caller to persist in its config.
func Import(ctx context.Context, st store.Store, data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("parse settings: %w", err)
	}

	if err := st.ReplacePlanning(ctx, d.Plans, d.OffDays); err != nil {
		return Document{}, fmt.Errorf("replace planning: %w", err)
	}
	return d, nil
}
