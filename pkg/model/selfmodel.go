package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SelfModel is the agent's current identity record. There is always
// exactly one current model; prior versions live in the snapshot
// history and are never edited after append.
type SelfModel struct {
	Identity      string             `json:"identity"`
	ActiveDrives  []string           `json:"active_drives"`
	Constraints   []string           `json:"constraints"`
	InternalState map[string]float64 `json:"internal_state"`
	Version       string             `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
}

// DefaultSelfModel returns the initial model used when no self-model
// has been persisted yet.
func DefaultSelfModel(now time.Time) *SelfModel {
	return &SelfModel{
		Identity:      "unnamed agent",
		ActiveDrives:  []string{},
		Constraints:   []string{},
		InternalState: map[string]float64{},
		Version:       "1.0.0",
		CreatedAt:     now,
	}
}

// Clone returns a deep copy, used to snapshot the current model before
// a mutation.
func (m *SelfModel) Clone() *SelfModel {
	c := *m
	c.ActiveDrives = append([]string(nil), m.ActiveDrives...)
	c.Constraints = append([]string(nil), m.Constraints...)
	c.InternalState = make(map[string]float64, len(m.InternalState))
	for k, v := range m.InternalState {
		c.InternalState[k] = v
	}
	return &c
}

// NextVersion returns the version string with the patch component
// incremented. Malformed versions restart at 1.0.0.
func (m *SelfModel) NextVersion() string {
	parts := strings.Split(m.Version, ".")
	if len(parts) != 3 {
		return "1.0.0"
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "1.0.0"
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}

// SelfModelUpdate describes a partial mutation. Nil fields are left
// unchanged; InternalState entries are merged key by key.
type SelfModelUpdate struct {
	Identity      *string            `json:"identity,omitempty"`
	ActiveDrives  []string           `json:"active_drives,omitempty"`
	Constraints   []string           `json:"constraints,omitempty"`
	InternalState map[string]float64 `json:"internal_state,omitempty"`
}

// Apply merges the update into the model in place.
func (u *SelfModelUpdate) Apply(m *SelfModel) {
	if u.Identity != nil {
		m.Identity = *u.Identity
	}
	if u.ActiveDrives != nil {
		m.ActiveDrives = append([]string(nil), u.ActiveDrives...)
	}
	if u.Constraints != nil {
		m.Constraints = append([]string(nil), u.Constraints...)
	}
	for k, v := range u.InternalState {
		if m.InternalState == nil {
			m.InternalState = map[string]float64{}
		}
		m.InternalState[k] = v
	}
}
