// Package model defines the entities shared by the store and the work-context
// engine.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ContextType is the variant of a work context.
type ContextType string

// Context types.
const (
	ContextTypeTag     ContextType = "TAG"
	ContextTypeProject ContextType = "PROJECT"
)

// MyDayTagID is the id of the built-in "my day" tag.
const MyDayTagID = "MY_DAY"

// ErrUnknownContextType reports a context type that is neither tag nor project.
var ErrUnknownContextType = errors.New("unknown work context type")

// Valid reports whether t is a known variant.
func (t ContextType) Valid() bool {
	switch t {
	case ContextTypeTag, ContextTypeProject:
		return true
	default:
		return false
	}
}

// ParseContextType accepts "tag"/"project" in any case.
func ParseContextType(s string) (ContextType, error) {
	switch ContextType(strings.ToUpper(s)) {
	case ContextTypeTag:
		return ContextTypeTag, nil
	case ContextTypeProject:
		return ContextTypeProject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownContextType, s)
	}
}

// Pair identifies the active work context. Pairs compare by value.
type Pair struct {
	ID   string
	Type ContextType
}

func (p Pair) String() string {
	return string(p.Type) + ":" + p.ID
}

// ContextState is the store slice holding the active context.
type ContextState struct {
	ActiveID   string      `json:"activeId"`
	ActiveType ContextType `json:"activeType"`
}

// Pair returns the (id, type) pair of s.
func (s ContextState) Pair() Pair {
	return Pair{ID: s.ActiveID, Type: s.ActiveType}
}

// DefaultContextState is the state used when nothing was persisted yet.
func DefaultContextState() ContextState {
	return ContextState{
		ActiveID:   MyDayTagID,
		ActiveType: ContextTypeTag,
	}
}

// Theme is display configuration. The engine passes it through untouched.
type Theme struct {
	Primary        string `json:"primary,omitempty"        yaml:"primary,omitempty"`
	Accent         string `json:"accent,omitempty"         yaml:"accent,omitempty"`
	Warn           string `json:"warn,omitempty"           yaml:"warn,omitempty"`
	IsAutoContrast bool   `json:"isAutoContrast,omitempty" yaml:"isAutoContrast,omitempty"`
}

// SectionWorklogExportSettings is the advanced config section key for
// [WorklogExportSettings].
const SectionWorklogExportSettings = "worklogExportSettings"

// AdvancedCfg holds per-context configuration sections.
type AdvancedCfg struct {
	WorklogExportSettings *WorklogExportSettings
}

// WorklogExportSettings configures worklog exports of a context.
type WorklogExportSettings struct {
	Cols             []string
	RoundWorkTimeTo  time.Duration
	RoundStartTimeTo time.Duration
	RoundEndTimeTo   time.Duration
	SeparateTasksBy  string
	GroupBy          string
}

// Clone returns a deep copy of s.
func (s WorklogExportSettings) Clone() WorklogExportSettings {
	s.Cols = slices.Clone(s.Cols)

	return s
}

// Tag groups tasks across projects. Tags have no backlog.
type Tag struct {
	ID          string
	Title       string
	Icon        string
	TaskIDs     []string
	Theme       Theme
	AdvancedCfg AdvancedCfg
}

// Project owns tasks and splits them into today and backlog lists. The lists
// are nil until the project was first populated.
type Project struct {
	ID             string
	Title          string
	Icon           string
	TaskIDs        []string
	BacklogTaskIDs []string
	Theme          Theme
	AdvancedCfg    AdvancedCfg
}

// WorkContext is the denormalized view of the active tag or project.
type WorkContext struct {
	ID             string
	Type           ContextType
	Title          string
	Icon           string
	TaskIDs        []string
	BacklogTaskIDs []string
	Theme          Theme
	AdvancedCfg    AdvancedCfg
	RouterLink     string
}

// Pair returns the (id, type) pair of c.
func (c WorkContext) Pair() Pair {
	return Pair{ID: c.ID, Type: c.Type}
}
