// Package persistence stores focus state as JSON files in a data directory.
//
// Files are read as JSONC, so hand-edited files may carry comments and
// trailing commas. Writes are atomic. A data directory is used by one
// process at a time, enforced with an exclusive flock on <dir>/.lock.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/focus/internal/model"
)

// File names inside the data directory.
const (
	ContextFile  = "context.json"
	TasksFile    = "tasks.json"
	ProjectsFile = "projects.json"
	TagsFile     = "tags.json"
	lockFile     = ".lock"
)

const dirPerms = 0o750

// Error variables for persistence operations.
var (
	ErrLocked            = errors.New("data directory is locked by another process")
	ErrCorrupt           = errors.New("corrupt data file")
	ErrClosed            = errors.New("data directory is closed")
	ErrUnsupportedFormat = errors.New("unsupported import format (want .json, .jsonc, .yaml or .yml)")
	ErrIDRequired        = errors.New("id is required")
)

// Data is the persisted entity state.
type Data struct {
	Tasks    []model.Task
	Projects []model.Project
	Tags     []model.Tag
}

// Store reads and writes one data directory.
type Store struct {
	dir  string
	lock *dirLock
}

// Open creates dir if needed and locks it.
func Open(dir string) (*Store, error) {
	err := os.MkdirAll(dir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lock, err := acquireLock(filepath.Join(dir, lockFile), LockTimeout)
	if err != nil {
		return nil, err
	}

	return &Store{dir: dir, lock: lock}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}

	err := s.lock.release()
	s.lock = nil

	return err
}

// LoadContextState returns the persisted context state, or nil if none was
// saved yet.
func (s *Store) LoadContextState(ctx context.Context) (*model.ContextState, error) {
	var state model.ContextState

	found, err := s.read(ctx, ContextFile, &state)
	if err != nil || !found {
		return nil, err
	}

	return &state, nil
}

// SaveContextState persists state.
func (s *Store) SaveContextState(ctx context.Context, state model.ContextState) error {
	return s.write(ctx, ContextFile, state)
}

// LoadAll reads tasks, projects and tags. Missing files read as empty.
func (s *Store) LoadAll(ctx context.Context) (Data, error) {
	var (
		tasks    []taskDTO
		projects []projectDTO
		tags     []tagDTO
	)

	for name, dst := range map[string]any{TasksFile: &tasks, ProjectsFile: &projects, TagsFile: &tags} {
		_, err := s.read(ctx, name, dst)
		if err != nil {
			return Data{}, err
		}
	}

	data := Data{
		Tasks:    make([]model.Task, 0, len(tasks)),
		Projects: make([]model.Project, 0, len(projects)),
		Tags:     make([]model.Tag, 0, len(tags)),
	}

	for _, t := range tasks {
		data.Tasks = append(data.Tasks, taskFromDTO(t))
	}

	for _, p := range projects {
		data.Projects = append(data.Projects, projectFromDTO(p))
	}

	for _, t := range tags {
		data.Tags = append(data.Tags, tagFromDTO(t))
	}

	return data, nil
}

// SaveAll writes tasks, projects and tags. Each file is replaced atomically.
func (s *Store) SaveAll(ctx context.Context, data Data) error {
	tasks := make([]taskDTO, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		tasks = append(tasks, taskToDTO(t))
	}

	projects := make([]projectDTO, 0, len(data.Projects))
	for _, p := range data.Projects {
		projects = append(projects, projectToDTO(p))
	}

	tags := make([]tagDTO, 0, len(data.Tags))
	for _, t := range data.Tags {
		tags = append(tags, tagToDTO(t))
	}

	err := s.write(ctx, TasksFile, tasks)
	if err != nil {
		return err
	}

	err = s.write(ctx, ProjectsFile, projects)
	if err != nil {
		return err
	}

	return s.write(ctx, TagsFile, tags)
}

func (s *Store) read(ctx context.Context, name string, dst any) (bool, error) {
	if s.lock == nil {
		return false, ErrClosed
	}

	err := ctx.Err()
	if err != nil {
		return false, err
	}

	path := filepath.Join(s.dir, name)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("reading %s: %w", name, err)
	}

	err = decodeJSONC(raw, dst)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrCorrupt, path, err)
	}

	return true, nil
}

func (s *Store) write(ctx context.Context, name string, v any) error {
	if s.lock == nil {
		return ErrClosed
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	data = append(data, '\n')

	err = atomic.WriteFile(filepath.Join(s.dir, name), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

func decodeJSONC(raw []byte, dst any) error {
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	err = json.Unmarshal(standardized, dst)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
