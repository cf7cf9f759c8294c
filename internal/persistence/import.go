package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/focus/internal/model"
)

// Import reads a YAML or JSONC data file. Tasks without an id get a UUIDv7.
// Nested subTasks are flattened with their parent links filled in.
func Import(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("reading import file: %w", err)
	}

	var file dataFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)

		err = dec.Decode(&file)
	case ".json", ".jsonc":
		err = decodeJSONC(raw, &file)
	default:
		return Data{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err != nil {
		return Data{}, fmt.Errorf("%w %s: %w", ErrCorrupt, path, err)
	}

	return file.toData()
}

func (f dataFile) toData() (Data, error) {
	var data Data

	for _, dto := range f.Tasks {
		tasks, err := flattenImported(dto, "")
		if err != nil {
			return Data{}, err
		}

		data.Tasks = append(data.Tasks, tasks...)
	}

	for i, dto := range f.Projects {
		if dto.ID == "" {
			return Data{}, fmt.Errorf("project #%d: %w", i+1, ErrIDRequired)
		}

		data.Projects = append(data.Projects, projectFromDTO(dto))
	}

	for i, dto := range f.Tags {
		if dto.ID == "" {
			return Data{}, fmt.Errorf("tag #%d: %w", i+1, ErrIDRequired)
		}

		tag := tagFromDTO(dto)
		if tag.TaskIDs == nil {
			tag.TaskIDs = []string{}
		}

		data.Tags = append(data.Tags, tag)
	}

	return data, nil
}

// flattenImported returns dto followed by its nested subtasks.
func flattenImported(dto taskDTO, parentID string) ([]model.Task, error) {
	if dto.ID == "" {
		id, err := model.NewTaskID()
		if err != nil {
			return nil, err
		}

		dto.ID = id
	}

	if parentID != "" {
		dto.ParentID = parentID
	}

	task := taskFromDTO(dto)
	out := []model.Task{task}

	for _, sub := range dto.SubTasks {
		children, err := flattenImported(sub, task.ID)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(task.SubTaskIDs, children[0].ID) {
			task.SubTaskIDs = append(task.SubTaskIDs, children[0].ID)
		}

		out = append(out, children...)
	}

	out[0] = task

	return out, nil
}

// Merge upserts incoming into base by id. Entities keep their position in
// base; new ones are appended in incoming order.
func Merge(base, incoming Data) Data {
	return Data{
		Tasks:    mergeByID(base.Tasks, incoming.Tasks, func(t model.Task) string { return t.ID }),
		Projects: mergeByID(base.Projects, incoming.Projects, func(p model.Project) string { return p.ID }),
		Tags:     mergeByID(base.Tags, incoming.Tags, func(t model.Tag) string { return t.ID }),
	}
}

func mergeByID[T any](base, incoming []T, id func(T) string) []T {
	out := slices.Clone(base)
	index := make(map[string]int, len(out))

	for i, v := range out {
		index[id(v)] = i
	}

	for _, v := range incoming {
		if i, ok := index[id(v)]; ok {
			out[i] = v

			continue
		}

		index[id(v)] = len(out)
		out = append(out, v)
	}

	return out
}
