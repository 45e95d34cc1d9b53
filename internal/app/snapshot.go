package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// Snapshot is the portable board export. Tasks serialize in the store
// document shape so an exported file round-trips through the same decode
// boundary that reads live records.
type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Tasks      []map[string]any `json:"tasks"`
}

const snapshotVersion = 1

// ExportSnapshot serializes the full task collection from the store.
func (s *Service) ExportSnapshot(ctx context.Context) ([]byte, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	snapshot := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      make([]map[string]any, 0, len(tasks)),
	}
	for _, task := range tasks {
		snapshot.Tasks = append(snapshot.Tasks, taskDocument(task))
	}
	return json.MarshalIndent(snapshot, "", "  ")
}

// ImportSnapshot loads tasks from an exported snapshot or from a raw legacy
// dump. Three top-level shapes are accepted: a versioned snapshot, a bare
// array of task documents, and an id-to-document object (the shape legacy
// key/value backends export). Every document passes through the alias-aware
// decode, so historical field names import cleanly. Records that resolve
// without a title or category are skipped and counted, not fatal.
func (s *Service) ImportSnapshot(ctx context.Context, raw []byte) (imported, skipped int, err error) {
	documents, err := decodeSnapshotDocuments(raw)
	if err != nil {
		return 0, 0, err
	}
	for id, doc := range documents {
		if strings.HasPrefix(id, "\x00") {
			id = ""
		}
		decoded := domain.TaskFromDocument(id, doc)
		if decoded.ID == "" {
			decoded.ID = s.idGen()
		}
		task, buildErr := domain.NewTask(domain.TaskInput{
			ID:          decoded.ID,
			Title:       decoded.Title,
			Description: decoded.Description,
			Category:    decoded.Category,
			Priority:    string(decoded.Priority),
			DueAt:       decoded.DueAt,
			Status:      decoded.Status,
			Assigned:    decoded.Assigned,
			Subtasks:    decoded.Subtasks,
			CreatedBy:   decoded.CreatedBy,
		}, s.clock())
		if buildErr != nil {
			s.logger.Warn("snapshot record skipped", "id", decoded.ID, "err", buildErr)
			skipped++
			continue
		}
		if !decoded.CreatedAt.IsZero() {
			task.CreatedAt = decoded.CreatedAt
		}
		if err := s.store.CreateTask(ctx, task); err != nil {
			s.logger.Warn("snapshot record not stored", "id", task.ID, "err", err)
			skipped++
			continue
		}
		s.mu.Lock()
		s.board = append(s.board, task)
		s.mu.Unlock()
		imported++
	}
	return imported, skipped, nil
}

// decodeSnapshotDocuments widens the accepted snapshot shapes to a uniform
// id-to-document map. Array elements key by their embedded id, which may be
// empty; the import assigns fresh ids in that case.
func decodeSnapshotDocuments(raw []byte) (map[string]map[string]any, error) {
	var snapshot struct {
		Version int              `json:"version"`
		Tasks   []map[string]any `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &snapshot); err == nil && snapshot.Tasks != nil {
		return indexDocuments(snapshot.Tasks), nil
	}

	var array []map[string]any
	if err := json.Unmarshal(raw, &array); err == nil {
		return indexDocuments(array), nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err == nil {
		out := make(map[string]map[string]any, len(object))
		for id, element := range object {
			var doc map[string]any
			if err := json.Unmarshal(element, &doc); err != nil {
				continue
			}
			out[id] = doc
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	return nil, fmt.Errorf("import: unrecognized snapshot shape")
}

func indexDocuments(documents []map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(documents))
	for idx, doc := range documents {
		id := ""
		if v, ok := doc["id"].(string); ok {
			id = v
		}
		if id == "" {
			// Synthetic key only; the import generates the real id.
			id = fmt.Sprintf("\x00%d", idx)
			out[id] = doc
			continue
		}
		out[id] = doc
	}
	return out
}

// taskDocument renders one task in the persisted document shape.
func taskDocument(task domain.Task) map[string]any {
	doc := map[string]any{
		"id":        task.ID,
		"title":     task.Title,
		"category":  task.Category,
		"priority":  string(task.Priority),
		"status":    string(task.Status),
		"subtasks":  domain.EncodeSubtasks(task.Subtasks),
		"assigned":  domain.EncodeAssignees(task.Assigned),
		"createdAt": task.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.Description != "" {
		doc["description"] = task.Description
	}
	if task.CreatedBy != "" {
		doc["createdBy"] = task.CreatedBy
	}
	if task.DueAt != nil {
		doc["dueDate"] = task.DueAt.UTC().Format("2006-01-02")
	}
	return doc
}
