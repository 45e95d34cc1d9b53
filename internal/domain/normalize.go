package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Persisted field aliases accepted at the decode boundary. Historical store
// records wrote subtask titles under name/text, completion under
// completed/isDone, assignee names under fullName/username, and the two
// collections under subTasks/assignees. Reads accept every alias; writes emit
// the canonical name plus the completion mirrors (see EncodeSubtasks).
var (
	subtaskTitleAliases    = []string{"title", "name", "text"}
	subtaskDoneAliases     = []string{"done", "completed", "isDone"}
	assigneeNameAliases    = []string{"name", "fullName", "username"}
	assigneeIDAliases      = []string{"id", "contactId", "contact_id"}
	taskSubtaskCollections = []string{"subtasks", "subTasks"}
	taskAssignCollections  = []string{"assigned", "assignees"}
)

// NormalizeSubtasks converts an arbitrary persisted subtask representation
// into the canonical checklist shape. Non-sequence input yields an empty
// slice; string elements become undone entries; structured elements resolve
// their title and done flag through the accepted aliases; anything else is
// dropped, as is every entry whose resolved title is empty. The function is
// pure and idempotent: a canonical slice passes through unchanged.
func NormalizeSubtasks(raw any) []Subtask {
	out := []Subtask{}
	switch seq := raw.(type) {
	case []Subtask:
		for _, subtask := range seq {
			if subtask.Title == "" {
				continue
			}
			out = append(out, subtask)
		}
	case []string:
		for _, title := range seq {
			if title == "" {
				continue
			}
			out = append(out, Subtask{Title: title})
		}
	case []map[string]any:
		for _, doc := range seq {
			if subtask, ok := subtaskFromDocument(doc); ok {
				out = append(out, subtask)
			}
		}
	case []any:
		for _, element := range seq {
			switch v := element.(type) {
			case string:
				if v == "" {
					continue
				}
				out = append(out, Subtask{Title: v})
			case map[string]any:
				if subtask, ok := subtaskFromDocument(v); ok {
					out = append(out, subtask)
				}
			case Subtask:
				if v.Title != "" {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// subtaskFromDocument resolves one structured subtask element. The title is
// the first alias present (not trimmed); the done flag is the logical OR of
// all completion aliases, each coerced to bool.
func subtaskFromDocument(doc map[string]any) (Subtask, bool) {
	title := ""
	for _, alias := range subtaskTitleAliases {
		if value, ok := doc[alias]; ok {
			title = stringValue(value)
			break
		}
	}
	if title == "" {
		return Subtask{}, false
	}
	done := false
	for _, alias := range subtaskDoneAliases {
		done = done || boolValue(doc[alias])
	}
	return Subtask{Title: title, Done: done}, true
}

// NormalizeAssignees converts persisted assignee entries into the canonical
// shape. Bare strings become contact references; structured elements resolve
// name, id, and color through the accepted aliases. Entries lacking both a
// non-empty trimmed name and a contact reference are discarded.
func NormalizeAssignees(raw any) []Assignee {
	out := []Assignee{}
	elements, ok := anySlice(raw)
	if !ok {
		return out
	}
	for _, element := range elements {
		switch v := element.(type) {
		case string:
			ref := strings.TrimSpace(v)
			if ref == "" {
				continue
			}
			out = append(out, Assignee{ContactID: ref, Name: ref})
		case map[string]any:
			assignee := Assignee{Color: stringValue(v["color"])}
			for _, alias := range assigneeNameAliases {
				if name := strings.TrimSpace(stringValue(v[alias])); name != "" {
					assignee.Name = name
					break
				}
			}
			for _, alias := range assigneeIDAliases {
				if id := strings.TrimSpace(stringValue(v[alias])); id != "" {
					assignee.ContactID = id
					break
				}
			}
			if assignee.Name == "" && assignee.ContactID == "" {
				continue
			}
			out = append(out, assignee)
		case Assignee:
			if strings.TrimSpace(v.Name) == "" && strings.TrimSpace(v.ContactID) == "" {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

// anySlice widens the supported sequence representations to []any.
func anySlice(raw any) ([]any, bool) {
	switch seq := raw.(type) {
	case []any:
		return seq, true
	case []string:
		out := make([]any, len(seq))
		for idx, s := range seq {
			out[idx] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(seq))
		for idx, doc := range seq {
			out[idx] = doc
		}
		return out, true
	case []Assignee:
		out := make([]any, len(seq))
		for idx, a := range seq {
			out[idx] = a
		}
		return out, true
	default:
		return nil, false
	}
}

// DecodeTask maps one persisted task document onto the canonical record.
// The id parameter wins over any embedded id field so key/value stores stay
// authoritative for identity.
func DecodeTask(id string, raw []byte) (Task, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Task{}, fmt.Errorf("decode task %q: %w", id, err)
	}
	return TaskFromDocument(id, doc), nil
}

// TaskFromDocument builds the canonical task from a decoded document,
// degrading malformed fields to defaults instead of failing the record.
func TaskFromDocument(id string, doc map[string]any) Task {
	task := Task{ID: strings.TrimSpace(id)}
	if task.ID == "" {
		task.ID = strings.TrimSpace(stringValue(doc["id"]))
	}
	task.Title = strings.TrimSpace(stringValue(doc["title"]))
	task.Description = stringValue(doc["description"])
	task.Category = strings.TrimSpace(stringValue(doc["category"]))
	task.Priority = ClassifyPriority(firstDocString(doc, "priority", "prio"))
	task.Status = ParseStatus(stringValue(doc["status"]))
	task.CreatedBy = strings.TrimSpace(firstDocString(doc, "createdBy", "created_by"))
	task.DueAt = parseDocTime(firstDocString(doc, "dueDate", "due_date", "dueAt"))
	if createdAt := parseDocTime(firstDocString(doc, "createdAt", "created_at")); createdAt != nil {
		task.CreatedAt = *createdAt
	}
	for _, key := range taskSubtaskCollections {
		if raw, ok := doc[key]; ok {
			task.Subtasks = NormalizeSubtasks(raw)
			break
		}
	}
	if task.Subtasks == nil {
		task.Subtasks = []Subtask{}
	}
	for _, key := range taskAssignCollections {
		if raw, ok := doc[key]; ok {
			task.Assigned = NormalizeAssignees(raw)
			break
		}
	}
	if task.Assigned == nil {
		task.Assigned = []Assignee{}
	}
	return task
}

// EncodeSubtasks emits checklist entries in the store shape, mirroring the
// done flag onto the legacy completion aliases for backward
// write-compatibility.
func EncodeSubtasks(subtasks []Subtask) []map[string]any {
	out := make([]map[string]any, 0, len(subtasks))
	for _, subtask := range subtasks {
		out = append(out, map[string]any{
			"title":     subtask.Title,
			"done":      subtask.Done,
			"completed": subtask.Done,
			"isDone":    subtask.Done,
		})
	}
	return out
}

// EncodeAssignees emits assignee entries in the store shape.
func EncodeAssignees(assigned []Assignee) []map[string]any {
	out := make([]map[string]any, 0, len(assigned))
	for _, assignee := range assigned {
		doc := map[string]any{"name": assignee.Name}
		if assignee.ContactID != "" {
			doc["id"] = assignee.ContactID
		}
		if assignee.Color != "" {
			doc["color"] = assignee.Color
		}
		out = append(out, doc)
	}
	return out
}

// firstDocString returns the first alias present in the document as a string.
func firstDocString(doc map[string]any, aliases ...string) string {
	for _, alias := range aliases {
		if value, ok := doc[alias]; ok {
			if s := stringValue(value); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue coerces a document value to string; non-string scalars render
// through their literal form, everything else resolves empty.
func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// boolValue coerces legacy completion flags: JSON bools, 0/1 numerics, and
// "true"/"false" strings all count.
func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

// parseDocTime accepts RFC 3339 timestamps and bare dates.
func parseDocTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
