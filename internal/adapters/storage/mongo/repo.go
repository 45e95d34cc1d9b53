package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Repository persists tasks and contacts in a remote MongoDB deployment.
// Task documents keep whatever field names they were written with; reads
// convert raw bson into plain documents and run them through the alias-aware
// decode, so boards populated by other clients load without a migration.
type Repository struct {
	client   *mongo.Client
	tasks    *mongo.Collection
	contacts *mongo.Collection
}

// Connect dials the deployment and binds the task and contact collections.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &Repository{
		client:   client,
		tasks:    db.Collection("tasks"),
		contacts: db.Collection("contacts"),
	}, nil
}

// Close disconnects from the deployment.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// ListTasks loads and decodes every task document.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	cursor, err := r.tasks.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []domain.Task{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode task document: %w", err)
		}
		tasks = append(tasks, taskFromBSON(raw))
	}
	return tasks, cursor.Err()
}

// CreateTask inserts a new task document keyed by the task id.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	if _, err := r.tasks.InsertOne(ctx, taskToBSON(t)); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// SaveTask replaces an existing task document.
func (r *Repository) SaveTask(ctx context.Context, t domain.Task) error {
	res, err := r.tasks.ReplaceOne(ctx, bson.M{"_id": t.ID}, taskToBSON(t))
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		return app.ErrNotFound
	}
	return nil
}

// DeleteTask removes a task document by id.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ListContacts loads the contact directory.
func (r *Repository) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	cursor, err := r.contacts.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer cursor.Close(ctx)

	contacts := []domain.Contact{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode contact document: %w", err)
		}
		contacts = append(contacts, contactFromBSON(raw))
	}
	return contacts, cursor.Err()
}

func taskFromBSON(raw bson.M) domain.Task {
	doc := plainDocument(raw)
	id := ""
	if v, ok := doc["_id"].(string); ok {
		id = v
	}
	return domain.TaskFromDocument(id, doc)
}

func taskToBSON(t domain.Task) bson.M {
	doc := bson.M{
		"_id":       t.ID,
		"title":     t.Title,
		"category":  t.Category,
		"priority":  string(t.Priority),
		"status":    string(t.Status),
		"subtasks":  domain.EncodeSubtasks(t.Subtasks),
		"assigned":  domain.EncodeAssignees(t.Assigned),
		"createdAt": t.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.Description != "" {
		doc["description"] = t.Description
	}
	if t.CreatedBy != "" {
		doc["createdBy"] = t.CreatedBy
	}
	if t.DueAt != nil {
		doc["dueDate"] = t.DueAt.UTC().Format("2006-01-02")
	}
	return doc
}

func contactFromBSON(raw bson.M) domain.Contact {
	doc := plainDocument(raw)
	contact := domain.Contact{}
	if v, ok := doc["_id"].(string); ok {
		contact.ID = v
	}
	if v, ok := doc["name"].(string); ok {
		contact.Name = v
	}
	if v, ok := doc["email"].(string); ok {
		contact.Email = v
	}
	if v, ok := doc["color"].(string); ok {
		contact.Color = v
	}
	return contact
}

// plainDocument rewrites driver-specific container and scalar types into the
// plain JSON-style values the decode boundary understands.
func plainDocument(raw bson.M) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[key] = plainValue(value)
	}
	return out
}

func plainValue(value any) any {
	switch v := value.(type) {
	case bson.M:
		return plainDocument(v)
	case bson.D:
		doc := make(map[string]any, len(v))
		for _, elem := range v {
			doc[elem.Key] = plainValue(elem.Value)
		}
		return doc
	case primitive.A:
		out := make([]any, len(v))
		for idx, elem := range v {
			out[idx] = plainValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for idx, elem := range v {
			out[idx] = plainValue(elem)
		}
		return out
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return v.Hex()
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return value
	}
}

// IsNotFound reports whether the error is the driver's missing-document
// sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
