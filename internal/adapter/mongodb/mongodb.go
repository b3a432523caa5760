// Package mongodb implements the domain repositories using MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blueprint/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store holds the three collections backing the repositories.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	projects *mongo.Collection
	tasks    *mongo.Collection
	logger   *slog.Logger
}

var (
	_ domain.UserRepository    = (*Store)(nil)
	_ domain.ProjectRepository = (*Store)(nil)
	_ domain.TaskRepository    = (*Store)(nil)
)

// Open connects to uri, pings the primary and ensures indexes.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
		logger:   logger,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("connected to mongo", slog.String("database", database))
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.projects, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "seq", Value: -1}},
		}},
		{s.tasks, mongo.IndexModel{
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}},
		}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("creating index on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

// --- UserRepository ---

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"email_key"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// CreateUser stores a new user. Emails are unique, compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	doc := userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		EmailKey:     strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email_key", Value: strings.ToLower(email)}})
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// --- ProjectRepository ---

type projectDoc struct {
	ID               string                  `bson:"_id"`
	UserID           string                  `bson:"user_id"`
	Title            string                  `bson:"title"`
	Description      string                  `bson:"description"`
	ValidationScores domain.ValidationScores `bson:"validation_scores"`
	Features         []string                `bson:"features"`
	Status           string                  `bson:"status"`
	CreatedAt        time.Time               `bson:"created_at"`
	Seq              primitive.ObjectID      `bson:"seq"`
}

func (d projectDoc) toDomain() domain.Project {
	return domain.Project{
		ID:               d.ID,
		UserID:           d.UserID,
		Title:            d.Title,
		Description:      d.Description,
		ValidationScores: d.ValidationScores,
		Features:         d.Features,
		Status:           d.Status,
		CreatedAt:        d.CreatedAt.UTC(),
	}
}

// CreateProject stores a project.
func (s *Store) CreateProject(ctx context.Context, p domain.Project) error {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	doc := projectDoc{
		ID:               p.ID,
		UserID:           p.UserID,
		Title:            p.Title,
		Description:      p.Description,
		ValidationScores: p.ValidationScores,
		Features:         features,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt.UTC(),
		Seq:              primitive.NewObjectID(),
	}
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project owned by ownerID.
func (s *Store) GetProject(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return s.findProject(ctx, bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: ownerID}}, nil)
}

// ListProjects returns the owner's projects in creation order.
func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	cur, err := s.projects.Find(ctx,
		bson.D{{Key: "user_id", Value: ownerID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	out := make([]domain.Project, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// LatestProject returns the owner's most recently created project.
func (s *Store) LatestProject(ctx context.Context, ownerID string) (*domain.Project, error) {
	return s.findProject(ctx,
		bson.D{{Key: "user_id", Value: ownerID}},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}),
	)
}

func (s *Store) findProject(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*domain.Project, error) {
	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	var doc projectDoc
	err := s.projects.FindOne(ctx, filter, findOpts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

// --- TaskRepository ---

type taskDoc struct {
	ID          string             `bson:"_id"`
	ProjectID   string             `bson:"project_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	Seq         primitive.ObjectID `bson:"seq"`
}

func (d taskDoc) toDomain() domain.Task {
	return domain.Task{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// CreateTasks stores a batch of tasks.
func (s *Store) CreateTasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	docs := make([]any, len(tasks))
	for i, t := range tasks {
		docs[i] = taskDoc{
			ID:          t.ID,
			ProjectID:   t.ProjectID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      t.Status,
			CreatedAt:   t.CreatedAt.UTC(),
			Seq:         primitive.NewObjectID(),
		}
	}
	if _, err := s.tasks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}
	return nil
}

// CreateTask stores a single task.
func (s *Store) CreateTask(ctx context.Context, t domain.Task) error {
	return s.CreateTasks(ctx, []domain.Task{t})
}

// ListTasks returns a project's tasks ordered by creation time.
func (s *Store) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	cur, err := s.tasks.Find(ctx,
		bson.D{{Key: "project_id", Value: projectID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]domain.Task, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var doc taskDoc
	err := s.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	t := doc.toDomain()
	return &t, nil
}

// UpdateTaskStatus sets a task's status and returns the updated task.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	var doc taskDoc
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	t := doc.toDomain()
	return &t, nil
}

// CountTasks summarises a project's tasks by status.
func (s *Store) CountTasks(ctx context.Context, projectID string) (domain.TaskCounts, error) {
	countIf := func(status string) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$status", status}}}, 1, 0,
		}}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "project_id", Value: projectID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "done", Value: countIf(domain.StatusDone)},
			{Key: "in_progress", Value: countIf(domain.StatusInProgress)},
		}}},
	}

	cur, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}
	var rows []struct {
		Total      int `bson:"total"`
		Done       int `bson:"done"`
		InProgress int `bson:"in_progress"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domain.TaskCounts{}, fmt.Errorf("decode task counts: %w", err)
	}
	if len(rows) == 0 {
		return domain.TaskCounts{}, nil
	}
	return domain.TaskCounts{Total: rows[0].Total, Done: rows[0].Done, InProgress: rows[0].InProgress}, nil
}
