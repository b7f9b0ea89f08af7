package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection = "users"
	GoalsCollection = "goals"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UID       string             `bson:"uid"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	PhotoURL  string             `bson:"photoURL"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDocument) model() *model.User {
	return &model.User{
		ID:       d.ID.Hex(),
		UID:      d.UID,
		Name:     d.Name,
		Email:    d.Email,
		PhotoURL: d.PhotoURL,
	}
}

type goalDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category"`
	Deadline    *time.Time         `bson:"deadline,omitempty"`
	Progress    int                `bson:"progress"`
	IsCompleted bool               `bson:"isCompleted"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *goalDocument) model() *model.Goal {
	return &model.Goal{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Deadline:    d.Deadline,
		Progress:    d.Progress,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt,
	}
}

// mongoStorage persists users and goals in MongoDB. Everything except the
// two create calls is fail-soft: errors are logged and turned into an
// absent or empty result.
type mongoStorage struct {
	db    *mongo.Database
	users *mongo.Collection
	goals *mongo.Collection
	now   func() time.Time
}

func NewMongoStorage(db *mongo.Database) Storage {
	return &mongoStorage{
		db:    db,
		users: db.Collection(UsersCollection),
		goals: db.Collection(GoalsCollection),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *mongoStorage) Name() string {
	return "mongo"
}

func (s *mongoStorage) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *mongoStorage) User(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		slog.Warn("invalid user id", "error", err, "id", id)
		return nil, ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid}, "id", id)
}

func (s *mongoStorage) UserByUID(ctx context.Context, uid string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"uid": uid}, "uid", uid)
}

func (s *mongoStorage) findUser(ctx context.Context, filter bson.M, key, value string) (*model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to find user", "error", err, key, value)
		return nil, ErrUserNotFound
	}
	return doc.model(), nil
}

func (s *mongoStorage) CreateUser(ctx context.Context, newUser *model.NewUser) (*model.User, error) {
	now := s.now()
	doc := &userDocument{
		ID:        primitive.NewObjectID(),
		UID:       newUser.UID,
		Name:      newUser.Name,
		Email:     newUser.Email,
		PhotoURL:  newUser.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		slog.Error("failed to insert user", "error", err, "uid", newUser.UID)
		if mongo.IsDuplicateKeyError(err) {
			err = errors.Join(ErrDuplicateUser, err)
		}
		return nil, &CreationError{Entity: "user", Err: err}
	}

	return doc.model(), nil
}

func (s *mongoStorage) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.goals.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		slog.Error("failed to find goals", "error", err, "user_id", userID)
		return []*model.Goal{}, nil
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []goalDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		slog.Error("failed to decode goals", "error", err, "user_id", userID)
		return []*model.Goal{}, nil
	}

	goals := make([]*model.Goal, 0, len(docs))
	for i := range docs {
		goals = append(goals, docs[i].model())
	}
	return goals, nil
}

func (s *mongoStorage) Goal(ctx context.Context, id string) (*model.Goal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		slog.Warn("invalid goal id", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	var doc goalDocument
	err = s.goals.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		slog.Error("failed to find goal", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}
	return doc.model(), nil
}

func (s *mongoStorage) CreateGoal(ctx context.Context, newGoal *model.NewGoal) (*model.Goal, error) {
	now := s.now()
	doc := &goalDocument{
		ID:          primitive.NewObjectID(),
		UserID:      newGoal.UserID,
		Title:       newGoal.Title,
		Description: newGoal.Description,
		Category:    newGoal.Category,
		Deadline:    newGoal.Deadline,
		Progress:    newGoal.Progress,
		IsCompleted: newGoal.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.goals.InsertOne(ctx, doc)
	if err != nil {
		slog.Error("failed to insert goal", "error", err, "user_id", newGoal.UserID)
		return nil, &CreationError{Entity: "goal", Err: err}
	}

	return doc.model(), nil
}

func (s *mongoStorage) UpdateGoal(ctx context.Context, id string, update *model.GoalUpdate) (*model.Goal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		slog.Warn("invalid goal id", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	err = validation.CheckGoalUpdate(update)
	if err != nil {
		slog.Warn("rejected goal update", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	if update.IsEmpty() {
		return s.Goal(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc goalDocument
	err = s.goals.FindOneAndUpdate(ctx, bson.M{"_id": oid}, goalUpdateDocument(update, s.now()), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		slog.Error("failed to update goal", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}
	return doc.model(), nil
}

// goalUpdateDocument builds a $set (and $unset for a cleared deadline)
// covering only the supplied fields.
func goalUpdateDocument(update *model.GoalUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Deadline != nil && !update.ClearDeadline {
		set["deadline"] = *update.Deadline
	}
	if update.Progress != nil {
		set["progress"] = *update.Progress
	}
	if update.IsCompleted != nil {
		set["isCompleted"] = *update.IsCompleted
	}

	doc := bson.M{"$set": set}
	if update.ClearDeadline {
		doc["$unset"] = bson.M{"deadline": ""}
	}
	return doc
}

func (s *mongoStorage) DeleteGoal(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		slog.Warn("invalid goal id", "error", err, "goal_id", id)
		return false, nil
	}

	result, err := s.goals.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		slog.Error("failed to delete goal", "error", err, "goal_id", id)
		return false, nil
	}
	return result.DeletedCount > 0, nil
}

type statisticsResult struct {
	Total      int `bson:"total"`
	Completed  int `bson:"completed"`
	InProgress int `bson:"inProgress"`
}

func (s *mongoStorage) GoalStatistics(ctx context.Context, userID string) (model.GoalStatistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$isCompleted", true}}, 1, 0},
			}},
			"inProgress": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$and": bson.A{
						bson.M{"$ne": bson.A{"$isCompleted", true}},
						bson.M{"$gt": bson.A{"$progress", 0}},
					}},
					1, 0,
				},
			}},
		}}},
	}

	cursor, err := s.goals.Aggregate(ctx, pipeline)
	if err != nil {
		slog.Error("failed to aggregate goal statistics", "error", err, "user_id", userID)
		return model.GoalStatistics{}, nil
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []statisticsResult
	err = cursor.All(ctx, &results)
	if err != nil {
		slog.Error("failed to decode goal statistics", "error", err, "user_id", userID)
		return model.GoalStatistics{}, nil
	}
	if len(results) == 0 {
		return model.NewGoalStatistics(0, 0, 0), nil
	}

	r := results[0]
	return model.NewGoalStatistics(r.Total, r.Completed, r.InProgress), nil
}

func (s *mongoStorage) GoalCategories(ctx context.Context, userID string) ([]model.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "category": "$_id", "count": 1}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "category", Value: 1}}}},
	}

	cursor, err := s.goals.Aggregate(ctx, pipeline)
	if err != nil {
		slog.Error("failed to aggregate goal categories", "error", err, "user_id", userID)
		return []model.CategoryCount{}, nil
	}
	defer func() { _ = cursor.Close(ctx) }()

	categories := []model.CategoryCount{}
	err = cursor.All(ctx, &categories)
	if err != nil {
		slog.Error("failed to decode goal categories", "error", err, "user_id", userID)
		return []model.CategoryCount{}, nil
	}
	return categories, nil
}
