package repository

import (
	"context"
	"errors"
	"time"

	"quizboard/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuizRepo handles MongoDB operations for quizzes
type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) (string, error)
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context, limit int64) ([]model.QuizSummary, error)
}

type quizRepo struct {
	collection *mongo.Collection
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
	}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) (string, error) {
	quiz.ID = ""
	quiz.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, quiz)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected quiz id type")
	}
	quiz.ID = oid.Hex()
	return quiz.ID, nil
}

// GetByID returns (nil, nil) for unknown or malformed ids.
func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var quiz model.Quiz
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	quiz.ID = id
	return &quiz, nil
}

// List returns quiz summaries, newest first.
func (r *quizRepo) List(ctx context.Context, limit int64) ([]model.QuizSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"title": 1, "author": 1, "createdAt": 1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quizzes := []model.QuizSummary{}
	for cursor.Next(ctx) {
		var raw struct {
			ID        primitive.ObjectID `bson:"_id"`
			Title     string             `bson:"title"`
			Author    string             `bson:"author"`
			CreatedAt time.Time          `bson:"createdAt"`
		}
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, model.QuizSummary{
			ID:        raw.ID.Hex(),
			Title:     raw.Title,
			Author:    raw.Author,
			CreatedAt: raw.CreatedAt,
		})
	}
	return quizzes, cursor.Err()
}
