package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizboard/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateCode is returned by Create when the room code is taken.
var ErrDuplicateCode = errors.New("room code already exists")

// RoomRepo is the durable store for rooms. Reads return (nil, nil) when the
// room does not exist.
type RoomRepo interface {
	Create(ctx context.Context, room *model.Room) error
	GetByCode(ctx context.Context, code string) (*model.Room, error)
	ApplyPatch(ctx context.Context, code string, patch model.RoomPatch) (*model.Room, error)
	AppendPlayer(ctx context.Context, code string, player model.Player, maxPlayers int) (*model.Room, error)
	EnsureIndexes(ctx context.Context, ttl time.Duration) error
}

type roomRepo struct {
	collection *mongo.Collection
}

func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("rooms"),
	}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Room not found
		}
		return nil, err
	}
	return &room, nil
}

// ApplyPatch shallow-merges the patch and returns the room as stored after
// the write.
func (r *roomRepo) ApplyPatch(ctx context.Context, code string, patch model.RoomPatch) (*model.Room, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.State != nil {
		set["state"] = patch.State
	}
	if patch.Players != nil {
		set["players"] = patch.Players
	}
	return r.findAndUpdate(ctx, bson.M{"code": code}, bson.M{"$set": set})
}

// AppendPlayer pushes the player only while the room has fewer than
// maxPlayers players. A full or missing room yields (nil, nil).
func (r *roomRepo) AppendPlayer(ctx context.Context, code string, player model.Player, maxPlayers int) (*model.Room, error) {
	if maxPlayers < 1 {
		return nil, nil
	}
	filter := bson.M{
		"code": code,
		fmt.Sprintf("players.%d", maxPlayers-1): bson.M{"$exists": false},
	}
	update := bson.M{
		"$push": bson.M{"players": player},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.findAndUpdate(ctx, filter, update)
}

func (r *roomRepo) findAndUpdate(ctx context.Context, filter, update bson.M) (*model.Room, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var room model.Room
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// EnsureIndexes creates the unique code index and expires rooms ttl after
// creation.
func (r *roomRepo) EnsureIndexes(ctx context.Context, ttl time.Duration) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		},
	})
	return err
}
