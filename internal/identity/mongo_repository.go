package identity

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoRepository stores users as documents in the "users" collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository builds a Mongo-backed identity repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index that backs ErrEmailTaken.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "create users email index")
	}
	return nil
}

// Create inserts user; a duplicate email maps to ErrEmailTaken.
func (r *MongoRepository) Create(ctx context.Context, user User) error {
	user.CreatedAt = user.CreatedAt.UTC()
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return pkgerrors.Wrap(err, "insert user")
	}
	return nil
}

// FindByEmail fetches a user by normalized email.
func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID fetches a user by identifier.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (User, error) {
	var user User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, pkgerrors.Wrap(err, "find user")
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
