package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

const (
	collectionUsers    = "users"
	collectionCounters = "counters"

	userSequence = "users"
)

// UserRepository implements ports.UserRepository on MongoDB. Ids are numeric
// and drawn from a per-collection sequence in the counters collection.
type UserRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		col:      db.Collection(collectionUsers),
		counters: db.Collection(collectionCounters),
	}
}

type mongoUser struct {
	ID          int64   `bson:"_id"`
	Email       string  `bson:"email"`
	Password    *string `bson:"password,omitempty"`
	Name        string  `bson:"name"`
	AvatarURL   *string `bson:"avatar_url,omitempty"`
	PhoneNumber *string `bson:"phone_number,omitempty"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoUser{
		ID:          id,
		Email:       user.Email,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt.UnixMilli(),
		UpdatedAt:   user.UpdatedAt.UnixMilli(),
	}
	if user.PasswordHash != "" {
		hash := user.PasswordHash
		doc.Password = &hash
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return toDomain(doc), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Update applies patch with a single FindOneAndUpdate and returns the
// resulting document. Empty avatar or phone values unset the field.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		updateDocument(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return toDomain(mu), nil
}

func updateDocument(patch domain.UserPatch) bson.M {
	set := bson.M{"updated_at": patch.UpdatedAt.UnixMilli()}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.PasswordHash != nil {
		set["password"] = *patch.PasswordHash
	}
	setOrUnset(set, unset, "avatar_url", patch.AvatarURL)
	setOrUnset(set, unset, "phone_number", patch.PhoneNumber)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func setOrUnset(set, unset bson.M, field string, value *string) {
	switch {
	case value == nil:
	case *value == "":
		unset[field] = ""
	default:
		set[field] = *value
	}
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return toDomain(mu), nil
}

// nextID atomically increments and returns the users sequence.
func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	return counter.Seq, nil
}

func toDomain(mu mongoUser) *domain.User {
	u := &domain.User{
		ID:          mu.ID,
		Email:       mu.Email,
		Name:        mu.Name,
		AvatarURL:   mu.AvatarURL,
		PhoneNumber: mu.PhoneNumber,
		CreatedAt:   millisToTime(mu.CreatedAt),
		UpdatedAt:   millisToTime(mu.UpdatedAt),
	}
	if mu.Password != nil {
		u.PasswordHash = *mu.Password
	}
	return u
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
