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

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

const identityCollection = "users"

// IdentityRepository implements ports.IdentityRepository on MongoDB. Email
// uniqueness is enforced by a unique index created in EnsureIndexes.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FullName     string             `bson:"full_name"`
	IsActive     bool               `bson:"is_active"`
	Roles        []string           `bson:"roles"`
	CreatedAt    int64              `bson:"created_at"`
}

// publicProjection leaves the password hash out of id lookups.
var publicProjection = bson.M{"password_hash": 0}

// EnsureIndexes creates the unique email index.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	roles := make([]string, len(identity.Roles))
	for i, role := range identity.Roles {
		roles[i] = string(role)
	}

	doc := mongoIdentity{
		ID:           primitive.NewObjectID(),
		Email:        identity.Email,
		PasswordHash: identity.PasswordHash,
		FullName:     identity.FullName,
		IsActive:     identity.IsActive,
		Roles:        roles,
		CreatedAt:    identity.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A well-signed token can still carry an id we never issued.
		return nil, domain.ErrIdentityNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(publicProjection))
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne())
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Identity, error) {
	var doc mongoIdentity
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (d mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FullName:     d.FullName,
		IsActive:     d.IsActive,
		Roles:        domain.ParseRoles(d.Roles),
		CreatedAt:    unixToTime(d.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
