// Package mongodb реализует хранилище пользователей поверх коллекции MongoDB.
// Коллекция users индексируется по email с ограничением уникальности,
// поэтому гонка двух одновременных регистраций решается на стороне базы.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/fintrack/internal/models"
	"github.com/magabrotheeeer/fintrack/internal/storage"
)

const usersCollection = "users"

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// Storage хранит клиент MongoDB и коллекцию пользователей.
type Storage struct {
	Client *mongo.Client
	users  *mongo.Collection
}

// New подключается к MongoDB, проверяет соединение и создаёт уникальный индекс по email.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := client.Database(database).Collection(usersCollection)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: create index: %w", op, err)
	}

	return &Storage{Client: client, users: users}, nil
}

// Ping проверяет доступность сервера.
func (s *Storage) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, nil)
}

// Close отключает клиента.
func (s *Storage) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// CreateUser вставляет документ пользователя и возвращает его с назначенным ObjectID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.mongodb.CreateUser"

	doc := userDocument{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected id type %T", op, res.InsertedID)
	}
	doc.ID = id
	return doc.toModel(), nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.GetUserByEmail"

	u, err := s.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по hex-представлению ObjectID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongodb.GetUserByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	u, err := s.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Storage) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}
