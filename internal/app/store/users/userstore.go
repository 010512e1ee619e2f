package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/tilestock/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for all stored password hashes.
const BcryptCost = 12

var (
	// ErrDuplicateUsername is returned when attempting to create a user with a username that already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New(`role must be "admin"|"staff"`)
	errShortUsername     = errors.New("username must be at least 3 characters")
	errShortPassword     = errors.New("password must be at least 6 characters")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by username. Usernames are matched exactly
// after trimming. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": strings.TrimSpace(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users sorted by username.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create validates fields, hashes the plaintext password with bcrypt and
// inserts the user. The created user is returned with ID and timestamps set.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if len(u.Username) < 3 {
		return models.User{}, errShortUsername
	}
	if len(password) < 6 {
		return models.User{}, errShortPassword
	}
	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	u.ID = primitive.NewObjectID()
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the fields an admin can change on an existing user. A nil
// Password leaves the stored hash untouched.
type Update struct {
	Email    string
	Role     string
	Password *string
}

// Update applies an admin edit to a user.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if !models.ValidRole(upd.Role) {
		return errBadRole
	}

	set := bson.M{
		"email":      strings.ToLower(strings.TrimSpace(upd.Email)),
		"role":       upd.Role,
		"updated_at": time.Now(),
	}
	if upd.Password != nil {
		if len(*upd.Password) < 6 {
			return errShortPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), BcryptCost)
		if err != nil {
			return err
		}
		set["password_hash"] = string(hash)
		set["must_reset_password"] = false
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// SetActive flips the is_active flag on a user.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now(),
	}})
	return err
}

// SetPassword replaces a user's password hash and clears the reset flag.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	if len(password) < 6 {
		return errShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash":       string(hash),
		"must_reset_password": false,
		"updated_at":          time.Now(),
	}})
	return err
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CheckPassword compares a plaintext password against the stored hash.
func CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// EnsureDefaultAdmin seeds the initial admin account when the collection is
// empty, so a fresh deployment has a way in. Existing deployments are left
// untouched.
func (s *Store) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, models.User{
		Username: username,
		Email:    username + "@local",
		Role:     models.RoleAdmin,
		IsActive: true,
	}, password)
	if err != nil {
		return false, err
	}
	return true, nil
}
