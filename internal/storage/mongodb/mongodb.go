package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

// refreshTokenTTLSeconds is the storage-level backstop: documents are
// removed 7 days after creation even if application-level cleanup fails.
const refreshTokenTTLSeconds = 7 * 24 * 60 * 60

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	users    *mongo.Collection
	tokens   *mongo.Collection
	avatars  *mongo.Collection
	counters *mongo.Collection
}

type userDoc struct {
	ID          int64          `bson:"_id"`
	Email       string         `bson:"email"`
	PassHash    string         `bson:"pass_hash"`
	Name        string         `bson:"name,omitempty"`
	Bio         string         `bson:"bio,omitempty"`
	Location    string         `bson:"location,omitempty"`
	PhoneNumber string         `bson:"phone_number,omitempty"`
	SocialLinks socialLinksDoc `bson:"social_links"`
	Preferences preferencesDoc `bson:"preferences"`
	CreatedAt   time.Time      `bson:"created_at"`
}

type socialLinksDoc struct {
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty"`
}

type preferencesDoc struct {
	Theme         string `bson:"theme,omitempty"`
	Notifications bool   `bson:"notifications,omitempty"`
}

type refreshTokenDoc struct {
	Token     string    `bson:"token"`
	UserID    int64     `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type avatarDoc struct {
	ID         string    `bson:"_id"`
	UserID     int64     `bson:"user_id"`
	Name       string    `bson:"name"`
	Weapon     string    `bson:"weapon"`
	Clothes    string    `bson:"clothes"`
	HairColor  string    `bson:"hair_color"`
	FacialHair bool      `bson:"facial_hair"`
	Gender     string    `bson:"gender"`
	Genre      string    `bson:"genre"`
	ImageURL   string    `bson:"image_url"`
	CreatedAt  time.Time `bson:"created_at"`
}

type counterDoc struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

// New creates a new MongoDB storage instance and sets up indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client:   client,
		database: db,
		users:    db.Collection("users"),
		tokens:   db.Collection("refresh_tokens"),
		avatars:  db.Collection("avatars"),
		counters: db.Collection("counters"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	// users.email unique
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users.email index: %w", err)
	}

	// refresh_tokens.token unique
	_, err = s.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("refresh_tokens.token index: %w", err)
	}

	// refresh_tokens.created_at TTL backstop
	_, err = s.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(refreshTokenTTLSeconds),
	})
	if err != nil {
		return fmt.Errorf("refresh_tokens.created_at TTL index: %w", err)
	}

	// avatars.user_id for per-user listing
	_, err = s.avatars.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("avatars.user_id index: %w", err)
	}

	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// nextID atomically increments and returns the next ID for a given collection.
func (s *Storage) nextID(ctx context.Context, collectionName string) (int64, error) {
	filter := bson.D{{Key: "_id", Value: collectionName}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "value", Value: int64(1)}}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter counterDoc
	err := s.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// SaveUser saves a new user and returns the generated user ID.
func (s *Storage) SaveUser(ctx context.Context, email string, passHash string) (int64, error) {
	const op = "storage.mongodb.SaveUser"

	id, err := s.nextID(ctx, "users")
	if err != nil {
		return 0, fmt.Errorf("%s: nextID: %w", op, err)
	}

	doc := userDoc{
		ID:        id,
		Email:     email,
		PassHash:  passHash,
		CreatedAt: time.Now(),
	}

	_, err = s.users.InsertOne(ctx, doc)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// User retrieves a user by email.
func (s *Storage) User(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.User"

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.toUser(ctx, &doc)
}

// UserByID retrieves a user by ID.
func (s *Storage) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.mongodb.UserByID"

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.toUser(ctx, &doc)
}

func (s *Storage) toUser(ctx context.Context, doc *userDoc) (*models.User, error) {
	avatarIDs, err := s.avatarIDs(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:          doc.ID,
		Email:       doc.Email,
		PassHash:    doc.PassHash,
		Name:        doc.Name,
		Bio:         doc.Bio,
		Location:    doc.Location,
		PhoneNumber: doc.PhoneNumber,
		SocialLinks: models.SocialLinks{
			Twitter:   doc.SocialLinks.Twitter,
			Facebook:  doc.SocialLinks.Facebook,
			Instagram: doc.SocialLinks.Instagram,
			LinkedIn:  doc.SocialLinks.LinkedIn,
		},
		Preferences: models.Preferences{
			Theme:         doc.Preferences.Theme,
			Notifications: doc.Preferences.Notifications,
		},
		AvatarIDs: avatarIDs,
	}, nil
}

func (s *Storage) avatarIDs(ctx context.Context, userID int64) ([]string, error) {
	cursor, err := s.avatars.Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// UpdateUser applies a partial profile update and returns the updated user.
func (s *Storage) UpdateUser(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.mongodb.UpdateUser"

	set := bson.D{}
	appendSet := func(key string, val *string) {
		if val != nil {
			set = append(set, bson.E{Key: key, Value: *val})
		}
	}
	appendSet("name", upd.Name)
	appendSet("bio", upd.Bio)
	appendSet("location", upd.Location)
	appendSet("phone_number", upd.PhoneNumber)
	if upd.SocialLinks != nil {
		appendSet("social_links.twitter", upd.SocialLinks.Twitter)
		appendSet("social_links.facebook", upd.SocialLinks.Facebook)
		appendSet("social_links.instagram", upd.SocialLinks.Instagram)
		appendSet("social_links.linkedin", upd.SocialLinks.LinkedIn)
	}
	if upd.Preferences != nil {
		appendSet("preferences.theme", upd.Preferences.Theme)
		if upd.Preferences.Notifications != nil {
			set = append(set, bson.E{Key: "preferences.notifications", Value: *upd.Preferences.Notifications})
		}
	}

	if len(set) == 0 {
		return s.UserByID(ctx, userID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.toUser(ctx, &doc)
}

// SaveRefreshToken stores a new refresh token record.
func (s *Storage) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	const op = "storage.mongodb.SaveRefreshToken"

	doc := refreshTokenDoc{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}

	_, err := s.tokens.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RefreshToken retrieves a refresh token record by its token value.
func (s *Storage) RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.mongodb.RefreshToken"

	var doc refreshTokenDoc
	err := s.tokens.FindOne(ctx, bson.D{{Key: "token", Value: token}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tokenFromDoc(&doc), nil
}

// DeleteRefreshToken removes a refresh token record and returns it.
func (s *Storage) DeleteRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.mongodb.DeleteRefreshToken"

	var doc refreshTokenDoc
	err := s.tokens.FindOneAndDelete(ctx, bson.D{{Key: "token", Value: token}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tokenFromDoc(&doc), nil
}

// DeleteExpiredTokens removes all records expired as of now and returns
// how many were deleted. Re-running with nothing expired is a no-op.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.mongodb.DeleteExpiredTokens"

	res, err := s.tokens.DeleteMany(ctx, bson.D{
		{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: now}}},
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.DeletedCount, nil
}

func tokenFromDoc(doc *refreshTokenDoc) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:    doc.UserID,
		Token:     doc.Token,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}
}

// SaveAvatar stores a new avatar record.
func (s *Storage) SaveAvatar(ctx context.Context, avatar *models.Avatar) error {
	const op = "storage.mongodb.SaveAvatar"

	_, err := s.avatars.InsertOne(ctx, avatarToDoc(avatar))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Avatar retrieves an avatar by ID.
func (s *Storage) Avatar(ctx context.Context, id string) (*models.Avatar, error) {
	const op = "storage.mongodb.Avatar"

	var doc avatarDoc
	err := s.avatars.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return avatarFromDoc(&doc), nil
}

// AvatarsByUser retrieves all avatars owned by a user.
func (s *Storage) AvatarsByUser(ctx context.Context, userID int64) ([]*models.Avatar, error) {
	const op = "storage.mongodb.AvatarsByUser"

	cursor, err := s.avatars.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []avatarDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	avatars := make([]*models.Avatar, 0, len(docs))
	for i := range docs {
		avatars = append(avatars, avatarFromDoc(&docs[i]))
	}
	return avatars, nil
}

// UpdateAvatar applies a partial update to an avatar owned by the given
// user and returns the updated record.
func (s *Storage) UpdateAvatar(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error) {
	const op = "storage.mongodb.UpdateAvatar"

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
	}

	set := bson.D{}
	appendSet := func(key string, val *string) {
		if val != nil {
			set = append(set, bson.E{Key: key, Value: *val})
		}
	}
	appendSet("name", upd.Name)
	appendSet("weapon", upd.Weapon)
	appendSet("clothes", upd.Clothes)
	appendSet("hair_color", upd.HairColor)
	appendSet("gender", upd.Gender)
	appendSet("genre", upd.Genre)
	appendSet("image_url", upd.ImageURL)
	if upd.FacialHair != nil {
		set = append(set, bson.E{Key: "facial_hair", Value: *upd.FacialHair})
	}

	var doc avatarDoc
	var err error
	if len(set) == 0 {
		err = s.avatars.FindOne(ctx, filter).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = s.avatars.FindOneAndUpdate(ctx, filter,
			bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return avatarFromDoc(&doc), nil
}

// DeleteAvatar removes an avatar owned by the given user.
func (s *Storage) DeleteAvatar(ctx context.Context, id string, userID int64) error {
	const op = "storage.mongodb.DeleteAvatar"

	res, err := s.avatars.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
	}

	return nil
}

func avatarToDoc(a *models.Avatar) avatarDoc {
	return avatarDoc{
		ID:         a.ID,
		UserID:     a.UserID,
		Name:       a.Name,
		Weapon:     a.Weapon,
		Clothes:    a.Clothes,
		HairColor:  a.HairColor,
		FacialHair: a.FacialHair,
		Gender:     a.Gender,
		Genre:      a.Genre,
		ImageURL:   a.ImageURL,
		CreatedAt:  a.CreatedAt,
	}
}

func avatarFromDoc(doc *avatarDoc) *models.Avatar {
	return &models.Avatar{
		ID:         doc.ID,
		UserID:     doc.UserID,
		Name:       doc.Name,
		Weapon:     doc.Weapon,
		Clothes:    doc.Clothes,
		HairColor:  doc.HairColor,
		FacialHair: doc.FacialHair,
		Gender:     doc.Gender,
		Genre:      doc.Genre,
		ImageURL:   doc.ImageURL,
		CreatedAt:  doc.CreatedAt,
	}
}

// isDuplicateKeyError checks if the error is a MongoDB duplicate key error (code 11000).
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
