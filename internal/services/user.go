package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=user.go -destination=mock_user.go -package=services

// UserReader defines read-only operations for active users.
type UserReader interface {
	GetByID(ctx context.Context, userID int64) (*models.UserDB, error)
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	List(ctx context.Context) ([]*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.UserDB) (*models.UserDB, error)
	Update(ctx context.Context, userID int64, user *models.UserDB) (*models.UserDB, error)
	SoftDelete(ctx context.Context, userID int64) error
}

// PasswordHasher hashes passwords on write and verifies them on login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// LoginAttemptCache counts failed logins per username.
type LoginAttemptCache interface {
	Get(ctx context.Context, username string) (int64, error)
	Increment(ctx context.Context, username string) (int64, error)
	Reset(ctx context.Context, username string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// CommitHook defers fn until the caller's unit of work is durable.
type CommitHook func(ctx context.Context, fn func())

// Option configures optional UserService collaborators.
type Option func(*UserService)

// WithLoginAttempts enables login throttling: after maxAttempts failures a username is locked
// until its counter expires. maxAttempts <= 0 disables throttling.
func WithLoginAttempts(cache LoginAttemptCache, maxAttempts int64) Option {
	return func(s *UserService) {
		if maxAttempts > 0 {
			s.attempts = cache
			s.maxAttempts = maxAttempts
		}
	}
}

// WithKafkaWriter enables publishing of user lifecycle events.
func WithKafkaWriter(w KafkaWriter) Option {
	return func(s *UserService) {
		s.kafkaWriter = w
	}
}

// WithCommitHook delays event publishing through hook, typically until the request transaction commits.
func WithCommitHook(hook CommitHook) Option {
	return func(s *UserService) {
		if hook != nil {
			s.afterCommit = hook
		}
	}
}

// UserService handles registration, authentication and user CRUD.
type UserService struct {
	reader      UserReader
	writer      UserWriter
	hasher      PasswordHasher
	attempts    LoginAttemptCache
	maxAttempts int64
	kafkaWriter KafkaWriter
	afterCommit CommitHook
	validate    *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserReader, writer UserWriter, hasher PasswordHasher, opts ...Option) *UserService {
	svc := &UserService{
		reader:      reader,
		writer:      writer,
		hasher:      hasher,
		afterCommit: func(_ context.Context, fn func()) { fn() },
		validate:    newValidator(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register validates and stores a new user.
func (svc *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserDB, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := svc.validateStruct(req); err != nil {
		logger.Log.Warnw("invalid registration", "username", req.Username, "error", err)
		return nil, err
	}

	hashedPassword, err := svc.hasher.Hash(req.Password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Create(ctx, &models.UserDB{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, models.ErrUserAlreadyExists) {
			logger.Log.Warnw("user already exists", "username", req.Username, "email", req.Email)
		} else {
			logger.Log.Errorw("failed to save user", "err", err)
		}
		return nil, err
	}

	svc.publishEvent(ctx, models.UserRegistered, user.UserID, user.Username)
	return user, nil
}

// Authenticate reports whether password is correct for the active user named username.
// An unknown username is reported as a plain mismatch.
func (svc *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}

	if svc.isLocked(ctx, username) {
		logger.Log.Warnw("login locked", "username", username)
		return false, models.ErrTooManyLoginAttempts
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		logger.Log.Errorw("failed to get user", "err", err)
		return false, err
	}

	if user == nil {
		// Spend the same bcrypt work as for a real user.
		svc.hasher.Verify(password, svc.fallbackHash())
		logger.Log.Infow("login for unknown user", "username", username)
		svc.recordFailure(ctx, username)
		return false, nil
	}

	if !svc.hasher.Verify(password, user.PasswordHash) {
		logger.Log.Infow("invalid credentials", "username", username)
		svc.recordFailure(ctx, username)
		return false, nil
	}

	svc.resetFailures(ctx, username)
	return true, nil
}

// List returns all active users in creation order.
func (svc *UserService) List(ctx context.Context) ([]*models.UserDB, error) {
	users, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// GetByID returns an active user.
func (svc *UserService) GetByID(ctx context.Context, userID int64) (*models.UserDB, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return svc.reader.GetByID(ctx, userID)
}

// Update replaces the profile of an active user. An empty password keeps the current one.
func (svc *UserService) Update(ctx context.Context, userID int64, req models.UpdateUserRequest) (*models.UserDB, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := svc.validateStruct(req); err != nil {
		logger.Log.Warnw("invalid update", "userID", userID, "error", err)
		return nil, err
	}

	changes := &models.UserDB{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
	}
	if req.Password != "" {
		hashedPassword, err := svc.hasher.Hash(req.Password)
		if err != nil {
			logger.Log.Errorw("failed to hash password", "err", err)
			return nil, err
		}
		changes.PasswordHash = hashedPassword
	}

	user, err := svc.writer.Update(ctx, userID, changes)
	if err != nil {
		logger.Log.Warnw("failed to update user", "userID", userID, "error", err)
		return nil, err
	}

	svc.publishEvent(ctx, models.UserUpdated, user.UserID, user.Username)
	return user, nil
}

// SoftDelete marks an active user as deleted.
func (svc *UserService) SoftDelete(ctx context.Context, userID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	if err := svc.writer.SoftDelete(ctx, userID); err != nil {
		logger.Log.Warnw("failed to delete user", "userID", userID, "error", err)
		return err
	}

	svc.publishEvent(ctx, models.UserDeleted, userID, "")
	return nil
}

func (svc *UserService) isLocked(ctx context.Context, username string) bool {
	if svc.attempts == nil {
		return false
	}
	count, err := svc.attempts.Get(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to read login attempts, not throttling", "username", username, "error", err)
		return false
	}
	return count >= svc.maxAttempts
}

func (svc *UserService) recordFailure(ctx context.Context, username string) {
	if svc.attempts == nil {
		return
	}
	if _, err := svc.attempts.Increment(ctx, username); err != nil {
		logger.Log.Errorw("failed to record login attempt", "username", username, "error", err)
	}
}

func (svc *UserService) resetFailures(ctx context.Context, username string) {
	if svc.attempts == nil {
		return
	}
	if err := svc.attempts.Reset(ctx, username); err != nil {
		logger.Log.Errorw("failed to reset login attempts", "username", username, "error", err)
	}
}

func (svc *UserService) fallbackHash() string {
	svc.dummyOnce.Do(func() {
		hash, err := svc.hasher.Hash(uuid.NewString())
		if err != nil {
			logger.Log.Errorw("failed to prepare fallback hash", "error", err)
		}
		svc.dummyHash = hash
	})
	return svc.dummyHash
}

// publishEvent publishes a lifecycle event to Kafka once the write is committed. Failures are logged only.
func (svc *UserService) publishEvent(ctx context.Context, eventType string, userID int64, username string) {
	if svc.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType, "user_id", userID)
		return
	}

	event := models.UserEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal user event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(userID, 10)),
		Value: data,
	}

	svc.afterCommit(ctx, func() {
		if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
			logger.Log.Errorw("Failed to publish user event to Kafka", "event_id", event.EventID, "type", eventType, "error", err)
		} else {
			logger.Log.Infow("User event published to Kafka", "event_id", event.EventID, "type", eventType, "user_id", userID)
		}
	})
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be positive", models.ErrValidation)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// PostgreSQL text columns cannot store NUL.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return v
}

// validateStruct runs the struct tags and folds all failures into one ErrValidation.
func (svc *UserService) validateStruct(v any) error {
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "nonul":
			msgs = append(msgs, fe.Field()+" must not contain NUL characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
}
