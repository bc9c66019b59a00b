package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
)

const (
	photoKeyPrefix      = "profile-photos"
	requiredMessage     = "Name, lastname, email, and phone are required"
	emailInUseMessage   = "Email already in use by another user"
	noPhotoMessage      = "No profile photo to remove"
	userNotFoundMessage = "Not authenticated"
)

// UpdateInput is the multipart profile form after parsing.
type UpdateInput struct {
	Name        string
	Lastname    string
	Email       string
	Phone       string
	Gender      *string
	Address     *string
	Country     *string
	State       *string
	City        *string
	Pincode     *string
	RemovePhoto bool
	Photo       *PhotoUpload
}

// Service exposes the signed-in customer's own profile.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*users.UserDTO, error)
	RemovePhoto(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the profile dependencies.
type ServiceParams struct {
	DB              txRunner
	Users           *users.Repository
	Photos          storage.ObjectStore
	Outbox          outbox.Emitter
	MaxPhotoBytes   int64
	DefaultPhotoURL string
	Logger          *logger.Logger
}

type service struct {
	db           txRunner
	users        *users.Repository
	photos       storage.ObjectStore
	outbox       outbox.Emitter
	maxBytes     int64
	defaultPhoto string
	validate     *validator.Validate
	logg         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Photos == nil {
		return nil, fmt.Errorf("photo store required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.MaxPhotoBytes <= 0 {
		return nil, fmt.Errorf("max photo size must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:           params.DB,
		users:        params.Users,
		photos:       params.Photos,
		outbox:       params.Outbox,
		maxBytes:     params.MaxPhotoBytes,
		defaultPhoto: params.DefaultPhotoURL,
		validate:     validator.New(),
		logg:         logg,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*users.UserDTO, error) {
	fields, err := s.fieldsFrom(input)
	if err != nil {
		return nil, err
	}

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fields.Email != current.Email {
		taken, err := s.users.EmailTakenByOther(ctx, fields.Email, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailInUseMessage)
		}
	}

	var photo *validatedPhoto
	if input.Photo != nil {
		photo, err = validatePhoto(*input.Photo, s.maxBytes)
		if err != nil {
			return nil, err
		}
	}

	fields.PhotoURL = current.PhotoURL
	if input.RemovePhoto {
		fields.PhotoURL = s.defaultPhoto
	}

	var uploadedKey string
	if photo != nil {
		uploadedKey, err = s.photoKey(userID, photo.ext)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "name photo")
		}
		url, err := s.photos.Put(ctx, uploadedKey, photo.contentType, photo.reader())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store photo")
		}
		fields.PhotoURL = url
	}

	updated, err := s.save(ctx, userID, fields, changedFields(current, fields))
	if err != nil {
		if uploadedKey != "" {
			s.discard(ctx, uploadedKey, "discard orphaned photo failed")
		}
		return nil, err
	}

	if updated.PhotoURL != current.PhotoURL {
		s.discardURL(ctx, current.PhotoURL)
	}
	return users.FromModel(updated), nil
}

func (s *service) RemovePhoto(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.PhotoURL == "" || current.PhotoURL == s.defaultPhoto {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, noPhotoMessage)
	}

	updated, err := s.users.SetPhoto(ctx, userID, s.defaultPhoto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset photo")
	}
	s.discardURL(ctx, current.PhotoURL)
	return users.FromModel(updated), nil
}

func (s *service) save(ctx context.Context, userID uuid.UUID, fields users.ProfileFields, changed []string) (*models.User, error) {
	var updated *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).UpdateProfile(ctx, userID, fields)
		if err != nil {
			return err
		}
		updated = user
		if len(changed) == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProfileUpdated,
			AggregateType: enums.AggregateUser,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: &userID},
			Data: payloads.ProfileUpdatedEvent{
				UserID:        userID,
				ChangedFields: changed,
				PhotoChanged:  containsField(changed, "photo"),
			},
		})
	})
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, users.ErrEmailTaken):
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailInUseMessage)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, userNotFoundMessage)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) fieldsFrom(input UpdateInput) (users.ProfileFields, error) {
	fields := users.ProfileFields{
		Name:     strings.TrimSpace(input.Name),
		Lastname: strings.TrimSpace(input.Lastname),
		Email:    users.NormalizeEmail(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Gender:   optional(input.Gender),
		Address:  optional(input.Address),
		Country:  optional(input.Country),
		State:    optional(input.State),
		City:     optional(input.City),
		Pincode:  optional(input.Pincode),
	}
	if fields.Name == "" || fields.Lastname == "" || fields.Email == "" || fields.Phone == "" {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, requiredMessage)
	}
	if err := s.validate.Var(fields.Email, "email"); err != nil {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	return fields, nil
}

func (s *service) photoKey(userID uuid.UUID, ext string) (string, error) {
	suffix, err := security.RandomToken(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s-%s%s", photoKeyPrefix, userID, suffix, ext), nil
}

// discardURL deletes a replaced photo. The default photo and foreign URLs are left alone.
func (s *service) discardURL(ctx context.Context, url string) {
	if url == "" || url == s.defaultPhoto {
		return
	}
	key, err := s.photos.KeyFor(url)
	if err != nil {
		return
	}
	s.discard(ctx, key, "delete replaced photo failed")
}

func (s *service) discard(ctx context.Context, key, msg string) {
	if err := s.photos.Delete(ctx, key); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "photo_key", key), msg, err)
	}
}

func changedFields(current *models.User, next users.ProfileFields) []string {
	var changed []string
	add := func(name string, differs bool) {
		if differs {
			changed = append(changed, name)
		}
	}
	add("name", current.Name != next.Name)
	add("lastname", current.Lastname != next.Lastname)
	add("email", current.Email != next.Email)
	add("phone", current.Phone != next.Phone)
	add("gender", !samePtr(current.Gender, next.Gender))
	add("address", !samePtr(current.Address, next.Address))
	add("country", !samePtr(current.Country, next.Country))
	add("state", !samePtr(current.State, next.State))
	add("city", !samePtr(current.City, next.City))
	add("pincode", !samePtr(current.Pincode, next.Pincode))
	add("photo", current.PhotoURL != next.PhotoURL)
	return changed
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func optional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
