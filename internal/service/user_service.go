package service

import (
	"context"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, credentials and profile images.
type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
	hashCost int
}

// RegisterInput is the payload of POST /users.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,password"`
}

// SetPasswordInput is the payload of POST /users/set_password.
type SetPasswordInput struct {
	NewPassword     string `json:"new_password" validate:"required,password"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

func NewUserService(userRepo repository.UserRepository, images *ImageService) *UserService {
	return &UserService{userRepo: userRepo, images: images, hashCost: bcrypt.DefaultCost}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := validation.Fields(&in)
	if fields == nil {
		fields = map[string]string{}
	}

	if _, bad := fields["email"]; !bad {
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["email"] = "A user with that email already exists"
		}
	}
	if _, bad := fields["username"]; !bad {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["username"] = "A user with that username already exists"
		}
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewValidationError("Unable to log in with provided credentials")
	if email == "" || password == "" {
		return nil, invalid
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

func (s *UserService) SetPassword(ctx context.Context, userID uint, in SetPasswordInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}

	current, err := s.userRepo.GetPasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(current), []byte(in.CurrentPassword)) != nil {
		return models.NewFieldValidationError(map[string]string{"current_password": "Wrong password"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) GetUser(ctx context.Context, id, viewerID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id, viewerID)
}

func (s *UserService) ListUsers(ctx context.Context, viewerID uint, limit, offset int) ([]models.User, int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := s.userRepo.List(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// SetAvatar stores dataURI as the user's avatar and returns its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	if dataURI == "" {
		return "", models.NewFieldValidationError(map[string]string{"avatar": "This field is required"})
	}
	user, err := s.userRepo.GetByID(ctx, userID, 0)
	if err != nil {
		return "", err
	}

	url, err := s.images.SaveDataURI(ctx, ImageKindAvatar, user.Username, dataURI)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		s.images.Delete(ctx, url)
		return "", err
	}
	s.images.Delete(ctx, user.Avatar)
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID, 0)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	s.images.Delete(ctx, user.Avatar)
	return nil
}
