package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fintrack/internal/avatar"
	"fintrack/internal/cache"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// ProfileService manages the one-to-one user extension.
type ProfileService interface {
	// OnUserCreated provisions the profile for a freshly created user. It is
	// an internal consistency rule invoked from the registration and OAuth
	// provisioning paths, never an HTTP route, and is idempotent per user.
	OnUserCreated(ctx context.Context, user *model.User) error
	Get(ctx context.Context, userID uint) (*model.Profile, error)
	// Save persists bio and avatar path, then normalizes a newly stored
	// avatar in place. A failed normalize does not roll back the persisted
	// row; it surfaces as ErrImageProcessing alongside the saved profile.
	Save(ctx context.Context, userID uint, bio, avatarFile string) (*model.Profile, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	cache     *cache.Client
	uploadDir string
	log       *zap.Logger
}

// NewProfileService creates a new profile service. uploadDir is where avatar
// files are stored on disk.
func NewProfileService(repo repository.ProfileRepository, cache *cache.Client, uploadDir string, log *zap.Logger) ProfileService {
	return &profileService{repo: repo, cache: cache, uploadDir: uploadDir, log: log}
}

func (s *profileService) cacheKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

func (s *profileService) OnUserCreated(ctx context.Context, user *model.User) error {
	if _, err := s.repo.FindByUserID(ctx, user.ID); err == nil {
		return nil
	}

	profile := &model.Profile{
		UserID: user.ID,
		Bio:    "",
		Avatar: model.DefaultAvatar,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		// A concurrent creation trips the unique index on user_id; the
		// profile existing is the outcome we wanted.
		if _, findErr := s.repo.FindByUserID(ctx, user.ID); findErr == nil {
			return nil
		}
		return fmt.Errorf("create profile: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return nil
}

func (s *profileService) Get(ctx context.Context, userID uint) (*model.Profile, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(userID)); data != nil {
		var cached model.Profile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, profileCacheTTL)
	}
	return profile, nil
}

func (s *profileService) Save(ctx context.Context, userID uint, bio, avatarFile string) (*model.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}

	profile.Bio = bio
	if avatarFile != "" {
		profile.Avatar = avatarFile
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))

	// The thumbnail step runs against the already persisted file; its failure
	// must not undo the write above.
	if avatarFile != "" {
		if err := avatar.Normalize(filepath.Join(s.uploadDir, avatarFile)); err != nil {
			s.log.Warn("avatar normalize failed",
				zap.Uint("user_id", userID),
				zap.String("file", avatarFile),
				zap.Error(err))
			return profile, fmt.Errorf("%w: %v", apperrors.ErrImageProcessing, err)
		}
	}

	return profile, nil
}
