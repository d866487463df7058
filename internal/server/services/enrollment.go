// Package services contains server-side business logic. This file implements
// EnrollmentService, which registers a username together with the face
// descriptor that will later identify it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/cryptox"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MaxUserNameLength bounds usernames in runes.
const MaxUserNameLength = 64

// EnrollmentService validates and stores new users.
type EnrollmentService struct {
	repomanager      repomanager.RepositoryManager
	sealer           *cryptox.Sealer
	descriptorLength int
	logger           logging.Logger
}

// NewEnrollmentService constructs an EnrollmentService from the shared
// repository manager, the process-wide sealer and server config.
func NewEnrollmentService(m repomanager.RepositoryManager, sealer *cryptox.Sealer, cfg *config.Config, logger logging.Logger) *EnrollmentService {
	return &EnrollmentService{
		repomanager:      m,
		sealer:           sealer,
		descriptorLength: cfg.DescriptorLength,
		logger:           logger,
	}
}

// Register enrolls username with descriptor d. The username is trimmed of
// surrounding whitespace. Validation failures wrap common.ErrorValidation; a
// taken username yields common.ErrorUsernameTaken.
func (s *EnrollmentService) Register(ctx context.Context, username string, d descriptor.Descriptor) (*models.User, error) {
	name, err := NormalizeUserName(username)
	if err != nil {
		return nil, err
	}

	if err := descriptor.Validate(d, s.descriptorLength); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidDescriptor, err)
	}

	repo := s.repomanager.Users()

	_, err = repo.GetUserByLogin(ctx, name)
	switch {
	case err == nil:
		return nil, common.ErrorUsernameTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	encoded, err := descriptor.Encode(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidDescriptor, err)
	}

	sealed, err := s.sealer.EncryptString(encoded)
	if err != nil {
		return nil, fmt.Errorf("error encrypting descriptor: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		ID:         uuid.NewString(),
		UserName:   name,
		Descriptor: sealed,
	})
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return nil, common.ErrorUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", user.UserName, "id", user.ID)

	return user, nil
}

// NormalizeUserName trims username and checks that something printable is
// left.
func NormalizeUserName(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", fmt.Errorf("%w: username is empty", common.ErrorInvalidUsername)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: username is not valid UTF-8", common.ErrorInvalidUsername)
	}
	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return "", fmt.Errorf("%w: username is longer than %d characters", common.ErrorInvalidUsername, MaxUserNameLength)
	}
	return name, nil
}

// ParseDescriptor decodes descriptor text received from a client. Any
// decoding failure wraps common.ErrorInvalidDescriptor.
func ParseDescriptor(text string) (descriptor.Descriptor, error) {
	d, err := descriptor.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidDescriptor, err)
	}
	return d, nil
}
