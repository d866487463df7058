package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/cryptox"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	"github.com/dmitrijs2005/faceauth/internal/matcher"
	"github.com/dmitrijs2005/faceauth/internal/server/auth"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// LoginResult is returned by a successful face login.
type LoginResult struct {
	UserName    string
	Distance    float64
	AccessToken string
}

// AuthenticationService identifies users by their face descriptor:
//   - Authenticate: scan every enrolled user and pick the best match
//   - Login: Authenticate and mint an access token
//   - WhoAmI: resolve an access token back to its user
type AuthenticationService struct {
	repomanager                 repomanager.RepositoryManager
	sealer                      *cryptox.Sealer
	matcher                     *matcher.Matcher
	descriptorLength            int
	scanWorkers                 int
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

// NewAuthenticationService constructs an AuthenticationService.
func NewAuthenticationService(m repomanager.RepositoryManager, sealer *cryptox.Sealer, mt *matcher.Matcher, cfg *config.Config, logger logging.Logger) *AuthenticationService {
	workers := cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}
	return &AuthenticationService{
		repomanager:                 m,
		sealer:                      sealer,
		matcher:                     mt,
		descriptorLength:            cfg.DescriptorLength,
		scanWorkers:                 workers,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger,
	}
}

// Authenticate compares d with every enrolled descriptor. Records that fail
// to decrypt or decode are logged and skipped. No match is not an error: the
// result then has Matched == false.
func (s *AuthenticationService) Authenticate(ctx context.Context, d descriptor.Descriptor) (*models.MatchResult, error) {
	if err := descriptor.Validate(d, s.descriptorLength); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidDescriptor, err)
	}

	list, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	s.logger.Debug(ctx, "scanning enrolled users", "count", len(list))

	// each worker writes only its own slot
	scores := make([]float64, len(list))
	scored := make([]bool, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.scanWorkers)

	for i, u := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dist, ok := s.score(gctx, u, d)
			scores[i], scored[i] = dist, ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]matcher.Candidate, 0, len(list))
	for i := range list {
		if scored[i] {
			candidates = append(candidates, matcher.Candidate{Index: i, Distance: scores[i]})
		}
	}

	best := s.matcher.Select(candidates)
	if best < 0 {
		return &models.MatchResult{Matched: false}, nil
	}

	c := candidates[best]
	return &models.MatchResult{
		Matched:  true,
		UserName: list[c.Index].UserName,
		Distance: c.Distance,
	}, nil
}

// score returns the distance between probe and the user's stored descriptor.
// ok is false when the stored record is unusable.
func (s *AuthenticationService) score(ctx context.Context, u *models.User, probe descriptor.Descriptor) (float64, bool) {
	plaintext, err := s.sealer.DecryptString(u.Descriptor)
	if err != nil {
		s.logger.Warn(ctx, "skipping undecryptable descriptor", "username", u.UserName, "error", err)
		return 0, false
	}

	stored, err := descriptor.DecodeBytes(plaintext)
	common.WipeByteArray(plaintext)
	if err != nil {
		s.logger.Warn(ctx, "skipping malformed descriptor", "username", u.UserName, "error", err)
		return 0, false
	}

	dist, err := matcher.Distance(probe, stored)
	if err != nil {
		s.logger.Warn(ctx, "skipping descriptor of wrong length", "username", u.UserName, "error", err)
		return 0, false
	}

	s.logger.Debug(ctx, "candidate distance", "username", u.UserName, "distance", dist)
	return dist, true
}

// Login authenticates d and issues an access token for the matched user.
// It returns common.ErrorUnauthorized when nobody matched.
func (s *AuthenticationService) Login(ctx context.Context, d descriptor.Descriptor) (*LoginResult, error) {
	res, err := s.Authenticate(ctx, d)
	if err != nil {
		return nil, err
	}
	if !res.Matched {
		s.logger.Info(ctx, "face not recognized")
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(res.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "username", res.UserName, "distance", res.Distance)

	return &LoginResult{UserName: res.UserName, Distance: res.Distance, AccessToken: token}, nil
}

// WhoAmI verifies an access token and returns the username it was issued
// for, provided that user is still enrolled.
func (s *AuthenticationService) WhoAmI(ctx context.Context, token string) (string, error) {
	userName, err := auth.GetUserNameFromToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}

	if _, err := s.repomanager.Users().GetUserByLogin(ctx, userName); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	return userName, nil
}
