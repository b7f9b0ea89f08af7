package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/repository"
	"github.com/twinzy/goals/internal/validation"
)

type UserService struct {
	storage repository.Storage
}

func NewUserService(storage repository.Storage) *UserService {
	return &UserService{storage: storage}
}

// Provision returns the user for payload's uid, creating it on first sight.
// created reports whether a new record was written.
func (s *UserService) Provision(ctx context.Context, payload map[string]any) (user *model.User, created bool, err error) {
	newUser, err := validation.User(payload)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.storage.UserByUID(ctx, newUser.UID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = s.storage.CreateUser(ctx, newUser)
	if errors.Is(err, repository.ErrDuplicateUser) {
		// Lost a race with a concurrent provisioning call for the same uid.
		existing, lookupErr := s.storage.UserByUID(ctx, newUser.UID)
		if lookupErr == nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	slog.Info("user provisioned", "uid", user.UID, "user_id", user.ID)
	return user, true, nil
}

func (s *UserService) ByUID(ctx context.Context, uid string) (*model.User, error) {
	return s.storage.UserByUID(ctx, uid)
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.storage.User(ctx, id)
}
