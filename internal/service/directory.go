package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// SearchFilter is an optional name filter for directory listings.
// The zero value means "no filter".
type SearchFilter struct {
	text string
	set  bool
}

// NewSearchFilter builds a filter from a query parameter. An absent or
// empty parameter yields the zero filter. The text is matched as given,
// without trimming.
func NewSearchFilter(text string, present bool) SearchFilter {
	if !present || text == "" {
		return SearchFilter{}
	}
	return SearchFilter{text: text, set: true}
}

// Active reports whether the filter restricts anything.
func (f SearchFilter) Active() bool {
	return f.set
}

// DirectoryService answers read-only questions about the user directory on
// behalf of an already-authenticated caller.
type DirectoryService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewDirectoryService creates a DirectoryService.
func NewDirectoryService(users repository.UserRepository, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{users: users, logger: logger}
}

// CurrentUser returns the public profile of the caller. The caller was
// resolved by the auth middleware; no lookup happens here.
func (s *DirectoryService) CurrentUser(caller *model.User) (model.Profile, error) {
	if caller == nil {
		return model.Profile{}, apperror.Unauthorized("User is not authorized")
	}
	return caller.Profile(), nil
}

// ListOthers returns every user except the caller, in directory order,
// keeping only names that contain the filter text when one is given.
//
// This is a scan-and-filter over the full table, not an indexed query.
// Matching uses Unicode case folding, so "ali" matches "Ali" and "Khalid".
func (s *DirectoryService) ListOthers(ctx context.Context, caller *model.User, filter SearchFilter) ([]model.User, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("User is not authorized")
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// cases.Caser keeps state and is not safe for concurrent use, so each
	// call gets its own.
	fold := cases.Fold()
	var needle string
	if filter.Active() {
		needle = fold.String(filter.text)
	}

	others := make([]model.User, 0, len(all))
	for _, u := range all {
		if u.ID == caller.ID {
			continue
		}
		if filter.Active() && !strings.Contains(fold.String(u.Name), needle) {
			continue
		}
		others = append(others, u)
	}

	s.logger.Debug("listed users",
		slog.String("callerID", caller.ID),
		slog.Int("total", len(all)),
		slog.Int("returned", len(others)),
	)

	return others, nil
}
