package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"travel-social-functions/internal/domain"
)

// MigrationService is the one-time operational tool that rewrites legacy
// points fields into the badge structure. It holds no lock: running it
// concurrently with itself or with normal writes is not supported.
type MigrationService struct {
	users  UserStore
	logger *slog.Logger
}

type MigrationError struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

type MigrationResult struct {
	Migrated int
	Skipped  int
	Errors   []MigrationError
}

func NewMigrationService(users UserStore, logger *slog.Logger) (*MigrationService, error) {
	if users == nil {
		return nil, errors.New("usecase: user store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationService{users: users, logger: logger}, nil
}

// MigratePoints walks every user record, backfills the badge structure from
// the deprecated points fields and removes them. Per-user failures are
// collected, never escalated; only admin callers may run it.
func (s *MigrationService) MigratePoints(ctx context.Context, callerID string) (MigrationResult, error) {
	if strings.TrimSpace(callerID) == "" {
		return MigrationResult{}, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	caller, found, err := s.users.Get(ctx, callerID)
	if err != nil {
		return MigrationResult{}, newError(ErrorInternal, "caller_read_error", err)
	}
	if !found || caller.Role != "admin" {
		return MigrationResult{}, newError(ErrorPermissionDenied, "admin_only", nil)
	}

	s.logger.Info("starting user points migration")

	users, err := s.users.All(ctx)
	if err != nil {
		return MigrationResult{}, newError(ErrorInternal, "user_scan_error", err)
	}

	var result MigrationResult
	for _, user := range users {
		if !user.HasLegacyPoints && !user.HasLegacyTotal {
			result.Skipped++
			continue
		}

		badge := migratedBadge(user)
		level := badge.Level
		if level == 0 {
			level = 1
		}
		if err := s.users.MigrateBadge(ctx, user.UserID, badge, level); err != nil {
			s.logger.Error("user migration failed", "userId", user.UserID, "err", err)
			result.Errors = append(result.Errors, MigrationError{UserID: user.UserID, Error: err.Error()})
			continue
		}
		result.Migrated++
		s.logger.Info("migrated user", "userId", user.UserID, "points", badge.CurrentPoints)
	}

	s.logger.Info("migration completed",
		"migrated", result.Migrated, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

// migratedBadge applies the backfill rules: prefer the newer total field
// over the old points field; a badge already carrying nonzero points is left
// untouched; a zeroed or missing badge is rebuilt from the migrated total.
func migratedBadge(user domain.User) domain.Badge {
	points := user.LegacyTotal
	if points == 0 {
		points = user.LegacyPoints
	}

	if user.Badge != nil {
		badge := *user.Badge
		if badge.CurrentPoints == 0 && points != 0 {
			badge.CurrentPoints = points
		}
		if badge.CurrentPoints != 0 {
			return badge
		}
	}
	return BadgeForPoints(points)
}
