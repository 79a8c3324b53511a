package identity

import (
	"context"

	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService serves the back-office user screens
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, q UserListQuery) ([]UserResponse, int64, shared.Filter, error) {
	filter := identity.UserFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   q.Search,
		}.Normalize(),
	}
	if q.Role != "" {
		role := identity.Role(q.Role)
		filter.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, total, filter.Filter, nil
}

// ChangeRole assigns a new role. An administrator cannot demote themself.
func (s *UserService) ChangeRole(ctx context.Context, actorID uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if req.UserID == actorID && !role.IsBackOffice() {
		return nil, shared.NewDomainError("CANNOT_DEMOTE_SELF", "You cannot remove your own back-office access")
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(role); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", req.Role),
		zap.String("changed_by", actorID.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}
