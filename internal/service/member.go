package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/queue/client"
	"github.com/RandilG/Construction-Management/internal/queue/task"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memberService struct {
	memberRepository  repository.Members
	projectRepository repository.Projects
	userRepository    repository.Users
}

func newMemberService(memberRepository repository.Members,
	projectRepository repository.Projects,
	userRepository repository.Users,
) *memberService {
	return &memberService{
		memberRepository:  memberRepository,
		projectRepository: projectRepository,
		userRepository:    userRepository,
	}
}

// Add attaches users to a project as plain members. Each id is processed
// independently so a bad id does not fail the whole batch.
func (s *memberService) Add(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userIDs []uuid.UUID) (*AddMembersResult, error) {
	actor, err := s.memberRepository.Get(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("get project member failed: %w", err)
	}
	if !actor.Role.CanAdminister() {
		return nil, ErrPermissionDenied
	}

	project, err := s.projectRepository.GetOneByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}

	result := &AddMembersResult{Total: len(userIDs)}

	for _, userID := range userIDs {
		user, err := s.userRepository.GetOneByID(ctx, userID)
		if err != nil {
			result.Errors++
			continue
		}

		member := &domain.ProjectMember{
			ProjectID: projectID,
			UserID:    userID,
			Role:      domain.RoleMember,
		}
		if err := s.memberRepository.Add(ctx, member); err != nil {
			if errors.Is(err, domain.ErrDuplicateEntry) {
				result.Duplicates++
			} else {
				result.Errors++
			}
			continue
		}

		result.Added++
		enqueueNotification(ctx, user.Email, project.Name, fmt.Sprintf("You have been added to project %q", project.Name))
	}

	return result, nil
}

// enqueueNotification queues a notification email; failures are logged,
// never surfaced.
func enqueueNotification(ctx context.Context, email, projectName, message string) {
	queueClient := client.GetClient(ctx)
	if queueClient == nil {
		return
	}

	t, err := task.NewProjectNotificationTask(email, projectName, message)
	if err != nil {
		logger.Error("build notification task failed", zap.Error(err))
		return
	}

	if _, err := queueClient.EnqueueContext(ctx, t); err != nil {
		logger.Error("enqueue notification task failed", zap.Error(err))
	}
}

func (s *memberService) List(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) ([]domain.ProjectMember, error) {
	if _, err := s.memberRepository.Get(ctx, projectID, actorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("get project member failed: %w", err)
	}

	return s.memberRepository.List(ctx, projectID)
}

// UpdateRole changes a member's role. Only the project owner may do so,
// and the owner row itself is immutable.
func (s *memberService) UpdateRole(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userID uuid.UUID, role domain.MemberRole) error {
	if !role.Assignable() {
		return ErrInvalidRole
	}

	actor, err := s.memberRepository.Get(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("get project member failed: %w", err)
	}
	if actor.Role != domain.RoleOwner {
		return ErrPermissionDenied
	}

	target, err := s.memberRepository.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("get project member failed: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return ErrPermissionDenied
	}
	if target.Role == role {
		return nil
	}

	if err := s.memberRepository.UpdateRole(ctx, projectID, userID, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("update project member role failed: %w", err)
	}

	return nil
}

func (s *memberService) Remove(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userID uuid.UUID) error {
	actor, err := s.memberRepository.Get(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("get project member failed: %w", err)
	}
	if !actor.Role.CanAdminister() {
		return ErrPermissionDenied
	}

	if err := s.memberRepository.Remove(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("remove project member failed: %w", err)
	}

	return nil
}
