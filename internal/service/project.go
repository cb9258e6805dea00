package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/repository"

	"github.com/google/uuid"
)

type projectService struct {
	projectRepository repository.Projects
	memberRepository  repository.Members
}

func newProjectService(projectRepository repository.Projects, memberRepository repository.Members) *projectService {
	return &projectService{
		projectRepository: projectRepository,
		memberRepository:  memberRepository,
	}
}

func (s *projectService) Create(ctx context.Context, input CreateProjectInput, ownerID uuid.UUID) (uuid.UUID, error) {
	projectID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate project id failed: %w", err)
	}

	project := &domain.Project{
		ID:               projectID,
		Name:             input.Name,
		Description:      input.Description,
		StartDate:        input.StartDate,
		EstimatedEndDate: input.EstimatedEndDate,
		ImageURL:         input.ImageURL,
	}

	if err := s.projectRepository.Create(ctx, project, ownerID); err != nil {
		return uuid.Nil, fmt.Errorf("create project failed: %w", err)
	}

	return projectID, nil
}

func (s *projectService) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	return s.projectRepository.GetAllForUser(ctx, userID)
}

func (s *projectService) GetOneByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Project, []domain.ProjectMember, error) {
	project, err := s.projectRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("get project by id failed: %w", err)
	}

	if _, err := s.memberRepository.Get(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrNotProjectMember
		}
		return nil, nil, fmt.Errorf("get project member failed: %w", err)
	}

	members, err := s.memberRepository.List(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list project members failed: %w", err)
	}

	return project, members, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	member, err := s.memberRepository.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("get project member failed: %w", err)
	}

	if member.Role != domain.RoleOwner {
		return ErrPermissionDenied
	}

	if err := s.projectRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("delete project failed: %w", err)
	}

	return nil
}
