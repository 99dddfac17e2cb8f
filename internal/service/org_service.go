package service

import (
	"context"
	"strings"

	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// OrgService manages employees and the groups tickets can be assigned to.
type OrgService struct {
	employees repository.EmployeeRepository
	groups    repository.GroupRepository
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	GroupRepo    repository.GroupRepository
}

// GroupCreateInput describes a new group.
type GroupCreateInput struct {
	Name      string
	LeadID    string
	MemberIDs []string
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	return &OrgService{employees: deps.EmployeeRepo, groups: deps.GroupRepo}
}

// GetEmployee fetches an employee profile.
func (s *OrgService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("employee", id, err)
	}
	return employee, nil
}

// ListEmployees lists employees.
func (s *OrgService) ListEmployees(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// CreateGroup validates that every member is an active employee and stores the group.
func (s *OrgService) CreateGroup(ctx context.Context, actor *domain.Employee, input GroupCreateInput) (*domain.Group, error) {
	if !isPrivileged(actor) {
		return nil, apperrors.NewForbidden("manager role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.LeadID == "" {
		return nil, apperrors.NewValidationError("name and lead_id are required", nil)
	}

	members := make([]string, 0, len(input.MemberIDs))
	seen := map[string]struct{}{input.LeadID: {}}
	for _, id := range input.MemberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	for id := range seen {
		employee, err := s.employees.GetByID(ctx, id)
		if err != nil {
			return nil, lookupErr("employee", id, err)
		}
		if !employee.Active {
			return nil, apperrors.NewConflict("employee inactive", map[string]any{"employee_id": id})
		}
	}

	group := &domain.Group{Name: name, LeadID: input.LeadID, MemberIDs: members}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// GetGroup fetches a group.
func (s *OrgService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("group", id, err)
	}
	return group, nil
}

// ListGroups lists all groups.
func (s *OrgService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return groups, nil
}

// GroupMembers resolves a group into ledger members, lead first.
func (s *OrgService) GroupMembers(ctx context.Context, group *domain.Group) ([]credit.GroupMember, error) {
	ids := append([]string{group.LeadID}, group.MemberIDs...)
	members := make([]credit.GroupMember, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		employee, err := s.employees.GetByID(ctx, id)
		if err != nil {
			return nil, lookupErr("employee", id, err)
		}
		members = append(members, credit.GroupMember{
			UserID: employee.ID,
			Name:   employee.Name,
			IsLead: employee.ID == group.LeadID,
		})
	}
	return members, nil
}

// activeEmployee loads an employee that can take work.
func (s *OrgService) activeEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !employee.Active {
		return nil, apperrors.NewConflict("employee inactive", map[string]any{"employee_id": id})
	}
	return employee, nil
}
