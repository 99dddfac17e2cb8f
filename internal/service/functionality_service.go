package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// FunctionalityService manages functionalities and their workflow graphs.
type FunctionalityService struct {
	functionalities repository.FunctionalityRepository
	logger          *zap.Logger
}

// NewFunctionalityService constructs the service.
func NewFunctionalityService(functionalities repository.FunctionalityRepository, logger *zap.Logger) *FunctionalityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FunctionalityService{functionalities: functionalities, logger: logger}
}

// Save validates the workflow graph and stores the functionality.
func (s *FunctionalityService) Save(ctx context.Context, f *domain.Functionality) error {
	if err := ValidateFunctionality(f); err != nil {
		return err
	}
	if err := s.functionalities.Save(ctx, f); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("functionality saved",
		zap.String("functionality_id", f.ID),
		zap.Int("nodes", len(f.Workflow.Nodes)))
	return nil
}

// Get fetches a functionality.
func (s *FunctionalityService) Get(ctx context.Context, id string) (*domain.Functionality, error) {
	f, err := s.functionalities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("functionality", id, err)
	}
	return f, nil
}

// List returns every functionality.
func (s *FunctionalityService) List(ctx context.Context) ([]domain.Functionality, error) {
	items, err := s.functionalities.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Import stores every functionality of a YAML definition file. Nothing is
// written unless all of them validate.
func (s *FunctionalityService) Import(ctx context.Context, r io.Reader) ([]domain.Functionality, error) {
	items, err := DecodeFunctionalities(r)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := ValidateFunctionality(&items[i]); err != nil {
			return nil, err
		}
	}
	for i := range items {
		if err := s.Save(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// AuditStored validates every stored workflow and returns the ids that fail.
func (s *FunctionalityService) AuditStored(ctx context.Context) (map[string]error, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	invalid := map[string]error{}
	for i := range items {
		if err := items[i].Workflow.Validate(); err != nil {
			invalid[items[i].ID] = err
		}
	}
	return invalid, nil
}

type functionalityFile struct {
	Functionalities []domain.Functionality `yaml:"functionalities"`
}

// DecodeFunctionalities parses a YAML workflow definition file.
func DecodeFunctionalities(r io.Reader) ([]domain.Functionality, error) {
	var file functionalityFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, apperrors.NewValidationError("workflow file is empty", nil)
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid workflow file: %v", err), nil)
	}
	return file.Functionalities, nil
}

// ValidateFunctionality checks identity fields and the workflow graph.
func ValidateFunctionality(f *domain.Functionality) error {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	if f.ID == "" || f.Name == "" {
		return apperrors.NewValidationError("functionality id and name are required", nil)
	}
	if err := f.Workflow.Validate(); err != nil {
		return apperrors.NewValidationError("invalid workflow", map[string]any{
			"functionality_id": f.ID,
			"reason":           err.Error(),
		})
	}
	return nil
}
