package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/domain"
)

const workflowYAML = `
functionalities:
  - id: hr-onboarding
    name: HR onboarding
    department: HR
    workflow:
      nodes:
        - {id: start, type: start}
        - {id: intake, type: employee, label: Intake}
        - {id: done, type: end}
      edges:
        - {source: start, target: intake}
        - {source: intake, target: done}
`

func TestImportFunctionalities(t *testing.T) {
	store := openStore(t)
	svc := NewFunctionalityService(store.Functionalities, zap.NewNop())

	items, err := svc.Import(context.Background(), strings.NewReader(workflowYAML))
	require.NoError(t, err)
	require.Len(t, items, 1)

	got, err := svc.Get(context.Background(), "hr-onboarding")
	require.NoError(t, err)
	assert.Equal(t, "HR", got.Department)
	assert.Equal(t, domain.NodeTypeEmployee, got.Workflow.Nodes[1].Type)
}

func TestImportRejectsInvalidGraphWithoutWriting(t *testing.T) {
	store := openStore(t)
	svc := NewFunctionalityService(store.Functionalities, zap.NewNop())
	bad := workflowYAML + `
  - id: broken
    name: Broken
    workflow:
      nodes:
        - {id: start, type: start}
        - {id: a, type: employee}
        - {id: b, type: employee}
      edges:
        - {source: start, target: a}
        - {source: start, target: b}
`
	_, err := svc.Import(context.Background(), strings.NewReader(bad))
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestImportRejectsUnknownFields(t *testing.T) {
	_, err := DecodeFunctionalities(strings.NewReader("functionalities:\n  - id: x\n    colour: red\n"))
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
}

func TestAuditStoredFlagsLegacyGraphs(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Functionalities.Save(ctx, linearFunctionality()))
	require.NoError(t, store.Functionalities.Save(ctx, &domain.Functionality{ID: "legacy", Name: "Legacy"}))

	invalid, err := NewFunctionalityService(store.Functionalities, nil).AuditStored(ctx)
	require.NoError(t, err)
	assert.Len(t, invalid, 1)
	assert.Contains(t, invalid, "legacy")
}
