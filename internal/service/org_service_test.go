package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupDeduplicatesMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	group, err := f.org.CreateGroup(ctx, f.manager, GroupCreateInput{
		Name:      "desk",
		LeadID:    f.ann.ID,
		MemberIDs: []string{f.bob.ID, f.ann.ID, f.bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob.ID}, group.MemberIDs)

	members, err := f.org.GroupMembers(ctx, group)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.True(t, members[0].IsLead)
	assert.Equal(t, f.ann.ID, members[0].UserID)
	assert.Equal(t, "bob", members[1].Name)
}

func TestCreateGroupChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.org.CreateGroup(ctx, f.ann, GroupCreateInput{Name: "x", LeadID: f.ann.ID})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	_, err = f.org.CreateGroup(ctx, f.manager, GroupCreateInput{Name: "x", LeadID: "ghost"})
	assert.Equal(t, "NOT_FOUND", errCode(err))

	f.cal.Active = false
	require.NoError(t, f.store.Employees.Update(ctx, f.cal))
	_, err = f.org.CreateGroup(ctx, f.manager, GroupCreateInput{Name: "x", LeadID: f.ann.ID, MemberIDs: []string{f.cal.ID}})
	assert.Equal(t, "CONFLICT", errCode(err))
}
