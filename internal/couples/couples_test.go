package couples_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hugh/muse/internal/couples"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ActiveCoupleID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	resolver := couples.NewResolver(db)

	t.Run("no membership", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		_, err := resolver.ActiveCoupleID(ctx, user.ID)
		assert.ErrorIs(t, err, couples.ErrNoActiveCouple)
	})

	t.Run("invited membership does not count", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, db)
		couple := testutil.CreateTestCouple(t, db, owner)
		invitee := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, couple.ID, invitee.ID, models.MemberStatusInvited)

		_, err := resolver.ActiveCoupleID(ctx, invitee.ID)
		assert.ErrorIs(t, err, couples.ErrNoActiveCouple)
	})

	t.Run("oldest active membership wins", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestCouple(t, db, user)

		other := testutil.CreateTestUser(t, db)
		second := testutil.CreateTestCouple(t, db, other)
		m := testutil.AddTestMember(t, db, second.ID, user.ID, models.MemberStatusActive)
		require.NoError(t, db.Model(m).Update("created_at", time.Now().Add(time.Hour)).Error)

		id, err := resolver.ActiveCoupleID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, id)

		couple, err := resolver.ActiveCouple(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Name, couple.Name)
	})
}

func TestCreateWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	owner := testutil.CreateTestUser(t, db)

	couple, err := couples.CreateWorkspace(db, owner)
	require.NoError(t, err)
	assert.Equal(t, owner.FullName+" & Partner's Wedding", couple.Name)

	var member models.CoupleMember
	require.NoError(t, db.Where("couple_id = ? AND user_id = ?", couple.ID, owner.ID).First(&member).Error)
	assert.True(t, member.IsOwner)
	assert.Equal(t, models.MemberStatusActive, member.Status)

	t.Run("long owner name fits the name column", func(t *testing.T) {
		long := testutil.CreateTestUser(t, db)
		long.FullName = strings.Repeat("ن", 250)

		couple, err := couples.CreateWorkspace(db, long)
		require.NoError(t, err)
		assert.Equal(t, 255, utf8.RuneCountInString(couple.Name))
		assert.True(t, strings.HasPrefix(couple.Name, strings.Repeat("ن", 250)+" & P"))
	})
}

func TestEnsureInviteAndMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	owner := testutil.CreateTestUser(t, db)
	couple := testutil.CreateTestCouple(t, db, owner)
	partner := testutil.CreateTestUser(t, db)

	invite, created, err := couples.EnsureInvite(db, couple.ID, partner.Email)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.InviteStatusPending, invite.Status)

	again, created, err := couples.EnsureInvite(db, couple.ID, partner.Email)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, invite.ID, again.ID)

	member, err := couples.EnsureMember(db, couple.ID, partner.ID, models.MemberRoleGroom)
	require.NoError(t, err)
	assert.Equal(t, models.MemberStatusInvited, member.Status)
	assert.False(t, member.IsOwner)

	same, err := couples.EnsureMember(db, couple.ID, partner.ID, models.MemberRoleGroom)
	require.NoError(t, err)
	assert.Equal(t, member.ID, same.ID)

	t.Run("activation is idempotent", func(t *testing.T) {
		require.NoError(t, couples.ActivateInvitations(db, partner.ID, partner.Email))
		require.NoError(t, couples.ActivateInvitations(db, partner.ID, partner.Email))

		require.NoError(t, db.First(member, member.ID).Error)
		assert.Equal(t, models.MemberStatusActive, member.Status)
		require.NoError(t, db.First(invite, invite.ID).Error)
		assert.Equal(t, models.InviteStatusAccepted, invite.Status)
	})

	t.Run("left membership stays left", func(t *testing.T) {
		leaver := testutil.CreateTestUser(t, db)
		m := testutil.AddTestMember(t, db, couple.ID, leaver.ID, models.MemberStatusLeft)

		require.NoError(t, couples.ActivateInvitations(db, leaver.ID, leaver.Email))
		require.NoError(t, db.First(m, m.ID).Error)
		assert.Equal(t, models.MemberStatusLeft, m.Status)
	})
}
