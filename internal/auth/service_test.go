package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*auth.Service, *gorm.DB, *testutil.RecordingNotifier) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	notifier := &testutil.RecordingNotifier{}
	return auth.NewService(db, testutil.CreateTestJWTService(), notifier, testutil.DiscardLogger()), db, notifier
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and workspace", func(t *testing.T) {
		svc, db, notifier := newService(t)

		result, err := svc.Signup(ctx, auth.SignupInput{
			Email:    "  Layla@Example.com ",
			Password: "password123",
			FullName: "Layla",
			Role:     models.UserRoleBride,
		})
		require.NoError(t, err)
		assert.Equal(t, "layla@example.com", result.User.Email)
		assert.NotEmpty(t, result.Tokens.Access)
		assert.NotEmpty(t, result.Tokens.Refresh)

		var couple models.Couple
		require.NoError(t, db.First(&couple).Error)
		assert.Equal(t, "Layla & Partner's Wedding", couple.Name)

		var member models.CoupleMember
		require.NoError(t, db.Where("user_id = ?", result.User.ID).First(&member).Error)
		assert.True(t, member.IsOwner)
		assert.Equal(t, models.MemberStatusActive, member.Status)
		assert.Equal(t, models.MemberRoleBride, member.Role)

		assert.Empty(t, notifier.Sent())
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.Signup(ctx, auth.SignupInput{Email: "dup@example.com", Password: "pw", FullName: "A"})
		require.NoError(t, err)
		_, err = svc.Signup(ctx, auth.SignupInput{Email: "DUP@example.com", Password: "pw", FullName: "B"})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})

	t.Run("provisions partner", func(t *testing.T) {
		svc, db, notifier := newService(t)

		result, err := svc.Signup(ctx, auth.SignupInput{
			Email:            "bride@example.com",
			Password:         "password123",
			FullName:         "Layla",
			Role:             models.UserRoleBride,
			PartnerEmail:     "Groom@Example.com",
			PartnerFirstName: "Omar",
			PartnerLastName:  "Said",
		})
		require.NoError(t, err)

		var partner models.User
		require.NoError(t, db.Where("email = ?", "groom@example.com").First(&partner).Error)
		assert.Equal(t, models.UserRoleGroom, partner.Role)
		assert.Equal(t, "Omar Said", partner.FullName)
		assert.True(t, partner.IsActive)

		var member models.CoupleMember
		require.NoError(t, db.Where("user_id = ?", partner.ID).First(&member).Error)
		assert.Equal(t, models.MemberStatusInvited, member.Status)
		assert.False(t, member.IsOwner)

		var invite models.CoupleInvite
		require.NoError(t, db.Where("email = ?", "groom@example.com").First(&invite).Error)
		assert.Equal(t, models.InviteStatusPending, invite.Status)
		assert.Equal(t, member.CoupleID, invite.CoupleID)

		sent := notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "groom@example.com", sent[0].Email)
		assert.Equal(t, "Layla", sent[0].InviterName)
		require.NotEmpty(t, sent[0].TemporaryPassword)
		assert.True(t, auth.CheckPassword(sent[0].TemporaryPassword, partner.PasswordHash))

		t.Run("partner login activates membership", func(t *testing.T) {
			_, err := svc.Login(ctx, auth.LoginInput{Email: "groom@example.com", Password: sent[0].TemporaryPassword})
			require.NoError(t, err)

			require.NoError(t, db.First(&member, member.ID).Error)
			assert.Equal(t, models.MemberStatusActive, member.Status)
			require.NoError(t, db.First(&invite, invite.ID).Error)
			assert.Equal(t, models.InviteStatusAccepted, invite.Status)
		})

		assert.NotZero(t, result.User.ID)
	})

	t.Run("existing partner keeps password", func(t *testing.T) {
		svc, db, notifier := newService(t)
		existing := testutil.CreateTestUser(t, db)

		_, err := svc.Signup(ctx, auth.SignupInput{
			Email:        "new@example.com",
			Password:     "password123",
			FullName:     "New",
			Role:         models.UserRoleGroom,
			PartnerEmail: existing.Email,
		})
		require.NoError(t, err)

		sent := notifier.Sent()
		require.Len(t, sent, 1)
		assert.Empty(t, sent[0].TemporaryPassword)

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, existing.ID).Error)
		assert.Equal(t, existing.PasswordHash, reloaded.PasswordHash)
	})

	t.Run("notifier failure does not fail signup", func(t *testing.T) {
		svc, _, notifier := newService(t)
		notifier.Err = assert.AnError

		_, err := svc.Signup(ctx, auth.SignupInput{
			Email:        "a@example.com",
			Password:     "pw",
			FullName:     "A",
			PartnerEmail: "b@example.com",
		})
		assert.NoError(t, err)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	user := testutil.CreateTestUser(t, db)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: " " + user.Email + " ", Password: testutil.TestPassword})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "ghost@example.com", Password: "x"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{Email: inactive.Email, Password: testutil.TestPassword})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	user := testutil.CreateTestUser(t, db)

	login, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
	require.NoError(t, err)

	t.Run("issues new pair", func(t *testing.T) {
		result, err := svc.Refresh(ctx, login.Tokens.Refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.Access)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, login.Tokens.Access)
		assert.ErrorIs(t, err, auth.ErrWrongTokenType)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	jwtService := testutil.CreateTestJWTService()
	user := testutil.CreateTestUser(t, db)

	oldPair, err := jwtService.GeneratePair(user.ID, user.Email, user.PasswordHash)
	require.NoError(t, err)

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, "", "new")
		assert.ErrorIs(t, err, auth.ErrPasswordsRequired)
	})

	t.Run("wrong current password", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, "wrong", "newpassword")
		assert.ErrorIs(t, err, auth.ErrInvalidCurrentPassword)
	})

	t.Run("new password too long for bcrypt", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, testutil.TestPassword, strings.Repeat("a", 100))
		assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
	})

	t.Run("changes password and retires old tokens", func(t *testing.T) {
		pair, err := svc.ChangePassword(ctx, user.ID, testutil.TestPassword, "newpassword")
		require.NoError(t, err)

		_, err = svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "newpassword"})
		assert.NoError(t, err)

		oldClaims, err := jwtService.ValidateAccess(oldPair.Access)
		require.NoError(t, err)
		_, err = svc.ValidateSession(ctx, oldClaims)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		_, err = svc.Refresh(ctx, oldPair.Refresh)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		newClaims, err := jwtService.ValidateAccess(pair.Access)
		require.NoError(t, err)
		_, err = svc.ValidateSession(ctx, newClaims)
		assert.NoError(t, err)
	})
}
