package services

import (
	"context"
	"testing"

	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterCreatesPersonalWorkspace(t *testing.T) {
	fx := newServiceFixture(t, 500)

	memberships, err := fx.sm.Workspaces.ListMemberships(context.Background(), fx.owner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, constants.RoleOwner, memberships[0].Role)
	require.NotNil(t, memberships[0].Workspace)
	assert.Equal(t, "ada's Workspace", memberships[0].Workspace.Name)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	fx := newServiceFixture(t, 500)

	_, err := fx.sm.Auth.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "another-pass"})
	require.Error(t, err)
	assert.Equal(t, 400, errors.GetHTTPStatus(err))
	assert.Equal(t, "Email already registered", err.Error())
}

func TestAuthService_RegisterRejectsBadInput(t *testing.T) {
	fx := newServiceFixture(t, 500)
	ctx := context.Background()

	_, err := fx.sm.Auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "long-enough"})
	assert.True(t, errors.IsValidation(err))

	_, err = fx.sm.Auth.Register(ctx, RegisterInput{Email: "carol@example.com", Password: "short"})
	assert.True(t, errors.IsValidation(err))
}

func TestAuthService_PersonalWorkspaceNameCollision(t *testing.T) {
	fx := newServiceFixture(t, 500)
	ctx := context.Background()

	// same local part, different domain
	user, err := fx.sm.Auth.Register(ctx, RegisterInput{Email: "ada@other.org", Password: "s3cret-pass"})
	require.NoError(t, err)

	memberships, err := fx.sm.Workspaces.ListMemberships(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.NotEqual(t, "ada's Workspace", memberships[0].Workspace.Name)
	assert.Contains(t, memberships[0].Workspace.Name, "ada's Workspace")
}

func TestAuthService_LoginAndMe(t *testing.T) {
	fx := newServiceFixture(t, 500)
	ctx := context.Background()

	tok, err := fx.sm.Auth.Login(ctx, LoginInput{Username: "ada@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	session, err := fx.sm.Auth.Authenticate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, fx.owner.ID, session.ID)

	me, err := fx.sm.Auth.Me(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestAuthService_LoginFailures(t *testing.T) {
	fx := newServiceFixture(t, 500)
	ctx := context.Background()

	_, err := fx.sm.Auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, "Incorrect username or password", err.Error())

	_, err = fx.sm.Auth.Login(ctx, LoginInput{Username: "nobody@example.com", Password: "s3cret-pass"})
	assert.True(t, errors.IsUnauthorized(err))

	_, err = fx.sm.Auth.Authenticate("garbage")
	assert.True(t, errors.IsUnauthorized(err))
}
