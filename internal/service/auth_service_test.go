package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coins-wallet/internal/core/domain"
	"coins-wallet/internal/core/ports"
	"coins-wallet/internal/core/ports/mocks"
	"coins-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc        *AuthServiceImpl
	userRepo   *mocks.MockUserRepository
	accountSvc *mocks.MockAccountService
	hashSvc    *mocks.MockHashService
	tokenSvc   *mocks.MockTokenService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		accountSvc: mocks.NewMockAccountService(ctrl),
		hashSvc:    mocks.NewMockHashService(ctrl),
		tokenSvc:   mocks.NewMockTokenService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.accountSvc, d.hashSvc, d.tokenSvc, d.transactor, newTestLogger())
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	req := ports.RegisterRequest{Username: "alice", Password: "StrongP@ss123"}
	walletID := uuid.New()

	// Expect: check username uniqueness
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	// Expect: hash password
	d.hashSvc.EXPECT().Hash(req.Password).Return("$argon2id$hashed", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Expect: create user with the hash, never the password
	var created *domain.User
	d.userRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, u *domain.User) error {
			created = u
			return nil
		},
	)
	// Expect: wallet provisioned inside the same transaction
	d.accountSvc.EXPECT().CreateWalletFor(ctx, tx, gomock.Any()).Return(&domain.Wallet{ID: walletID}, nil)

	resp, err := d.svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "$argon2id$hashed", created.PasswordHash)
	assert.Equal(t, created.ID, resp.UserID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, walletID, resp.WalletID)
	assert.True(t, tx.committed)
}

func TestAuthService_Register_UsernameExists(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{Username: "alice"}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "x"})
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Register_ConcurrentDuplicateAtCommit(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{commitErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("h", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.userRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.accountSvc.EXPECT().CreateWalletFor(ctx, tx, gomock.Any()).Return(&domain.Wallet{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "x"})
	assertAppError(t, err, "AUTH_002")
	assert.True(t, tx.rolledBack)
}

func TestAuthService_Register_DuplicateOnInsert(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("h", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.userRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(
		errors.Join(errors.New("insert user"), &pgconn.PgError{Code: "23505"}),
	)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "x"})
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Register_WalletProvisioningFails(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("h", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.userRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.accountSvc.EXPECT().CreateWalletFor(ctx, tx, gomock.Any()).Return(nil, apperror.ErrDatabaseError(errors.New("boom")))

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "x"})
	assertAppError(t, err, "SYS_001")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestAuthService_Register_HashFails(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("", errors.New("entropy"))

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "x"})
	assertAppError(t, err, "SYS_001")
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	expiry := time.Now().Add(time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{
		ID:           userID,
		Username:     "alice",
		PasswordHash: "$argon2id$hashed",
	}, nil)
	d.hashSvc.EXPECT().Verify("pw", "$argon2id$hashed").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(userID, "alice", []string{ports.ScopeView, ports.ScopeTransact}).Return("jwt-token", expiry, nil)

	resp, err := d.svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, expiry, resp.ExpiresAt)
	assert.Equal(t, userID, resp.UserID)
	assert.ElementsMatch(t, []string{"view", "transact"}, resp.Scopes)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, err := d.svc.Login(ctx, "ghost", "pw")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{PasswordHash: "h"}, nil)
	d.hashSvc.EXPECT().Verify("bad", "h").Return(false, nil)

	_, err := d.svc.Login(ctx, "alice", "bad")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_RepoError(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, errors.New("db down"))

	_, err := d.svc.Login(ctx, "alice", "pw")
	assertAppError(t, err, "SYS_001")
}
