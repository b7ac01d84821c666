package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clean-auth/internal/domain/entity"
	repo "github.com/oksasatya/clean-auth/internal/domain/repository"
	"github.com/oksasatya/clean-auth/pkg/helpers"
)

const (
	DefaultRefreshTTL          = 7 * 24 * time.Hour
	DefaultConfirmationCodeTTL = 5 * time.Minute
)

// TokenSigner mints access tokens and opaque refresh tokens.
type TokenSigner interface {
	IssueAccessToken(userID, username string) (string, time.Time, error)
	GenerateRefreshToken() (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Notifier delivers confirmation codes. A returned error means the code did not leave.
type Notifier interface {
	SendConfirmationEmail(ctx context.Context, email, code string) error
}

// Revoker is the write side of the access-token blacklist.
type Revoker interface {
	Revoke(token string)
}

// MailPolicy decides whether a failed confirmation mail fails the operation.
type MailPolicy int

const (
	// MailSoftFail logs the delivery error and lets the operation succeed.
	MailSoftFail MailPolicy = iota
	// MailHardFail turns the delivery error into a failed result.
	MailHardFail
)

type AccountService struct {
	Repo     repo.UserRepository
	Signer   TokenSigner
	Hasher   PasswordHasher
	Notifier Notifier
	Revoker  Revoker
	Logger   *logrus.Logger

	RefreshTTL time.Duration
	CodeTTL    time.Duration
	GenCode    func() (string, error)

	now func() time.Time
}

type Option func(*AccountService)

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

func WithRefreshTTL(d time.Duration) Option {
	return func(s *AccountService) { s.RefreshTTL = d }
}

func WithConfirmationCodeTTL(d time.Duration) Option {
	return func(s *AccountService) { s.CodeTTL = d }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *AccountService) { s.GenCode = gen }
}

func NewAccountService(users repo.UserRepository, signer TokenSigner, hasher PasswordHasher, notifier Notifier, revoker Revoker, logger *logrus.Logger, opts ...Option) *AccountService {
	s := &AccountService{
		Repo:       users,
		Signer:     signer,
		Hasher:     hasher,
		Notifier:   notifier,
		Revoker:    revoker,
		Logger:     logger,
		RefreshTTL: DefaultRefreshTTL,
		CodeTTL:    DefaultConfirmationCodeTTL,
		GenCode:    helpers.GenConfirmationCode,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = helpers.NewDiscardLogger()
	}
	return s
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DateOfBirth time.Time
	Gender      entity.Gender
}

type RegisterOutput struct {
	Email string         `json:"email"`
	User  entity.Profile `json:"user"`
}

// AuthTokens is returned by Login and RefreshToken.
type AuthTokens struct {
	AccessToken            string    `json:"accessToken"`
	AccessTokenExpireTime  time.Time `json:"accessTokenExpireTime"`
	RefreshToken           string    `json:"refreshToken"`
	RefreshTokenExpireTime time.Time `json:"refreshTokenExpireTime"`
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) Result[RegisterOutput] {
	const op = "register"
	email := NormalizeEmail(in.Email)
	fields := logrus.Fields{"op": op, "email": email, "username": in.Username}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return dependencyFailure[RegisterOutput](s, err, fields, MsgRegisterFailed)
	}
	if existing != nil {
		return Failure[RegisterOutput](KindConflict, MsgEmailExists)
	}
	existing, err = s.Repo.GetByUsername(ctx, in.Username)
	if err != nil {
		return dependencyFailure[RegisterOutput](s, err, fields, MsgRegisterFailed)
	}
	if existing != nil {
		return Failure[RegisterOutput](KindConflict, MsgUsernameExists)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return dependencyFailure[RegisterOutput](s, err, fields, MsgRegisterFailed)
	}
	code, err := s.GenCode()
	if err != nil {
		return dependencyFailure[RegisterOutput](s, err, fields, MsgRegisterFailed)
	}

	u := &entity.User{
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
	}
	u.IssueConfirmationCode(code, s.now().Add(s.CodeTTL))
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Lost a race against a concurrent registration.
			return Failure[RegisterOutput](KindConflict, s.duplicateMessage(ctx, email))
		}
		return dependencyFailure[RegisterOutput](s, err, fields, MsgRegisterFailed)
	}

	out := RegisterOutput{Email: u.Email, User: u.Profile()}
	if err := s.notify(ctx, u, MailSoftFail); err != nil {
		return Success(out, MsgRegisteredMailFailed)
	}
	return Success(out, MsgRegistered)
}

func (s *AccountService) Login(ctx context.Context, usernameOrEmail, password string) Result[AuthTokens] {
	const op = "login"
	ident := strings.TrimSpace(usernameOrEmail)
	if strings.Contains(ident, "@") {
		ident = NormalizeEmail(ident)
	}
	fields := logrus.Fields{"op": op, "login": ident}

	u, err := s.Repo.GetByUsernameOrEmail(ctx, ident)
	if err != nil {
		return dependencyFailure[AuthTokens](s, err, fields, MsgLoginFailed)
	}
	if u == nil || !u.IsEmailConfirmed {
		return Failure[AuthTokens](KindUnauthorized, MsgInvalidLogin)
	}
	// Distinct from the message above; known account-enumeration leak kept for client compatibility.
	if !s.Hasher.Verify(u.PasswordHash, password) {
		return Failure[AuthTokens](KindUnauthorized, MsgInvalidPassword)
	}

	fields["user_id"] = u.ID
	tokens, err := s.startSession(ctx, u)
	if err != nil {
		return storeFailure[AuthTokens](s, err, fields, MsgLoginFailed)
	}
	return Success(tokens, "")
}

func (s *AccountService) ConfirmEmail(ctx context.Context, code string) Result[Empty] {
	const op = "confirm_email"
	code = strings.TrimSpace(code)
	if code == "" {
		return Failure[Empty](KindValidation, MsgCodeRequired)
	}
	fields := logrus.Fields{"op": op}

	u, err := s.Repo.GetByConfirmationCode(ctx, code)
	if err != nil {
		return dependencyFailure[Empty](s, err, fields, MsgConfirmFailed)
	}
	if u == nil {
		return Failure[Empty](KindNotFound, MsgInvalidCode)
	}
	if u.IsEmailConfirmed {
		return Failure[Empty](KindConflict, MsgAlreadyConfirmed)
	}
	if !u.EmailConfirmation.IsValid(s.now()) {
		return Failure[Empty](KindExpired, MsgCodeExpired)
	}

	fields["user_id"] = u.ID
	u.ConfirmEmail()
	if err := s.Repo.Save(ctx, u); err != nil {
		return storeFailure[Empty](s, err, fields, MsgConfirmFailed)
	}
	return Success(Empty{}, MsgEmailConfirmed)
}

func (s *AccountService) RequestConfirmationCode(ctx context.Context, email string) Result[Empty] {
	const op = "request_confirmation_code"
	email = NormalizeEmail(email)
	if email == "" {
		return Failure[Empty](KindValidation, MsgEmailRequired)
	}
	fields := logrus.Fields{"op": op, "email": email}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return dependencyFailure[Empty](s, err, fields, MsgCodeRequestFailed)
	}
	if u == nil {
		return Failure[Empty](KindNotFound, MsgEmailNotFound)
	}
	if u.IsEmailConfirmed {
		return Failure[Empty](KindConflict, MsgAlreadyConfirmed)
	}

	code, err := s.GenCode()
	if err != nil {
		return dependencyFailure[Empty](s, err, fields, MsgCodeRequestFailed)
	}
	u.IssueConfirmationCode(code, s.now().Add(s.CodeTTL))
	if err := s.Repo.Save(ctx, u); err != nil {
		return storeFailure[Empty](s, err, fields, MsgCodeRequestFailed)
	}
	if err := s.notify(ctx, u, MailHardFail); err != nil {
		return Failure[Empty](KindDependency, MsgCodeSendFailed)
	}
	return Success(Empty{}, MsgCodeSent)
}

func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) Result[AuthTokens] {
	const op = "refresh_token"
	fields := logrus.Fields{"op": op}
	if strings.TrimSpace(refreshToken) == "" {
		return Failure[AuthTokens](KindNotFound, MsgInvalidRefreshToken)
	}

	u, err := s.Repo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return dependencyFailure[AuthTokens](s, err, fields, MsgRefreshFailed)
	}
	if u == nil {
		return Failure[AuthTokens](KindNotFound, MsgInvalidRefreshToken)
	}
	fields["user_id"] = u.ID

	now := s.now()
	if !u.RefreshToken.IsValid(now) {
		// Consume the expired token so it cannot be replayed.
		u.RefreshToken = entity.Expiring{}
		if err := s.Repo.Save(ctx, u); err != nil {
			return storeFailure[AuthTokens](s, err, fields, MsgRefreshFailed)
		}
		return Failure[AuthTokens](KindExpired, MsgRefreshTokenExpired)
	}

	tokens, err := s.startSession(ctx, u)
	if err != nil {
		return storeFailure[AuthTokens](s, err, fields, MsgRefreshFailed)
	}
	return Success(tokens, "")
}

// Logout revokes accessToken unconditionally. When username resolves to a
// user, that user's refresh token is invalidated as well.
func (s *AccountService) Logout(ctx context.Context, accessToken, username string) Result[Empty] {
	const op = "logout"
	s.Revoker.Revoke(accessToken)

	if username == "" {
		return Success(Empty{}, MsgLoggedOut)
	}
	fields := logrus.Fields{"op": op, "username": username}
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return dependencyFailure[Empty](s, err, fields, MsgLogoutFailed)
	}
	if u == nil {
		return Success(Empty{}, MsgLoggedOut)
	}
	u.RevokeRefreshToken(s.now())
	if err := s.Repo.Save(ctx, u); err != nil {
		return storeFailure[Empty](s, err, fields, MsgLogoutFailed)
	}
	return Success(Empty{}, MsgLoggedOut)
}

func (s *AccountService) GetUserByID(ctx context.Context, id string) Result[entity.Profile] {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return dependencyFailure[entity.Profile](s, err, logrus.Fields{"op": "get_user", "user_id": id}, MsgGetUserFailed)
	}
	if u == nil {
		return Failure[entity.Profile](KindNotFound, MsgUserNotFound)
	}
	return Success(u.Profile(), "")
}

// startSession rotates the refresh token, persists it and mints an access token.
func (s *AccountService) startSession(ctx context.Context, u *entity.User) (AuthTokens, error) {
	refresh, err := s.Signer.GenerateRefreshToken()
	if err != nil {
		return AuthTokens{}, err
	}
	refreshExp := s.now().Add(s.RefreshTTL)
	u.RotateRefreshToken(refresh, refreshExp)
	if err := s.Repo.Save(ctx, u); err != nil {
		return AuthTokens{}, err
	}
	access, accessExp, err := s.Signer.IssueAccessToken(u.ID, u.Username)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{
		AccessToken:            access,
		AccessTokenExpireTime:  accessExp,
		RefreshToken:           refresh,
		RefreshTokenExpireTime: refreshExp,
	}, nil
}

func (s *AccountService) notify(ctx context.Context, u *entity.User, policy MailPolicy) error {
	err := s.Notifier.SendConfirmationEmail(ctx, u.Email, u.EmailConfirmation.Value)
	if err == nil {
		return nil
	}
	entry := s.Logger.WithError(err).WithFields(logrus.Fields{"email": u.Email, "user_id": u.ID})
	if policy == MailSoftFail {
		entry.Warn("confirmation email not sent")
	} else {
		entry.Error("confirmation email not sent")
	}
	return err
}

func (s *AccountService) duplicateMessage(ctx context.Context, email string) string {
	if u, err := s.Repo.GetByEmail(ctx, email); err == nil && u != nil {
		return MsgEmailExists
	}
	return MsgUsernameExists
}

func dependencyFailure[T any](s *AccountService, err error, fields logrus.Fields, msg string) Result[T] {
	helpers.LogError(s.Logger, "account operation failed", err, fields)
	return Failure[T](KindDependency, msg)
}

// storeFailure is dependencyFailure plus the retryable stale-version case.
func storeFailure[T any](s *AccountService, err error, fields logrus.Fields, msg string) Result[T] {
	if errors.Is(err, repo.ErrStaleUser) {
		s.Logger.WithFields(fields).Warn("stale user record")
		return Failure[T](KindStale, MsgModifiedConcurrently)
	}
	return dependencyFailure[T](s, err, fields, msg)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
