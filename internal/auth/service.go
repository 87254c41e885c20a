package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// Service is the single entry point callers use for authentication.
// It owns no business rules itself: each call routes to the matching
// use case and returns its result or failure unchanged.
type Service struct {
	login          *LoginUseCase
	register       *RegisterUseCase
	changePassword *ChangePasswordUseCase
	logger         *zap.Logger
	tracer         trace.Tracer
}

// NewService composes the three use cases over shared ports.
func NewService(users repository.UserRepository, hasher PasswordHasher, tokens TokenProvider, policy PasswordPolicy, logger *zap.Logger) *Service {
	return &Service{
		login:          NewLoginUseCase(users, hasher, tokens),
		register:       NewRegisterUseCase(users, hasher, policy),
		changePassword: NewChangePasswordUseCase(users, hasher, policy),
		logger:         logger,
		tracer:         otel.Tracer("github.com/zahel-sys/sigc-auth/internal/auth"),
	}
}

// Login authenticates email/password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Login")
	defer span.End()

	result, err := s.login.Execute(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}
	s.audit("login.success", "user_id", result.UserID)
	return result, nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, email, password string) (RegisterResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Register")
	defer span.End()

	result, err := s.register.Execute(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		return RegisterResult{}, err
	}
	s.audit("register.success", "user_id", result.UserID)
	return result, nil
}

// ChangePassword replaces the password for an already-authenticated
// user. The userID must come from a validated token.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword, confirmPassword string) (ChangePasswordResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ChangePassword")
	defer span.End()

	result, err := s.changePassword.Execute(ctx, userID, currentPassword, newPassword, confirmPassword)
	if err != nil {
		span.RecordError(err)
		return ChangePasswordResult{}, err
	}
	if result.Success {
		s.audit("change_password.success", "user_id", userID)
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *Service) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *Service) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
