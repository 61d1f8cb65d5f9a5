package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garith/backend/internal/auth/jwt"
	"garith/backend/internal/domain"
	"garith/backend/internal/email"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/pool"
	"garith/backend/internal/storage"
)

// ErrDeliveryFailed 验证码邮件投递失败（仅生产模式向调用方暴露）。
var ErrDeliveryFailed = errors.New("failed to deliver verification code")

// Service 封装免密登录的完整流程：签发验证码、投递邮件、
// 兑换验证码并换取会话令牌。
type Service struct {
	codes   CodeStore
	users   storage.UserRepository
	sender  email.Sender
	tokens  *jwt.Manager
	workers *pool.WorkerPool
	metrics *monitoring.Metrics
	devMode bool
	log     *zap.Logger
}

// NewService 创建认证服务。
//
// devMode 为真时邮件投递失败不会向调用方报错，验证码会写进
// 日志作为本地诊断兜底；生产模式投递失败返回 ErrDeliveryFailed，
// 且验证码绝不出现在任何响应或日志里。
func NewService(codes CodeStore, users storage.UserRepository, sender email.Sender, tokens *jwt.Manager, devMode bool, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		codes:   codes,
		users:   users,
		sender:  sender,
		tokens:  tokens,
		devMode: devMode,
		log:     log,
	}
}

// SetWorkerPool 注入协程池后，开发模式的邮件投递改为异步执行，
// 把 SMTP 延迟移出请求路径。生产模式始终同步投递，因为投递
// 失败必须反馈给调用方。
func (s *Service) SetWorkerPool(workers *pool.WorkerPool) {
	s.workers = workers
}

// SetMetrics 注入监控指标采集器。
func (s *Service) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// SendCode 为地址签发验证码并投递邮件。
func (s *Service) SendCode(ctx context.Context, address string) error {
	address = domain.NormalizeEmail(address)
	if err := domain.ValidateEmail(address); err != nil {
		return err
	}

	code, err := s.codes.Issue(ctx, address)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordCodeIssued()
	}

	if s.devMode && s.workers != nil {
		submitted := s.workers.TrySubmit(func() {
			s.deliverDev(address, code)
		})
		if !submitted {
			s.deliverDev(address, code)
		}
		return nil
	}

	if err := s.sender.SendCode(ctx, address, code); err != nil {
		if s.devMode {
			// 开发兜底：投递失败时把验证码写进日志，登录流程照常可用
			s.log.Info("email delivery failed, verification code available locally",
				zap.String("email", address),
				zap.String("code", code),
			)
			return nil
		}
		s.log.Error("failed to deliver verification code",
			zap.String("email", address),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("email_delivery", "auth")
		}
		// 验证码仍然有效，只是这次投递没有送达
		return ErrDeliveryFailed
	}
	return nil
}

// deliverDev 开发模式的异步投递，失败时记录验证码。
func (s *Service) deliverDev(address, code string) {
	if err := s.sender.SendCode(context.Background(), address, code); err != nil {
		s.log.Info("email delivery failed, verification code available locally",
			zap.String("email", address),
			zap.String("code", code),
		)
	}
}

// Login 兑换验证码并换取会话令牌。兑换失败返回
// domain.ErrCodeNotFound / ErrCodeExpired / ErrCodeMismatch，
// 传输层把三者统一折叠为 401。
func (s *Service) Login(ctx context.Context, address, code string) (*domain.User, string, error) {
	address = domain.NormalizeEmail(address)
	if err := domain.ValidateEmail(address); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateCodeFormat(code); err != nil {
		return nil, "", err
	}

	if err := s.codes.Redeem(ctx, address, code); err != nil {
		if s.metrics != nil {
			s.metrics.RecordCodeRejected(rejectReason(err))
		}
		return nil, "", err
	}
	if s.metrics != nil {
		s.metrics.RecordCodeRedeemed()
	}

	user, err := s.resolveOrCreate(address)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Nickname)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}
	s.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, token, nil
}

// rejectReason 把兑换失败映射为指标标签。
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrCodeMismatch):
		return "mismatch"
	default:
		return "other"
	}
}

// resolveOrCreate 按邮箱查找用户，首次登录时惰性创建。
// 并发创建同一邮箱时，输掉唯一约束竞争的一方改为重读已有行，
// 不向调用方报错。
func (s *Service) resolveOrCreate(address string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	created := &domain.User{
		ID:       uuid.NewString(),
		Email:    address,
		Nickname: domain.DefaultNickname(address),
		Skills:   []string{},
	}
	err = s.users.CreateUser(created)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordUserCreated()
		}
		s.log.Info("user created",
			zap.String("user_id", created.ID),
			zap.String("email", created.Email),
		)
		return s.users.GetUserByID(created.ID)
	}
	if errors.Is(err, storage.ErrEmailExists) {
		return s.users.GetUserByEmail(address)
	}
	return nil, err
}
