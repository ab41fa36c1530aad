package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lfmachado/rebanho/internal/config"
	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/pkg/clients/notify"
)

const (
	senhaMinima   = 6
	validadeReset = time.Hour
)

// ContaRepository is the account-store boundary of the identity provider.
type ContaRepository interface {
	Inserir(ctx context.Context, conta models.Conta) (string, error)
	BuscarPorEmail(ctx context.Context, email string) (models.Conta, error)
	BuscarPorID(ctx context.Context, id string) (models.Conta, error)
	Listar(ctx context.Context) ([]models.Conta, error)
	AtualizarSenha(ctx context.Context, id, senhaHash string) error
	GuardarRedefinicao(ctx context.Context, red models.RedefinicaoSenha) error
	ConsumirRedefinicao(ctx context.Context, token string) (models.RedefinicaoSenha, error)
}

// Service implements email/password identity: signup, login, password change
// and reset. Every store path in the application is scoped by the account id
// this service authenticates.
type Service struct {
	repo     ContaRepository
	notifier notify.Client
	cfg      config.AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the identity provider. notifier may be nil, in which case
// password reset tokens are only logged, never delivered.
func NewService(repo ContaRepository, notifier notify.Client, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, notifier: notifier, cfg: cfg, logger: logger, now: time.Now}
}

// Cadastrar creates an account and returns it with a fresh session token.
func (s *Service) Cadastrar(ctx context.Context, email, senha string) (models.Conta, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return models.Conta{}, "", &models.ErroValidacao{Campo: "email", Mensagem: "informe um e-mail válido"}
	}
	if len(senha) < senhaMinima {
		return models.Conta{}, "", &models.ErroValidacao{Campo: "senha", Mensagem: "a senha deve ter no mínimo 6 caracteres"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return models.Conta{}, "", fmt.Errorf("hash password: %w", err)
	}

	conta := models.Conta{
		Email:     email,
		SenhaHash: string(hash),
		CreatedAt: s.now(),
	}

	id, err := s.repo.Inserir(ctx, conta)
	if err != nil {
		if errors.Is(err, models.ErrEmailEmUso) {
			return models.Conta{}, "", err
		}
		return models.Conta{}, "", &models.ErroPersistencia{Op: "cadastrar conta", Err: err}
	}
	conta.ID = id

	token, err := s.emitirToken(conta)
	if err != nil {
		return models.Conta{}, "", err
	}

	s.logger.Info("conta criada", zap.String("conta_id", id))
	return conta, token, nil
}

// Entrar authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Entrar(ctx context.Context, email, senha string) (models.Conta, string, error) {
	conta, err := s.repo.BuscarPorEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrContaNaoEncontrada) {
			return models.Conta{}, "", models.ErrCredenciaisInvalidas
		}
		return models.Conta{}, "", &models.ErroPersistencia{Op: "buscar conta", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(conta.SenhaHash), []byte(senha)); err != nil {
		return models.Conta{}, "", models.ErrCredenciaisInvalidas
	}

	token, err := s.emitirToken(conta)
	if err != nil {
		return models.Conta{}, "", err
	}
	return conta, token, nil
}

// AlterarSenha replaces the signed-in account's password.
func (s *Service) AlterarSenha(ctx context.Context, contaID, novaSenha string) error {
	if contaID == "" {
		return models.ErrNaoAutenticado
	}
	if len(novaSenha) < senhaMinima {
		return &models.ErroValidacao{Campo: "senha", Mensagem: "a nova senha deve ter no mínimo 6 caracteres"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.AtualizarSenha(ctx, contaID, string(hash)); err != nil {
		if errors.Is(err, models.ErrContaNaoEncontrada) {
			return err
		}
		return &models.ErroPersistencia{Op: "alterar senha", Err: err}
	}
	return nil
}

// SolicitarRedefinicao issues a single-use reset token and delivers it via
// the notifier. An unknown email is reported as success so the endpoint does
// not reveal which addresses have accounts.
func (s *Service) SolicitarRedefinicao(ctx context.Context, email string) error {
	conta, err := s.repo.BuscarPorEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrContaNaoEncontrada) {
			return nil
		}
		return &models.ErroPersistencia{Op: "buscar conta", Err: err}
	}

	red := models.RedefinicaoSenha{
		Token:    uuid.NewString(),
		ContaID:  conta.ID,
		ExpiraEm: s.now().Add(validadeReset),
	}
	if err := s.repo.GuardarRedefinicao(ctx, red); err != nil {
		return &models.ErroPersistencia{Op: "guardar redefinição", Err: err}
	}

	if s.notifier == nil {
		s.logger.Warn("notificador ausente, token de redefinição não entregue", zap.String("conta_id", conta.ID))
		return nil
	}

	msg := notify.Mensagem{
		Destinatario: conta.Email,
		Assunto:      "Redefinição de senha",
		Corpo:        fmt.Sprintf("Use o código %s para redefinir a sua senha. Ele expira em 1 hora.", red.Token),
	}
	if err := s.notifier.Enviar(ctx, msg); err != nil {
		return &models.ErroPersistencia{Op: "enviar redefinição", Err: err}
	}
	return nil
}

// RedefinirSenha consumes a reset token and sets the new password.
func (s *Service) RedefinirSenha(ctx context.Context, token, novaSenha string) error {
	if len(novaSenha) < senhaMinima {
		return &models.ErroValidacao{Campo: "senha", Mensagem: "a nova senha deve ter no mínimo 6 caracteres"}
	}

	red, err := s.repo.ConsumirRedefinicao(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrContaNaoEncontrada) {
			return &models.ErroValidacao{Campo: "token", Mensagem: "código de redefinição inválido ou expirado"}
		}
		return &models.ErroPersistencia{Op: "consumir redefinição", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.AtualizarSenha(ctx, red.ContaID, string(hash)); err != nil {
		return &models.ErroPersistencia{Op: "alterar senha", Err: err}
	}

	s.logger.Info("senha redefinida", zap.String("conta_id", red.ContaID))
	return nil
}

// ListarContas exposes the registered accounts to the reminder scheduler.
func (s *Service) ListarContas(ctx context.Context) ([]models.Conta, error) {
	contas, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, &models.ErroPersistencia{Op: "listar contas", Err: err}
	}
	return contas, nil
}

// VerificarToken validates a session token and returns the account id it was
// issued for.
func (s *Service) VerificarToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrNaoAutenticado
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", models.ErrNaoAutenticado
	}
	return claims.Subject, nil
}

func (s *Service) emitirToken(conta models.Conta) (string, error) {
	agora := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   conta.ID,
		Issuer:    "rebanho",
		IssuedAt:  jwt.NewNumericDate(agora),
		ExpiresAt: jwt.NewNumericDate(agora.Add(s.cfg.TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	assinado, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return assinado, nil
}
