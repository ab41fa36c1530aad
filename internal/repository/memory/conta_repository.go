package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/pkg/ids"
)

// ContaRepo is the in-process account store used by tests and local runs.
type ContaRepo struct {
	mu     sync.RWMutex
	idGen  *ids.Generator
	porID  map[string]models.Conta
	tokens map[string]models.RedefinicaoSenha
}

// NewContaRepo creates an empty in-memory account store.
func NewContaRepo() *ContaRepo {
	return &ContaRepo{
		idGen:  ids.NewGenerator(),
		porID:  make(map[string]models.Conta),
		tokens: make(map[string]models.RedefinicaoSenha),
	}
}

// Inserir stores a new account, rejecting duplicate emails.
func (r *ContaRepo) Inserir(ctx context.Context, conta models.Conta) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.porID {
		if strings.EqualFold(c.Email, conta.Email) {
			return "", models.ErrEmailEmUso
		}
	}

	conta.ID = r.idGen.Novo()
	r.porID[conta.ID] = conta
	return conta.ID, nil
}

// BuscarPorEmail finds an account by its (case-insensitive) email.
func (r *ContaRepo) BuscarPorEmail(ctx context.Context, email string) (models.Conta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.porID {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return models.Conta{}, models.ErrContaNaoEncontrada
}

// BuscarPorID loads one account.
func (r *ContaRepo) BuscarPorID(ctx context.Context, id string) (models.Conta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.porID[id]
	if !ok {
		return models.Conta{}, models.ErrContaNaoEncontrada
	}
	return c, nil
}

// Listar returns every registered account.
func (r *ContaRepo) Listar(ctx context.Context) ([]models.Conta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Conta, 0, len(r.porID))
	for _, c := range r.porID {
		out = append(out, c)
	}
	return out, nil
}

// AtualizarSenha replaces the stored password hash.
func (r *ContaRepo) AtualizarSenha(ctx context.Context, id, senhaHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.porID[id]
	if !ok {
		return models.ErrContaNaoEncontrada
	}
	c.SenhaHash = senhaHash
	r.porID[id] = c
	return nil
}

// GuardarRedefinicao stores a password reset token.
func (r *ContaRepo) GuardarRedefinicao(ctx context.Context, red models.RedefinicaoSenha) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[red.Token] = red
	return nil
}

// ConsumirRedefinicao removes and returns a reset token. Expired or unknown
// tokens yield ErrContaNaoEncontrada.
func (r *ContaRepo) ConsumirRedefinicao(ctx context.Context, token string) (models.RedefinicaoSenha, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	red, ok := r.tokens[token]
	if !ok {
		return models.RedefinicaoSenha{}, models.ErrContaNaoEncontrada
	}
	delete(r.tokens, token)

	if time.Now().After(red.ExpiraEm) {
		return models.RedefinicaoSenha{}, models.ErrContaNaoEncontrada
	}
	return red, nil
}
