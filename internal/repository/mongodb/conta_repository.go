package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
)

const (
	contasCollName       = "contas"
	redefinicoesCollName = "redefinicoes_senha"
)

// ContaRepository persists user accounts and password reset tokens.
type ContaRepository struct {
	contas       *mongo.Collection
	redefinicoes *mongo.Collection
	logger       *zap.Logger
}

// NewContaRepository builds the account repository and ensures the unique
// email index exists.
func NewContaRepository(ctx context.Context, db *mongo.Database, logger *zap.Logger) (*ContaRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ContaRepository{
		contas:       db.Collection(contasCollName),
		redefinicoes: db.Collection(redefinicoesCollName),
		logger:       logger,
	}

	_, err := r.contas.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}

	return r, nil
}

// Inserir stores a new account, rejecting duplicate emails.
func (r *ContaRepository) Inserir(ctx context.Context, conta models.Conta) (string, error) {
	conta.ID = primitive.NewObjectID().Hex()
	conta.Email = strings.ToLower(strings.TrimSpace(conta.Email))

	if _, err := r.contas.InsertOne(ctx, conta); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", models.ErrEmailEmUso
		}
		return "", fmt.Errorf("insert account: %w", err)
	}
	return conta.ID, nil
}

// BuscarPorEmail finds an account by its email.
func (r *ContaRepository) BuscarPorEmail(ctx context.Context, email string) (models.Conta, error) {
	var conta models.Conta
	err := r.contas.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&conta)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Conta{}, models.ErrContaNaoEncontrada
		}
		return models.Conta{}, fmt.Errorf("find account by email: %w", err)
	}
	return conta, nil
}

// BuscarPorID loads one account.
func (r *ContaRepository) BuscarPorID(ctx context.Context, id string) (models.Conta, error) {
	var conta models.Conta
	err := r.contas.FindOne(ctx, bson.M{"_id": id}).Decode(&conta)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Conta{}, models.ErrContaNaoEncontrada
		}
		return models.Conta{}, fmt.Errorf("find account: %w", err)
	}
	return conta, nil
}

// Listar returns every registered account.
func (r *ContaRepository) Listar(ctx context.Context) ([]models.Conta, error) {
	cursor, err := r.contas.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	contas := make([]models.Conta, 0)
	if err := cursor.All(ctx, &contas); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return contas, nil
}

// AtualizarSenha replaces the stored password hash.
func (r *ContaRepository) AtualizarSenha(ctx context.Context, id, senhaHash string) error {
	res, err := r.contas.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"senhaHash": senhaHash}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrContaNaoEncontrada
	}
	return nil
}

// GuardarRedefinicao stores a password reset token.
func (r *ContaRepository) GuardarRedefinicao(ctx context.Context, red models.RedefinicaoSenha) error {
	if _, err := r.redefinicoes.InsertOne(ctx, red); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// ConsumirRedefinicao removes and returns a reset token. Unknown or expired
// tokens yield ErrContaNaoEncontrada.
func (r *ContaRepository) ConsumirRedefinicao(ctx context.Context, token string) (models.RedefinicaoSenha, error) {
	var red models.RedefinicaoSenha
	err := r.redefinicoes.FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&red)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RedefinicaoSenha{}, models.ErrContaNaoEncontrada
		}
		return models.RedefinicaoSenha{}, fmt.Errorf("consume reset token: %w", err)
	}

	if time.Now().After(red.ExpiraEm) {
		return models.RedefinicaoSenha{}, models.ErrContaNaoEncontrada
	}
	return red, nil
}
