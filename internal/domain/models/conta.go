package models

import "time"

// Conta is a registered user account. Every Animal document is scoped to
// exactly one Conta; there is no sharing model.
type Conta struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Email     string    `bson:"email" json:"email"`
	SenhaHash string    `bson:"senhaHash" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RedefinicaoSenha is a single-use password reset token with an expiry.
type RedefinicaoSenha struct {
	Token    string    `bson:"_id" json:"-"`
	ContaID  string    `bson:"contaId" json:"-"`
	ExpiraEm time.Time `bson:"expiraEm" json:"-"`
}
