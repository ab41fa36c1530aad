package models

import "time"

// Tipo classifies an animal within the herd.
type Tipo string

const (
	TipoVaca    Tipo = "Vaca"
	TipoBezerro Tipo = "Bezerro"
)

// Valido reports whether the value is one of the two supported classifications.
func (t Tipo) Valido() bool {
	return t == TipoVaca || t == TipoBezerro
}

// Sexo is the animal's sex as collected on the registration form.
type Sexo string

const (
	SexoFemea Sexo = "Fêmea"
	SexoMacho Sexo = "Macho"
)

// Valido reports whether the value is a supported sex.
func (s Sexo) Valido() bool {
	return s == SexoFemea || s == SexoMacho
}

// Animal is the central herd record: one document per animal, owned by a
// single account. Dates are kept as pt-BR formatted strings (02/01/2006)
// exactly as entered on the mobile forms.
//
// The type-specific data lives in a tagged union: exactly one of Vaca or
// Bezerro is non-nil, matching Tipo. Writes always clear the non-active
// variant, so no stale cross-type fields survive a type change.
type Animal struct {
	ID     string `bson:"_id,omitempty" json:"id"`
	DonoID string `bson:"dono" json:"-"`

	Brinco         string `bson:"brinco" json:"brinco"`
	Nome           string `bson:"nome" json:"nome"`
	Tipo           Tipo   `bson:"tipo" json:"tipo"`
	Sexo           Sexo   `bson:"sexo" json:"sexo"`
	Raca           string `bson:"raca,omitempty" json:"raca,omitempty"`
	DataNascimento string `bson:"dataNascimento,omitempty" json:"dataNascimento,omitempty"`

	Vaca    *VacaDados    `bson:"vaca,omitempty" json:"vaca,omitempty"`
	Bezerro *BezerroDados `bson:"bezerro,omitempty" json:"bezerro,omitempty"`

	// Embedded event logs. Append-only: insertion order is entry order and
	// entries are never updated, removed or re-sorted.
	Vacinas          []Vacina       `bson:"vacinas" json:"vacinas"`
	Vermifugacao     []Vermifugacao `bson:"vermifugacao" json:"vermifugacao"`
	HistoricoDoencas []Doenca       `bson:"historicoDoencas" json:"historicoDoencas"`
	PesosMensais     []PesoMensal   `bson:"pesosMensais" json:"pesosMensais"`

	// CreatedAt is set once at creation and never mutated afterwards.
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// VacaDados holds the fields that only apply to a Vaca.
type VacaDados struct {
	DataInseminacao     string `bson:"dataInseminacao,omitempty" json:"dataInseminacao,omitempty"`
	DataParicaoEsperada string `bson:"dataParicaoEsperada,omitempty" json:"dataParicaoEsperada,omitempty"`
	DataSecagem         string `bson:"dataSecagem,omitempty" json:"dataSecagem,omitempty"`
	Touro               string `bson:"touro,omitempty" json:"touro,omitempty"`
	NumPartos           int    `bson:"numPartos" json:"numPartos"`
	RendimentoProducao  string `bson:"rendimentoProducao,omitempty" json:"rendimentoProducao,omitempty"`
}

// BezerroDados holds the fields that only apply to a Bezerro. IDMae and
// IDTouroPai are optional references to other animals of the owner; they are
// not enforced after creation, so a dangling reference is possible once the
// parent is deleted.
type BezerroDados struct {
	PesoNascimento         string `bson:"pesoNascimento,omitempty" json:"pesoNascimento,omitempty"`
	DataDesmame            string `bson:"dataDesmame,omitempty" json:"dataDesmame,omitempty"`
	DataPrimeiroCio        string `bson:"dataPrimeiroCio,omitempty" json:"dataPrimeiroCio,omitempty"`
	DataInseminacaoBezerra string `bson:"dataInseminacaoBezerra,omitempty" json:"dataInseminacaoBezerra,omitempty"`
	IDMae                  string `bson:"idMae,omitempty" json:"idMae,omitempty"`
	IDTouroPai             string `bson:"idTouroPai,omitempty" json:"idTouroPai,omitempty"`
}
