package models

import (
	"strconv"
	"strings"
)

// NomeLog identifies one of the four embedded event logs of an Animal. The
// values are the document field names the mobile clients already rely on.
type NomeLog string

const (
	LogVacinas      NomeLog = "vacinas"
	LogVermifugacao NomeLog = "vermifugacao"
	LogDoencas      NomeLog = "historicoDoencas"
	LogPesos        NomeLog = "pesosMensais"
)

// Evento is a dated record appended to one of an Animal's event logs.
// Implementations carry their own required-field rules; the id is assigned by
// the service right before the append and is unique within the parent log.
type Evento interface {
	Log() NomeLog
	Validar() error
	DefinirID(id string)
	EventoID() string
}

// Vacina records one vaccine application.
type Vacina struct {
	ID        string `bson:"id" json:"id"`
	Nome      string `bson:"nome" json:"nome"`
	Data      string `bson:"data" json:"data"`
	Lote      string `bson:"lote,omitempty" json:"lote,omitempty"`
	Validade  string `bson:"validade,omitempty" json:"validade,omitempty"`
	Aplicacao string `bson:"aplicacao,omitempty" json:"aplicacao,omitempty"`
}

func (v *Vacina) Log() NomeLog { return LogVacinas }
func (v *Vacina) DefinirID(id string) { v.ID = id }
func (v *Vacina) EventoID() string { return v.ID }

func (v *Vacina) Validar() error {
	if strings.TrimSpace(v.Nome) == "" {
		return &ErroValidacao{Campo: "nome", Mensagem: "o nome da vacina é obrigatório"}
	}
	if strings.TrimSpace(v.Data) == "" {
		return &ErroValidacao{Campo: "data", Mensagem: "a data de aplicação é obrigatória"}
	}
	return nil
}

// Vermifugacao records one deworming application.
type Vermifugacao struct {
	ID      string `bson:"id" json:"id"`
	Produto string `bson:"produto" json:"produto"`
	Data    string `bson:"data" json:"data"`
}

func (v *Vermifugacao) Log() NomeLog { return LogVermifugacao }
func (v *Vermifugacao) DefinirID(id string) { v.ID = id }
func (v *Vermifugacao) EventoID() string { return v.ID }

func (v *Vermifugacao) Validar() error {
	if strings.TrimSpace(v.Produto) == "" {
		return &ErroValidacao{Campo: "produto", Mensagem: "o nome do produto é obrigatório"}
	}
	if strings.TrimSpace(v.Data) == "" {
		return &ErroValidacao{Campo: "data", Mensagem: "a data de aplicação é obrigatória"}
	}
	return nil
}

// Doenca records a disease occurrence and its treatment.
type Doenca struct {
	ID         string `bson:"id" json:"id"`
	Nome       string `bson:"nome" json:"nome"`
	Data       string `bson:"data" json:"data"`
	Tratamento string `bson:"tratamento,omitempty" json:"tratamento,omitempty"`
}

func (d *Doenca) Log() NomeLog { return LogDoencas }
func (d *Doenca) DefinirID(id string) { d.ID = id }
func (d *Doenca) EventoID() string { return d.ID }

func (d *Doenca) Validar() error {
	if strings.TrimSpace(d.Nome) == "" {
		return &ErroValidacao{Campo: "nome", Mensagem: "o nome da doença é obrigatório"}
	}
	if strings.TrimSpace(d.Data) == "" {
		return &ErroValidacao{Campo: "data", Mensagem: "a data de ocorrência é obrigatória"}
	}
	return nil
}

// PesoMensal records one monthly weighing. Peso stays a string on the wire
// (the form collects it as text) but must parse as a number.
type PesoMensal struct {
	ID   string `bson:"id" json:"id"`
	Peso string `bson:"peso" json:"peso"`
	Data string `bson:"data" json:"data"`
}

func (p *PesoMensal) Log() NomeLog { return LogPesos }
func (p *PesoMensal) DefinirID(id string) { p.ID = id }
func (p *PesoMensal) EventoID() string { return p.ID }

func (p *PesoMensal) Validar() error {
	peso := strings.TrimSpace(p.Peso)
	if peso == "" {
		return &ErroValidacao{Campo: "peso", Mensagem: "o peso é obrigatório"}
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(peso, ",", "."), 64); err != nil {
		return &ErroValidacao{Campo: "peso", Mensagem: "o peso deve ser um número"}
	}
	if strings.TrimSpace(p.Data) == "" {
		return &ErroValidacao{Campo: "data", Mensagem: "a data da pesagem é obrigatória"}
	}
	return nil
}
