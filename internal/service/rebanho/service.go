package rebanho

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/pkg/ids"
)

// AnimalRepository is the document-store boundary the service persists
// through. AnexarEvento must be an atomic array append on the target log
// field only — never a read-modify-write of the whole document — so that
// concurrent appends to different logs of the same animal cannot lose data.
// Atualizar overwrites the mutable fields and clears the non-active type
// variant, leaving CreatedAt and the event logs untouched.
type AnimalRepository interface {
	Inserir(ctx context.Context, animal models.Animal) (string, error)
	Buscar(ctx context.Context, donoID, animalID string) (models.Animal, error)
	Listar(ctx context.Context, donoID string) ([]models.Animal, error)
	Atualizar(ctx context.Context, animal models.Animal) error
	AnexarEvento(ctx context.Context, donoID, animalID string, registro models.Evento) error
	Excluir(ctx context.Context, donoID, animalID string) error
	Observar(ctx context.Context, donoID, animalID string) (<-chan models.Animal, error)
	ObservarRebanho(ctx context.Context, donoID string) (<-chan []models.Animal, error)
}

var brincoRegex = regexp.MustCompile(`^\d{5}$`)

// Service owns the schema and mutation rules for herd records.
type Service struct {
	repo   AnimalRepository
	idGen  *ids.Generator
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new herd service instance.
func NewService(repo AnimalRepository, idGen *ids.Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, idGen: idGen, logger: logger, now: time.Now}
}

// AnimalInput carries the registration/edit form fields. Everything arrives
// as text, exactly as the mobile forms collect it; coercion and validation
// happen here.
type AnimalInput struct {
	Brinco         string `json:"brinco"`
	Nome           string `json:"nome"`
	Tipo           string `json:"tipo"`
	Sexo           string `json:"sexo"`
	Raca           string `json:"raca"`
	DataNascimento string `json:"dataNascimento"`

	// Vaca fields.
	DataInseminacao     string `json:"dataInseminacao"`
	DataParicaoEsperada string `json:"dataParicaoEsperada"`
	DataSecagem         string `json:"dataSecagem"`
	Touro               string `json:"touro"`
	NumPartos           string `json:"numPartos"`
	RendimentoProducao  string `json:"rendimentoProducao"`

	// Bezerro fields.
	PesoNascimento         string `json:"pesoNascimento"`
	DataDesmame            string `json:"dataDesmame"`
	DataPrimeiroCio        string `json:"dataPrimeiroCio"`
	DataInseminacaoBezerra string `json:"dataInseminacaoBezerra"`
	IDMae                  string `json:"idMae"`
	IDTouroPai             string `json:"idTouroPai"`
}

// Criar validates the input and writes a new Animal document for the owner.
// The four event logs start empty and CreatedAt is set exactly once.
func (s *Service) Criar(ctx context.Context, donoID string, in AnimalInput) (models.Animal, error) {
	if donoID == "" {
		return models.Animal{}, models.ErrNaoAutenticado
	}

	animal, err := s.montarAnimal(ctx, donoID, "", in)
	if err != nil {
		return models.Animal{}, err
	}

	animal.Vacinas = []models.Vacina{}
	animal.Vermifugacao = []models.Vermifugacao{}
	animal.HistoricoDoencas = []models.Doenca{}
	animal.PesosMensais = []models.PesoMensal{}
	animal.CreatedAt = s.now()

	id, err := s.repo.Inserir(ctx, animal)
	if err != nil {
		return models.Animal{}, &models.ErroPersistencia{Op: "criar animal", Err: err}
	}
	animal.ID = id

	s.logger.Info("animal registrado",
		zap.String("animal_id", id),
		zap.String("brinco", animal.Brinco),
		zap.String("tipo", string(animal.Tipo)))

	return animal, nil
}

// Atualizar overwrites the mutable fields of an existing Animal after the
// same validation as Criar. Fields of the non-active type variant are cleared
// on write, so switching tipo never leaves stale data at rest. CreatedAt and
// the event logs are not part of this write.
func (s *Service) Atualizar(ctx context.Context, donoID, animalID string, in AnimalInput) (models.Animal, error) {
	if donoID == "" {
		return models.Animal{}, models.ErrNaoAutenticado
	}

	animal, err := s.montarAnimal(ctx, donoID, animalID, in)
	if err != nil {
		return models.Animal{}, err
	}
	animal.ID = animalID

	if err := s.repo.Atualizar(ctx, animal); err != nil {
		if errors.Is(err, models.ErrAnimalNaoEncontrado) {
			return models.Animal{}, err
		}
		return models.Animal{}, &models.ErroPersistencia{Op: "atualizar animal", Err: err}
	}

	s.logger.Info("animal atualizado", zap.String("animal_id", animalID))

	return s.Buscar(ctx, donoID, animalID)
}

// Buscar loads one Animal of the owner.
func (s *Service) Buscar(ctx context.Context, donoID, animalID string) (models.Animal, error) {
	if donoID == "" {
		return models.Animal{}, models.ErrNaoAutenticado
	}

	animal, err := s.repo.Buscar(ctx, donoID, animalID)
	if err != nil {
		if errors.Is(err, models.ErrAnimalNaoEncontrado) {
			return models.Animal{}, err
		}
		return models.Animal{}, &models.ErroPersistencia{Op: "buscar animal", Err: err}
	}
	return animal, nil
}

// Listar returns every Animal of the owner.
func (s *Service) Listar(ctx context.Context, donoID string) ([]models.Animal, error) {
	if donoID == "" {
		return nil, models.ErrNaoAutenticado
	}

	animais, err := s.repo.Listar(ctx, donoID)
	if err != nil {
		return nil, &models.ErroPersistencia{Op: "listar rebanho", Err: err}
	}
	return animais, nil
}

// Excluir removes the Animal document. Irreversible; the embedded event logs
// go with it. Deleting an id that no longer exists is not an error.
func (s *Service) Excluir(ctx context.Context, donoID, animalID string) error {
	if donoID == "" {
		return models.ErrNaoAutenticado
	}

	if err := s.repo.Excluir(ctx, donoID, animalID); err != nil {
		return &models.ErroPersistencia{Op: "excluir animal", Err: err}
	}

	s.logger.Info("animal excluído", zap.String("animal_id", animalID))
	return nil
}

// RegistrarEvento validates the record, assigns it a ULID and appends it
// atomically to its log on the Animal document. Entries are append-only:
// there is no update or delete of an individual event.
func (s *Service) RegistrarEvento(ctx context.Context, donoID, animalID string, registro models.Evento) (models.Evento, error) {
	if donoID == "" {
		return nil, models.ErrNaoAutenticado
	}

	if err := registro.Validar(); err != nil {
		return nil, err
	}

	registro.DefinirID(s.idGen.Novo())

	if err := s.repo.AnexarEvento(ctx, donoID, animalID, registro); err != nil {
		if errors.Is(err, models.ErrAnimalNaoEncontrado) {
			return nil, err
		}
		return nil, &models.ErroPersistencia{Op: "registrar evento", Err: err}
	}

	s.logger.Info("evento registrado",
		zap.String("animal_id", animalID),
		zap.String("log", string(registro.Log())),
		zap.String("evento_id", registro.EventoID()))

	return registro, nil
}

// Acompanhar opens a live snapshot stream for one Animal. Every remote
// mutation, including this client's own writes, yields a fresh snapshot. The
// stream is released by cancelling ctx; the returned channel is then closed.
func (s *Service) Acompanhar(ctx context.Context, donoID, animalID string) (<-chan models.Animal, error) {
	if donoID == "" {
		return nil, models.ErrNaoAutenticado
	}

	ch, err := s.repo.Observar(ctx, donoID, animalID)
	if err != nil {
		if errors.Is(err, models.ErrAnimalNaoEncontrado) {
			return nil, err
		}
		return nil, &models.ErroPersistencia{Op: "acompanhar animal", Err: err}
	}
	return ch, nil
}

// AcompanharRebanho opens a live stream of full-herd snapshots for the owner.
// Same release discipline as Acompanhar.
func (s *Service) AcompanharRebanho(ctx context.Context, donoID string) (<-chan []models.Animal, error) {
	if donoID == "" {
		return nil, models.ErrNaoAutenticado
	}

	ch, err := s.repo.ObservarRebanho(ctx, donoID)
	if err != nil {
		return nil, &models.ErroPersistencia{Op: "acompanhar rebanho", Err: err}
	}
	return ch, nil
}

// montarAnimal applies the field-level validation shared by Criar and
// Atualizar and assembles the document, including the type variant.
// animalID is non-empty on edits and is used to reject self-parentage.
func (s *Service) montarAnimal(ctx context.Context, donoID, animalID string, in AnimalInput) (models.Animal, error) {
	brinco := strings.TrimSpace(in.Brinco)
	nome := strings.TrimSpace(in.Nome)

	if brinco == "" || nome == "" {
		return models.Animal{}, &models.ErroValidacao{Campo: "brinco/nome", Mensagem: "brinco e nome devem ser preenchidos"}
	}
	if !brincoRegex.MatchString(brinco) {
		return models.Animal{}, &models.ErroValidacao{Campo: "brinco", Mensagem: "o nº do brinco deve conter exatamente 5 dígitos"}
	}

	tipo := models.Tipo(strings.TrimSpace(in.Tipo))
	if !tipo.Valido() {
		return models.Animal{}, &models.ErroValidacao{Campo: "tipo", Mensagem: "tipo deve ser Vaca ou Bezerro"}
	}

	sexo := models.Sexo(strings.TrimSpace(in.Sexo))
	if in.Sexo != "" && !sexo.Valido() {
		return models.Animal{}, &models.ErroValidacao{Campo: "sexo", Mensagem: "sexo deve ser Fêmea ou Macho"}
	}

	animal := models.Animal{
		DonoID:         donoID,
		Brinco:         brinco,
		Nome:           nome,
		Tipo:           tipo,
		Sexo:           sexo,
		Raca:           strings.TrimSpace(in.Raca),
		DataNascimento: strings.TrimSpace(in.DataNascimento),
	}

	switch tipo {
	case models.TipoVaca:
		animal.Vaca = &models.VacaDados{
			DataInseminacao:     strings.TrimSpace(in.DataInseminacao),
			DataParicaoEsperada: strings.TrimSpace(in.DataParicaoEsperada),
			DataSecagem:         strings.TrimSpace(in.DataSecagem),
			Touro:               strings.TrimSpace(in.Touro),
			NumPartos:           coagirNumPartos(in.NumPartos),
			RendimentoProducao:  strings.TrimSpace(in.RendimentoProducao),
		}
	case models.TipoBezerro:
		peso := strings.TrimSpace(in.PesoNascimento)
		if peso != "" {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(peso, ",", "."), 64); err != nil {
				return models.Animal{}, &models.ErroValidacao{Campo: "pesoNascimento", Mensagem: "peso ao nascer deve ser um número"}
			}
		}

		if err := s.validarFiliacao(ctx, donoID, animalID, in.IDMae, in.IDTouroPai); err != nil {
			return models.Animal{}, err
		}

		animal.Bezerro = &models.BezerroDados{
			PesoNascimento:         peso,
			DataDesmame:            strings.TrimSpace(in.DataDesmame),
			DataPrimeiroCio:        strings.TrimSpace(in.DataPrimeiroCio),
			DataInseminacaoBezerra: strings.TrimSpace(in.DataInseminacaoBezerra),
			IDMae:                  in.IDMae,
			IDTouroPai:             in.IDTouroPai,
		}
	}

	return animal, nil
}

// validarFiliacao checks that parent references point at existing animals of
// the owner with the appropriate sex. References are only validated at write
// time; deleting a parent later leaves a dangling id, which is accepted.
func (s *Service) validarFiliacao(ctx context.Context, donoID, animalID, idMae, idTouroPai string) error {
	if idMae == "" && idTouroPai == "" {
		return nil
	}

	if idMae != "" && idMae == animalID {
		return &models.ErroValidacao{Campo: "idMae", Mensagem: "um animal não pode ser a própria mãe"}
	}
	if idTouroPai != "" && idTouroPai == animalID {
		return &models.ErroValidacao{Campo: "idTouroPai", Mensagem: "um animal não pode ser o próprio pai"}
	}

	animais, err := s.repo.Listar(ctx, donoID)
	if err != nil {
		return &models.ErroPersistencia{Op: "listar candidatos a filiação", Err: err}
	}

	porID := make(map[string]models.Animal, len(animais))
	for _, a := range animais {
		porID[a.ID] = a
	}

	if idMae != "" {
		mae, ok := porID[idMae]
		if !ok || mae.Sexo != models.SexoFemea {
			return &models.ErroValidacao{Campo: "idMae", Mensagem: "a mãe deve ser um animal fêmea existente"}
		}
	}
	if idTouroPai != "" {
		pai, ok := porID[idTouroPai]
		if !ok || pai.Sexo != models.SexoMacho {
			return &models.ErroValidacao{Campo: "idTouroPai", Mensagem: "o pai deve ser um animal macho existente"}
		}
	}

	return nil
}

// coagirNumPartos turns the free-text parturition count into a non-negative
// integer. Empty, non-numeric or negative input collapses to zero.
func coagirNumPartos(texto string) int {
	n, err := strconv.Atoi(strings.TrimSpace(texto))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
