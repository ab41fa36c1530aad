package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
)

const animaisCollName = "animais"

// AnimalRepository persists herd documents in a single owner-scoped
// collection. Every query filters on the dono field, so one account can
// never read or mutate another account's animals.
type AnimalRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewAnimalRepository builds the MongoDB-backed herd repository.
func NewAnimalRepository(db *mongo.Database, logger *zap.Logger) *AnimalRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimalRepository{
		coll:   db.Collection(animaisCollName),
		logger: logger,
	}
}

// Inserir writes a new document and returns its assigned key.
func (r *AnimalRepository) Inserir(ctx context.Context, animal models.Animal) (string, error) {
	animal.ID = primitive.NewObjectID().Hex()

	if _, err := r.coll.InsertOne(ctx, animal); err != nil {
		return "", fmt.Errorf("insert animal: %w", err)
	}
	return animal.ID, nil
}

// Buscar loads one document of the owner.
func (r *AnimalRepository) Buscar(ctx context.Context, donoID, animalID string) (models.Animal, error) {
	var animal models.Animal
	err := r.coll.FindOne(ctx, bson.M{"_id": animalID, "dono": donoID}).Decode(&animal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Animal{}, models.ErrAnimalNaoEncontrado
		}
		return models.Animal{}, fmt.Errorf("find animal: %w", err)
	}
	return animal, nil
}

// Listar returns the owner's documents in creation order.
func (r *AnimalRepository) Listar(ctx context.Context, donoID string) ([]models.Animal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"dono": donoID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}

	animais := make([]models.Animal, 0)
	if err := cursor.All(ctx, &animais); err != nil {
		return nil, fmt.Errorf("decode animals: %w", err)
	}
	return animais, nil
}

// Atualizar overwrites the mutable fields with a single $set. The non-active
// type variant is removed in the same write, so a type change leaves no stale
// fields behind. CreatedAt and the event logs are never part of this update.
func (r *AnimalRepository) Atualizar(ctx context.Context, animal models.Animal) error {
	set := bson.M{
		"brinco":         animal.Brinco,
		"nome":           animal.Nome,
		"tipo":           animal.Tipo,
		"sexo":           animal.Sexo,
		"raca":           animal.Raca,
		"dataNascimento": animal.DataNascimento,
	}
	unset := bson.M{}

	switch {
	case animal.Vaca != nil:
		set["vaca"] = animal.Vaca
		unset["bezerro"] = ""
	case animal.Bezerro != nil:
		set["bezerro"] = animal.Bezerro
		unset["vaca"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": animal.ID, "dono": animal.DonoID}, update)
	if err != nil {
		return fmt.Errorf("update animal: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrAnimalNaoEncontrado
	}
	return nil
}

// AnexarEvento appends the record to its log with an atomic $push. This is
// deliberately not a read-modify-write of the whole document: concurrent
// appends to different logs of the same animal must both survive.
func (r *AnimalRepository) AnexarEvento(ctx context.Context, donoID, animalID string, registro models.Evento) error {
	update := bson.M{"$push": bson.M{string(registro.Log()): registro}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": animalID, "dono": donoID}, update)
	if err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrAnimalNaoEncontrado
	}
	return nil
}

// Excluir removes the document; the embedded logs go with it. Deleting an
// absent id is not an error.
func (r *AnimalRepository) Excluir(ctx context.Context, donoID, animalID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": animalID, "dono": donoID}); err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	return nil
}

// Observar streams snapshots of one document: the current state first, then
// one per remote mutation, via a change stream. The stream and the channel
// are released when ctx is cancelled; a delete ends the stream.
func (r *AnimalRepository) Observar(ctx context.Context, donoID, animalID string) (<-chan models.Animal, error) {
	inicial, err := r.Buscar(ctx, donoID, animalID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: animalID}}}},
	}
	stream, err := r.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("watch animal: %w", err)
	}

	out := make(chan models.Animal, 1)

	go func() {
		defer close(out)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				r.logger.Warn("failed closing change stream", zap.Error(err))
			}
		}()

		select {
		case out <- inicial:
		case <-ctx.Done():
			return
		}

		for stream.Next(ctx) {
			var ev struct {
				OperationType string        `bson:"operationType"`
				FullDocument  models.Animal `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				r.logger.Warn("failed decoding change event", zap.Error(err))
				return
			}
			if ev.OperationType == "delete" {
				return
			}

			select {
			case out <- ev.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// ObservarRebanho streams full-herd snapshots for the owner. Each change
// event triggers a re-read of the owner's collection; delete events carry no
// full document, so they are matched unconditionally and resolved by the
// re-read.
func (r *AnimalRepository) ObservarRebanho(ctx context.Context, donoID string) (<-chan []models.Animal, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullDocument.dono", Value: donoID}},
			bson.D{{Key: "operationType", Value: "delete"}},
		}}}}},
	}
	stream, err := r.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("watch herd: %w", err)
	}

	out := make(chan []models.Animal, 1)

	go func() {
		defer close(out)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				r.logger.Warn("failed closing change stream", zap.Error(err))
			}
		}()

		for {
			lista, err := r.Listar(ctx, donoID)
			if err != nil {
				r.logger.Warn("failed reloading herd snapshot", zap.Error(err))
				return
			}

			select {
			case out <- lista:
			case <-ctx.Done():
				return
			}

			if !stream.Next(ctx) {
				return
			}
		}
	}()

	return out, nil
}
