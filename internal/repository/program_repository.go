package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitly/scheduler/internal/model"
)

// ProgramRepository stores fleets and their vehicles in the `programs`
// collection. Program names are unique (enforced by index).
type ProgramRepository struct {
	collection *mongo.Collection
}

// NewProgramRepository creates a repository over the `programs` collection.
func NewProgramRepository(database *mongo.Database) *ProgramRepository {
	return &ProgramRepository{collection: database.Collection("programs")}
}

// Create inserts a new program.
func (r *ProgramRepository) Create(ctx context.Context, program *model.Program) (*model.Program, error) {
	if _, err := r.collection.InsertOne(ctx, program); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create program: %w", err)
	}
	return r.GetByID(ctx, program.ID)
}

// List returns all programs, newest first.
func (r *ProgramRepository) List(ctx context.Context) ([]model.Program, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer cursor.Close(ctx)

	programs := []model.Program{}
	if err := cursor.All(ctx, &programs); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	return programs, nil
}

// GetByID fetches one program by id.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*model.Program, error) {
	return r.getOne(ctx, bson.M{"id": id})
}

// GetByName fetches one program by its unique name.
func (r *ProgramRepository) GetByName(ctx context.Context, name string) (*model.Program, error) {
	return r.getOne(ctx, bson.M{"name": name})
}

func (r *ProgramRepository) getOne(ctx context.Context, filter bson.M) (*model.Program, error) {
	var program model.Program
	err := r.collection.FindOne(ctx, filter).Decode(&program)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return &program, nil
}

// Update replaces a program's name and vehicle list and bumps updated_at.
func (r *ProgramRepository) Update(ctx context.Context, id string, update *model.Program) (*model.Program, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Vehicles != nil {
		set["vehicles"] = update.Vehicles
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("update program: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a program.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVehicle appends a vehicle to a program's fleet.
func (r *ProgramRepository) AddVehicle(ctx context.Context, programID string, vehicle model.Vehicle) (*model.Program, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"id": programID},
		bson.M{
			"$push": bson.M{"vehicles": vehicle},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return nil, fmt.Errorf("add vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, programID)
}

// UpdateVehicle replaces one vehicle in a program's fleet.
func (r *ProgramRepository) UpdateVehicle(ctx context.Context, programID, vehicleID string, vehicle model.Vehicle) (*model.Program, error) {
	vehicle.ID = vehicleID
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"id": programID, "vehicles.id": vehicleID},
		bson.M{"$set": bson.M{
			"vehicles.$": vehicle,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, programID)
}

// DeleteVehicle removes one vehicle from a program's fleet.
func (r *ProgramRepository) DeleteVehicle(ctx context.Context, programID, vehicleID string) (*model.Program, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"id": programID},
		bson.M{
			"$pull": bson.M{"vehicles": bson.M{"id": vehicleID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return nil, fmt.Errorf("delete vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, programID)
}
