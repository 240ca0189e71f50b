package persistence

import (
	"context"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DispatchAuditRepository appends batch summaries to MongoDB for operator
// review. The sink is optional; a nil client records nothing.
type DispatchAuditRepository struct {
	client *mongo.Client
	dbName string
}

func NewDispatchAuditRepository(client *mongo.Client, dbName string) repository.IDispatchAudit {
	return &DispatchAuditRepository{client: client, dbName: dbName}
}

func (r *DispatchAuditRepository) Record(ctx context.Context, summary *model.DispatchSummary) error {
	if r.client == nil || summary == nil {
		return nil
	}
	_, err := r.client.Database(r.dbName).Collection("dispatch_audit").InsertOne(ctx, summary)
	return err
}
