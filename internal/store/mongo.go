package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/report"
	"github.com/annybogatova/tmanagement/internal/logging"
)

const (
	graphsCollection   = "task_graphs"
	summariesCollection = "run_summaries"
)

// MongoConfig configures a MongoTaskGraphRepository connection.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DefaultMongoConfig mirrors the conservative timeouts the teacher's own
// mongodb client wrapper applies for Atlas connections.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		ConnectTimeout: 10 * time.Second,
	}
}

// MongoTaskGraphRepository is a TaskGraphRepository backed by MongoDB.
type MongoTaskGraphRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logging.Logger
}

// NewMongoTaskGraphRepository connects to MongoDB and verifies reachability
// with a ping, following the same connect-then-ping pattern the teacher's
// mongodb client wrapper uses for Atlas clusters.
func NewMongoTaskGraphRepository(ctx context.Context, cfg *MongoConfig, logger *logging.Logger) (*MongoTaskGraphRepository, error) {
	if cfg == nil {
		cfg = DefaultMongoConfig()
	}
	if logger == nil {
		logger = logging.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to mongo task graph store", "connection_string", maskConnectionString(cfg.URI))

	return &MongoTaskGraphRepository{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (r *MongoTaskGraphRepository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

type graphDocument struct {
	ID          string       `bson:"_id"`
	Tasks       []graph.Task `bson:"tasks"`
	MaxResource int          `bson:"maxResource"`
}

// SaveGraph upserts a named task graph.
func (r *MongoTaskGraphRepository) SaveGraph(ctx context.Context, name string, g graph.Graph) error {
	doc := graphDocument{ID: name, Tasks: g.Tasks, MaxResource: g.MaxResource}
	opts := options.Replace().SetUpsert(true)
	_, err := r.db.Collection(graphsCollection).ReplaceOne(ctx, bson.M{"_id": name}, doc, opts)
	if err != nil {
		return fmt.Errorf("save graph %q: %w", name, err)
	}
	return nil
}

// LoadGraph retrieves a named task graph.
func (r *MongoTaskGraphRepository) LoadGraph(ctx context.Context, name string) (graph.Graph, error) {
	var doc graphDocument
	err := r.db.Collection(graphsCollection).FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return graph.Graph{}, fmt.Errorf("graph %q not found: %w", name, err)
		}
		return graph.Graph{}, fmt.Errorf("load graph %q: %w", name, err)
	}
	return graph.Graph{Tasks: doc.Tasks, MaxResource: doc.MaxResource}, nil
}

type runSummaryDocument struct {
	GraphName string          `bson:"graphName"`
	StoredAt  time.Time       `bson:"storedAt"`
	Summary   report.Summary `bson:"summary"`
}

// SaveRunSummary appends a run summary for a named graph.
func (r *MongoTaskGraphRepository) SaveRunSummary(ctx context.Context, graphName string, summary report.Summary) error {
	doc := runSummaryDocument{GraphName: graphName, StoredAt: time.Now(), Summary: summary}
	_, err := r.db.Collection(summariesCollection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("save run summary for %q: %w", graphName, err)
	}
	return nil
}

// ListRunSummaries returns every stored run summary for a named graph, most
// recent first.
func (r *MongoTaskGraphRepository) ListRunSummaries(ctx context.Context, graphName string) ([]report.Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "storedAt", Value: -1}})
	cursor, err := r.db.Collection(summariesCollection).Find(ctx, bson.M{"graphName": graphName}, opts)
	if err != nil {
		return nil, fmt.Errorf("list run summaries for %q: %w", graphName, err)
	}
	defer cursor.Close(ctx)

	var docs []runSummaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode run summaries for %q: %w", graphName, err)
	}

	summaries := make([]report.Summary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, d.Summary)
	}
	return summaries, nil
}

// maskConnectionString hides the credential portion of a mongo URI before
// it reaches a log line.
func maskConnectionString(uri string) string {
	if idx := strings.Index(uri, "@"); idx >= 0 {
		if schemeIdx := strings.Index(uri, "://"); schemeIdx >= 0 && schemeIdx < idx {
			return uri[:schemeIdx+3] + "***@" + uri[idx+1:]
		}
	}
	return uri
}

var _ TaskGraphRepository = (*MongoTaskGraphRepository)(nil)
