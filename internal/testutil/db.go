package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/arenahub/internal/app/system/indexes"
)

// testMongoURI returns the MongoDB URI for tests. Override with
// ARENAHUB_TEST_MONGO_URI to point tests at a different server.
func testMongoURI() string {
	if uri := os.Getenv("ARENAHUB_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// SetupTestDB connects to the test MongoDB server and returns a database
// unique to the calling test. The database is dropped and the client
// disconnected on cleanup. Tests are skipped when no server is reachable
// so the suite can run without local infrastructure.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testMongoURI()))
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("mongodb not reachable: %v", err)
	}

	dbName := fmt.Sprintf("arenahub_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)

	// Stores lean on unique indexes for duplicate detection, so tests get
	// the same schema production does.
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer idxCancel()
	if err := indexes.EnsureAll(idxCtx, db); err != nil {
		_ = db.Drop(idxCtx)
		_ = client.Disconnect(idxCtx)
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a timeout suitable for a single
// test's database operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
