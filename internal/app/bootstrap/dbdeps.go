// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/clinicdash/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	ClinicDashMongoClient   *mongo.Client
	ClinicDashMongoDatabase *mongo.Database

	// AuditRetention sweeps expired audit events. Nil when retention is
	// disabled. Started in Startup, stopped in Shutdown.
	AuditRetention *workers.AuditRetention
}
