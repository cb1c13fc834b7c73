// Package database opens and migrates the bridge's SQLite store.
//
// The store holds the discovered-sensor inventory and scan history that
// internal/discovery persists: which devices are on the bus, how each
// multisensor classified, which secondaries are wired to it, and when it
// was last seen. SQLite fits the deployment: one bridge per bus segment,
// a handful of writes per scan, reads served to the REST API.
//
// WAL mode keeps inventory reads available while a scan commits. Foreign
// keys are always enabled; the associated_with relationship depends on
// them. Migrations are embedded (see the migrations package) and applied
// at startup:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.Files); err != nil {
//	    return err
//	}
//
// Schema changes are additive: new columns are nullable or defaulted,
// and every migration ships a down file for development rollback.
package database
