package fileformat

import "fmt"

// Migration transforms a raw document from FromVersion to ToVersion. Each
// migration operates on the generic map[string]any decoding of the
// document rather than a typed Document, so it survives schema changes in
// either direction without depending on today's Go types (§4.7: "a
// registered chain of migration functions").
type Migration struct {
	FromVersion int
	ToVersion   int
	Apply       func(map[string]any) (map[string]any, error)
}

// migrations is the registered chain, applied in order whenever a loaded
// document's version is older than CurrentVersion. Each step's ToVersion
// must equal the next step's FromVersion; migrateToCurrent enforces this
// rather than trusting the chain is contiguous by construction.
var migrations = []Migration{
	{
		FromVersion: 1,
		ToVersion:   2,
		Apply:       migrateV1ToV2,
	},
}

// migrateV1ToV2 renames the v1 rollback cursor field "active_index" to
// "rollback_index" and adds an empty "project" object when absent; v1
// documents predate per-project metadata entirely.
func migrateV1ToV2(doc map[string]any) (map[string]any, error) {
	if v, ok := doc["active_index"]; ok {
		doc["rollback_index"] = v
		delete(doc, "active_index")
	}
	if _, ok := doc["project"]; !ok {
		doc["project"] = map[string]any{}
	}
	doc["version"] = 2
	return doc, nil
}

// migrateToCurrent walks the registered chain from doc's declared version
// up to CurrentVersion. Returns ErrFutureVersion if doc is newer than this
// build knows about.
func migrateToCurrent(doc map[string]any) (map[string]any, error) {
	version, err := docVersion(doc)
	if err != nil {
		return nil, err
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: document is version %d, build supports up to %d", ErrFutureVersion, version, CurrentVersion)
	}
	for version < CurrentVersion {
		step := findMigration(version)
		if step == nil {
			return nil, fmt.Errorf("%w: no migration registered from version %d", ErrMalformedJSON, version)
		}
		doc, err = step.Apply(doc)
		if err != nil {
			return nil, fmt.Errorf("migrate v%d->v%d: %w", step.FromVersion, step.ToVersion, err)
		}
		version = step.ToVersion
	}
	return doc, nil
}

func findMigration(from int) *Migration {
	for i := range migrations {
		if migrations[i].FromVersion == from {
			return &migrations[i]
		}
	}
	return nil
}

func docVersion(doc map[string]any) (int, error) {
	v, ok := doc["version"]
	if !ok {
		return 0, fmt.Errorf("%w: missing version", ErrMalformedJSON)
	}
	f, ok := v.(float64) // encoding/json decodes JSON numbers into map[string]any as float64
	if !ok {
		return 0, fmt.Errorf("%w: version is not a number", ErrMalformedJSON)
	}
	return int(f), nil
}
