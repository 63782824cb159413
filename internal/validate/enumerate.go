package validate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/report"
)

// schemaSeparationMajor is the first engine generation whose catalog keys
// objects by schema rather than by owner (SQL Server 2005).
const schemaSeparationMajor = 9

const versionQuery = `SELECT CONVERT(varchar(128), SERVERPROPERTY('ProductVersion'))`

// modernCatalogQuery enumerates user objects on schema-separation engines.
// sys.sql_modules records the session flags each object was created under.
const modernCatalogQuery = `
	SELECT SCHEMA_NAME(o.schema_id),
	       o.name,
	       RTRIM(o.type),
	       m.uses_quoted_identifier,
	       m.uses_ansi_nulls
	FROM sys.objects o
	JOIN sys.sql_modules m ON m.object_id = o.object_id
	WHERE o.type IN ('P', 'V', 'FN', 'IF', 'TF')
	  AND o.is_ms_shipped = 0
	ORDER BY SCHEMA_NAME(o.schema_id), o.name`

// legacyCatalogQuery enumerates user objects on pre-schema-separation
// engines, mapping owner to schema. category & 2 filters auto-generated
// system objects.
const legacyCatalogQuery = `
	SELECT USER_NAME(o.uid),
	       o.name,
	       RTRIM(o.xtype),
	       OBJECTPROPERTY(o.id, 'ExecIsQuotedIdentOn'),
	       OBJECTPROPERTY(o.id, 'ExecIsAnsiNullsOn')
	FROM sysobjects o
	WHERE o.xtype IN ('P', 'V', 'FN', 'IF', 'TF')
	  AND o.category & 2 = 0
	ORDER BY USER_NAME(o.uid), o.name`

// Enumerator detects the engine generation and lists the user-defined
// procedures, views, and functions of the connected database.
type Enumerator struct {
	db  database.Session
	rep *report.Reporter
}

// NewEnumerator creates an Enumerator on the given session.
func NewEnumerator(db database.Session, rep *report.Reporter) *Enumerator {
	return &Enumerator{db: db, rep: rep}
}

// EngineMajorVersion reports the engine's major version number.
func (e *Enumerator) EngineMajorVersion(ctx context.Context) (int, error) {
	var version string
	if err := e.db.QueryRow(ctx, versionQuery).Scan(&version); err != nil {
		return 0, fmt.Errorf("detect engine version: %w", err)
	}

	majorText, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(strings.TrimSpace(majorText))
	if err != nil {
		return 0, fmt.Errorf("unparseable engine version %q: %w", version, err)
	}
	return major, nil
}

// List returns every user-defined procedure, view, and function, ordered by
// schema then name. Any failure here is fatal to the pass — there is no
// partial enumeration.
func (e *Enumerator) List(ctx context.Context) ([]CatalogObject, error) {
	major, err := e.EngineMajorVersion(ctx)
	if err != nil {
		return nil, err
	}

	if major >= schemaSeparationMajor {
		e.rep.Infof("engine version %d: schema-based catalog", major)
		return e.listModern(ctx)
	}
	e.rep.Infof("engine version %d: owner-based catalog", major)
	return e.listLegacy(ctx)
}

func (e *Enumerator) listModern(ctx context.Context) ([]CatalogObject, error) {
	rows, err := e.db.Query(ctx, modernCatalogQuery)
	if err != nil {
		return nil, fmt.Errorf("enumerate objects: %w", err)
	}
	defer rows.Close()

	var objects []CatalogObject
	for rows.Next() {
		var (
			schema, name, code string
			quoted, ansi       sql.NullBool
		)
		if err := rows.Scan(&schema, &name, &code, &quoted, &ansi); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		obj, ok := newCatalogObject(schema, name, code, quoted.Valid && quoted.Bool, ansi.Valid && ansi.Bool)
		if !ok {
			continue
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enumerate objects: %w", err)
	}
	return objects, nil
}

func (e *Enumerator) listLegacy(ctx context.Context) ([]CatalogObject, error) {
	rows, err := e.db.Query(ctx, legacyCatalogQuery)
	if err != nil {
		return nil, fmt.Errorf("enumerate objects: %w", err)
	}
	defer rows.Close()

	var objects []CatalogObject
	for rows.Next() {
		var (
			schema, name, code string
			quoted, ansi       sql.NullInt64
		)
		if err := rows.Scan(&schema, &name, &code, &quoted, &ansi); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		obj, ok := newCatalogObject(schema, name, code, quoted.Int64 == 1, ansi.Int64 == 1)
		if !ok {
			continue
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enumerate objects: %w", err)
	}
	return objects, nil
}

func newCatalogObject(schema, name, code string, quoted, ansi bool) (CatalogObject, bool) {
	typ, ok := objectTypeFromCode(code)
	if !ok {
		return CatalogObject{}, false
	}
	return CatalogObject{
		Schema:           schema,
		Name:             name,
		Type:             typ,
		QuotedIdentifier: quoted,
		AnsiNulls:        ansi,
	}, true
}
