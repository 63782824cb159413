package validate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlprobe/sqlprobe/internal/database"
)

// parameterQuery returns the formal parameters of one procedure-like
// object. The ORDER BY is a correctness requirement: the prober binds
// parameters in declaration order.
//
// default_value is selected for completeness but is always NULL for T-SQL
// modules — synthetic values come from the type registry instead.
const parameterQuery = `
	SELECT p.name,
	       t.name,
	       p.is_output,
	       p.default_value
	FROM sys.objects o
	JOIN sys.parameters p ON p.object_id = o.object_id
	JOIN sys.types t ON t.user_type_id = p.user_type_id
	WHERE o.type IN ('P', 'FN', 'IF', 'TF')
	  AND SCHEMA_NAME(o.schema_id) = @p1
	  AND o.name = @p2
	  AND p.parameter_id > 0
	ORDER BY p.parameter_id`

// ParameterIntrospector retrieves the formal parameter list of one object.
type ParameterIntrospector struct {
	db database.Session
}

// NewParameterIntrospector creates a ParameterIntrospector on the given session.
func NewParameterIntrospector(db database.Session) *ParameterIntrospector {
	return &ParameterIntrospector{db: db}
}

// List returns the object's parameters in declaration order.
func (pi *ParameterIntrospector) List(ctx context.Context, schema, name string) ([]FormalParameter, error) {
	rows, err := pi.db.Query(ctx, parameterQuery, schema, name)
	if err != nil {
		return nil, fmt.Errorf("introspect parameters of %s.%s: %w", schema, name, err)
	}
	defer rows.Close()

	var params []FormalParameter
	for rows.Next() {
		var (
			p          FormalParameter
			defaultVal sql.NullString
		)
		if err := rows.Scan(&p.Name, &p.TypeName, &p.IsOutput, &defaultVal); err != nil {
			return nil, fmt.Errorf("scan parameter row: %w", err)
		}
		if defaultVal.Valid {
			v := defaultVal.String
			p.Default = &v
		}
		params = append(params, p)
	}
	return params, rows.Err()
}
