package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/errs"
)

// definitionQuery reconstructs an object's source text. The engine splits
// long definitions across multiple rows; fragment order is the engine's.
const definitionQuery = `EXEC sp_helptext @p1`

// DefinitionFetcher retrieves the full source text of one catalog object.
type DefinitionFetcher struct {
	db database.Session
}

// NewDefinitionFetcher creates a DefinitionFetcher on the given session.
func NewDefinitionFetcher(db database.Session) *DefinitionFetcher {
	return &DefinitionFetcher{db: db}
}

// Fetch returns the object's definition text, concatenating the fragments
// in engine-delivered order — never re-sorted.
//
// When the reconstruction call itself fails (object dropped concurrently,
// encrypted definition), Fetch returns an empty-text definition together
// with an ErrKindUnreadable error. This is non-fatal to the pass: the
// caller skips the object for compile and probe.
func (f *DefinitionFetcher) Fetch(ctx context.Context, obj CatalogObject) (ObjectDefinition, error) {
	def := ObjectDefinition{Object: obj}

	rows, err := f.db.Query(ctx, definitionQuery, obj.QualifiedName())
	if err != nil {
		return def, errs.Wrap(errs.ErrKindUnreadable,
			fmt.Sprintf("cannot read definition of %s", obj.QualifiedName()), err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var fragment string
		if err := rows.Scan(&fragment); err != nil {
			return def, errs.Wrap(errs.ErrKindUnreadable,
				fmt.Sprintf("cannot read definition of %s", obj.QualifiedName()), err)
		}
		b.WriteString(fragment)
	}
	if err := rows.Err(); err != nil {
		return def, errs.Wrap(errs.ErrKindUnreadable,
			fmt.Sprintf("cannot read definition of %s", obj.QualifiedName()), err)
	}

	def.Text = b.String()
	return def, nil
}
