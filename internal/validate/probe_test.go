package validate

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlprobe/sqlprobe/internal/errs"
)

func fixedSynthesizer() *ValueSynthesizer {
	v := NewValueSynthesizer()
	v.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	}
	return v
}

func TestBuildProcedureCall(t *testing.T) {
	obj := CatalogObject{Schema: "dbo", Name: "usp_orders", Type: Procedure}
	params := []FormalParameter{
		{Name: "@customer", TypeName: "nvarchar"},
		{Name: "@since", TypeName: "datetime"},
		{Name: "@total", TypeName: "money", IsOutput: true},
	}

	got := buildProcedureCall(obj, params, fixedSynthesizer())
	want := "DECLARE @total money; " +
		"EXEC [dbo].[usp_orders] @customer = N'X', @since = '20260831 14:30:00', @total = @total OUTPUT"
	assert.Equal(t, want, got)
}

func TestBuildProcedureCallNoParameters(t *testing.T) {
	obj := CatalogObject{Schema: "dbo", Name: "usp_ping", Type: Procedure}
	got := buildProcedureCall(obj, nil, fixedSynthesizer())
	assert.Equal(t, "EXEC [dbo].[usp_ping]", got)
}

func TestBuildFunctionCall(t *testing.T) {
	tests := []struct {
		name string
		typ  ObjectType
		want string
	}{
		{
			name: "scalar function selects the value",
			typ:  ScalarFunction,
			want: "SELECT [dbo].[fn_tax](1)",
		},
		{
			name: "inline function selects from the call",
			typ:  InlineFunction,
			want: "SELECT * FROM [dbo].[fn_tax](1)",
		},
		{
			name: "table function selects from the call",
			typ:  TableFunction,
			want: "SELECT * FROM [dbo].[fn_tax](1)",
		},
	}

	params := []FormalParameter{{Name: "@rate", TypeName: "int"}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := CatalogObject{Schema: "dbo", Name: "fn_tax", Type: tt.typ}
			assert.Equal(t, tt.want, buildFunctionCall(obj, params, fixedSynthesizer()))
		})
	}
}

func TestProbeViewIsBoundedToOneRow(t *testing.T) {
	db, mock := newMockSession(t)
	p := NewExecutionProber(db)

	obj := CatalogObject{Schema: "sales", Name: "vw_totals", Type: View}

	mock.ExpectQuery(exact("SELECT TOP 1 * FROM [sales].[vw_totals]")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}))

	stmt, err := p.Probe(context.Background(), obj)
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 1 * FROM [sales].[vw_totals]", stmt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeProcedureBindsIntrospectedParameters(t *testing.T) {
	db, mock := newMockSession(t)
	p := NewExecutionProber(db)

	obj := CatalogObject{Schema: "dbo", Name: "usp_lookup", Type: Procedure}

	mock.ExpectQuery(`FROM sys\.objects o`).
		WithArgs("dbo", "usp_lookup").
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "type", "is_output", "default"}).
			AddRow("@name", "nvarchar", false, nil).
			AddRow("@found", "bit", true, nil))

	mock.ExpectExec(exact(
		"DECLARE @found bit; EXEC [dbo].[usp_lookup] @name = N'X', @found = @found OUTPUT")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := p.Probe(context.Background(), obj)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeScalarFunctionUsesExplicitSelect(t *testing.T) {
	db, mock := newMockSession(t)
	p := NewExecutionProber(db)

	obj := CatalogObject{Schema: "dbo", Name: "fn_vat", Type: ScalarFunction}

	mock.ExpectQuery(`FROM sys\.objects o`).
		WithArgs("dbo", "fn_vat").
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "type", "is_output", "default"}).
			AddRow("@amount", "money", false, nil))

	mock.ExpectQuery(exact("SELECT [dbo].[fn_vat](1)")).
		WillReturnRows(sqlmock.NewRows([]string{"vat"}).AddRow(1))

	_, err := p.Probe(context.Background(), obj)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeReportsEngineError(t *testing.T) {
	db, mock := newMockSession(t)
	p := NewExecutionProber(db)

	obj := CatalogObject{Schema: "sales", Name: "vw_totals", Type: View}

	mock.ExpectQuery(exact("SELECT TOP 1 * FROM [sales].[vw_totals]")).
		WillReturnError(mssql.Error{Number: 208, Message: "Invalid object name 'orders'."})

	stmt, err := p.Probe(context.Background(), obj)
	require.Error(t, err)
	assert.True(t, errs.IsExecFailed(err))
	assert.Contains(t, err.Error(), "Invalid object name")
	assert.NotEmpty(t, stmt)
}

func TestProbeFailsWhenIntrospectionFails(t *testing.T) {
	db, mock := newMockSession(t)
	p := NewExecutionProber(db)

	obj := CatalogObject{Schema: "dbo", Name: "usp_lookup", Type: Procedure}

	mock.ExpectQuery(`FROM sys\.objects o`).
		WithArgs("dbo", "usp_lookup").
		WillReturnError(assert.AnError)

	_, err := p.Probe(context.Background(), obj)
	require.Error(t, err)
	assert.True(t, errs.IsExecFailed(err))
}
