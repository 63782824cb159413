package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := KeywordClassifier{}

	tests := []struct {
		name string
		text string
		safe bool
	}{
		{
			name: "plain select is safe",
			text: "CREATE VIEW v AS SELECT * FROM x",
			safe: true,
		},
		{
			name: "drop table is unsafe",
			text: "CREATE PROCEDURE p AS DROP TABLE x",
			safe: false,
		},
		{
			name: "lowercase delete is unsafe",
			text: "create procedure p as delete from t",
			safe: false,
		},
		{
			name: "mixed case update is unsafe",
			text: "CREATE PROCEDURE p AS UpDaTe t SET c = 1",
			safe: false,
		},
		{
			name: "exec of another procedure is unsafe",
			text: "CREATE PROCEDURE p AS EXEC other_proc",
			safe: false,
		},
		{
			name: "second create is unsafe",
			text: "CREATE PROCEDURE p AS CREATE TABLE #tmp (id int)",
			safe: false,
		},
		{
			name: "keyword inside identifier trips the scan",
			// Conservative by design: substring match, not tokens.
			text: "CREATE VIEW v AS SELECT * FROM order_updates",
			safe: false,
		},
		{
			name: "keyword inside string literal trips the scan",
			text: "CREATE PROCEDURE p AS SELECT 'please do not DELETE this row'",
			safe: false,
		},
		{
			name: "empty text is safe",
			text: "",
			safe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.safe, c.SideEffectFree(tt.text))
		})
	}
}

func TestKeywordClassifierStripsOnlyFirstCreate(t *testing.T) {
	c := KeywordClassifier{}

	// The defining CREATE is ignored; anything after it counts.
	assert.True(t, c.SideEffectFree("CREATE FUNCTION f() RETURNS int AS BEGIN RETURN 1 END"))
	assert.False(t, c.SideEffectFree("CREATE PROCEDURE p AS BEGIN CREATE TABLE t (id int) END"))
}
