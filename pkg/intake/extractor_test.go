package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetRole(t *testing.T) {
	material := "# Resume\n\nSome experience.\n\n### Target Role\n\nBackend Engineer\n\n### Education\nBSc"
	assert.Equal(t, "Backend Engineer", ParseTargetRole(material))

	t.Run("no heading", func(t *testing.T) {
		assert.Empty(t, ParseTargetRole("no headings at all"))
	})

	t.Run("empty section", func(t *testing.T) {
		assert.Empty(t, ParseTargetRole("### Target Role\n### Education\nBSc"))
	})

	t.Run("case insensitive heading", func(t *testing.T) {
		assert.Equal(t, "SRE", ParseTargetRole("## TARGET ROLE\nSRE"))
	})
}

func TestExtract(t *testing.T) {
	ex := NewExtractor()

	out, err := ex.Extract(context.Background(), "# Resume\nSeven years of Go.\nLed a platform team.\n### Target Role\nStaff Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Seven years of Go. Led a platform team.", out.Profile)
	assert.Equal(t, "Staff Engineer", out.TargetRole)
}

func TestExtractRejectsEmptyMaterial(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), "  \n ")
	assert.Error(t, err)
}

func TestExtractBoundsProfileLength(t *testing.T) {
	material := ""
	for i := 0; i < 40; i++ {
		material += "line of experience text\n"
	}

	out, err := NewExtractor().Extract(context.Background(), material)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out.Profile), maxProfileLines*len("line of experience text "))
}
