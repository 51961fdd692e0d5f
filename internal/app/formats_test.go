package app

import (
	"slices"
	"testing"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRenderer(t *testing.T) {
	deps := renderer.NewDependencies(renderer.Dependencies{})

	tests := []struct {
		name string
		want string
	}{
		{FormatSite, "site"},
		{FormatJSON, "json"},
		{FormatMarkdown, "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CreateRenderer(tt.name, deps)
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.Name())
			assert.NotEmpty(t, r.Description())
		})
	}

	assert.Nil(t, CreateRenderer("pdf", deps))
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry(nil)

	assert.Equal(t, []string{"json", "markdown", "site"}, slices.Collect(reg.Names()))

	desc, err := reg.Resolve("SITE")
	require.NoError(t, err)
	assert.Equal(t, "site", desc.Name)

	_, err = reg.Resolve("doesNotExist")
	var unknown *domain.UnknownFormatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"json", "markdown", "site"}, unknown.Known)
}
