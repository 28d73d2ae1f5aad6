package i18n

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", English},
		{"en-US", English},
		{"fr", French},
		{"FR-ca", French},
		{"fr_FR,fr;q=0.9,en;q=0.8", French},
		{"de", English},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.input), "Normalize(%q)", c.input)
	}
}

func TestBundle_T(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Warning deleted", b.T("en", "warning_deleted"))
	assert.Equal(t, "Avertissement supprimé", b.T("fr-FR", "warning_deleted"))
	assert.Equal(t, "The raison field is required", b.T("en", "field_required", "raison"))
	assert.Equal(t, "Le champ raison est obligatoire", b.T("fr", "field_required", "raison"))
	assert.Equal(t, "no_such_key", b.T("fr", "no_such_key"))
}

func TestBundle_EveryKeyTranslated(t *testing.T) {
	for key := range messages[English] {
		_, ok := messages[French][key]
		assert.True(t, ok, "missing French text for %q", key)
	}
	for key := range messages[French] {
		_, ok := messages[English][key]
		assert.True(t, ok, "missing English text for %q", key)
	}
}

func TestBundle_RegisterValidator(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, b.RegisterValidator(validate))

	var req struct {
		Raison string `validate:"required"`
	}
	err = validate.Struct(req)
	require.Error(t, err)

	verrs := err.(validator.ValidationErrors)
	assert.Contains(t, verrs[0].Translate(b.Translator("en")), "Raison")
	assert.NotEqual(t, verrs[0].Translate(b.Translator("en")), verrs[0].Translate(b.Translator("fr")))
}
