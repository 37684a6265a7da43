package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Title   string `form:"judul" validate:"notblank"`
	Mention string `form:"mention" validate:"omitempty,oneof=@everyone @here"`
	Port    int    `yaml:"port" validate:"min=1,max=65535"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(form{Title: "hello", Port: 80}))
	require.NoError(t, v.Struct(form{Title: "hello", Mention: "@here", Port: 80}))

	err := v.Struct(form{Title: "   ", Mention: "@someone", Port: 0})
	require.Error(t, err)

	fields := v.Fields(err)
	assert.Len(t, fields, 3)
	assert.Equal(t, "judul cannot be blank", fields["form.judul"])
	assert.Contains(t, fields, "form.mention")
	assert.Contains(t, fields, "form.port")
}

func TestValidator_Message(t *testing.T) {
	v := New()

	err := v.Struct(form{Title: "", Port: 1})
	assert.Equal(t, "judul cannot be blank", v.Message(err))

	assert.Equal(t, "boom", v.Message(errors.New("boom")))
	assert.Nil(t, v.Fields(errors.New("boom")))
}
