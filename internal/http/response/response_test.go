package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	resp := OK("done")
	assert.True(t, resp.Success)
	assert.Equal(t, "done", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestOKWithData(t *testing.T) {
	data := map[string]any{"id": 1}
	resp := OKWithData("created", data)
	assert.True(t, resp.Success)
	assert.Equal(t, "created", resp.Message)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")
	assert.False(t, resp.Success)
	assert.Equal(t, "something went wrong", resp.Message)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Username string `validate:"required,alphanum,min=3,max=50"`
		Password string `validate:"required,min=8"`
	}

	tests := []struct {
		name string
		in   payload
		want string
	}{
		{
			name: "required fields",
			in:   payload{},
			want: "field Email is a required field, field Username is a required field, field Password is a required field",
		},
		{
			name: "invalid email",
			in:   payload{Email: "not-an-email", Username: "user1", Password: "password123"},
			want: "field Email must be a valid email address",
		},
		{
			name: "too short username and password",
			in:   payload{Email: "a@b.com", Username: "ab", Password: "short"},
			want: "field Username is too short, field Password is too short",
		},
		{
			name: "non-alphanumeric username",
			in:   payload{Email: "a@b.com", Username: "user name", Password: "password123"},
			want: "field Username can contain only numbers and letters",
		},
	}

	v := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.want, resp.Message)
		})
	}
}
