package validator_test

import (
	"strings"
	"testing"

	"mood-diary/src/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordDTO struct {
	Mood        string `validate:"omitempty,mood_id"`
	Note        string `validate:"max=20,safe_text"`
	RemovePhoto string `validate:"omitempty,bool_flag"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := validator.NewCustomValidator()

	t.Run("有効なDTO", func(t *testing.T) {
		dto := recordDTO{Mood: "2", Note: "今日は晴れ\n散歩した", RemovePhoto: "on"}
		assert.NoError(t, v.Validate(&dto))
		assert.NoError(t, v.Validate(&recordDTO{}))
	})

	t.Run("無効な値", func(t *testing.T) {
		tests := []struct {
			name string
			dto  recordDTO
			tag  string
		}{
			{"気分が数値でない", recordDTO{Mood: "red"}, "mood_id"},
			{"気分が小数", recordDTO{Mood: "2.0"}, "mood_id"},
			{"気分が負数", recordDTO{Mood: "-1"}, "mood_id"},
			{"気分が桁あふれ", recordDTO{Mood: "12345678901"}, "mood_id"},
			{"制御文字", recordDTO{Note: "a\x00b"}, "safe_text"},
			{"長すぎるメモ", recordDTO{Note: strings.Repeat("あ", 21)}, "max"},
			{"フラグの値", recordDTO{RemovePhoto: "maybe"}, "bool_flag"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := v.Validate(&tt.dto)
				require.Error(t, err)
				verrs, ok := err.(validator.ValidationErrors)
				require.True(t, ok)
				require.Len(t, verrs.Errors, 1)
				assert.Equal(t, tt.tag, verrs.Errors[0].Tag)
				assert.NotEmpty(t, verrs.Errors[0].Message)
			})
		}
	})
}

func TestCustomValidator_ValidateID(t *testing.T) {
	v := validator.NewCustomValidator()

	id, err := v.ValidateID("123")
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	for _, bad := range []string{"", "0", "-1", "abc", "1; DROP", "12345678901"} {
		_, err := v.ValidateID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFlag(t *testing.T) {
	assert.True(t, validator.ParseFlag("on"))
	assert.True(t, validator.ParseFlag("true"))
	assert.True(t, validator.ParseFlag("1"))
	assert.False(t, validator.ParseFlag(""))
	assert.False(t, validator.ParseFlag("false"))
}
