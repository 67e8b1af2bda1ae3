package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "Hello", "Hello"},
		{"exactly fifteen runes", "123456789012345", "123456789012345"},
		{"sixteen runes truncated", "1234567890123456", "123456789012345..."},
		{"long sentence", "Hello world this is long", "Hello world thi..."},
		{"empty", "", ""},
		{"cjk short", "你好，小周", "你好，小周"},
		{"cjk long counts runes not bytes", "一二三四五六七八九十一二三四五六七", "一二三四五六七八九十一二三四五..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveTitle(tt.text))
		})
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"user with text", Message{Role: RoleUser, Text: "hi"}, true},
		{"model with text", Message{Role: RoleModel, Text: "hello"}, true},
		{"empty text", Message{Role: RoleModel}, false},
		{"whitespace only", Message{Role: RoleModel, Text: "  \n\t "}, false},
		{"errored", Message{Role: RoleModel, Text: "**The assistant could not reply**", IsError: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.msg.Eligible())
		})
	}
}

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("hi there")
	require.NotEmpty(t, m.ID)
	require.Equal(t, RoleUser, m.Role)
	require.Equal(t, "hi there", m.Text)
	require.False(t, m.Timestamp.IsZero())
}

func TestNewModelPlaceholder(t *testing.T) {
	m := NewModelPlaceholder()
	require.NotEmpty(t, m.ID)
	require.Equal(t, RoleModel, m.Role)
	require.Empty(t, m.Text)
	require.False(t, m.Eligible())
}
