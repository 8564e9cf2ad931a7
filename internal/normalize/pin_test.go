package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPIN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"at end", "Cash pickup 12345678901", "12345678901"},
		{"in middle", "Wallet payout ref 12345678901 confirmed", "12345678901"},
		{"at start", "12345678901 settled via channel", "12345678901"},
		{"entire text", "12345678901", "12345678901"},
		{"first of two wins", "retry 11111111111 after 22222222222", "11111111111"},
		{"no digits", "Monthly service charge", ""},
		{"ten digits", "ref 1234567890 pending", ""},
		{"twelve digits", "acct 123456789012 pending", ""},
		{"thirteen digit run", "card 4098211734562", ""},
		{"long run then pin", "acct 409821173456201 ref 12345678901", "12345678901"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPIN(tt.text))
		})
	}
}

func TestValidPIN(t *testing.T) {
	assert.True(t, ValidPIN("12345678901"))
	assert.False(t, ValidPIN("1234567890"))
	assert.False(t, ValidPIN("123456789012"))
	assert.False(t, ValidPIN("1234567890a"))
	assert.False(t, ValidPIN(" 12345678901"))
	assert.False(t, ValidPIN(""))
}
