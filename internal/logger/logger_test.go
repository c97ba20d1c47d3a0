package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactKVs(t *testing.T) {
	out := redactKVs([]interface{}{
		"api_key", "sk-1234567890abcdef",
		"user_id", "u1",
		"authorization", "Bearer abcdefghijklmnop",
	})

	assert.Equal(t, "sk-1...[REDACTED]", out[1])
	assert.Equal(t, "u1", out[3])
	assert.Equal(t, "Bear...[REDACTED]", out[5])
}

func TestRedactShortSecrets(t *testing.T) {
	out := redactKVs([]interface{}{"token", "abc"})
	assert.Equal(t, "[REDACTED]", out[1])
}

func TestRedactNonStringSecret(t *testing.T) {
	out := redactKVs([]interface{}{"password", 12345})
	assert.Equal(t, "[REDACTED]", out[1])
}

func TestOddKVsPassThrough(t *testing.T) {
	in := []interface{}{"dangling"}
	assert.Equal(t, in, redactKVs(in))
}
