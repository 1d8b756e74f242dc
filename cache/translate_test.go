package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/tierkv/command"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		src  string
		ttl  time.Duration
		want []string
	}{
		{"SET int counter 42", DefaultTTL, []string{"SET", "counter", "42", "EX", "15"}},
		{`SET string greeting "hello there world"`, DefaultTTL, []string{"SET", "greeting", "hello there world", "EX", "15"}},
		{"SET int counter -7", 1500 * time.Millisecond, []string{"SET", "counter", "-7", "PX", "1500"}},
		{"SET int counter 1", 0, []string{"SET", "counter", "1"}},
		{"GET counter", DefaultTTL, []string{"GET", "counter"}},
		{"DEL counter", DefaultTTL, []string{"DEL", "counter"}},
	}
	for _, tt := range tests {
		cmd, err := command.Parse(tt.src)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Translate(cmd, tt.ttl).Args(), tt.src)
	}
}

func TestTranslateOnlySetCarriesTTL(t *testing.T) {
	get, err := command.NewGet("x")
	require.NoError(t, err)
	req := Translate(get, DefaultTTL)
	assert.Zero(t, req.TTL)
	assert.Nil(t, req.Value)
}

func TestTranslateRoundTrip(t *testing.T) {
	for _, src := range []string{
		"SET int counter 42",
		"SET int min -9223372036854775808",
		"SET int plus +5",
		`SET string greeting "hello there world"`,
		`SET string empty ""`,
	} {
		cmd, err := command.Parse(src)
		require.NoError(t, err)

		req := Translate(cmd, DefaultTTL)
		back, err := command.ValueFromText(cmd.Value.Kind(), string(req.Value))
		require.NoError(t, err, src)
		assert.Equal(t, cmd.Value, back, src)
		assert.Equal(t, cmd.Value.Text(), string(req.Value), src)
	}
}

func TestRequestString(t *testing.T) {
	cmd, err := command.Parse("SET int counter 42")
	require.NoError(t, err)
	assert.Equal(t, "SET counter 42 EX 15", Translate(cmd, DefaultTTL).String())

	tests := []struct {
		src  string
		want string
	}{
		{`SET string greeting "hello world"`, `SET greeting "hello world" EX 15`},
		{`SET string blank ""`, `SET blank "" EX 15`},
		{`SET string "my key" "v"`, `SET "my key" v EX 15`},
		{`GET "a b"`, `GET "a b"`},
	}
	for _, tt := range tests {
		cmd, err := command.Parse(tt.src)
		require.NoError(t, err)
		req := Translate(cmd, DefaultTTL)
		assert.Equal(t, tt.want, req.String(), tt.src)
		assert.NotContains(t, req.Args(), `"hello world"`, "wire arguments stay unquoted")
	}
}
