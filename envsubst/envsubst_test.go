// SPDX-License-Identifier: GPL-3.0-or-later

package envsubst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandUsesEnv(t *testing.T) {
	t.Setenv("ENVSUBST_TEST_HOST", "db.example.com")
	got := Expand("host=${ENVSUBST_TEST_HOST}", nil)
	assert.Equal(t, "host=db.example.com", got)
}

func TestExpandUsesExtraWhenEnvMissing(t *testing.T) {
	got := Expand("host=${DB_HOST}", map[string]string{"DB_HOST": "127.0.0.1"})
	assert.Equal(t, "host=127.0.0.1", got)
}

func TestExpandUsesInlineDefault(t *testing.T) {
	got := Expand("host=${DB_HOST:-localhost}", nil)
	assert.Equal(t, "host=localhost", got)
}

func TestExpandEnvBeatsExtraAndDefault(t *testing.T) {
	t.Setenv("ENVSUBST_TEST_PORT", "3306")
	got := Expand("port=${ENVSUBST_TEST_PORT:-9999}", map[string]string{"ENVSUBST_TEST_PORT": "1111"})
	assert.Equal(t, "port=3306", got)
}

func TestExpandLeavesUnresolvedPlaceholderIntact(t *testing.T) {
	got := Expand("x=${TOTALLY_UNSET_VAR}", nil)
	assert.Equal(t, "x=${TOTALLY_UNSET_VAR}", got)
}

func TestExpandMultiplePlaceholders(t *testing.T) {
	got := Expand("${A:-1}-${B:-2}-${C:-3}", nil)
	assert.Equal(t, "1-2-3", got)
}

func TestExpandNoPlaceholders(t *testing.T) {
	got := Expand("plain string", nil)
	assert.Equal(t, "plain string", got)
}
