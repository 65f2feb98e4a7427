package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-a", "localhost:8080", "-x", "ignored", "-c", "conf.json"}
	got := FilterArgs(args, []string{"-a", "-c"})
	assert.Equal(t, []string{"-a", "localhost:8080", "-c", "conf.json"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=zzz"}
	got := FilterArgs(args, []string{"--config"})
	assert.Equal(t, []string{"--config=conf.json"}, got)
}

func TestFilterArgs_FlagFollowedByAnotherFlag(t *testing.T) {
	args := []string{"-a", "-c", "conf.json"}
	got := FilterArgs(args, []string{"-a"})
	// -c looks like a flag, so it is not consumed as -a's value
	assert.Equal(t, []string{"-a"}, got)
}

func TestFilterArgs_EmptyInput(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
