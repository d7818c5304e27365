package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersModes(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"current", "early-access", "new", "watch"}, names)
	require.NotNil(t, cmd.PersistentFlags().Lookup("to-file"))
}

func TestJournalFlagOverridesConfig(t *testing.T) {
	t.Setenv("JOURNAL_CRAWLER_CONFIG", "")
	t.Setenv("JOURNAL_NUMBER", "6287639")

	cfg := loadConfig(&rootOptions{journal: "8782711"})
	assert.Equal(t, "8782711", cfg.Journal)

	cfg = loadConfig(&rootOptions{})
	assert.Equal(t, "6287639", cfg.Journal)
}

func TestModeCommandRejectsInvalidConfig(t *testing.T) {
	t.Setenv("JOURNAL_CRAWLER_CONFIG", "")
	t.Setenv("JOURNAL_NUMBER", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"current", "--journal", "not-a-number"})
	require.Error(t, cmd.Execute())
}
