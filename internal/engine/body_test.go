package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ghchain.dev/ghchain/internal/engine"
)

func TestRenderStackList(t *testing.T) {
	urls := []string{
		"https://github.com/acme/widgets/pull/1",
		"https://github.com/acme/widgets/pull/2",
		"https://github.com/acme/widgets/pull/3",
	}

	region := engine.RenderStackList(urls, urls[1])
	lines := strings.Split(region, "\n")

	require.Equal(t, engine.StackListStartMarker, lines[0])
	require.Equal(t, engine.StackListEndMarker, lines[len(lines)-1])

	// Newest on top, oldest at the bottom, arrow on the current PR.
	require.Equal(t, "- "+urls[2], lines[2])
	require.Equal(t, "- -> "+urls[1], lines[3])
	require.Equal(t, "- "+urls[0], lines[4])
}

func TestUpsertStackList(t *testing.T) {
	urls := []string{"https://github.com/acme/widgets/pull/1"}

	t.Run("appends the region to a body without markers", func(t *testing.T) {
		body := engine.UpsertStackList("Original description.", urls, urls[0])
		require.True(t, strings.HasPrefix(body, "Original description.\n\n"))
		require.Contains(t, body, engine.StackListStartMarker)
	})

	t.Run("replaces an existing region in place", func(t *testing.T) {
		body := "Intro.\n\n" +
			engine.StackListStartMarker + "\nstale content\n" + engine.StackListEndMarker +
			"\n\nOutro."

		updated := engine.UpsertStackList(body, urls, urls[0])
		require.NotContains(t, updated, "stale content")
		require.Contains(t, updated, urls[0])
		require.True(t, strings.HasPrefix(updated, "Intro.\n\n"))
		require.True(t, strings.HasSuffix(updated, "\n\nOutro."))
		require.Equal(t, 1, strings.Count(updated, engine.StackListStartMarker))
	})

	t.Run("updating twice yields the same body", func(t *testing.T) {
		once := engine.UpsertStackList("Description.", urls, urls[0])
		twice := engine.UpsertStackList(once, urls, urls[0])
		require.Equal(t, once, twice)
	})

	t.Run("empty body becomes just the region", func(t *testing.T) {
		body := engine.UpsertStackList("", urls, urls[0])
		require.True(t, strings.HasPrefix(body, engine.StackListStartMarker))
	})
}

func TestUpsertWorkflowBadges(t *testing.T) {
	badges := []string{"[![ci](https://example.test/badge.svg)](https://example.test)"}

	t.Run("appends the region when absent", func(t *testing.T) {
		body := engine.UpsertWorkflowBadges("Description.", badges)
		require.Contains(t, body, engine.WorkflowBadgesStartMarker)
		require.Contains(t, body, "# Workflow Results")
		require.Contains(t, body, badges[0])
	})

	t.Run("replaces an existing region", func(t *testing.T) {
		body := engine.WorkflowBadgesStartMarker + "\nold badges\n" + engine.WorkflowBadgesEndMarker
		updated := engine.UpsertWorkflowBadges(body, badges)
		require.NotContains(t, updated, "old badges")
		require.Contains(t, updated, badges[0])
	})

	t.Run("does not disturb a stack-list region", func(t *testing.T) {
		body := engine.UpsertStackList("Description.", []string{"https://github.com/acme/widgets/pull/5"}, "")
		updated := engine.UpsertWorkflowBadges(body, badges)
		require.Contains(t, updated, "pull/5")
		require.Contains(t, updated, badges[0])
	})
}
