package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genesisproject/genesis/pkg/config"
)

func TestReactionFromMap_Script(t *testing.T) {
	t.Parallel()

	r := reactionFromMap(map[string]any{
		"script": "hooks/notify.sh",
		"args":   []any{"--env", "myenv"},
		"var":    "NOTIFY_OUT",
	})

	assert.Equal(t, "script", r.Kind)
	assert.Equal(t, "hooks/notify.sh", r.Ref)
	assert.Equal(t, []string{"--env", "myenv"}, r.Args)
	assert.Equal(t, "NOTIFY_OUT", r.Var)
}

func TestReactionFromMap_Addon(t *testing.T) {
	t.Parallel()

	r := reactionFromMap(map[string]any{"addon": "slack.sh"})

	assert.Equal(t, "addon", r.Kind)
	assert.Equal(t, "slack.sh", r.Ref)
	assert.Empty(t, r.Var)
}

func TestReactionFromMap_UnrecognizedEntryYieldsEmptyKind(t *testing.T) {
	t.Parallel()

	r := reactionFromMap(map[string]any{"unrelated": "value"})

	assert.Empty(t, r.Kind)
}

func TestParseReactions_MissingPathReturnsNil(t *testing.T) {
	t.Parallel()

	params := config.NewView(map[string]any{})

	assert.Nil(t, parseReactions(params, "genesis.reactions.pre-deploy"))
}

func TestParseReactions_ParsesDeclaredList(t *testing.T) {
	t.Parallel()

	params := config.NewView(map[string]any{
		"genesis": map[string]any{
			"reactions": map[string]any{
				"pre-deploy": []any{
					map[string]any{"script": "hooks/pre.sh"},
					"not-a-map",
					map[string]any{"addon": "post.sh", "args": []any{"--flag"}},
				},
			},
		},
	})

	reactions := parseReactions(params, "genesis.reactions.pre-deploy")

	a := assert.New(t)
	a.Len(reactions, 2)
	a.Equal("script", reactions[0].Kind)
	a.Equal("hooks/pre.sh", reactions[0].Ref)
	a.Equal("addon", reactions[1].Kind)
	a.Equal([]string{"--flag"}, reactions[1].Args)
}
