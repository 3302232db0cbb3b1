package routekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTemplate(t *testing.T, root *node[string], template string) error {
	t.Helper()
	segs, err := parseTemplate(template, NewConverterRegistry())
	require.NoError(t, err, "template %s must parse", template)
	return root.insert(segs, &route[string]{template: template, resource: template})
}

func TestInsertConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		add      string
		conflict bool
	}{
		{"static_next_to_simple", []string{"/users/{id}"}, "/users/me", false},
		{"simple_next_to_static", []string{"/users/me"}, "/users/{id}", false},
		{"two_simple_names", []string{"/users/{id}"}, "/users/{user_id}", true},
		{"same_name_different_converter", []string{"/users/{id}"}, "/users/{id:int}", true},
		{"converter_vs_converter_args", []string{"/users/{id:int}"}, "/users/{id:int(min=1)}", true},
		{"complex_same_skeleton", []string{"/files/{a}.{b}"}, "/files/{x}.{y}", true},
		{"complex_different_skeleton", []string{"/files/{a}.{b}"}, "/files/{a2}-{b2}", false},
		{"complex_next_to_simple", []string{"/files/{a}.{b}"}, "/files/{whole}", false},
		{"different_parents", []string{"/users/{id}"}, "/teams/{id2}", false},
		{"deep_shared_prefix", []string{"/api/v1/users/{id}"}, "/api/v1/teams/{tid}", false},
		{"conflict_only_at_shared_depth", []string{"/a/{x}/end"}, "/a/{y}/end", true},
		{"static_segments_never_conflict", []string{"/health"}, "/healthz", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := &node[string]{}
			for _, tpl := range tt.existing {
				require.NoError(t, insertTemplate(t, root, tpl))
			}

			err := insertTemplate(t, root, tt.add)
			if tt.conflict {
				assert.ErrorIs(t, err, ErrRouteConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInsertSharesPrefixNodes(t *testing.T) {
	t.Parallel()

	root := &node[string]{}
	require.NoError(t, insertTemplate(t, root, "/users/{id}"))
	require.NoError(t, insertTemplate(t, root, "/users/{id}/posts"))
	require.NoError(t, insertTemplate(t, root, "/users/me"))

	require.Len(t, root.children, 1, "one depth-0 node")
	users := root.children[0]
	assert.Equal(t, "users", users.raw)
	require.Len(t, users.children, 2, "{id} and me share the users node")

	var total int
	root.walk(func(*node[string]) { total++ })
	assert.Equal(t, 4, total, "users, {id}, posts, me")
}

func TestInsertReplacesPayload(t *testing.T) {
	t.Parallel()

	root := &node[string]{}
	segs, err := parseTemplate("/users/{id}", NewConverterRegistry())
	require.NoError(t, err)

	require.NoError(t, root.insert(segs, &route[string]{template: "/users/{id}", resource: "first"}))
	require.NoError(t, root.insert(segs, &route[string]{template: "/users/{id}", resource: "second"}))

	var routes []*route[string]
	root.walk(func(n *node[string]) {
		if n.route != nil {
			routes = append(routes, n.route)
		}
	})
	require.Len(t, routes, 1, "re-registration must not grow the trie")
	assert.Equal(t, "second", routes[0].resource)
}

func TestInsertIntermediateNodesCarryNoPayload(t *testing.T) {
	t.Parallel()

	root := &node[string]{}
	require.NoError(t, insertTemplate(t, root, "/api/v1/users"))

	api := root.children[0]
	assert.Nil(t, api.route)
	assert.Nil(t, api.children[0].route)
	assert.NotNil(t, api.children[0].children[0].route)
}

func TestConflictsTable(t *testing.T) {
	t.Parallel()

	parse := func(raw string) segment {
		segs, err := parseTemplate("/"+raw, NewConverterRegistry())
		require.NoError(t, err)
		return segs[0]
	}

	assert.True(t, conflicts(parse("{a}"), parse("{b}")))
	assert.True(t, conflicts(parse("{a}.{b}"), parse("{x}.{y}")))
	assert.False(t, conflicts(parse("{a}.{b}"), parse("{x}-{y}")))
	assert.False(t, conflicts(parse("static"), parse("{a}")))
	assert.False(t, conflicts(parse("static"), parse("{a}.{b}")))
	assert.False(t, conflicts(parse("static"), parse("other")))
	assert.False(t, conflicts(parse("{a}"), parse("{x}.{y}")))
}
