package test

import (
	"context"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestMCPOverHTTP() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	created := s.createExercise(ctx, "MCP Pushups")

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-test", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   serverEndpoint + "/mcp",
		HTTPClient: s.httpClient,
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"complete_exercise",
		"get_exercise_streak",
		"get_month_calendar",
		"get_period_summary",
		"list_exercises",
	}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "complete_exercise",
		Arguments: map[string]any{"exercise_id": created.ID, "duration": 15},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	stored, ok := s.backend.Exercise(created.ID)
	require.True(t, ok)
	require.Len(t, stored.CompletionHistory, 1)
	assert.Equal(t, 15, stored.CompletionHistory[0].Duration)
}
