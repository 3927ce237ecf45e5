package report

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadValid(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("testdata/valid_report.json")
	require.NoError(t, err)
	return string(raw)
}

// withoutField 删除 JSON 中某个路径上的字段
func withoutField(t *testing.T, raw string, path ...string) string {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	node := doc
	for _, p := range path[:len(path)-1] {
		node = node[p].(map[string]interface{})
	}
	delete(node, path[len(path)-1])

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

func TestParse_Valid(t *testing.T) {
	payload, err := Parse(loadValid(t))
	require.NoError(t, err)

	assert.Equal(t, "Steady Climber", payload.Cover.Title)
	require.NotNil(t, payload.Stats.TotalDays)
	assert.Equal(t, 7, *payload.Stats.TotalDays)
	require.NotNil(t, payload.PeerComparison.Radar.AxisD)
	assert.Equal(t, 0, *payload.PeerComparison.Radar.AxisD)
	assert.Len(t, payload.Recommendations, 1)
}

func TestParse_AcceptsCodeFence(t *testing.T) {
	_, err := Parse("```json\n" + loadValid(t) + "\n```")
	assert.NoError(t, err)
}

func TestParse_MissingRequiredFields(t *testing.T) {
	valid := loadValid(t)

	tests := []struct {
		name string
		path []string
	}{
		{name: "cover title", path: []string{"cover", "title"}},
		{name: "whole profile", path: []string{"profile"}},
		{name: "numeric zero is not a default", path: []string{"stats", "total_media_items"}},
		{name: "keywords", path: []string{"stats", "keywords"}},
		{name: "radar axis", path: []string{"peer_comparison", "radar", "axis_c"}},
		{name: "recommendations", path: []string{"recommendations"}},
		{name: "next goal", path: []string{"achievements", "next_goal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(withoutField(t, valid, tt.path...))
			assert.Error(t, err)
		})
	}
}

func TestParse_RadarOutOfRange(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(loadValid(t)), &doc))
	doc["peer_comparison"].(map[string]interface{})["radar"].(map[string]interface{})["axis_a"] = 101
	out, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Parse(string(out))
	assert.Error(t, err)
}

func TestParse_NotJSON(t *testing.T) {
	for _, in := range []string{"", "   ", "Sure! Here is your report.", `{"cover": `, loadValid(t) + ` {"extra": true}`} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}
