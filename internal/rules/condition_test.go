package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexbilevskiy/tgfolders/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	data := `[
		{"name": "Work", "condition": {"and": [
			{"dialog_type": {"kind": "group"}},
			{"or": [{"title_regex": {"pattern": "(?i)team"}}, {"info_regex": {"pattern": "corp"}}]},
			{"not": {"contact_present": {"handle": "boss"}}}
		]}},
		{"name": "Checked", "condition": {"external_executable": {"path": "~/bin/check", "args": ["@id@"]}}},
		{"name": "Other", "condition": "not_matched"},
		{"name": "Other2", "condition": {"not_matched": {}}}
	]`

	rules, err := ParseRules([]byte(data))
	require.NoError(t, err)
	require.Len(t, rules, 4)

	assert.Equal(t, "Work", rules[0].Name)
	and, ok := rules[0].Condition.(And)
	require.True(t, ok)
	require.Len(t, and.Children, 3)
	assert.Equal(t, DialogType{Kind: model.DialogGroup}, and.Children[0])
	or, ok := and.Children[1].(Or)
	require.True(t, ok)
	title, ok := or.Children[0].(TitleRegex)
	require.True(t, ok)
	assert.True(t, title.Pattern.MatchString("Dream TEAM"))
	assert.Equal(t, Not{Child: ContactPresent{Handle: "boss"}}, and.Children[2])

	assert.Equal(t, ExternalExecutable{Path: "~/bin/check", Args: []string{"@id@"}}, rules[1].Condition)
	assert.Equal(t, NotMatched{}, rules[2].Condition)
	assert.Equal(t, NotMatched{}, rules[3].Condition)
}

func TestParseRulesAcceptsChatFiltersDocument(t *testing.T) {
	data := `{"chat_filters": [
		{"name": "News", "condition": {"TitleRegex": {"regex_match": "news"}}},
		{"name": "Bio", "condition": {"InfoRegex": {"regex_match": "bio"}}}
	]}`

	rules, err := ParseRules([]byte(data))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.IsType(t, TitleRegex{}, rules[0].Condition)
	assert.IsType(t, InfoRegex{}, rules[1].Condition)
}

func TestParseRulesErrors(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		message string
	}{
		{name: "malformed json", data: `[{"name": "x",`, message: "unexpected end of JSON input"},
		{name: "unknown tag", data: `[{"name": "x", "condition": {"is_bot": {}}}]`, message: "condition.is_bot: unknown condition"},
		{name: "nested unknown tag", data: `[{"name": "x", "condition": {"or": [{"not": {"nope": 1}}]}}]`, message: "condition.or[0].not.nope: unknown condition"},
		{name: "bad regex", data: `[{"name": "x", "condition": {"title_regex": {"pattern": "("}}]`, message: "missing closing )"},
		{name: "bad kind", data: `[{"name": "x", "condition": {"dialog_type": {"kind": "bot"}}}]`, message: `unknown dialog kind "bot"`},
		{name: "missing name", data: `[{"condition": "not_matched"}]`, message: "rule 0: missing name"},
		{name: "missing condition", data: `[{"name": "x"}]`, message: "missing condition"},
		{name: "two tags", data: `[{"name": "x", "condition": {"and": [], "or": []}}]`, message: "exactly one key"},
		{name: "missing path", data: `[{"name": "x", "condition": {"external_executable": {"args": []}}}]`, message: "missing path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tc.data))
			require.Error(t, err)
			var perr *RuleFileParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseRulesKeepsParserError(t *testing.T) {
	_, err := ParseRules([]byte(`{"chat_filters": 5}`))

	var typeErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestLoadRulesReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": 1}]`), 0o600))

	_, err := LoadRules(path)

	var perr *RuleFileParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "none.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
