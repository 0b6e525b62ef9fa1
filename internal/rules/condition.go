package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

// Condition is a node of a rule's condition tree.
type Condition interface {
	isCondition()
}

type And struct {
	Children []Condition
}

type Or struct {
	Children []Condition
}

type Not struct {
	Child Condition
}

// TitleRegex searches the dialog name, the match does not have to span the whole name.
type TitleRegex struct {
	Pattern *regexp.Regexp
}

// InfoRegex searches the about text of groups and channels.
type InfoRegex struct {
	Pattern *regexp.Regexp
}

type DialogType struct {
	Kind model.DialogKind
}

type ContactPresent struct {
	Handle string
}

type ExternalExecutable struct {
	Path string
	Args []string
}

// NotMatched holds while no earlier rule of the list has matched the dialog.
type NotMatched struct{}

func (And) isCondition()                {}
func (Or) isCondition()                 {}
func (Not) isCondition()                {}
func (TitleRegex) isCondition()         {}
func (InfoRegex) isCondition()          {}
func (DialogType) isCondition()         {}
func (ContactPresent) isCondition()     {}
func (ExternalExecutable) isCondition() {}
func (NotMatched) isCondition()         {}

type Rule struct {
	Name      string
	Condition Condition
}

type ruleJson struct {
	Name      string          `json:"name"`
	Condition json.RawMessage `json:"condition"`
}

type legacyRulesJson struct {
	ChatFilters []ruleJson `json:"chat_filters"`
}

type regexJson struct {
	Pattern    string `json:"pattern"`
	RegexMatch string `json:"regex_match"`
}

type dialogTypeJson struct {
	Kind string `json:"kind"`
}

type contactPresentJson struct {
	Handle string `json:"handle"`
}

type executableJson struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
}

func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		var perr *RuleFileParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}

	return rules, nil
}

// ParseRules decodes a rule file. The document is either an array of rules or
// an object holding them under "chat_filters".
func ParseRules(data []byte) ([]Rule, error) {
	var items []ruleJson
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var legacy legacyRulesJson
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, &RuleFileParseError{Err: err}
		}
		items = legacy.ChatFilters
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &RuleFileParseError{Err: err}
	}

	rules := make([]Rule, 0, len(items))
	for i, item := range items {
		if item.Name == "" {
			return nil, &RuleFileParseError{Err: fmt.Errorf("rule %d: missing name", i)}
		}
		if len(item.Condition) == 0 {
			return nil, &RuleFileParseError{Err: fmt.Errorf("rule %d (%q): missing condition", i, item.Name)}
		}
		cond, err := parseCondition(item.Condition, "condition")
		if err != nil {
			return nil, &RuleFileParseError{Err: fmt.Errorf("rule %d (%q): %w", i, item.Name, err)}
		}
		rules = append(rules, Rule{Name: item.Name, Condition: cond})
	}

	return rules, nil
}

func parseCondition(raw json.RawMessage, path string) (Condition, error) {
	tag, payload, err := model.DecodeTagged(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tag = snakeCase(tag)
	path = path + "." + tag
	if payload == nil && tag != "not_matched" {
		return nil, fmt.Errorf("%s: missing payload", path)
	}

	switch tag {
	case "and", "or":
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		children := make([]Condition, 0, len(items))
		for i, item := range items {
			child, err := parseCondition(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if tag == "and" {
			return And{Children: children}, nil
		}
		return Or{Children: children}, nil

	case "not":
		child, err := parseCondition(payload, path)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil

	case "title_regex", "info_regex":
		var v regexJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		pattern := v.Pattern
		if pattern == "" {
			pattern = v.RegexMatch
		}
		if pattern == "" {
			return nil, fmt.Errorf("%s: missing pattern", path)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if tag == "title_regex" {
			return TitleRegex{Pattern: re}, nil
		}
		return InfoRegex{Pattern: re}, nil

	case "dialog_type":
		var v dialogTypeJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		kind, err := model.ParseDialogKind(v.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return DialogType{Kind: kind}, nil

	case "contact_present":
		var v contactPresentJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if v.Handle == "" {
			return nil, fmt.Errorf("%s: missing handle", path)
		}
		return ContactPresent{Handle: v.Handle}, nil

	case "external_executable":
		var v executableJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if v.Path == "" {
			return nil, fmt.Errorf("%s: missing path", path)
		}
		return ExternalExecutable{Path: v.Path, Args: v.Args}, nil

	case "not_matched":
		return NotMatched{}, nil
	}

	return nil, fmt.Errorf("%s: unknown condition", path)
}

// snakeCase accepts the CamelCase tags of older rule files ("TitleRegex").
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
