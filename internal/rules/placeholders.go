package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

var placeholderRe = regexp.MustCompile(`@([a-z_]+)@`)

func placeholderValue(name string, d model.Dialog) (string, bool) {
	switch name {
	case "id":
		return strconv.FormatInt(d.Id, 10), true
	case "user_login":
		return d.Username, d.Kind == model.DialogUser
	case "channel_login":
		return d.Username, d.Kind == model.DialogChannel
	case "channel_title":
		return d.Name, d.Kind == model.DialogChannel
	case "group_login":
		return d.Username, d.Kind == model.DialogGroup
	case "group_title":
		return d.Name, d.Kind == model.DialogGroup
	}

	return "", false
}

func substitutePlaceholders(args []string, d model.Dialog) ([]string, error) {
	res := make([]string, 0, len(args))
	for _, arg := range args {
		var failed error
		out := placeholderRe.ReplaceAllStringFunc(arg, func(m string) string {
			name := m[1 : len(m)-1]
			v, ok := placeholderValue(name, d)
			if !ok && failed == nil {
				failed = fmt.Errorf("%w: %s for %s dialog", ErrUnknownPlaceholder, m, d.Kind)
			}
			return v
		})
		if failed != nil {
			return nil, failed
		}
		res = append(res, out)
	}

	return res, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, path[1:]), nil
}
