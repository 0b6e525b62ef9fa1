package tdlib

import (
	"fmt"
	"path/filepath"

	"github.com/zelenin/go-tdlib/client"

	"github.com/alexbilevskiy/tgfolders/internal/config"
)

func GetUserFullname(user *client.User) string {
	name := ""
	if user.FirstName != "" {
		name = user.FirstName
	}
	if user.LastName != "" {
		name = fmt.Sprintf("%s %s", name, user.LastName)
	}
	un := GetUsername(user.Usernames)
	if un != "" {
		name = fmt.Sprintf("%s (@%s)", name, un)
	}
	if name == "" {
		name = fmt.Sprintf("no_name %d", user.Id)
	}
	return name
}

func GetUsername(usernames *client.Usernames) string {
	if usernames == nil {
		return ""
	}
	if len(usernames.ActiveUsernames) == 0 {
		return ""
	}

	return usernames.ActiveUsernames[0]
}

// LoadChats reports a fully loaded list this way.
func isNotFound(err error) bool {
	return err != nil && err.Error() == "404 Not Found"
}

func sessionDirs(cfg *config.Config) (string, string) {
	return filepath.Join(cfg.TDataDir, "database"), filepath.Join(cfg.TDataDir, "files")
}

func createTdlibParameters(cfg *config.Config) *client.SetTdlibParametersRequest {
	databaseDir, filesDir := sessionDirs(cfg)

	return &client.SetTdlibParametersRequest{
		UseTestDc:           false,
		DatabaseDirectory:   databaseDir,
		FilesDirectory:      filesDir,
		UseFileDatabase:     false,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  true,
		UseSecretChats:      false,
		ApiId:               cfg.ApiId,
		ApiHash:             cfg.ApiHash,
		SystemLanguageCode:  "en",
		DeviceModel:         "Linux",
		SystemVersion:       "1.0.0",
		ApplicationVersion:  "1.0.0",
	}
}
