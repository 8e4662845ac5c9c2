// Package config loads the operator's INI config file (credentials and
// per-kind keep-lists), conventionally ~/.twitrc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/eigenmagic/forget/internal/twitter"
	"github.com/eigenmagic/forget/internal/types"
)

// Config is the parsed config file.
type Config struct {
	Credentials twitter.Credentials

	// KeepLists holds ids per kind that must never be deleted,
	// merged with any --keep flags at runtime.
	KeepLists map[types.Kind][]uint64
}

// keepKeys maps each kind to its keep-list key in the [twitter]
// section.
var keepKeys = map[types.Kind]string{
	types.KindTweets: "keeptweets",
	types.KindDMs:    "keepdms",
	types.KindLikes:  "keeplikes",
}

// Load reads and parses the config file at path. A leading ~ expands
// to the user's home directory.
func Load(path string) (*Config, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	file, err := ini.Load(expanded)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	section := file.Section("twitter")
	cfg := &Config{
		Credentials: twitter.Credentials{
			ConsumerKey:    section.Key("consumer_key").String(),
			ConsumerSecret: section.Key("consumer_secret").String(),
			AccessToken:    section.Key("access_token").String(),
			AccessSecret:   section.Key("access_token_secret").String(),
		},
		KeepLists: map[types.Kind][]uint64{},
	}

	for kind, key := range keepKeys {
		ids, err := parseKeepList(section.Key(key).String())
		if err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
		cfg.KeepLists[kind] = ids
	}

	return cfg, nil
}

// parseKeepList parses a whitespace-separated list of ids.
func parseKeepList(value string) ([]uint64, error) {
	var ids []uint64
	for _, field := range strings.Fields(value) {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ExpandHome expands a leading ~ in a path.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
