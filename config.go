package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ============================================================================
// Configuration Constants
// ============================================================================

const (
	MsgConfigMissingToken  = "DISCORD_TOKEN is not set in .env file"
	MsgConfigInvalidGuild  = "invalid GUILD_ID: must be a valid Snowflake"
	MsgConfigInvalidReward = "invalid VIEW_REWARD %q: must be \"favorite\" or \"view\""

	DefaultBooruBaseURL = "https://danbooru.donmai.us"

	// RewardOnFavorite awards currency only when a post is favorited.
	// RewardOnView awards it on every shown post.
	RewardOnFavorite = "favorite"
	RewardOnView     = "view"
)

type Config struct {
	Token          string
	GuildID        string
	DatabasePath   string
	OwnerIDs       []string
	BooruBaseURL   string
	BooruUserAgent string
	ViewReward     string
	Silent         bool
}

var GlobalConfig *Config

// LoadConfig initializes the configuration from environment variables.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		folder := "."
		if info, err := os.Stat("data"); err == nil && info.IsDir() {
			folder = "./data"
		}
		dbPath = filepath.Join(folder, GetProjectName()+".db")
	}

	silent, _ := strconv.ParseBool(os.Getenv("SILENT"))

	baseURL := os.Getenv("BOORU_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBooruBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	userAgent := os.Getenv("BOORU_USER_AGENT")
	if userAgent == "" {
		userAgent = GetProjectName() + "/1.0"
	}

	viewReward := strings.ToLower(os.Getenv("VIEW_REWARD"))
	if viewReward == "" {
		viewReward = RewardOnFavorite
	}

	ownerIDsStr := os.Getenv("OWNER_IDS")
	var ownerIDs []string
	if ownerIDsStr != "" {
		ownerIDs = strings.Split(ownerIDsStr, ",")
		for i := range ownerIDs {
			ownerIDs[i] = strings.TrimSpace(ownerIDs[i])
		}
	}

	cfg := &Config{
		Token:          token,
		GuildID:        os.Getenv("GUILD_ID"),
		DatabasePath:   dbPath,
		OwnerIDs:       ownerIDs,
		BooruBaseURL:   baseURL,
		BooruUserAgent: userAgent,
		ViewReward:     viewReward,
		Silent:         silent,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf(MsgConfigInvalidGuild)
	}
	if c.ViewReward != RewardOnFavorite && c.ViewReward != RewardOnView {
		return fmt.Errorf(MsgConfigInvalidReward, c.ViewReward)
	}
	return nil
}

// IsOwner reports whether the given user ID is listed in OWNER_IDS.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "tsubaki"
	if err == nil {
		projectName = filepath.Base(exePath)
		projectName = strings.TrimSuffix(projectName, ".exe")

		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") {
			if modData, err := os.ReadFile("go.mod"); err == nil {
				lines := strings.Split(string(modData), "\n")
				if len(lines) > 0 && strings.HasPrefix(lines[0], "module ") {
					parts := strings.Split(lines[0], "/")
					projectName = strings.TrimSpace(parts[len(parts)-1])
				}
			}
		}
	}
	return projectName
}
