package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// ProfileID is the numeric LubimyCzytać profile to crawl
	ProfileID int
	// Username is the NaKanapie profile name
	Username string
	// Login and Password are NaKanapie credentials, needed for mutations
	Login    string
	Password string
	// OwnListID is the NaKanapie list id the owned shelf maps to
	OwnListID int
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("outputdir", ".")
	viper.SetDefault("cache.dbfile", "./shelfsync_cache.db")
	viper.SetDefault("cache.ttl", "720h")

	// Credentials come from the environment, never from flags
	viper.AutomaticEnv()
	_ = viper.BindEnv("nakanapie.login", "NAKANAPIE_LOGIN")
	_ = viper.BindEnv("nakanapie.password", "NAKANAPIE_PASSWORD")

	// Get values from viper
	ProfileID = viper.GetInt("lubimyczytac.profileid")
	Username = viper.GetString("nakanapie.username")
	Login = viper.GetString("nakanapie.login")
	Password = viper.GetString("nakanapie.password")
	OwnListID = viper.GetInt("nakanapie.ownlistid")
}
