package configuration

import (
	"fmt"
	"os"
	"strconv"

	"social-scheduler/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	OAuth       OAuth       `json:"oauth"`
	Autopost    Autopost    `json:"autopost"`
	Crypto      Crypto      `json:"crypto"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
	// PublicURL is the externally reachable base URL, used to build OAuth
	// redirect URIs and the post-connect accounts redirect.
	PublicURL   string `json:"publicURL"`
	AccountsURL string `json:"accountsURL"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

// OAuth holds third-party platform OAuth client credentials. These are
// injected into the connection flow at construction time, never read from
// the environment at call time.
type OAuth struct {
	LinkedIn OAuthClient `json:"linkedin"`
	Facebook OAuthClient `json:"facebook"`
	Twitter  OAuthClient `json:"twitter"`
	YouTube  OAuthClient `json:"youtube"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// Autopost configures the shared-secret trigger for the dispatcher.
type Autopost struct {
	Secret string `json:"secret"`
	// PublishTimeoutSeconds bounds each adapter publish call.
	PublishTimeoutSeconds int `json:"publishTimeoutSeconds"`
}

// Crypto configures at-rest encryption of stored access tokens.
type Crypto struct {
	// TokenKey is a 32-byte key, hex encoded.
	TokenKey string `json:"tokenKey"`
}

var C Config

func init() {
	LoadConfig()
	initApp(&C)
	initDatabase(&C)
	initSecrets(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10020
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10020
	}
	if C.App.PublicURL == "" {
		C.App.PublicURL = fmt.Sprintf("http://localhost:%d", C.App.Port)
	}
	if C.App.AccountsURL == "" {
		C.App.AccountsURL = C.App.PublicURL + "/accounts"
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}
}

func initSecrets(C *Config) {
	if v := os.Getenv("AUTOPOST_SECRET"); v != "" {
		C.Autopost.Secret = v
	}
	if C.Autopost.PublishTimeoutSeconds == 0 {
		C.Autopost.PublishTimeoutSeconds = 15
	}
	if v := os.Getenv("TOKEN_ENCRYPTION_KEY"); v != "" {
		C.Crypto.TokenKey = v
	}
	if C.Autopost.Secret == "" {
		logger.GetLogger().Warn("Autopost.Secret not set; /autopost trigger will reject all calls.")
	}
	if C.Crypto.TokenKey == "" {
		logger.GetLogger().Warn("Crypto.TokenKey not set; access tokens cannot be stored.")
	}
}
