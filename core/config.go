package core

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnginePostgres = "postgres"
	EngineMySQL    = "mysql"
	EngineSQLite   = "sqlite"
)

type (
	Config struct {
		Env          string `mapstructure:"env"`
		Debug        bool   `mapstructure:"debug"`
		TestMode     bool   `mapstructure:"testMode"`
		AppName      string `mapstructure:"appName"`
		Build        string `mapstructure:"build"`
		SecretKey    string `mapstructure:"secretKey"`
		RollbarToken string `mapstructure:"rollbarToken"`
		WorkDir      string `mapstructure:"-"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
	}

	ServerConfig struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		RequireAuth     bool          `mapstructure:"requireAuth"`
		CheckInRate     float64       `mapstructure:"checkInRate"` // requests per second per client
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		DisableReqLogs  bool          `mapstructure:"disableReqLogs"`
	}

	DatabaseConfig struct {
		Engine       string        `mapstructure:"engine"`
		Host         string        `mapstructure:"host"`
		Port         int           `mapstructure:"port"`
		Name         string        `mapstructure:"name"`
		User         string        `mapstructure:"user"`
		Password     string        `mapstructure:"password"`
		DisableTLS   bool          `mapstructure:"disableTLS"`
		Path         string        `mapstructure:"path"` // sqlite only
		QueryTimeout time.Duration `mapstructure:"queryTimeout"`
		MaxOpenConns int           `mapstructure:"maxOpenConns"`
	}
)

func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (d DatabaseConfig) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// DSN builds the driver specific data source name.
func (d DatabaseConfig) DSN() string {
	switch d.Engine {
	case EngineMySQL:
		tls := "true"
		if d.DisableTLS {
			tls = "false"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?tls=%s&charset=utf8mb4",
			d.User, d.Password, d.Address(), d.Name, tls)
	case EngineSQLite:
		if d.Path == "" {
			return ":memory:"
		}
		return d.Path
	default:
		sslMode := "require"
		if d.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     d.Address(),
			Path:     d.Name,
			RawQuery: q.Encode(),
		}
		return u.String()
	}
}

// NewConfig loads the configuration of the current ENV (DEV by default) from
// defaults, an optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "CheckCheck")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "x8#k2!q9v@d1m&z4r7^t0p$w3e6n5b*c")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.host", "")
	conf.SetDefault("server.port", 8000)
	conf.SetDefault("server.requireAuth", false)
	conf.SetDefault("server.checkInRate", 20.0)
	conf.SetDefault("server.shutdownTimeout", 10*time.Second)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("database.engine", EnginePostgres)
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "checkcheck")
	conf.SetDefault("database.user", "checkcheck")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", false)
	conf.SetDefault("database.path", "")
	conf.SetDefault("database.queryTimeout", 5*time.Second)
	conf.SetDefault("database.maxOpenConns", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetDefault("env", env)
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	var c Config
	if err := conf.Unmarshal(&c); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	c.WorkDir = wd
	return &c
}

// Getwd returns the project root: the closest parent directory holding a go.mod file,
// or the current working directory when there is none (installed binaries).
// go test runs inside the package directory, so tests need the lookup.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
