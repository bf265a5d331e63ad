package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid     string `yaml:"appid" json:"appid"`
	Location  string `yaml:"location" json:"location"`
	Workdir   string `yaml:"workdir" json:"workdir"`
	UploadDir string `yaml:"upload_dir" json:"upload_dir"`
	Debug     bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"` // sqlite | mysql | postgres
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	Debug    bool   `yaml:"debug" json:"debug"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

type SmtpConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	User    string `yaml:"user" json:"user"`
	Passwd  string `yaml:"passwd" json:"passwd"`
	From    string `yaml:"from" json:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system" json:"system"`
	Web      WebConfig  `yaml:"web" json:"web"`
	Database DBConfig   `yaml:"database" json:"database"`
	Smtp     SmtpConfig `yaml:"smtp" json:"smtp"`
	Logger   LogConfig  `yaml:"logger" json:"logger"`
}

// UploadDir returns the absolute upload directory, defaulting under workdir.
func (c *AppConfig) UploadDir() string {
	if c.System.UploadDir != "" {
		return c.System.UploadDir
	}
	return path.Join(c.System.Workdir, "uploads")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Store",
		Location: "America/Argentina/Buenos_Aires",
		Workdir:  "/var/store",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "sqlite",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "store",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Smtp: SmtpConfig{
		Enabled: false,
		Host:    "127.0.0.1",
		Port:    25,
		From:    "store@localhost",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/store/store.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v == "true" || v == "1" || v == "on")
	}
}

func setEnvIntValue(name string, f func(v int)) {
	setEnvValue(name, func(v string) {
		var iv int
		if _, err := fmt.Sscanf(v, "%d", &iv); err == nil {
			f(iv)
		}
	})
}

// LoadConfig reads the YAML config file (if present) over the defaults and
// then applies STORE_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	appconfig := DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err != nil {
				panic(err)
			}
			if err := yaml.Unmarshal(data, appconfig); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("STORE_SYSTEM_WORKDIR", func(v string) { appconfig.System.Workdir = v })
	setEnvValue("STORE_SYSTEM_UPLOAD_DIR", func(v string) { appconfig.System.UploadDir = v })
	setEnvBoolValue("STORE_SYSTEM_DEBUG", func(v bool) { appconfig.System.Debug = v })

	setEnvValue("STORE_WEB_HOST", func(v string) { appconfig.Web.Host = v })
	setEnvValue("STORE_WEB_SECRET", func(v string) { appconfig.Web.Secret = v })
	setEnvIntValue("STORE_WEB_PORT", func(v int) { appconfig.Web.Port = v })

	setEnvValue("STORE_DB_TYPE", func(v string) { appconfig.Database.Type = v })
	setEnvValue("STORE_DB_HOST", func(v string) { appconfig.Database.Host = v })
	setEnvValue("STORE_DB_NAME", func(v string) { appconfig.Database.Name = v })
	setEnvValue("STORE_DB_USER", func(v string) { appconfig.Database.User = v })
	setEnvValue("STORE_DB_PWD", func(v string) { appconfig.Database.Passwd = v })
	setEnvIntValue("STORE_DB_PORT", func(v int) { appconfig.Database.Port = v })
	setEnvBoolValue("STORE_DB_DEBUG", func(v bool) { appconfig.Database.Debug = v })

	setEnvBoolValue("STORE_SMTP_ENABLED", func(v bool) { appconfig.Smtp.Enabled = v })
	setEnvValue("STORE_SMTP_HOST", func(v string) { appconfig.Smtp.Host = v })
	setEnvIntValue("STORE_SMTP_PORT", func(v int) { appconfig.Smtp.Port = v })
	setEnvValue("STORE_SMTP_USER", func(v string) { appconfig.Smtp.User = v })
	setEnvValue("STORE_SMTP_PWD", func(v string) { appconfig.Smtp.Passwd = v })
	setEnvValue("STORE_SMTP_FROM", func(v string) { appconfig.Smtp.From = v })

	setEnvValue("STORE_LOGGER_MODE", func(v string) { appconfig.Logger.Mode = v })
	setEnvBoolValue("STORE_LOGGER_FILE_ENABLE", func(v bool) { appconfig.Logger.FileEnable = v })
	setEnvValue("STORE_LOGGER_FILENAME", func(v string) { appconfig.Logger.Filename = v })

	return appconfig
}
