package config

import (
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

type SystemConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SystemConfig `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "restos",
		Location: "Asia/Karachi",
		Workdir:  "/var/restos",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-0731-1203-xxtt-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "restos_v1",
		User:     "postgres",
		Passwd:   "root",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/restos/restos.log",
	},
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig loads the application configuration from the given yaml file,
// falling back to defaults, then applies environment overrides.
func LoadConfig(cfile string) *AppConfig {
	appConfig := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg := new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err == nil {
				appConfig = cfg
			}
		}
	}

	setEnvValue("RESTOS_SYSTEM_WORKER_DIR", &appConfig.System.Workdir)
	setEnvBoolValue("RESTOS_SYSTEM_DEBUG", &appConfig.System.Debug)

	setEnvValue("RESTOS_DB_TYPE", &appConfig.Database.Type)
	setEnvValue("RESTOS_DB_HOST", &appConfig.Database.Host)
	setEnvValue("RESTOS_DB_NAME", &appConfig.Database.Name)
	setEnvValue("RESTOS_DB_USER", &appConfig.Database.User)
	setEnvValue("RESTOS_DB_PWD", &appConfig.Database.Passwd)
	setEnvBoolValue("RESTOS_DB_DEBUG", &appConfig.Database.Debug)

	setEnvValue("RESTOS_WEB_HOST", &appConfig.Web.Host)
	setEnvValue("RESTOS_WEB_SECRET", &appConfig.Web.Secret)

	return appConfig
}
