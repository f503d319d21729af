package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   Server   `yaml:"server" mapstructure:"server"`
	LoadTest LoadTest `yaml:"loadtest" mapstructure:"loadtest"`
	Postgres Postgres `yaml:"postgres" mapstructure:"postgres"`
	RabbitMQ RabbitMQ `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Minio    Minio    `yaml:"minio" mapstructure:"minio"`
}

type Server struct {
	Port            string `yaml:"port" mapstructure:"port"`
	UploadDir       string `yaml:"upload_dir" mapstructure:"upload_dir"`
	MaxUploadSize   int64  `yaml:"max_upload_size" mapstructure:"max_upload_size"`
	ConcurrentLimit int    `yaml:"concurrent_limit" mapstructure:"concurrent_limit"`
}

type LoadTest struct {
	Host      string        `yaml:"host" mapstructure:"host"`
	ImagePath string        `yaml:"image_path" mapstructure:"image_path"`
	WaitMin   time.Duration `yaml:"wait_min" mapstructure:"wait_min"`
	WaitMax   time.Duration `yaml:"wait_max" mapstructure:"wait_max"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type Postgres struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	Username   string `yaml:"username" mapstructure:"username"`
	Password   string `yaml:"password" mapstructure:"password"`
	Database   string `yaml:"database" mapstructure:"database"`
	AutoCreate bool   `yaml:"autocreate" mapstructure:"autocreate"`
}

type RabbitMQ struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Queue    string `yaml:"queue" mapstructure:"queue"`
}

type Minio struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
}

func InitConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	v.SetDefault("server.port", ":8090")
	v.SetDefault("server.upload_dir", "./uploads")
	v.SetDefault("server.max_upload_size", 4<<20)
	v.SetDefault("server.concurrent_limit", 10)
	v.SetDefault("loadtest.host", "http://localhost:8090")
	v.SetDefault("loadtest.image_path", "./image-demo/cameraman.jpeg")
	v.SetDefault("loadtest.wait_min", "1s")
	v.SetDefault("loadtest.wait_max", "3s")
	v.SetDefault("loadtest.timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
