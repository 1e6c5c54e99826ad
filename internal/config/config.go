package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	TokenTTL    time.Duration     `yaml:"token_ttl" env-default:"1h"`
	RefreshTTL  time.Duration     `yaml:"refresh_ttl" env-default:"168h"`
	JWTSecret   string            `yaml:"jwt_secret" env:"JWT_SECRET"`
	HTTP        HTTPConfig        `yaml:"http"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Minio       MinioConfig       `yaml:"minio"`
	Redis       RedisConf         `yaml:"redis"`
	Geocoder    GeocoderConfig    `yaml:"geocoder"`
	Visitor     VisitorConfig     `yaml:"visitor"`
}

type HTTPConfig struct {
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
}

type FileStorageConfig struct {
	Driver  string `yaml:"driver" env-default:"local"` // local | minio
	BaseDir string `yaml:"base_dir" env-default:"./storage"`

	// лимит одного файла и всего тела запроса на загрузку
	MaxSize        int64 `yaml:"max_size" env-default:"52428800"`
	MaxRequestSize int64 `yaml:"max_request_size" env-default:"209715200"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env-default:"projects"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type GeocoderConfig struct {
	BaseURL  string        `yaml:"base_url" env-default:"https://api.bigdatacloud.net/data/reverse-geocode-client"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"24h"`
}

type VisitorConfig struct {
	SweepInterval   time.Duration `yaml:"sweep_interval" env-default:"30s"`
	DefaultValidFor time.Duration `yaml:"default_valid_for"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
