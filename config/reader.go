package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AuthConfig struct {
	OTPTTLSeconds    int `yaml:"otp_ttl_seconds"`
	OTPSendPerMinute int `yaml:"otp_send_per_minute"`
	OTPVerifyPerCode int `yaml:"otp_verify_per_code"`
	TokenLengthBytes int `yaml:"token_length_bytes"`
}

type ConfigSchema struct {
	Databases struct {
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"databases"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Backend  struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Auth AuthConfig `yaml:"auth"`
}

var AppConfig *ConfigSchema

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var conf ConfigSchema
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return err
	}
	applyDefaults(&conf)
	AppConfig = &conf
	return nil
}

func applyDefaults(conf *ConfigSchema) {
	if conf.Auth.OTPTTLSeconds == 0 {
		conf.Auth.OTPTTLSeconds = 300
	}
	if conf.Auth.OTPSendPerMinute == 0 {
		conf.Auth.OTPSendPerMinute = 1
	}
	if conf.Auth.OTPVerifyPerCode == 0 {
		conf.Auth.OTPVerifyPerCode = 3
	}
	if conf.Auth.TokenLengthBytes == 0 {
		conf.Auth.TokenLengthBytes = 32
	}
}
