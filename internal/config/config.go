package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the service settings, loaded from environment variables with
// an optional .env file.
type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	MetricsPort         string `mapstructure:"METRICS_PORT"`
	SigningKey          string `mapstructure:"SIGNING_KEY"`
	NotificationWorkers int    `mapstructure:"NOTIFICATION_WORKERS"`

	CheckingMinimumBalance       string `mapstructure:"CHECKING_MINIMUM_BALANCE"`
	CheckingOverdraftLimit       string `mapstructure:"CHECKING_OVERDRAFT_LIMIT"`
	CheckingMaxDailyTransactions int    `mapstructure:"CHECKING_MAX_DAILY_TRANSACTIONS"`
	CheckingInterestRate         string `mapstructure:"CHECKING_INTEREST_RATE"`
	SavingsMinimumBalance        string `mapstructure:"SAVINGS_MINIMUM_BALANCE"`
	SavingsMaxDailyTransactions  int    `mapstructure:"SAVINGS_MAX_DAILY_TRANSACTIONS"`
	SavingsInterestRate          string `mapstructure:"SAVINGS_INTEREST_RATE"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("METRICS_PORT", "9090")
	viper.SetDefault("SIGNING_KEY", "")
	viper.SetDefault("NOTIFICATION_WORKERS", 3)
	viper.SetDefault("CHECKING_MINIMUM_BALANCE", "50")
	viper.SetDefault("CHECKING_OVERDRAFT_LIMIT", "100")
	viper.SetDefault("CHECKING_MAX_DAILY_TRANSACTIONS", 20)
	viper.SetDefault("CHECKING_INTEREST_RATE", "0.01")
	viper.SetDefault("SAVINGS_MINIMUM_BALANCE", "100")
	viper.SetDefault("SAVINGS_MAX_DAILY_TRANSACTIONS", 10)
	viper.SetDefault("SAVINGS_INTEREST_RATE", "0.03")

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("METRICS_PORT")
	_ = viper.BindEnv("SIGNING_KEY")
	_ = viper.BindEnv("NOTIFICATION_WORKERS")
	_ = viper.BindEnv("CHECKING_MINIMUM_BALANCE")
	_ = viper.BindEnv("CHECKING_OVERDRAFT_LIMIT")
	_ = viper.BindEnv("CHECKING_MAX_DAILY_TRANSACTIONS")
	_ = viper.BindEnv("CHECKING_INTEREST_RATE")
	_ = viper.BindEnv("SAVINGS_MINIMUM_BALANCE")
	_ = viper.BindEnv("SAVINGS_MAX_DAILY_TRANSACTIONS")
	_ = viper.BindEnv("SAVINGS_INTEREST_RATE")

	if err = viper.ReadInConfig(); err != nil {
		// A missing .env file is fine; environment variables still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	err = viper.Unmarshal(&config)
	return config, err
}
