package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"xuezhan/engine"
)

var Conf *Config

type Config struct {
	AppName      string       `mapstructure:"appName"`
	Log          LogConf      `mapstructure:"log"`
	HttpPort     int          `mapstructure:"httpPort"`
	DatabaseConf DatabaseConf `mapstructure:"database"`
	GameConf     GameConf     `mapstructure:"game"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	PoolSize     int    `mapstructure:"poolSize"`
	MinIdleConns int    `mapstructure:"minIdleConns"`
}

// GameConf 对局相关配置。Store 取 memory 或 redis，
// SessionTTLHours 之前没有动作的对局会被清理。
type GameConf struct {
	Store           string            `mapstructure:"store"`
	SessionTTLHours int               `mapstructure:"sessionTTLHours"`
	AITurnTimeoutMS int               `mapstructure:"aiTurnTimeoutMs"`
	Score           engine.ScoreTable `mapstructure:"score"`
}

// Default 未配置项的兜底值
func Default() *Config {
	return &Config{
		AppName:  "xuezhan",
		HttpPort: 8080,
		Log:      LogConf{Level: "info"},
		GameConf: GameConf{
			Store:           "memory",
			SessionTTLHours: 24,
			AITurnTimeoutMS: 5000,
			Score:           engine.DefaultScoreTable(),
		},
	}
}

func InitConfig(configFile string) {
	Conf = Default()
	v := viper.New()
	v.SetConfigFile(configFile)
	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		err := v.Unmarshal(&Conf)
		if err != nil {
			panic(fmt.Errorf("解析配置文件出错 2, err:%v", err))
		}
	})

	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("读取配置文件出错, err:%v", err))
	}

	err = v.Unmarshal(&Conf)
	if err != nil {
		panic(fmt.Errorf("解析配置文件出错 1, err:%v", err))
	}
}
