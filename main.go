package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"xuezhan/app"
	"xuezhan/config"
	"xuezhan/logx"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "xuezhan",
	Short: "血战到底麻将服务",
	Long:  `血战到底麻将服务`,
	Run: func(cmd *cobra.Command, args []string) {
		if configFile != "" {
			config.InitConfig(configFile)
		} else {
			config.Conf = config.Default()
		}
		logx.Init(config.Conf.AppName, config.Conf.Log.Level)
		logx.Info("配置加载完成: %+v", config.Conf)

		err := app.Run(context.Background())
		if err != nil {
			logx.Error("发生异常: %v", err)
			os.Exit(-1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("error happen: %#v", err)
		os.Exit(1)
	}
}
