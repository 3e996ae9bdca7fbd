package cmd

import (
	"fmt"
	"os"

	"tari-sdk/pkg/logger"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "tari-cli",
	Short: "Tari 交易构建命令行工具",
	Long: `离线构建与检查 Tari 交易。
配方 (recipe) 以 YAML/JSON 描述交易步骤，build-tx 将其编译为未签名交易。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Init("development")
		}
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}
