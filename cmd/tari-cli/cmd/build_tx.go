package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"tari-sdk/pkg/logger"
	"tari-sdk/pkg/tari/recipe"
	"tari-sdk/pkg/tari/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildTxCmd 执行配方，输出未签名交易
var buildTxCmd = &cobra.Command{
	Use:   "build-tx",
	Short: "根据配方构造未签名交易",
	Long:  `读取 recipe.yaml (或 .json)，构造交易并写入 unsigned.json。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		outputFile, _ := cmd.Flags().GetString("output")
		networkName, _ := cmd.Flags().GetString("network")

		network, err := types.ParseNetwork(networkName)
		if err != nil {
			return err
		}

		r, err := recipe.Load(file)
		if err != nil {
			return fmt.Errorf("读取配方失败: %w", err)
		}
		tx, err := r.Build(network)
		if err != nil {
			return fmt.Errorf("构造交易失败: %w", err)
		}

		hash, err := tx.ID()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(tx, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return fmt.Errorf("保存失败: %w", err)
		}

		logger.Debug("transaction written", zap.String("file", outputFile), zap.String("hash", hash))
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 未签名交易已构造!\n文件: %s\n哈希: %s\n", outputFile, hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildTxCmd)

	buildTxCmd.Flags().StringP("file", "f", "recipe.yaml", "配方文件")
	buildTxCmd.Flags().StringP("output", "o", "unsigned.json", "输出文件")
	buildTxCmd.Flags().StringP("network", "n", "localnet", "配方未指定网络时使用的网络")
}
