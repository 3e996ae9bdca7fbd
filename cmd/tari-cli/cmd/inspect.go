package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"tari-sdk/pkg/tari/types"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "查看交易文件的内容摘要",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		var tx types.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return fmt.Errorf("解析交易失败: %w", err)
		}
		return printSummary(cmd.OutOrStdout(), tx)
	},
}

func printSummary(w io.Writer, tx types.Transaction) error {
	hash, err := tx.ID()
	if err != nil {
		return err
	}
	utx := tx.UnsignedTransaction()

	fmt.Fprintf(w, "Hash:       %s\n", hash)
	fmt.Fprintf(w, "Network:    %s (0x%02x)\n", utx.Network, uint8(utx.Network))
	fmt.Fprintf(w, "Epochs:     %s .. %s\n", epochString(utx.MinEpoch), epochString(utx.MaxEpoch))
	fmt.Fprintf(w, "Dry run:    %t\n", utx.DryRun)
	fmt.Fprintf(w, "Inputs:     %d\n", len(utx.Inputs))
	fmt.Fprintf(w, "Signatures: %d\n", len(tx.Signatures()))

	fmt.Fprintf(w, "Fee instructions (%d):\n", len(utx.FeeInstructions))
	for i, ins := range utx.FeeInstructions {
		fmt.Fprintf(w, "  %2d. %s\n", i, describe(ins))
	}
	fmt.Fprintf(w, "Instructions (%d):\n", len(utx.Instructions))
	for i, ins := range utx.Instructions {
		fmt.Fprintf(w, "  %2d. %s\n", i, describe(ins))
	}
	return nil
}

func describe(ins types.Instruction) string {
	switch ins := ins.(type) {
	case types.CallFunction:
		return fmt.Sprintf("CallFunction %s::%s (%d args)", ins.Address, ins.Function, len(ins.Args))
	case types.CallMethod:
		return fmt.Sprintf("CallMethod %s.%s (%d args)", describeCall(ins.Call), ins.Method, len(ins.Args))
	case types.PutLastInstructionOutputOnWorkspace:
		return fmt.Sprintf("PutLastInstructionOutputOnWorkspace -> #%d", ins.Key)
	case types.AllocateAddress:
		return fmt.Sprintf("AllocateAddress %s -> #%d", ins.AllocatableType, ins.WorkspaceID)
	default:
		return types.InstructionName(ins)
	}
}

func describeCall(call types.ComponentCall) string {
	switch c := call.(type) {
	case types.CallAddress:
		return string(c.Address)
	case types.CallWorkspace:
		return fmt.Sprintf("#%d", c.Workspace.ID)
	default:
		return "?"
	}
}

func epochString(e *types.Epoch) string {
	if e == nil {
		return "-"
	}
	return fmt.Sprint(uint64(*e))
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("input", "i", "unsigned.json", "交易文件")
}
