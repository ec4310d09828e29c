/*
 * @author: sun977
 * @description: Scan 模式子命令 (Standalone Mode)
 */

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"neoprobe/internal/core/classifier"
	"neoprobe/internal/core/probe"
)

var scanTarget string

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "执行单次探测 (Standalone)",
	Long: `在不启动服务的情况下对单个IP执行一次完整探测：
存活探测 -> 端口扫描 -> 风险归类，结果直接打印。

示例:
  neoprobe scan -t 8.8.8.8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanTarget == "" {
			return fmt.Errorf("必须通过 -t 指定目标IP")
		}

		engine := probe.NewEngine()
		pterm.Info.Printfln("Starting probe for %s...", scanTarget)

		result, err := engine.Probe(context.Background(), scanTarget)
		if err != nil {
			return err
		}

		if !result.IsOnline {
			pterm.Warning.Printfln("%s is offline", scanTarget)
			return nil
		}

		latency := "n/a"
		if result.PingTime != nil {
			latency = fmt.Sprintf("%dms", *result.PingTime)
		}
		pterm.Success.Printfln("%s is online (latency %s), %d open ports", scanTarget, latency, len(result.OpenPorts))

		ports := make([]int, 0, len(result.OpenPorts))
		for p := range result.OpenPorts {
			ports = append(ports, p)
		}
		sort.Ints(ports)

		rows := pterm.TableData{{"Port", "Service", "Severity", "Risk"}}
		for _, f := range classifier.ReportFor(ports) {
			rows = append(rows, []string{
				fmt.Sprintf("%d", f.Port), f.Service, f.Severity, f.Risk,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanTarget, "target", "t", "", "目标IP地址")
}
