package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"tari-sdk/internal/service/mq"
	"tari-sdk/pkg/config"
	"tari-sdk/pkg/database"
	"tari-sdk/pkg/logger"

	"github.com/spf13/cobra"
)

// eventsCmd 订阅服务端发布的交易事件并打印
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅交易事件 (Redis Streams 或 Kafka，取决于 redis.mq_type)",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")

		config.Init()
		if !verbose {
			logger.Init(config.Global.App.Env)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var consumer mq.Consumer
		if config.Global.Redis.MQType == "kafka" {
			consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, group)
		} else {
			rdb, err := database.ConnectRedis(ctx, config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
			if err != nil {
				return err
			}
			consumer = mq.NewRedisConsumer(rdb, group, "tari-cli")
		}
		defer consumer.Close()

		out := cmd.OutOrStdout()
		return consumer.Subscribe(ctx, config.Global.Tari.EventsTopic, func(msg *mq.Message) error {
			_, err := fmt.Fprintf(out, "[%s] %s %s\n", msg.ID, msg.Key, msg.Payload)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().String("group", "tari-cli", "消费者组")
}
